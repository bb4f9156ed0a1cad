//go:build !unix

package deploy

import "os/exec"

// killProcessGroup is a no-op where process groups are unavailable; WaitDelay
// still bounds how long Execute waits on inherited pipes.
func killProcessGroup(cmd *exec.Cmd) {}
