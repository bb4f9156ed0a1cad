package main

import "github.com/canthus/deploy/cmd/root"

func main() {
	root.Execute()
}
