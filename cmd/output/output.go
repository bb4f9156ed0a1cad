// Package output provides functions to print messages with optional color formatting
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/canthus/deploy/deploy"
	"github.com/canthus/deploy/domain"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

const (
	Plain   = color.FgWhite
	Success = color.FgGreen
	Warning = color.FgYellow
	Error   = color.FgRed
	DryRun  = color.FgCyan
)

const timeLayout = "2006-01-02 15:04:05"

var maybeColorize func(kind color.Attribute, tmpl string, a ...any) string

// InitColors sets up color functions based on environment
func InitColors(isColorDisabled bool) {
	if color.NoColor || isColorDisabled {
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return fmt.Sprintf(tmpl, a...)
		}
	} else {
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return color.New(kind).SprintfFunc()(tmpl, a...)
		}
	}
}

// PrintMessage formats a message with color (if enabled) and a trailing newline
func PrintMessage(kind color.Attribute, tmpl string, a ...any) string {
	if maybeColorize == nil || kind == Plain {
		return fmt.Sprintf(tmpl+"\n", a...)
	}
	return fmt.Sprintln(maybeColorize(kind, tmpl, a...))
}

func fprint(cmd *cobra.Command, kind color.Attribute, tmpl string, a ...any) error {
	_, err := fmt.Fprint(cmd.OutOrStdout(), PrintMessage(kind, tmpl, a...))
	return err
}

func FprintPlain(cmd *cobra.Command, tmpl string, a ...any) error {
	return fprint(cmd, Plain, tmpl, a...)
}

func FprintSuccess(cmd *cobra.Command, tmpl string, a ...any) error {
	return fprint(cmd, Success, tmpl, a...)
}

func FprintWarning(cmd *cobra.Command, tmpl string, a ...any) error {
	return fprint(cmd, Warning, tmpl, a...)
}

func FprintError(cmd *cobra.Command, tmpl string, a ...any) error {
	_, err := fmt.Fprint(cmd.ErrOrStderr(), PrintMessage(Error, tmpl, a...))
	return err
}

// EntryPrinter returns an echo function that writes deployment log entries to w
// as they are recorded
func EntryPrinter(w io.Writer) func(deploy.Entry) {
	return func(e deploy.Entry) {
		fmt.Fprint(w, FormatEntry(e))
	}
}

// FormatEntry renders a deployment log entry for the console, colored by level
func FormatEntry(e deploy.Entry) string {
	switch e.Level {
	case deploy.LevelWarning:
		return PrintMessage(Warning, "%s", e)
	case deploy.LevelError:
		return PrintMessage(Error, "%s", e)
	case deploy.LevelDryRun:
		return PrintMessage(DryRun, "%s", e)
	default:
		return PrintMessage(Plain, "%s", e)
	}
}

func PrintTable(header []string, data [][]string) (string, error) {
	buf := strings.Builder{}

	table := tablewriter.NewTable(
		&buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines: tw.Lines{
					ShowHeaderLine: tw.Off,
				},
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}))

	if len(header) > 0 {
		table.Header(header)
	}

	if err := table.Bulk(data); err != nil {
		return "", fmt.Errorf("bulk adding data to table: %w", err)
	}

	if err := table.Render(); err != nil {
		return "", fmt.Errorf("rendering table: %w", err)
	}

	return buf.String(), nil
}

// PrintPhaseSummary renders one row per phase of a run
func PrintPhaseSummary(run *domain.Run) (string, error) {
	if len(run.Phases) == 0 {
		return PrintMessage(Plain, "No phases were run."), nil
	}

	data := make([][]string, 0, len(run.Phases))
	for _, phase := range run.Phases {
		data = append(data, []string{
			phase.Name,
			colorizePhaseStatus(phase.Status),
			formatDuration(phase.Duration),
			firstLine(phase.Message),
		})
	}

	table, err := PrintTable([]string{"Phase", "Status", "Duration", "Message"}, data)
	if err != nil {
		return "", fmt.Errorf("printing phase summary table: %w", err)
	}
	return table, nil
}

func PrintRunList(runs []*domain.Run) (string, error) {
	if len(runs) == 0 {
		return PrintMessage(Plain, "No deployment runs found."), nil
	}

	header := []string{"ID", "Environment", "Status", "Dry Run", "Commit", "Started At", "Duration"}
	var data [][]string
	for _, run := range runs {
		data = append(data, []string{
			shortID(run),
			run.Environment.String(),
			colorizeRunStatus(run.Status),
			fmt.Sprintf("%t", run.DryRun),
			orDash(run.ShortCommit()),
			run.StartedAt.Local().Format(timeLayout),
			formatDuration(run.Duration()),
		})
	}

	table, err := PrintTable(header, data)
	if err != nil {
		return "", fmt.Errorf("printing run list table: %w", err)
	}
	return table, nil
}

func PrintRunDetails(run *domain.Run) (string, error) {
	data := [][]string{
		{"ID", run.ID.String()},
		{"Environment", run.Environment.String()},
		{"Status", colorizeRunStatus(run.Status)},
		{"Dry Run", fmt.Sprintf("%t", run.DryRun)},
		{"Skip Tests", fmt.Sprintf("%t", run.SkipTests)},
		{"Commit", orDash(run.CommitHashStr())},
		{"Started At", run.StartedAt.Local().Format(timeLayout)},
		{"Finished At", run.FinishedAt.Local().Format(timeLayout)},
		{"Duration", formatDuration(run.Duration())},
		{"Log File", orDash(run.LogFile)},
	}
	if run.Error != "" {
		data = append(data, []string{"Error", run.Error})
	}

	details, err := PrintTable([]string{}, data)
	if err != nil {
		return "", fmt.Errorf("printing run details table: %w", err)
	}

	phases, err := PrintPhaseSummary(run)
	if err != nil {
		return "", err
	}

	return details + "\n" + phases, nil
}

func colorizeRunStatus(s domain.RunStatus) string {
	switch s {
	case domain.RunStatusCompleted:
		return colorize(Success, s.String())
	case domain.RunStatusFailed:
		return colorize(Error, s.String())
	default:
		return s.String()
	}
}

func colorizePhaseStatus(s domain.PhaseStatus) string {
	switch s {
	case domain.PhaseStatusSucceeded:
		return colorize(Success, s.String())
	case domain.PhaseStatusWarning:
		return colorize(Warning, s.String())
	case domain.PhaseStatusFailed:
		return colorize(Error, s.String())
	default:
		return s.String()
	}
}

func colorize(kind color.Attribute, s string) string {
	if maybeColorize == nil {
		return s
	}
	return maybeColorize(kind, "%s", s)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func shortID(run *domain.Run) string {
	return run.ID.String()[:8]
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// CLI flag for disabling color output

// NoColor is a flag that can be used to disable colored output in the CLI.
var NoColor = &noColorFlag{set: false}

type noColorFlag struct {
	set bool
}

func (f *noColorFlag) Set(value string) error {
	// This is a boolean flag, so we ignore the value and just mark it as set
	f.set = true
	return nil
}

func (f *noColorFlag) String() string {
	if f.set {
		return "true"
	}
	return "false"
}

func (f *noColorFlag) Type() string {
	return "bool"
}

// IsSet returns true if the --no-color flag was explicitly set
func (f *noColorFlag) IsSet() bool {
	return f.set
}

// IsBoolFlag tells pflag this is a boolean flag (no argument required)
func (f *noColorFlag) IsBoolFlag() bool {
	return true
}

// Reset clears the flag, used between command invocations in tests
func (f *noColorFlag) Reset() {
	f.set = false
}
