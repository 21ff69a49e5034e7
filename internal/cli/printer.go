package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"botctl/internal/orchestrator"
	"botctl/internal/registry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format for CLI commands
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// maxCommandWidth bounds the COMMAND column in cells.
const maxCommandWidth = 48

// Printer renders API answers for the terminal.
type Printer struct {
	out    io.Writer
	format OutputFormat
}

// NewPrinter returns a printer writing format to out.
func NewPrinter(out io.Writer, format OutputFormat) (*Printer, error) {
	switch format {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
	case "":
		format = OutputFormatTable
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return &Printer{out: out, format: format}, nil
}

// PrintResult prints a control answer. A result carrying an error, or one that
// did not do what was asked, is returned as an error after printing.
func (p *Printer) PrintResult(r orchestrator.Result) error {
	if p.format != OutputFormatTable {
		if err := p.structured(r); err != nil {
			return err
		}
		if r.Error != "" {
			return errors.New(r.Error)
		}
		return nil
	}
	switch {
	case r.Error != "":
		return errors.New(r.Error)
	case r.Output != "":
		fmt.Fprint(p.out, r.Output)
		if !strings.HasSuffix(r.Output, "\n") {
			fmt.Fprintln(p.out)
		}
	case r.Message != "":
		fmt.Fprintln(p.out, r.Message)
	}
	return nil
}

// PrintStatus prints one row per tool kind.
func (p *Printer) PrintStatus(statuses []orchestrator.ToolStatus) error {
	if p.format != OutputFormatTable {
		return p.structured(statuses)
	}

	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"KIND", "STATE", "PID", "STARTED", "COMMAND", "LAST EXIT"})
	for _, st := range statuses {
		t.AppendRow(table.Row{
			string(st.Kind),
			formatState(st.State),
			formatPID(st.PID),
			formatSince(st.StartedAt),
			formatCommand(st.Command),
			formatLastExit(st),
		})
	}
	t.Render()
	return nil
}

// structured prints v as JSON or YAML, keeping the JSON field names.
func (p *Printer) structured(v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if p.format == OutputFormatJSON {
		fmt.Fprintln(p.out, string(jsonData))
		return nil
	}

	var data interface{}
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	fmt.Fprint(p.out, string(yamlData))
	return nil
}

// formatState formats run state with color
func formatState(state string) string {
	switch strings.ToLower(state) {
	case "running":
		return text.FgGreen.Sprint("Running")
	case "starting":
		return text.FgYellow.Sprint("Starting")
	case "stopping":
		return text.FgYellow.Sprint("Stopping")
	case "idle":
		return text.FgHiBlack.Sprint("Idle")
	default:
		return state
	}
}

func formatPID(pid int) string {
	if pid == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", pid)
}

func formatSince(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return time.Since(*t).Round(time.Second).String() + " ago"
}

func formatCommand(cmd string) string {
	if cmd == "" {
		return "-"
	}
	return runewidth.Truncate(cmd, maxCommandWidth, "...")
}

func formatLastExit(st orchestrator.ToolStatus) string {
	if st.LastExit == nil {
		return "-"
	}
	summary := fmt.Sprintf("%s (%d)", st.LastExit.State, st.LastExit.ExitCode)
	if st.LastExit.State == registry.StateFailed {
		return text.FgRed.Sprint(summary)
	}
	return summary
}
