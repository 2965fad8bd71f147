package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/terminally-online/tokenlist/internal/config"
	"github.com/terminally-online/tokenlist/internal/tokenlist"
)

// Write renders every violation of r to w, one per line in text format or
// as a table.
func Write(w io.Writer, r tokenlist.Report, format string) error {
	switch format {
	case config.FormatText, "":
		for _, line := range r.Lines() {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil

	case config.FormatTable:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"#", "Path", "Kind", "Message"})
		for i, v := range r.Violations {
			t.AppendRow(table.Row{i + 1, v.Path, v.Kind.String(), v.Message})
		}
		t.AppendFooter(table.Row{"", "", "Total", len(r.Violations)})
		t.Render()
		return nil
	}

	return fmt.Errorf("unknown format %q", format)
}

// Summary is the one-line outcome printed after a validation run.
func Summary(r tokenlist.Report, tokenCount int) string {
	if r.OK() {
		return fmt.Sprintf("Token list is valid. Checked %d token(s).", tokenCount)
	}
	return fmt.Sprintf("Validation errors found: %d error(s) across %d token(s).", len(r.Violations), tokenCount)
}
