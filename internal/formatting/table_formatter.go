package formatting

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/giantswarm/sessionctl/internal/api"
	pkgstrings "github.com/giantswarm/sessionctl/pkg/strings"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
	now     func() time.Time
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
		now:     time.Now,
	}
}

// FormatData renders cluster listings as a table with one row per cluster
// and single results as a KEY/VALUE table.
func (f *TableFormatter) FormatData(data interface{}) error {
	if clusters, ok := data.([]api.ClusterSummary); ok {
		return f.formatClusters(clusters)
	}

	rows := rowsFor(data)
	if len(rows) == 0 {
		fmt.Fprintln(f.options.writer(), f.colorize(text.FgYellow, "Nothing to show"))
		return nil
	}

	t := f.createTable()
	t.AppendHeader(table.Row{f.colorize(text.FgHiCyan, "KEY"), f.colorize(text.FgHiCyan, "VALUE")})
	for _, row := range rows {
		t.AppendRow(table.Row{f.colorize(text.FgHiCyan, row[0]), pkgstrings.Truncate(row[1], pkgstrings.DefaultValueMaxLen)})
	}
	t.Render()
	return nil
}

func (f *TableFormatter) formatClusters(clusters []api.ClusterSummary) error {
	if len(clusters) == 0 {
		fmt.Fprintln(f.options.writer(), f.colorize(text.FgYellow, "No session clusters found"))
		return nil
	}

	t := f.createTable()
	t.AppendHeader(table.Row{
		f.colorize(text.FgHiCyan, "CLUSTER ID"),
		f.colorize(text.FgHiCyan, "STATE"),
		f.colorize(text.FgHiCyan, "FINAL STATUS"),
		f.colorize(text.FgHiCyan, "NAMESPACE"),
		f.colorize(text.FgHiCyan, "AGE"),
	})
	for _, c := range clusters {
		t.AppendRow(table.Row{
			c.ClusterID,
			f.colorize(stateColor(c.State), c.State),
			c.FinalStatus,
			c.Namespace,
			formatAge(c.CreatedAt, f.now()),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "TOTAL", len(clusters)})
	t.Render()
	return nil
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.options.writer())
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) colorize(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

func stateColor(state string) text.Color {
	switch state {
	case "RUNNING":
		return text.FgGreen
	case "ACCEPTED":
		return text.FgYellow
	default:
		return text.FgHiBlack
	}
}
