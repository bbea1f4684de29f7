package formatting

import (
	"fmt"
	"io"

	"github.com/giantswarm/sessionctl/internal/api"
)

// ConsoleFormatter prints plain "key: value" lines. In quiet mode it prints
// only the identifier of each result, one per line.
type ConsoleFormatter struct {
	options Options
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(options Options) Formatter {
	return &ConsoleFormatter{
		options: options,
	}
}

// FormatData prints data as plain lines.
func (f *ConsoleFormatter) FormatData(data interface{}) error {
	w := f.options.writer()
	if f.options.Quiet {
		return f.formatQuiet(w, data)
	}

	for _, row := range rowsFor(data) {
		if _, err := fmt.Fprintf(w, "%s: %s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return nil
}

func (f *ConsoleFormatter) formatQuiet(w io.Writer, data interface{}) error {
	switch d := data.(type) {
	case []api.ClusterSummary:
		for _, s := range d {
			if _, err := fmt.Fprintln(w, s.ClusterID); err != nil {
				return err
			}
		}
		return nil
	case *api.SubmitResponse:
		_, err := fmt.Fprintln(w, d.JobID)
		return err
	case *api.SavepointResponse:
		_, err := fmt.Fprintln(w, d.Location)
		return err
	}

	if id := identifierOf(data); id != "" {
		_, err := fmt.Fprintln(w, id)
		return err
	}
	return nil
}

// SetOptions updates the formatter options
func (f *ConsoleFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *ConsoleFormatter) GetOptions() Options {
	return f.options
}
