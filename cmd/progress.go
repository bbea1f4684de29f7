package cmd

import (
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/giantswarm/sessionctl/internal/formatting"
)

// withProgress runs fn behind a spinner on stderr. The spinner is skipped in
// quiet mode and for machine-readable output.
func withProgress(cmd *cobra.Command, suffix string, fn func() error) error {
	if rootQuiet || rootOutput == string(formatting.FormatJSON) || rootOutput == string(formatting.FormatYAML) {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " " + suffix
	s.Start()

	err := fn()
	if err != nil {
		s.FinalMSG = text.FgRed.Sprint("Failed: "+suffix) + "\n"
	}
	s.Stop()
	return err
}
