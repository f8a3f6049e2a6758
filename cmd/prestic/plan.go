package main

import (
	"os"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [document]",
	Short: "Print the restic commands described by the document",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := requireDocumentPath(args)
		commands, err := plan(path)
		if err != nil {
			errPrintln(err)
			exit(exitErrAny)
		}
		out, err := render(settings.Format, commands)
		if err != nil {
			errPrintln(err)
			exit(exitErrAny)
		}
		_, err = os.Stdout.Write(out)
		if err != nil {
			errPrintln(err)
			exit(exitErrAny)
		}
	},
}
