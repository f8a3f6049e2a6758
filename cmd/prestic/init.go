package main

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/karagenc/prestic/examples"
	_config "github.com/karagenc/prestic/internal/config"
	"github.com/karagenc/prestic/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write an example document to edit",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := ""
		if len(args) > 0 {
			dir = args[0]
		}
		err := extractDocumentInteractive(dir)
		if err != nil {
			errPrintln(err)
			exit(exitErrAny)
		}
	},
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// extractDocumentInteractive writes the example document into dir, asking
// for the directory when dir is empty.
func extractDocumentInteractive(dir string) error {
	if dir == "" {
		if !interactive() {
			return errors.WithHint(errors.New("not a terminal, cannot ask where to write the document"), "pass the directory as an argument: prestic init <dir>")
		}
		var err error
		dir, err = pick("Where to store the document, "+examples.DocumentName+"?\nPick:", _config.InitDirs())
		if err != nil {
			return err
		}
	}
	path, err := writeExample(dir)
	if err != nil {
		return err
	}
	utils.Success.Printf("Document written to %s. Edit it before running prestic plan\n", path)
	return nil
}

// writeExample never overwrites an existing file.
func writeExample(dir string) (string, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, examples.DocumentName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", err
	}
	_, err = f.Write(examples.Document)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// requireDocumentPath is documentPath for commands that cannot go on
// without a document. On a terminal, a missing document turns into an
// offer to write the example.
func requireDocumentPath(args []string) string {
	path, err := documentPath(args)
	if err == nil {
		return path
	}
	if !errors.Is(err, _config.ErrNoDocument) || !interactive() {
		errPrintln(err)
		exit(exitErrAny)
	}
	errPrintln(err)
	err = extractDocumentInteractive("")
	if err != nil {
		errPrintln(err)
		exit(exitErrAny)
	}
	exit(exitSuccess)
	return ""
}
