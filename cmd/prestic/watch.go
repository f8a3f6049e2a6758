package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/karagenc/prestic/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Editors often write a file in several steps. Wait for them to settle.
const settleDelay = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [document]",
	Short: "Print the plan again every time the document changes",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := requireDocumentPath(args)
		if path == "-" {
			errPrintln(fmt.Errorf("cannot watch stdin. pass a document file"))
			exit(exitErrAny)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		addExitHandler(cancel)

		printPlan := func() {
			commands, err := plan(path)
			if err != nil {
				errPrintln(err)
				return
			}
			out, err := render(settings.Format, commands)
			if err != nil {
				errPrintln(err)
				return
			}
			_, err = os.Stdout.Write(out)
			if err != nil {
				errPrintln(err)
			}
		}

		printPlan()
		err := watchDocument(ctx, path, func() {
			utils.Bold.Fprintf(os.Stderr, "\n%s changed\n\n", path)
			printPlan()
		})
		if err != nil {
			errPrintln(err)
			exit(exitErrAny)
		}
		exit(exitTerm)
	},
}

// watchDocument calls onChange after every settled write to path, until
// ctx is done. The parent directory is watched, so the document may be
// replaced by a rename.
func watchDocument(ctx context.Context, path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	err = watcher.Add(filepath.Dir(abs))
	if err != nil {
		return err
	}

	var settled <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debugLog.Debug("document event", zap.String("path", event.Name), zap.Stringer("op", event.Op))
				settled = time.After(settleDelay)
			}
		case <-settled:
			settled = nil
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			errPrintln(fmt.Errorf("watch: %v", err))
		}
	}
}
