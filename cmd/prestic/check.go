package main

import (
	"fmt"
	"runtime"

	"github.com/karagenc/prestic/internal/backup"
	"github.com/karagenc/prestic/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type checkResult struct {
	path   string
	config *backup.Config
	err    error
}

var checkCmd = &cobra.Command{
	Use:   "check [documents...]",
	Short: "Validate documents without printing commands",
	Run: func(cmd *cobra.Command, args []string) {
		paths := args
		if len(paths) == 0 {
			path, err := documentPath(nil)
			if err != nil {
				errPrintln(err)
				exit(exitErrAny)
			}
			paths = []string{path}
		}

		results := make([]checkResult, len(paths))
		g := errgroup.Group{}
		g.SetLimit(runtime.NumCPU())
		for i, path := range paths {
			i, path := i, path
			g.Go(func() error {
				results[i] = check(path)
				return results[i].err
			})
		}
		failed := g.Wait() != nil

		for _, result := range results {
			if result.err != nil {
				fmt.Printf("%s %s\n", utils.Red.Sprint("FAIL"), result.path)
				errPrintln(result.err)
				continue
			}
			fmt.Printf("%s   %s: %s\n", utils.HiGreen.Sprint("OK"), result.path, summary(result.config))
			for _, warning := range result.config.Warnings() {
				utils.Warn.Printf("     Warning: %s\n", warning)
			}
		}
		if failed {
			exit(exitErrAny)
		}
	},
}

// check resolves the document and generates its commands, so that invalid
// flag values are caught as well.
func check(path string) checkResult {
	result := checkResult{path: path}
	result.config, result.err = load(path)
	if result.err != nil {
		return result
	}
	p, err := newProvider()
	if err != nil {
		result.err = err
		return result
	}
	_, result.err = result.config.Commands(p)
	return result
}
