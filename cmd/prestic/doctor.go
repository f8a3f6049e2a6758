package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/docker/go-units"
	"github.com/karagenc/prestic/internal/backup/provider"
	"github.com/karagenc/prestic/internal/utils"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [document]",
	Short: "Check that the document and the restic binary can be found",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		errorFound := false
		utils.Bold.Println("Doctor:")

		path, err := documentPath(args)
		if err != nil {
			utils.Warn.Printf("    Warning: %v\n", err)
			errorFound = true
		} else if path == "-" {
			fmt.Println("    Using document from stdin")
		} else {
			st, err := os.Stat(path)
			if err != nil {
				utils.Error.Print("    Error: ")
				fmt.Printf("%v\n", err)
				errorFound = true
			} else {
				fmt.Printf("    Using document: %s (%s)\n", path, units.HumanSize(float64(st.Size())))
				config, err := load(path)
				if err != nil {
					utils.Error.Print("    Error: ")
					fmt.Printf("%v\n", err)
					errorFound = true
				} else {
					fmt.Printf("    Document defines %d presets: %s\n", len(config.PresetNames), summary(config))
					commands, err := plan(path)
					if err != nil {
						utils.Error.Print("    Error: ")
						fmt.Printf("%v\n", err)
						errorFound = true
					}
					for _, i := range withoutRepository(commands, os.Environ()) {
						utils.Warn.Printf("    Warning: command %d (%s) has no repository. set RESTIC_REPOSITORY or --repo\n", i+1, commands[i].Kind)
						errorFound = true
					}
				}
			}
		}

		p, err := newProvider()
		if err != nil {
			utils.Error.Print("    Error: ")
			fmt.Printf("%v\n", err)
			errorFound = true
		} else {
			tool := p.Tool()[0]
			found, err := exec.LookPath(tool)
			if err != nil {
				utils.Warn.Printf("    Warning: %s not found: %v\n", tool, err)
				errorFound = true
			} else {
				fmt.Printf("    %s found at: %s\n", tool, found)
			}
		}

		if !errorFound {
			utils.Success.Println("All good.")
		} else {
			utils.Error.Println("Error(s) occurred.")
			exit(exitErrAny)
		}
	},
}

var (
	repositoryEnv   = []string{"RESTIC_REPOSITORY", "RESTIC_REPOSITORY_FILE"}
	repositoryFlags = []string{"-r", "--repo", "--repository-file"}
)

// withoutRepository returns the indexes of commands that name no
// repository, neither in the environment they would run with nor in their
// arguments.
func withoutRepository(commands []*provider.Command, base []string) []int {
	var missing []int
next:
	for i, cmd := range commands {
		for _, entry := range cmd.Environ(base) {
			for _, key := range repositoryEnv {
				if value, ok := strings.CutPrefix(entry, key+"="); ok && value != "" {
					continue next
				}
			}
		}
		for _, arg := range cmd.Args {
			for _, flag := range repositoryFlags {
				if arg == flag || strings.HasPrefix(arg, flag+"=") {
					continue next
				}
			}
		}
		missing = append(missing, i)
	}
	return missing
}
