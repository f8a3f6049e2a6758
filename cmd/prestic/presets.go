package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/karagenc/prestic/internal/preset"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets [document]",
	Short: "List the presets defined in the document",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := requireDocumentPath(args)
		config, err := load(path)
		if err != nil {
			errPrintln(err)
			exit(exitErrAny)
		}

		fmt.Println()
		w := table.NewWriter()
		w.AppendHeader(table.Row{
			"PRESET", "ENV", "FLAGS", "ARGS",
		})
		for _, name := range config.PresetNames {
			p := config.Presets[name]
			w.AppendRow(table.Row{
				name, envKeys(p), flagList(p), strings.Join(p.Args, "\n"),
			})
		}
		fmt.Println(w.Render())
		fmt.Println()
	},
}

func envKeys(p *preset.Preset) string {
	keys := make([]string, 0, len(p.Env))
	for key := range p.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\n")
}

func flagList(p *preset.Preset) string {
	flags := make([]string, 0, len(p.Flags))
	for _, flag := range p.Flags {
		if flag.Value.Kind() == preset.KindBool && flag.Value.String() == "true" {
			flags = append(flags, flag.Name)
			continue
		}
		flags = append(flags, flag.Name+"="+flag.Value.String())
	}
	return strings.Join(flags, "\n")
}
