package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/karagenc/prestic/internal/backup/provider"
	_config "github.com/karagenc/prestic/internal/config"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// render formats all commands up front, so a failure leaves stdout empty.
func render(format string, commands []*provider.Command) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case _config.FormatText:
		for _, cmd := range commands {
			line, err := cmd.ShellLine()
			if err != nil {
				return nil, err
			}
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	case _config.FormatJSON:
		if commands == nil {
			commands = []*provider.Command{}
		}
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err := enc.Encode(commands)
		if err != nil {
			return nil, err
		}
	case _config.FormatTable:
		w := table.NewWriter()
		w.AppendHeader(table.Row{"#", "JOB", "ENV", "COMMAND"})
		for i, cmd := range commands {
			env := make([]string, 0, len(cmd.Env))
			for _, key := range cmd.EnvKeys() {
				env = append(env, key+"="+cmd.Env[key])
			}
			line, err := (&provider.Command{Args: cmd.Args}).ShellLine()
			if err != nil {
				return nil, err
			}
			w.AppendRow(table.Row{i + 1, titleCaser.String(cmd.Kind), strings.Join(env, "\n"), line})
		}
		buf.WriteString(w.Render())
		buf.WriteByte('\n')
	default:
		return nil, fmt.Errorf("unknown output format `%s`", format)
	}
	return buf.Bytes(), nil
}
