package provider

import (
	"fmt"
	"sort"
	"strings"

	"github.com/karagenc/prestic/internal/preset"
	"mvdan.cc/sh/v3/syntax"
)

const (
	KindBackup = "backup"
	KindForget = "forget"
	KindPrune  = "prune"
)

// Provider turns resolved jobs into commands for a backup tool.
type Provider interface {
	Tool() []string
	Backup(p *preset.Preset) (*Command, error)
	Forget(p *preset.Preset) (*Command, error)
	Prune(p *preset.Preset) (*Command, error)
}

// Command is one invocation: the environment overlay and the full argument
// vector, tool first.
type Command struct {
	Kind string            `json:"kind"`
	Env  map[string]string `json:"env"`
	Args []string          `json:"args"`
}

// EnvKeys returns the overlay's variable names, sorted.
func (c *Command) EnvKeys() []string {
	keys := make([]string, 0, len(c.Env))
	for key := range c.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Environ overlays the command env on base, a list of KEY=value entries
// such as os.Environ(), and returns the result sorted by key.
func (c *Command) Environ(base []string) []string {
	env := make(map[string]string, len(base)+len(c.Env))
	for _, entry := range base {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	for key, value := range c.Env {
		env[key] = value
	}

	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	environ := make([]string, 0, len(keys))
	for _, key := range keys {
		environ = append(environ, key+"="+env[key])
	}
	return environ
}

// ShellLine renders the command as a single shell line with env
// assignments in front. Values are quoted where the shell would otherwise
// interpret them.
func (c *Command) ShellLine() (string, error) {
	words := make([]string, 0, len(c.Env)+len(c.Args))
	for _, key := range c.EnvKeys() {
		if !preset.ValidEnvName(key) {
			return "", fmt.Errorf("env: '%s' cannot be assigned in a shell", key)
		}
		value, err := syntax.Quote(c.Env[key], syntax.LangBash)
		if err != nil {
			return "", err
		}
		words = append(words, key+"="+value)
	}
	for _, arg := range c.Args {
		quoted, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			return "", err
		}
		words = append(words, quoted)
	}
	return strings.Join(words, " "), nil
}
