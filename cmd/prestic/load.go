package main

import (
	"fmt"
	"strings"

	"github.com/karagenc/prestic/internal/backup"
	"github.com/karagenc/prestic/internal/backup/provider"
	_config "github.com/karagenc/prestic/internal/config"
	"github.com/karagenc/prestic/internal/document"
)

// documentPath prefers the positional argument, then -c or $PRESTIC_CONFIG,
// then the search directories.
func documentPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return _config.FindDocument(settings.Document, _config.SearchDirs())
}

func load(path string) (*backup.Config, error) {
	root, err := document.Read(path, debugLog)
	if err != nil {
		return nil, err
	}
	return backup.FromDocument(root, debugLog)
}

func newProvider() (*provider.Restic, error) {
	return provider.NewRestic(settings.Tool, settings.ExpandEnv, debugLog)
}

func plan(path string) ([]*provider.Command, error) {
	config, err := load(path)
	if err != nil {
		return nil, err
	}
	p, err := newProvider()
	if err != nil {
		return nil, err
	}
	return config.Commands(p)
}

func summary(config *backup.Config) string {
	parts := []string{
		plural(len(config.Backups), "backup"),
		plural(len(config.Forgets), "forget"),
	}
	if config.Prune != nil {
		parts = append(parts, "prune")
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
