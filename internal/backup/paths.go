package backup

import (
	"fmt"
	"path"
	"strings"

	"github.com/karagenc/prestic/internal/schema"
)

// Warnings reports backup jobs whose positional paths repeat or contain
// each other. restic accepts them, but usually the document is wrong,
// e.g. two presets adding the same directory.
func (c *Config) Warnings() []string {
	var warnings []string
	for i, job := range c.Backups {
		err := checkPathCollision(backupPaths(job.Args))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", schema.Index("backups", i), err))
		}
	}
	return warnings
}

func backupPaths(args []string) []string {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "" || strings.HasPrefix(arg, "-") {
			continue
		}
		cleaned := path.Clean(arg)
		if cleaned != "/" {
			cleaned = strings.TrimSuffix(cleaned, "/")
		}
		paths = append(paths, cleaned)
	}
	return paths
}

func checkPathCollision(paths []string) error {
	for i, longer := range paths {
		longerSplitted := strings.Split(longer, "/")

	outer:
		for j, shorter := range paths {
			if i == j {
				continue
			}
			if longer == shorter {
				return fmt.Errorf("duplicate path: %s", longer)
			}
			shorterSplitted := strings.Split(shorter, "/")
			if len(longerSplitted) < len(shorterSplitted) {
				continue
			}

			for i := range shorterSplitted {
				if shorterSplitted[i] != longerSplitted[i] {
					continue outer
				}
			}
			return fmt.Errorf("path collision: %s collides with %s", shorter, longer)
		}
	}
	return nil
}
