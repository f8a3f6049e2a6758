package backup

import (
	"github.com/cockroachdb/errors"
	"github.com/karagenc/prestic/internal/backup/provider"
	"github.com/karagenc/prestic/internal/preset"
)

// Commands generates one command per job: all backups, then all forgets,
// then prune if the document has one. Nothing is returned on error.
func (c *Config) Commands(p provider.Provider) ([]*provider.Command, error) {
	commands := make([]*provider.Command, 0, c.Len())

	add := func(build func(*preset.Preset) (*provider.Command, error), job *preset.Preset, format string, args ...interface{}) error {
		cmd, err := build(job)
		if err != nil {
			return errors.Wrapf(err, format, args...)
		}
		commands = append(commands, cmd)
		return nil
	}

	for i, job := range c.Backups {
		if err := add(p.Backup, job, "backups[%d]", i); err != nil {
			return nil, err
		}
	}
	for i, job := range c.Forgets {
		if err := add(p.Forget, job, "forgets[%d]", i); err != nil {
			return nil, err
		}
	}
	if c.Prune != nil {
		if err := add(p.Prune, c.Prune, "prune"); err != nil {
			return nil, err
		}
	}
	return commands, nil
}
