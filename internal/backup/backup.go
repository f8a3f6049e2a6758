package backup

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/karagenc/prestic/internal/preset"
	"github.com/karagenc/prestic/internal/schema"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrUnknownPreset = errors.New("unknown preset")

var (
	documentSchema = schema.Schema{
		"presets": schema.Map,
		"backups": schema.List,
		"forgets": schema.List,
		"prune":   schema.Map,
	}

	// Jobs accept everything a preset does, plus a comma separated list of
	// presets to inherit from.
	jobSchema = schema.Schema{"preset": schema.String}
)

// Config is a resolved document. Every job is a preset with its inherited
// presets already merged in.
type Config struct {
	Presets     map[string]*preset.Preset
	PresetNames []string

	Backups []*preset.Preset
	Forgets []*preset.Preset
	Prune   *preset.Preset
}

func FromDocument(root *yaml.Node, log *zap.Logger) (config *Config, err error) {
	err = schema.Check(root, "", documentSchema, true)
	if err != nil {
		return nil, err
	}

	config = &Config{Presets: make(map[string]*preset.Preset)}

	if presets := schema.Lookup(root, "presets"); presets != nil {
		err = schema.Each(presets, func(name string, n *yaml.Node) error {
			p, err := preset.FromNode(n, schema.Join("presets", name), nil)
			if err != nil {
				return err
			}
			if _, exists := config.Presets[name]; !exists {
				config.PresetNames = append(config.PresetNames, name)
			}
			config.Presets[name] = p
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	config.Backups, err = config.resolveAll(root, "backups")
	if err != nil {
		return nil, err
	}
	config.Forgets, err = config.resolveAll(root, "forgets")
	if err != nil {
		return nil, err
	}
	if prune := schema.Lookup(root, "prune"); prune != nil {
		config.Prune, err = config.resolve(prune, "prune")
		if err != nil {
			return nil, err
		}
	}

	log.Debug("document resolved",
		zap.Strings("presets", config.PresetNames),
		zap.Int("backups", len(config.Backups)),
		zap.Int("forgets", len(config.Forgets)),
		zap.Bool("prune", config.Prune != nil),
	)
	return config, nil
}

// Len is the number of commands the config produces.
func (c *Config) Len() int {
	n := len(c.Backups) + len(c.Forgets)
	if c.Prune != nil {
		n++
	}
	return n
}

func (c *Config) resolveAll(root *yaml.Node, key string) ([]*preset.Preset, error) {
	list := schema.Lookup(root, key)
	if list == nil {
		return nil, nil
	}
	items := schema.Items(list)
	resolved := make([]*preset.Preset, 0, len(items))
	for i, n := range items {
		p, err := c.resolve(n, schema.Index(key, i))
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, p)
	}
	return resolved, nil
}

// resolve merges the presets a job names, left to right, and then the job's
// own settings on top.
func (c *Config) resolve(n *yaml.Node, path string) (*preset.Preset, error) {
	resolved := preset.New(nil, nil, nil)

	if names := schema.Lookup(n, "preset"); names != nil {
		err := schema.Check(n, path, jobSchema, false)
		if err != nil {
			return nil, err
		}
		for _, name := range strings.Split(names.Value, ",") {
			name = strings.TrimSpace(name)
			p, ok := c.Presets[name]
			if !ok {
				return nil, c.unknownPreset(path, name)
			}
			resolved = resolved.MergedWith(p)
		}
	}

	own, err := preset.FromNode(n, path, jobSchema)
	if err != nil {
		return nil, err
	}
	return resolved.MergedWith(own), nil
}

func (c *Config) unknownPreset(path, name string) error {
	err := errors.Newf("%s: unknown preset: %q", path, name)
	if len(c.PresetNames) == 0 {
		err = errors.WithHint(err, "the document defines no presets")
	} else {
		known := append([]string(nil), c.PresetNames...)
		sort.Strings(known)
		err = errors.WithHintf(err, "known presets: %s", strings.Join(known, ", "))
	}
	return errors.Mark(err, ErrUnknownPreset)
}
