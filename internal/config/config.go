package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kirsle/configdir"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatTable = "table"
)

var ErrNoDocument = errors.New("no document found")

// DocumentNames are looked up, in this order, in every search directory.
var DocumentNames = []string{
	"prestic.json",
	"prestic.jsonc",
	"prestic.yaml",
	"prestic.yml",
}

// Settings control how prestic renders a document. They come from flags
// and PRESTIC_* environment variables.
type Settings struct {
	Document  string `mapstructure:"config"`
	Tool      string `mapstructure:"tool"`
	Format    string `mapstructure:"format"`
	ExpandEnv bool   `mapstructure:"expand_env"`
}

// flagKeys maps flag names to settings keys.
var flagKeys = map[string]string{
	"config":     "config",
	"tool":       "tool",
	"format":     "format",
	"expand-env": "expand_env",
}

func Read(flags *pflag.FlagSet) (settings *Settings, v *viper.Viper, err error) {
	v = viper.New()
	v.SetEnvPrefix("prestic")
	v.AutomaticEnv()

	v.SetDefault("config", "")
	v.SetDefault("tool", "restic")
	v.SetDefault("format", FormatText)
	v.SetDefault("expand_env", false)

	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		err = v.BindPFlag(key, f)
		if err != nil {
			return nil, nil, err
		}
	}

	settings = new(Settings)
	err = v.Unmarshal(settings)
	if err != nil {
		return nil, nil, err
	}
	return settings, v, settings.Check()
}

func (s *Settings) Check() error {
	switch s.Format {
	case FormatText, FormatJSON, FormatTable:
	default:
		return fmt.Errorf("unknown output format `%s`. use one of: %s, %s, %s", s.Format, FormatText, FormatJSON, FormatTable)
	}
	if strings.TrimSpace(s.Tool) == "" {
		return fmt.Errorf("tool cannot be empty. set it to the restic command, e.g. `restic`")
	}
	return nil
}

func DirsLocal() []string {
	home, err := homedir.Dir()
	if err != nil {
		panic(err)
	}
	dirs := []string{
		filepath.Join(home, "prestic"),
		filepath.Join(home, ".prestic"),
	}

	// configdir honors $XDG_CONFIG_HOME. Avoid listing ~/.config/prestic twice.
	userConfigDir := configdir.LocalConfig("prestic")
	configHome := filepath.Join(home, ".config", "prestic")
	if filepath.Clean(userConfigDir) != configHome {
		dirs = append(dirs, configHome)
	}
	return append(dirs, userConfigDir)
}

// InitDirs lists the directories an example document may be written to:
// the local directories, then the system-wide ones.
func InitDirs() []string {
	dirs := DirsLocal()
	for _, dir := range configdir.SystemConfig("prestic") {
		if !contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// SearchDirs lists the directories searched for a document, highest
// priority first.
func SearchDirs() []string {
	return append([]string{"."}, DirsLocal()...)
}

// FindDocument returns explicit when set. Otherwise the first existing
// document in dirs is returned.
func FindDocument(explicit string, dirs []string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, dir := range dirs {
		for _, name := range DocumentNames {
			path := filepath.Join(dir, name)
			if st, err := os.Stat(path); err == nil && st.Mode().IsRegular() {
				return path, nil
			}
		}
	}
	err := errors.Newf("no document found. searched for %s in: %s", strings.Join(DocumentNames, ", "), strings.Join(dirs, ", "))
	err = errors.WithHint(err, "pass the document path as an argument, with -c, or in $PRESTIC_CONFIG")
	return "", errors.Mark(err, ErrNoDocument)
}
