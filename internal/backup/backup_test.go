package backup

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/karagenc/prestic/internal/backup/provider"
	"github.com/karagenc/prestic/internal/document"
	"github.com/karagenc/prestic/internal/preset"
	"github.com/karagenc/prestic/internal/schema"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const exampleDocument = `
{
    "presets": {
        "cloud": {
            "env": {
                "B2_ACCOUNT_ID": "abc",
                "B2_ACCOUNT_KEY": "xyz"
            }
        }
    },
    "//this is a comment": "",
    "backups": [
        {
            "preset": "cloud",
            "args": [
                "~/Documents",
                "~/Pictures"
            ],
            "flags": {
                "stdin": true,
                "exclude": "xyz"
            }
        }
    ],

    "prune": {
        "env": {
            "FOO": "BAR"
        }
    }
}
`

func mustConfig(t *testing.T, content string) *Config {
	t.Helper()
	config, err := fromString(content)
	require.NoError(t, err)
	return config
}

func fromString(content string) (*Config, error) {
	root, err := document.Parse([]byte(content), document.FormatAuto)
	if err != nil {
		return nil, err
	}
	return FromDocument(root, zap.NewNop())
}

func mustRestic(t *testing.T) *provider.Restic {
	t.Helper()
	r, err := provider.NewRestic("restic", false, zap.NewNop())
	require.NoError(t, err)
	return r
}

func TestCommandsEndToEnd(t *testing.T) {
	config := mustConfig(t, exampleDocument)

	commands, err := config.Commands(mustRestic(t))
	require.NoError(t, err)
	require.Len(t, commands, 2)

	require.Equal(t, &provider.Command{
		Kind: provider.KindBackup,
		Env:  map[string]string{"B2_ACCOUNT_ID": "abc", "B2_ACCOUNT_KEY": "xyz"},
		Args: []string{"restic", "backup", "--stdin", "--exclude", "xyz", "~/Documents", "~/Pictures"},
	}, commands[0])
	require.Equal(t, &provider.Command{
		Kind: provider.KindPrune,
		Env:  map[string]string{"FOO": "BAR"},
		Args: []string{"restic", "prune"},
	}, commands[1])
}

func TestCommandsOrder(t *testing.T) {
	config := mustConfig(t, `
prune:
  args: [p]
forgets:
  - args: [f0]
  - args: [f1]
backups:
  - args: [b0]
  - args: [b1]
  - args: [b2]
`)
	require.Equal(t, 6, config.Len())

	commands, err := config.Commands(mustRestic(t))
	require.NoError(t, err)
	require.Len(t, commands, config.Len())

	var got [][]string
	for _, cmd := range commands {
		got = append(got, cmd.Args[1:])
	}
	require.Equal(t, [][]string{
		{"backup", "b0"},
		{"backup", "b1"},
		{"backup", "b2"},
		{"forget", "f0"},
		{"forget", "f1"},
		{"prune", "p"},
	}, got)
}

func TestCommandsWithoutPrune(t *testing.T) {
	config := mustConfig(t, `{"forgets": [{"flags": {"keep-last": 7, "prune": true}}]}`)
	require.Nil(t, config.Prune)
	require.Equal(t, 1, config.Len())

	commands, err := config.Commands(mustRestic(t))
	require.NoError(t, err)
	require.Equal(t, []string{"restic", "forget", "--keep-last", "7", "--prune"}, commands[0].Args)
	require.Empty(t, commands[0].Env)
}

func TestEmptyDocument(t *testing.T) {
	config := mustConfig(t, `{}`)
	require.Equal(t, 0, config.Len())
	commands, err := config.Commands(mustRestic(t))
	require.NoError(t, err)
	require.Empty(t, commands)
}

func TestPresetOverrides(t *testing.T) {
	config := mustConfig(t, `
presets:
  a:
    env: {X: a, A: a}
    flags: {host: a, one-file-system: true}
    args: [from-a]
  b:
    env: {X: b, B: b}
    flags: {host: b, tag: b}
    args: [from-b]
backups:
  - preset: a, b
    env: {B: job}
    flags: {tag: job}
    args: [own]
  - preset: b,a
`)

	first := config.Backups[0]
	require.Equal(t, map[string]string{"X": "b", "A": "a", "B": "job"}, first.Env)
	tokens, err := first.Expand()
	require.NoError(t, err)
	require.Equal(t, []string{"--host", "b", "--one-file-system", "--tag", "job", "from-a", "from-b", "own"}, tokens)

	second := config.Backups[1]
	require.Equal(t, "a", second.Env["X"])
	tokens, err = second.Expand()
	require.NoError(t, err)
	require.Equal(t, []string{"--host", "a", "--tag", "b", "--one-file-system", "from-b", "from-a"}, tokens)

	// Presets stay untouched by resolution.
	require.Equal(t, []string{"from-a"}, config.Presets["a"].Args)
	require.Equal(t, []string{"a", "b"}, config.PresetNames)
}

func TestDuplicatePresetName(t *testing.T) {
	config := mustConfig(t, `
presets:
  docs: {args: [~/Documents], flags: {tag: docs}}
backups:
  - preset: docs,docs
`)
	tokens, err := config.Backups[0].Expand()
	require.NoError(t, err)
	require.Equal(t, []string{"--tag", "docs", "~/Documents", "~/Documents"}, tokens)
}

func TestUnknownPreset(t *testing.T) {
	for _, content := range []string{
		`{"presets": {"cloud": {}}, "backups": [{"preset": "ghost"}]}`,
		`{"presets": {"cloud": {}}, "forgets": [{"preset": "cloud, ghost"}]}`,
		`{"presets": {"cloud": {}}, "prune": {"preset": "cloud,"}}`,
		`{"prune": {"preset": "cloud"}}`,
	} {
		_, err := fromString(content)
		require.Error(t, err, content)
		require.True(t, errors.Is(err, ErrUnknownPreset), content)
		require.NotEmpty(t, errors.GetAllHints(err))
	}
}

func TestUnknownPresetBeforeUnsupportedKey(t *testing.T) {
	_, err := fromString(`{"presets": {}, "backups": [{"preset": "ghost", "bogus": 1}]}`)
	require.True(t, errors.Is(err, ErrUnknownPreset))

	_, err = fromString(`{"presets": {"a": {}}, "backups": [{"preset": "a", "bogus": 1}]}`)
	require.True(t, errors.Is(err, schema.ErrUnsupportedKey))
	require.Contains(t, err.Error(), "backups[0]")
}

func TestDocumentErrors(t *testing.T) {
	for _, tc := range []struct {
		content string
		target  error
	}{
		{`{"bogus": 1}`, schema.ErrUnsupportedKey},
		{`{"backups": {}}`, schema.ErrType},
		{`{"prune": []}`, schema.ErrType},
		{`{"presets": []}`, schema.ErrType},
		{`{"presets": {"a": []}}`, schema.ErrType},
		{`{"presets": {"a": {"env": 5}}}`, schema.ErrType},
		{`{"presets": {"a": {"preset": "b"}}}`, schema.ErrUnsupportedKey},
		{`{"backups": ["text"]}`, schema.ErrType},
		{`{"backups": [{"preset": 5}]}`, schema.ErrType},
		{`{"backups": [{"env": {}, "bogus": 1}]}`, schema.ErrUnsupportedKey},
		{`{"backups": [{"flags": {"x": 1.5}}]}`, preset.ErrInvalidFlagValue},
		{`[]`, schema.ErrType},
		{`{"backups": [`, document.ErrMalformed},
	} {
		_, err := fromString(tc.content)
		require.Error(t, err, tc.content)
		require.True(t, errors.Is(err, tc.target), "%s: %v", tc.content, err)
	}
}

func TestCommandsInvalidFlagValue(t *testing.T) {
	config := mustConfig(t, `{"backups": [{"args": ["ok"]}], "forgets": [{"flags": {"x": false}}]}`)
	commands, err := config.Commands(mustRestic(t))
	require.Error(t, err)
	require.True(t, errors.Is(err, preset.ErrInvalidFlagValue))
	require.Contains(t, err.Error(), "forgets[0]")
	require.Nil(t, commands)
}

func TestCommentKeys(t *testing.T) {
	config := mustConfig(t, `{
	"// top": 1,
	"presets": {"// not a preset": "text", "cloud": {"// inside": [], "env": {"A": "1"}}},
	"backups": [{"// job": true, "preset": "cloud", "flags": {"// skipped": 1, "x": 1}}]
}`)
	require.Equal(t, []string{"cloud"}, config.PresetNames)
	tokens, err := config.Backups[0].Expand()
	require.NoError(t, err)
	require.Equal(t, []string{"--x", "1"}, tokens)
}

func TestYAMLAnchorsAsPresets(t *testing.T) {
	config := mustConfig(t, `
presets:
  cloud: &cloud
    env: {RESTIC_REPOSITORY: "b2:bucket:/"}
prune: *cloud
`)
	require.Equal(t, "b2:bucket:/", config.Prune.Env["RESTIC_REPOSITORY"])
}

func TestExampleDocument(t *testing.T) {
	root, err := document.Read("../../examples/prestic.jsonc", zap.NewNop())
	require.NoError(t, err)
	config, err := FromDocument(root, zap.NewNop())
	require.NoError(t, err)
	require.Empty(t, config.Warnings())

	commands, err := config.Commands(mustRestic(t))
	require.NoError(t, err)
	require.Len(t, commands, 3)
	require.Equal(t, []string{
		"restic", "backup",
		"--option", "b2.connections=10", "--quiet",
		"--exclude-caches", "--exclude", "node_modules", "--tag", "home",
		"~/Documents", "~/Pictures",
	}, commands[0].Args)
	require.Equal(t, []string{
		"restic", "forget",
		"--option", "b2.connections=10",
		"--keep-daily", "7", "--keep-weekly", "5", "--keep-monthly", "12", "--tag", "home",
	}, commands[1].Args)
	require.Equal(t, []string{"restic", "prune", "--option", "b2.connections=10", "--max-unused", "5%"}, commands[2].Args)
	require.Equal(t, "${B2_ACCOUNT_KEY}", commands[2].Env["B2_ACCOUNT_KEY"])
}

func TestLargeIntegerFlags(t *testing.T) {
	for _, content := range []string{
		`{"backups": [{"flags": {"n": 12345678901234567890}}]}`,
		"backups:\n  - flags: {n: 12345678901234567890}\n",
	} {
		config := mustConfig(t, content)
		commands, err := config.Commands(mustRestic(t))
		require.NoError(t, err, content)
		require.Equal(t, []string{"restic", "backup", "--n", "12345678901234567890"}, commands[0].Args, content)
	}
}

func TestInvalidEnvName(t *testing.T) {
	_, err := fromString(`{"backups": [{"env": {"X; touch /tmp/x; Y": "1"}, "args": ["/home"]}]}`)
	require.True(t, errors.Is(err, schema.ErrType))
	require.Contains(t, err.Error(), "backups[0].env")
}

func TestYAMLMergeKeys(t *testing.T) {
	config := mustConfig(t, `
presets:
  cloud: &cloud
    env: {RESTIC_REPOSITORY: "b2:bucket:/"}
    flags: {host: laptop}
backups:
  - <<: *cloud
    flags: {tag: home}
    args: [~/Documents]
`)
	job := config.Backups[0]
	require.Equal(t, "b2:bucket:/", job.Env["RESTIC_REPOSITORY"])
	tokens, err := job.Expand()
	require.NoError(t, err)
	require.Equal(t, []string{"--tag", "home", "~/Documents"}, tokens)
}
