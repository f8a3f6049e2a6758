package provider

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/karagenc/prestic/internal/preset"
	"github.com/mattn/go-shellwords"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewResticTool(t *testing.T) {
	r, err := NewRestic("restic", false, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, []string{"restic"}, r.Tool())

	r, err = NewRestic(`sudo -E restic -o "b2.connections=10"`, false, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, []string{"sudo", "-E", "restic", "-o", "b2.connections=10"}, r.Tool())

	p := preset.New(nil, nil, []string{"/home"})
	cmd, err := r.Backup(p)
	require.NoError(t, err)
	require.Equal(t, []string{"sudo", "-E", "restic", "-o", "b2.connections=10", "backup", "/home"}, cmd.Args)

	_, err = NewRestic("   ", false, zap.NewNop())
	require.Error(t, err)
	_, err = NewRestic(`restic "unterminated`, false, zap.NewNop())
	require.Error(t, err)
}

func TestResticSubcommands(t *testing.T) {
	r, err := NewRestic("restic", false, zap.NewNop())
	require.NoError(t, err)

	p := preset.New(
		map[string]string{"RESTIC_REPOSITORY": "/srv/repo"},
		preset.Flags{{Name: "keep-daily", Value: preset.Int(7)}},
		nil,
	)

	for _, tc := range []struct {
		build func(*preset.Preset) (*Command, error)
		kind  string
	}{
		{r.Backup, KindBackup},
		{r.Forget, KindForget},
		{r.Prune, KindPrune},
	} {
		cmd, err := tc.build(p)
		require.NoError(t, err)
		require.Equal(t, tc.kind, cmd.Kind)
		require.Equal(t, []string{"restic", tc.kind, "--keep-daily", "7"}, cmd.Args)
		require.Equal(t, p.Env, cmd.Env)
	}

	_, err = r.Prune(preset.New(nil, preset.Flags{{Name: "x", Value: preset.Bool(false)}}, nil))
	require.True(t, errors.Is(err, preset.ErrInvalidFlagValue))
}

func TestResticExpandEnv(t *testing.T) {
	t.Setenv("PRESTIC_TEST_HOME", "/home/user")

	p := preset.New(
		map[string]string{"REPO": "/srv/${PRESTIC_TEST_HOME}"},
		preset.Flags{{Name: "repo", Value: preset.Text("$REPO")}},
		[]string{"$PRESTIC_TEST_HOME/Documents"},
	)

	literal, err := NewRestic("restic", false, zap.NewNop())
	require.NoError(t, err)
	cmd, err := literal.Backup(p)
	require.NoError(t, err)
	require.Equal(t, []string{"restic", "backup", "--repo", "$REPO", "$PRESTIC_TEST_HOME/Documents"}, cmd.Args)

	expanding, err := NewRestic("restic", true, zap.NewNop())
	require.NoError(t, err)
	cmd, err = expanding.Backup(p)
	require.NoError(t, err)
	require.Equal(t, []string{"restic", "backup", "--repo", "/srv//home/user", "/home/user/Documents"}, cmd.Args)
	require.Equal(t, "/srv//home/user", cmd.Env["REPO"])
}

func TestShellLine(t *testing.T) {
	cmd := &Command{
		Kind: KindBackup,
		Env:  map[string]string{"B2_ACCOUNT_KEY": "xyz", "B2_ACCOUNT_ID": "abc"},
		Args: []string{"restic", "backup", "--stdin", "--exclude", "xyz", "~/Documents", "My Pictures"},
	}

	line, err := cmd.ShellLine()
	require.NoError(t, err)
	require.Equal(t, `B2_ACCOUNT_ID=abc B2_ACCOUNT_KEY=xyz restic backup --stdin --exclude xyz '~/Documents' 'My Pictures'`, line)

	words, err := shellwords.Parse(line)
	require.NoError(t, err)
	require.Equal(t, append([]string{"B2_ACCOUNT_ID=abc", "B2_ACCOUNT_KEY=xyz"}, cmd.Args...), words)
}

func TestShellLineNoEnv(t *testing.T) {
	line, err := (&Command{Kind: KindPrune, Args: []string{"restic", "prune"}}).ShellLine()
	require.NoError(t, err)
	require.Equal(t, "restic prune", line)
}

func TestShellLineInvalidEnvName(t *testing.T) {
	cmd := &Command{
		Kind: KindBackup,
		Env:  map[string]string{"X; touch /tmp/x; Y": "1"},
		Args: []string{"restic", "backup", "/home"},
	}
	line, err := cmd.ShellLine()
	require.Error(t, err)
	require.Empty(t, line)
}

func TestEnviron(t *testing.T) {
	cmd := &Command{Env: map[string]string{"FOO": "BAR", "HOME": "/root"}}
	environ := cmd.Environ([]string{"PATH=/bin", "HOME=/home/user", "BROKEN", "EMPTY="})
	require.Equal(t, []string{"EMPTY=", "FOO=BAR", "HOME=/root", "PATH=/bin"}, environ)

	require.Equal(t, []string{"FOO=BAR", "HOME=/root"}, cmd.Environ(nil))
}
