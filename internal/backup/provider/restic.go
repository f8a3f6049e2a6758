package provider

import (
	"fmt"
	"os"

	"github.com/karagenc/prestic/internal/preset"
	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"
)

type Restic struct {
	tool      []string
	expandEnv bool
	lookupEnv func(string) (string, bool)
	log       *zap.Logger
}

// NewRestic builds a provider for tool, a command string such as "restic"
// or "sudo -E restic". When expandEnv is set, $VAR references in jobs are
// expanded against the job env and then the process environment.
func NewRestic(tool string, expandEnv bool, log *zap.Logger) (*Restic, error) {
	parser := shellwords.NewParser()
	parser.ParseEnv = true

	w, err := parser.Parse(tool)
	if err != nil {
		return nil, fmt.Errorf("tool `%s`: %v", tool, err)
	}
	if len(w) == 0 {
		return nil, fmt.Errorf("empty tool command")
	}

	return &Restic{
		tool:      w,
		expandEnv: expandEnv,
		lookupEnv: os.LookupEnv,
		log:       log,
	}, nil
}

func (r *Restic) Tool() []string { return append([]string(nil), r.tool...) }

func (r *Restic) Backup(p *preset.Preset) (*Command, error) { return r.command(KindBackup, p) }

func (r *Restic) Forget(p *preset.Preset) (*Command, error) { return r.command(KindForget, p) }

func (r *Restic) Prune(p *preset.Preset) (*Command, error) { return r.command(KindPrune, p) }

func (r *Restic) command(subcommand string, p *preset.Preset) (*Command, error) {
	if r.expandEnv {
		p = p.ExpandEnv(r.lookupEnv)
	}
	tokens, err := p.Expand()
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, len(r.tool)+1+len(tokens))
	args = append(args, r.tool...)
	args = append(args, subcommand)
	args = append(args, tokens...)

	env := make(map[string]string, len(p.Env))
	for k, v := range p.Env {
		env[k] = v
	}

	r.log.Debug("restic command",
		zap.Strings("command", args),
		zap.Any("env", env),
	)
	return &Command{Kind: subcommand, Env: env, Args: args}, nil
}
