package preset

import (
	"os"
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/karagenc/prestic/internal/schema"
	"gopkg.in/yaml.v3"
)

// Schema lists the keys a preset, or the preset part of a job, may hold.
var Schema = schema.Schema{
	"env":   schema.Map,
	"flags": schema.Map,
	"args":  schema.List,
}

var envName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidEnvName reports whether name can be assigned in a POSIX shell.
func ValidEnvName(name string) bool { return envName.MatchString(name) }

// Preset is a bundle of environment variables, flags and positional
// arguments. Presets are never modified after construction.
type Preset struct {
	Env   map[string]string
	Flags Flags
	Args  []string
}

func New(env map[string]string, flags Flags, args []string) *Preset {
	p := &Preset{
		Env:   make(map[string]string, len(env)),
		Flags: make(Flags, 0, len(flags)),
		Args:  append([]string(nil), args...),
	}
	for k, v := range env {
		p.Env[k] = v
	}
	for _, flag := range flags {
		p.Flags = p.Flags.set(flag.Name, flag.Value)
	}
	return p
}

// FromNode validates n against Schema plus extra and builds a preset from
// it. Keys listed only in extra are accepted but not interpreted.
func FromNode(n *yaml.Node, path string, extra schema.Schema) (*Preset, error) {
	s := Schema
	if len(extra) > 0 {
		s = Schema.Extend(extra)
	}
	err := schema.Check(n, path, s, true)
	if err != nil {
		return nil, err
	}

	p := &Preset{Env: make(map[string]string)}

	if env := schema.Lookup(n, "env"); env != nil {
		envPath := schema.Join(path, "env")
		err = schema.Each(env, func(key string, value *yaml.Node) error {
			if !ValidEnvName(key) {
				err := schema.Typef("%s: '%s' is not a valid environment variable name", envPath, key)
				return errors.WithHint(err, "names consist of letters, digits and underscores, and do not start with a digit")
			}
			err := schema.Expect(value, schema.Join(envPath, key), schema.String)
			if err != nil {
				return err
			}
			p.Env[key] = value.Value
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if flags := schema.Lookup(n, "flags"); flags != nil {
		flagsPath := schema.Join(path, "flags")
		err = schema.Each(flags, func(key string, value *yaml.Node) error {
			v, err := flagValue(value, schema.Join(flagsPath, key))
			if err != nil {
				return err
			}
			p.Flags = p.Flags.set(key, v)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if args := schema.Lookup(n, "args"); args != nil {
		argsPath := schema.Join(path, "args")
		for i, arg := range schema.Items(args) {
			err = schema.Expect(arg, schema.Index(argsPath, i), schema.String)
			if err != nil {
				return nil, err
			}
			p.Args = append(p.Args, arg.Value)
		}
	}
	return p, nil
}

func flagValue(n *yaml.Node, path string) (Value, error) {
	switch {
	case schema.Bool.Matches(n):
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, schema.Typef("%s: %v", path, err)
		}
		return Bool(b), nil
	case schema.Int.Matches(n):
		v, ok := ParseInt(n.Value)
		if !ok {
			return Value{}, errors.Mark(errors.Newf("%s: invalid flag value: %s", path, n.Value), ErrInvalidFlagValue)
		}
		return v, nil
	case schema.String.Matches(n):
		return Text(n.Value), nil
	case n.Tag == "!!float" && n.Style&yaml.TaggedStyle == 0:
		// yaml.v3 resolves plain integers beyond 64 bits as floats.
		if v, ok := ParseInt(n.Value); ok {
			return v, nil
		}
	}
	err := errors.Newf("%s: invalid flag value: %s is not a boolean, integer or string", path, schema.KindOf(n))
	return Value{}, errors.Mark(err, ErrInvalidFlagValue)
}

// MergedWith returns a new preset: p's env and flags overlaid by o's, and
// p's args followed by o's. A flag overridden by o keeps the position it
// had in p.
func (p *Preset) MergedWith(o *Preset) *Preset {
	merged := &Preset{
		Env:   make(map[string]string, len(p.Env)+len(o.Env)),
		Flags: make(Flags, 0, len(p.Flags)+len(o.Flags)),
		Args:  make([]string, 0, len(p.Args)+len(o.Args)),
	}
	for k, v := range p.Env {
		merged.Env[k] = v
	}
	for k, v := range o.Env {
		merged.Env[k] = v
	}

	merged.Flags = append(merged.Flags, p.Flags...)
	for _, flag := range o.Flags {
		merged.Flags = merged.Flags.set(flag.Name, flag.Value)
	}

	merged.Args = append(merged.Args, p.Args...)
	merged.Args = append(merged.Args, o.Args...)
	return merged
}

// Expand turns the flags, in order, and then the positional arguments into
// command line tokens.
func (p *Preset) Expand() ([]string, error) {
	tokens := make([]string, 0, 2*len(p.Flags)+len(p.Args))
	for _, flag := range p.Flags {
		t, err := flag.Tokens()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t...)
	}
	return append(tokens, p.Args...), nil
}

// ExpandEnv returns a copy with $VAR and ${VAR} references replaced. Env
// values are expanded through lookup only. Flag values and args see the
// expanded env of the preset first and fall back to lookup. Unset
// variables expand to the empty string.
func (p *Preset) ExpandEnv(lookup func(string) (string, bool)) *Preset {
	expanded := New(nil, nil, nil)

	outer := func(name string) string {
		v, _ := lookup(name)
		return v
	}
	for k, v := range p.Env {
		expanded.Env[k] = os.Expand(v, outer)
	}

	inner := func(name string) string {
		if v, ok := expanded.Env[name]; ok {
			return v
		}
		return outer(name)
	}
	for _, flag := range p.Flags {
		if flag.Value.kind == KindText {
			flag.Value = Text(os.Expand(flag.Value.s, inner))
		}
		expanded.Flags = append(expanded.Flags, flag)
	}
	for _, arg := range p.Args {
		expanded.Args = append(expanded.Args, os.Expand(arg, inner))
	}
	return expanded
}
