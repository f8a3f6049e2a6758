package preset

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrInvalidFlagValue = errors.New("invalid flag value")

type ValueKind int

const (
	KindBool ValueKind = iota + 1
	KindInt
	KindText
)

// Value is a flag value: a boolean, an integer or a string. Integers are
// kept as decimal text and have no size limit.
type Value struct {
	kind ValueKind
	b    bool
	s    string
}

func Bool(b bool) Value   { return Value{kind: KindBool, b: b} }
func Int(i int64) Value   { return Value{kind: KindInt, s: strconv.FormatInt(i, 10)} }
func Text(s string) Value { return Value{kind: KindText, s: s} }

// ParseInt accepts an integer of any size in decimal, or with a 0x, 0o, 0b
// or 0 prefix, and underscores between digits.
func ParseInt(s string) (Value, bool) {
	i, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return Value{}, false
	}
	return Value{kind: KindInt, s: i.String()}, true
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt, KindText:
		return v.s
	default:
		return "<invalid value>"
	}
}

type (
	Flag struct {
		Name  string
		Value Value
	}

	// Flags keeps flags in insertion order. A flag name appears at most once.
	Flags []Flag
)

// Tokens expands the flag into command line tokens. Names without a leading
// hyphen get "--". true emits the name alone; false is never valid.
func (f Flag) Tokens() ([]string, error) {
	name := f.Name
	if !strings.HasPrefix(name, "-") {
		name = "--" + name
	}

	switch f.Value.kind {
	case KindBool:
		if f.Value.b {
			return []string{name}, nil
		}
		err := errors.Newf("flag '%s': invalid flag value: false", f.Name)
		err = errors.WithHint(err, "remove the flag instead of setting it to false")
		return nil, errors.Mark(err, ErrInvalidFlagValue)
	case KindInt, KindText:
		return []string{name, f.Value.String()}, nil
	}
	return nil, errors.Mark(errors.Newf("flag '%s': invalid flag value", f.Name), ErrInvalidFlagValue)
}

func (f Flags) get(name string) (Value, bool) {
	for _, flag := range f {
		if flag.Name == name {
			return flag.Value, true
		}
	}
	return Value{}, false
}

// set overwrites the value of an existing flag in place, keeping its
// position, or appends a new one. The receiver must not be shared.
func (f Flags) set(name string, value Value) Flags {
	for i := range f {
		if f[i].Name == name {
			f[i].Value = value
			return f
		}
	}
	return append(f, Flag{Name: name, Value: value})
}
