package schema

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// CommentPrefix marks keys that are ignored by every check.
const CommentPrefix = "//"

var (
	ErrType           = errors.New("type error")
	ErrUnsupportedKey = errors.New("unsupported key")
)

type (
	Kind int

	// Schema maps each recognized key to the kind its value must have.
	Schema map[string]Kind
)

const (
	String Kind = iota + 1
	Int
	Bool
	Map
	List
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "integer"
	case Bool:
		return "boolean"
	case Map:
		return "mapping"
	case List:
		return "list"
	default:
		return "<invalid kind>"
	}
}

// Matches reports whether n holds a value of kind k. Scalars are compared
// by their resolved tag, so "5" is not an integer and 5 is not a string.
func (k Kind) Matches(n *yaml.Node) bool {
	n = Resolve(n)
	if n == nil {
		return false
	}
	switch k {
	case Map:
		return n.Kind == yaml.MappingNode
	case List:
		return n.Kind == yaml.SequenceNode
	case String:
		return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
	case Int:
		return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!int"
	case Bool:
		return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!bool"
	}
	return false
}

// Extend returns a copy of s with the keys of other added.
func (s Schema) Extend(other Schema) Schema {
	extended := make(Schema, len(s)+len(other))
	for key, kind := range s {
		extended[key] = kind
	}
	for key, kind := range other {
		extended[key] = kind
	}
	return extended
}

func IsComment(key string) bool { return strings.HasPrefix(key, CommentPrefix) }

// Check verifies that n is a mapping whose recognized keys hold values of
// the kinds listed in s. Unrecognized keys fail with ErrUnsupportedKey when
// inclusive is set, comment keys excepted.
func Check(n *yaml.Node, path string, s Schema, inclusive bool) error {
	n = Resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return Typef("%s: expected a mapping, got %s", where(path), KindOf(n))
	}

	entries, err := pairs(n)
	if err != nil {
		return errors.Wrapf(err, "%s", where(path))
	}
	for _, e := range entries {
		key, value := e.key, e.value
		if kind, ok := s[key]; ok {
			if !kind.Matches(value) {
				return Typef("%s: '%s' must be a %s, got %s", where(path), key, kind, KindOf(value))
			}
			continue
		}
		if IsComment(key) || !inclusive {
			continue
		}
		err := errors.Newf("%s: '%s' is an unsupported key", where(path), key)
		err = errors.WithHintf(err, "supported keys here are %s; prefix a key with %q to keep it as a comment", s.keys(), CommentPrefix)
		return errors.Mark(err, ErrUnsupportedKey)
	}
	return nil
}

// Expect checks a single value, for elements of lists and mappings.
func Expect(n *yaml.Node, path string, k Kind) error {
	if !k.Matches(n) {
		return Typef("%s: must be a %s, got %s", where(path), k, KindOf(n))
	}
	return nil
}

// Typef builds an error that matches ErrType.
func Typef(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrType)
}

func (s Schema) keys() string {
	names := make([]string, 0, len(s))
	for _, key := range sortedKeys(s) {
		names = append(names, fmt.Sprintf("'%s'", key))
	}
	return strings.Join(names, ", ")
}

func where(path string) string {
	if path == "" {
		return "document"
	}
	return path
}
