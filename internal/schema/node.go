package schema

import (
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Resolve unwraps document nodes and follows aliases.
func Resolve(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch {
		case n.Kind == yaml.AliasNode:
			n = n.Alias
		case n.Kind == yaml.DocumentNode && len(n.Content) == 1:
			n = n.Content[0]
		default:
			return n
		}
	}
	return nil
}

// KindOf describes the kind of n for error messages.
func KindOf(n *yaml.Node) string {
	n = Resolve(n)
	if n == nil {
		return "nothing"
	}
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!str":
			return "string"
		case "!!int":
			return "integer"
		case "!!bool":
			return "boolean"
		case "!!float":
			return "float"
		case "!!null":
			return "null"
		}
		return n.ShortTag()
	}
	return "unknown"
}

// Lookup returns the value stored under key, or nil. On duplicate keys the
// last one wins.
func Lookup(n *yaml.Node, key string) *yaml.Node {
	n = Resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	entries, err := pairs(n)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if e.key == key {
			return Resolve(e.value)
		}
	}
	return nil
}

// Each calls fn for every key of a mapping in document order, skipping
// comment keys. n must already be known to be a mapping.
func Each(n *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	entries, err := pairs(Resolve(n))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if IsComment(e.key) {
			continue
		}
		err := fn(e.key, Resolve(e.value))
		if err != nil {
			return err
		}
	}
	return nil
}

type pair struct {
	key   string
	value *yaml.Node
}

// pairs lists the entries of mapping n with YAML merge keys (<<) expanded.
// Every key appears once, at its first position. Keys written in n win over
// merged ones, and earlier merge sources win over later ones.
func pairs(n *yaml.Node) ([]pair, error) {
	var entries []pair
	index := make(map[string]int)
	put := func(key string, value *yaml.Node, overwrite bool) {
		if i, ok := index[key]; ok {
			if overwrite {
				entries[i].value = value
			}
			return
		}
		index[key] = len(entries)
		entries = append(entries, pair{key: key, value: value})
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		if !isMerge(n.Content[i]) {
			continue
		}
		sources, err := mergeSources(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		for _, source := range sources {
			merged, err := pairs(source)
			if err != nil {
				return nil, err
			}
			for _, e := range merged {
				put(e.key, e.value, false)
			}
		}
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if isMerge(n.Content[i]) {
			continue
		}
		put(n.Content[i].Value, n.Content[i+1], true)
	}
	return entries, nil
}

func isMerge(key *yaml.Node) bool {
	return key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge"
}

func mergeSources(n *yaml.Node) ([]*yaml.Node, error) {
	n = Resolve(n)
	if n != nil && n.Kind == yaml.MappingNode {
		return []*yaml.Node{n}, nil
	}
	if n != nil && n.Kind == yaml.SequenceNode {
		sources := make([]*yaml.Node, 0, len(n.Content))
		for _, item := range n.Content {
			item = Resolve(item)
			if item == nil || item.Kind != yaml.MappingNode {
				return nil, Typef("'<<' must merge a mapping or a list of mappings, got a list holding %s", KindOf(item))
			}
			sources = append(sources, item)
		}
		return sources, nil
	}
	return nil, Typef("'<<' must merge a mapping or a list of mappings, got %s", KindOf(n))
}

// Items returns the elements of a sequence, aliases resolved.
func Items(n *yaml.Node) []*yaml.Node {
	n = Resolve(n)
	items := make([]*yaml.Node, 0, len(n.Content))
	for _, item := range n.Content {
		items = append(items, Resolve(item))
	}
	return items
}

func Join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func Index(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func sortedKeys(s Schema) []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
