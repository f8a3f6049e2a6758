// Package document reads prestic documents. JSON, JSONC and YAML documents
// are all decoded into a yaml.Node tree, which keeps mapping order and the
// resolved kind of every scalar.
package document

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrMalformed = errors.New("malformed document")

type Format int

const (
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "<invalid format>"
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return FormatJSON
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// Parse decodes data into the root node of the document. Comments and
// trailing commas are allowed in JSON input.
func Parse(data []byte, format Format) (*yaml.Node, error) {
	auto := format == FormatAuto
	if auto {
		format = sniff(data)
	}

	var (
		root *yaml.Node
		err  error
	)
	switch format {
	case FormatJSON:
		root, err = decodeJSON(jsonc.ToJSON(data))
		// Flow-style YAML looks like JSON at first glance.
		if err != nil && auto {
			if yamlRoot, yamlErr := decodeYAML(data); yamlErr == nil {
				root, err = yamlRoot, nil
			}
		}
	case FormatYAML:
		root, err = decodeYAML(data)
	default:
		return nil, errors.Newf("unknown document format: %v", format)
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "%s document", format), ErrMalformed)
	}
	return root, nil
}

// Read reads and parses the document at path. "-" reads stdin.
func Read(path string, log *zap.Logger) (*yaml.Node, error) {
	var (
		data   []byte
		err    error
		format = FormatFromPath(path)
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	log.Debug("reading document",
		zap.String("path", path),
		zap.Int("size", len(data)),
		zap.Stringer("format", format),
	)

	root, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return root, nil
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(jsonc.ToJSON(data), " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

func decodeYAML(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}
	return doc.Content[0], nil
}
