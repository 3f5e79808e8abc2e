// Package document reads build descriptor documents from YAML or JSON.
package document

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
)

// Extensions lists the file extensions ReadFile accepts.
var Extensions = []string{".yaml", ".yml", ".json"}

// ParseError is returned when a document is not a well-formed mapping.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		if e.Line > 0 {
			return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// Supported reports whether path has a descriptor extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadFile reads the descriptor document at path.
func ReadFile(path string) (descriptor.Document, error) {
	if !Supported(path) {
		return nil, &ParseError{
			File:    path,
			Message: fmt.Sprintf("unsupported extension %q, expected one of: %s", filepath.Ext(path), strings.Join(Extensions, ", ")),
		}
	}
	return load(path, file.Provider(path))
}

// Read reads a descriptor document from r. name is used in errors.
func Read(r io.Reader, name string) (descriptor.Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return load(name, bytesProvider(b))
}

func load(name string, p koanf.Provider) (descriptor.Document, error) {
	raw, err := p.ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if err := checkMapping(name, raw); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(p, kyaml.Parser()); err != nil {
		return nil, parseError(name, err)
	}
	return descriptor.Document(k.Raw()), nil
}

// checkMapping rejects documents whose top level is not a mapping, with
// the line of the offending node.
func checkMapping(name string, raw []byte) error {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return parseError(name, err)
	}
	if len(root.Content) == 0 {
		return nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return &ParseError{File: name, Line: top.Line, Message: fmt.Sprintf("top level must be a mapping, got %s", kindName(top.Kind))}
	}
	seen := make(map[string]int, len(top.Content)/2)
	for i := 0; i+1 < len(top.Content); i += 2 {
		key := top.Content[i]
		if first, ok := seen[key.Value]; ok {
			return &ParseError{File: name, Line: key.Line, Message: fmt.Sprintf("key %q already defined at line %d", key.Value, first)}
		}
		seen[key.Value] = key.Line
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

var lineRE = regexp.MustCompile(`line (\d+)`)

func parseError(name string, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe
	}
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	line := 0
	if m := lineRE.FindStringSubmatch(msg); m != nil {
		line, _ = strconv.Atoi(m[1])
		msg = strings.TrimSpace(strings.TrimPrefix(lineRE.ReplaceAllString(msg, ""), ":"))
	}
	return &ParseError{File: name, Line: line, Message: msg}
}

// bytesProvider serves an in-memory document to koanf.
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) { return b, nil }

func (b bytesProvider) Read() (map[string]any, error) {
	return nil, errors.New("bytes provider does not support Read")
}
