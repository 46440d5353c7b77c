package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File is the decoded form of one scenario file. TOML and YAML share the
// schema.
type File struct {
	Top       string        `toml:"top" yaml:"top"`
	Metaclass string        `toml:"metaclass" yaml:"metaclass"`
	MaxDepth  int           `toml:"max_depth" yaml:"max_depth"`
	Classes   []ClassDecl   `toml:"class" yaml:"class"`
	TypeVars  []TypeVarDecl `toml:"typevar" yaml:"typevar"`
	Cases     []CaseDecl    `toml:"case" yaml:"case"`
}

// ClassDecl declares a class. Params name type variables: a name declared
// under [[typevar]] reuses that variable, any other name introduces a fresh
// unrestricted one local to the class.
type ClassDecl struct {
	Name   string   `toml:"name" yaml:"name"`
	Params []string `toml:"params" yaml:"params"`
	Bases  []string `toml:"bases" yaml:"bases"`
}

type TypeVarDecl struct {
	Name        string   `toml:"name" yaml:"name"`
	Bound       string   `toml:"bound" yaml:"bound"`
	Constraints []string `toml:"constraints" yaml:"constraints"`
	Variance    string   `toml:"variance" yaml:"variance"`
}

// CaseDecl is one expectation. Exactly one of Actual, Bindings and Call is
// set.
type CaseDecl struct {
	Name     string            `toml:"name" yaml:"name"`
	Actual   string            `toml:"actual" yaml:"actual"`
	Bindings []string          `toml:"bindings" yaml:"bindings"`
	Formal   string            `toml:"formal" yaml:"formal"`
	Call     *CallDecl         `toml:"call" yaml:"call"`
	Args     []string          `toml:"args" yaml:"args"`
	Expect   string            `toml:"expect" yaml:"expect"`
	Kind     string            `toml:"kind" yaml:"kind"`
	Resolved map[string]string `toml:"resolved" yaml:"resolved"`
	Returns  string            `toml:"returns" yaml:"returns"`
}

// CallDecl is a formal signature for a call case. Required defaults to the
// number of params.
type CallDecl struct {
	Name     string   `toml:"name" yaml:"name"`
	Params   []string `toml:"params" yaml:"params"`
	Required *int     `toml:"required" yaml:"required"`
	Variadic bool     `toml:"variadic" yaml:"variadic"`
	Result   string   `toml:"result" yaml:"result"`
}

// Format is the encoding of a scenario file.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

// ErrUnsupportedFormat is returned for paths that are neither TOML nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported scenario extension (expected .toml, .yaml or .yml)")

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return FormatTOML, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
}

// ReadFile reads and decodes a scenario file.
func ReadFile(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, format)
}

// Decode parses data. Keys outside the schema are an error in both formats.
func Decode(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		meta, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
	}
	return &f, nil
}
