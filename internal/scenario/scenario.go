// Package scenario loads inference scenarios from YAML files and runs them.
//
// A scenario declares implicit conversions, type aliases, overloads given by
// their signature, and functions given by the bounds and calls of their body.
// Functions are inferred in order and each one is registered as an overload
// for the functions which follow it.
package scenario

import (
	"bytes"
	"io"
	"io/fs"

	"github.com/TinsPHP/tins-symbols-sub001/internal/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var logger = log.DefaultLogger.With("section", "scenario")

type File struct {
	Conversions []Conversion `yaml:"conversions"`
	// Aliases maps an alias name to a type expression, in declaration order
	Aliases   []Alias    `yaml:"aliases"`
	Overloads []Overload `yaml:"overloads"`
	Functions []Function `yaml:"functions"`
}

type Conversion struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type Alias struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Overload is a function known by its signature. Parameters and Return are
// type expressions, or the name of one of the TypeParameters.
type Overload struct {
	Name           string          `yaml:"name"`
	TypeParameters []TypeParameter `yaml:"typeParameters"`
	Parameters     []string        `yaml:"parameters"`
	Return         string          `yaml:"return"`
}

type TypeParameter struct {
	Name  string `yaml:"name"`
	Lower string `yaml:"lower"`
	Upper string `yaml:"upper"`
}

// Function is a function whose signature is inferred from its body
type Function struct {
	Name       string   `yaml:"name"`
	Parameters []string `yaml:"parameters"`
	// Body holds one bound or call per entry, see statement
	Body   []string     `yaml:"body"`
	Expect *Expectation `yaml:"expect"`
}

// Expectation is checked against the Result of a function. Empty fields are
// not checked.
type Expectation struct {
	Signature      string   `yaml:"signature"`
	TypeParameters []string `yaml:"typeParameters"`
	Bindings       string   `yaml:"bindings"`
	// Error is matched as a substring of the reported error
	Error string `yaml:"error"`
}

// Parse decodes a scenario, rejecting unknown fields
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	f := &File{}
	if err := dec.Decode(f); err != nil {
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		return nil, errors.Wrap(err, "failed to decode scenario")
	}
	return f, nil
}

// Load reads and parses the scenario at path in fsys
func Load(fsys fs.FS, path string) (*File, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read scenario %s", path)
	}
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}
	logger.Info("loaded scenario", "path", path, "functions", len(f.Functions), "overloads", len(f.Overloads))
	return f, nil
}
