package curriculum

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCurriculum []byte

// document is the on-disk curriculum layout.
type document struct {
	Profiles []MasteryProfile `yaml:"profiles"`
	Modules  []Module         `yaml:"modules"`
	Atoms    []Atom           `yaml:"atoms"`
}

// Parse decodes and validates a YAML curriculum document.
func Parse(data []byte) (*Graph, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse curriculum: %w", err)
	}
	return New(doc.Modules, doc.Atoms, doc.Profiles)
}

// Load reads a curriculum from a YAML file.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curriculum %s: %w", path, err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Default returns the curriculum compiled into the binary.
func Default() *Graph {
	g, err := Parse(defaultCurriculum)
	if err != nil {
		panic(fmt.Sprintf("embedded curriculum is invalid: %v", err))
	}
	return g
}
