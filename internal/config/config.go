// SPDX-License-Identifier: Apache-2.0

// Package config loads the reference catalog and label dictionary that the
// extraction engine is built from. A configuration is validated against an
// embedded CUE schema, decoded once and never modified afterwards.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/vitorsmc/analise-solo-app/internal/soil"
)

//go:embed default.yaml
var defaultDocument []byte

//go:embed schema.cue
var schemaSource string

type labelEntry struct {
	Label string `yaml:"label"`
	Code  string `yaml:"code"`
}

type document struct {
	IDDigits   int                           `yaml:"id_digits"`
	References map[string]map[string]float64 `yaml:"references"`
	Labels     []labelEntry                  `yaml:"labels"`
	Exclusions []string                      `yaml:"exclusions"`
}

// Config is the validated engine configuration.
type Config struct {
	name     string
	source   []byte
	idDigits int
	catalog  *soil.Catalog
	dict     *soil.Dictionary
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	return Parse("default.yaml", defaultDocument)
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(path, data)
}

// LoadOrDefault loads path, or the built-in configuration when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Parse validates and decodes a YAML configuration document. name is only
// used in error messages.
func Parse(name string, data []byte) (*Config, error) {
	if err := validate(name, data); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", name, err)
	}

	targets := make(map[soil.DepthClass]map[soil.ParameterCode]float64, len(doc.References))
	for rawDepth, vector := range doc.References {
		depth, ok := soil.ParseDepthClass(rawDepth)
		if !ok {
			return nil, fmt.Errorf("config %s: unknown depth class %q", name, rawDepth)
		}
		targets[depth] = make(map[soil.ParameterCode]float64, len(vector))
		for rawCode, v := range vector {
			code, ok := soil.ParseParameterCode(rawCode)
			if !ok {
				return nil, fmt.Errorf("config %s: unknown parameter code %q", name, rawCode)
			}
			targets[depth][code] = v
		}
	}
	catalog, err := soil.NewCatalog(targets)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}

	rules := make([]soil.LabelRule, 0, len(doc.Labels))
	for _, l := range doc.Labels {
		code, ok := soil.ParseParameterCode(l.Code)
		if !ok {
			return nil, fmt.Errorf("config %s: label %q has unknown code %q", name, l.Label, l.Code)
		}
		rules = append(rules, soil.LabelRule{Fragment: l.Label, Code: code})
	}
	dict, err := soil.NewDictionary(rules, doc.Exclusions)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}

	return &Config{
		name:     name,
		source:   data,
		idDigits: doc.IDDigits,
		catalog:  catalog,
		dict:     dict,
	}, nil
}

// validate unifies the document with the #Config definition of the schema.
func validate(name string, data []byte) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}

	file, err := cueyaml.Extract(name, data)
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", name, err)
	}
	value := ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return fmt.Errorf("failed to build config %s: %w", name, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config %s: %w", name, err)
	}
	return nil
}

// Name is the file the configuration was read from.
func (c *Config) Name() string {
	return c.name
}

// Source returns a copy of the YAML document the configuration was built from.
func (c *Config) Source() []byte {
	return append([]byte(nil), c.source...)
}

// IDDigits is the required sample id length; 0 accepts any digit run.
func (c *Config) IDDigits() int {
	return c.idDigits
}

func (c *Config) Catalog() *soil.Catalog {
	return c.catalog
}

func (c *Config) Dictionary() *soil.Dictionary {
	return c.dict
}

// WithIDDigits returns a copy of c requiring sample ids of n digits.
func (c *Config) WithIDDigits(n int) (*Config, error) {
	if n < 0 {
		return nil, fmt.Errorf("id digit length must not be negative, got %d", n)
	}
	clone := *c
	clone.idDigits = n
	return &clone, nil
}

// NewEngine builds an extraction engine from the configuration.
func (c *Config) NewEngine(logger *zap.Logger) (*soil.Engine, error) {
	ids, err := soil.NewIdentifierExtractor(c.idDigits)
	if err != nil {
		return nil, err
	}
	return soil.NewEngine(ids, c.dict, soil.WithLogger(logger)), nil
}
