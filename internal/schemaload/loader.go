// Package schemaload reads wizard definitions from JSON or YAML files, checks
// them against the form JSON Schema and resolves their transform names.
package schemaload

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/garyjia/esign-wizard/internal/domain/form"
	"github.com/garyjia/esign-wizard/internal/transform"
)

//go:embed form.schema.json
var formSchemaJSON string

const formSchemaURL = "https://esign-wizard.local/schemas/form.schema.json"

// Format names the encoding of a schema document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Loader parses and validates wizard definitions
type Loader struct {
	registry *transform.Registry
	compiled *jsonschema.Schema
	logger   *zap.Logger
}

// NewLoader compiles the embedded form JSON Schema
func NewLoader(registry *transform.Registry, logger *zap.Logger) (*Loader, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(formSchemaURL, strings.NewReader(formSchemaJSON)); err != nil {
		return nil, fmt.Errorf("form schema load failed: %w", err)
	}
	compiled, err := c.Compile(formSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("form schema compile failed: %w", err)
	}

	return &Loader{
		registry: registry,
		compiled: compiled,
		logger:   logger,
	}, nil
}

// LoadFile reads a definition, picking the format from the file extension
func (l *Loader) LoadFile(path string) (*form.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form schema %s: %w", path, err)
	}

	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}

	schema, err := l.Load(data, format)
	if err != nil {
		return nil, fmt.Errorf("form schema %s: %w", path, err)
	}

	l.logger.Info("Loaded form schema",
		zap.String("path", path),
		zap.Int("steps", len(schema.Steps)),
		zap.Int("fields", len(schema.Fields())))

	return schema, nil
}

// Load parses data, validates its structure and resolves every transform name.
// A schema naming an unregistered formatter or mapper is rejected.
func (l *Loader) Load(data []byte, format Format) (*form.Schema, error) {
	jsonData, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", form.ErrInvalidSchema, err)
	}
	if err := l.compiled.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", form.ErrInvalidSchema, err)
	}

	var schema form.Schema
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	if err := dec.Decode(&schema); err != nil {
		return nil, fmt.Errorf("%w: %v", form.ErrInvalidSchema, err)
	}

	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if err := l.registry.Resolve(&schema); err != nil {
		formatters, mappers := l.registry.Names()
		l.logger.Warn("Form schema names unregistered transforms",
			zap.Strings("formatters", formatters),
			zap.Strings("mappers", mappers))
		return nil, err
	}

	return &schema, nil
}

// toJSON normalizes YAML documents into JSON so both formats share one path
func toJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return data, nil
	case FormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", form.ErrInvalidSchema, err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", form.ErrInvalidSchema, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported schema format %q", format)
	}
}
