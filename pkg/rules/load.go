package rules

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Format names a rule file encoding.
type Format string

const (
	FormatTOML  Format = "toml"
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatKiCad Format = "kicad_dru"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".kicad_dru":
		return FormatKiCad, nil
	}
	return "", fmt.Errorf("unsupported rule file %q", filepath.Base(path))
}

// Load reads a rule file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a rule file over c.
func (c *Config) LoadFile(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read rules: %w", err)
	}

	if err := c.Read(bytes.NewReader(data), format); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

// Read decodes one document, checks it against the schema, applies it and
// validates the resulting configuration.
func (c *Config) Read(r io.Reader, format Format) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read rules: %w", err)
	}

	doc, err := decode(data, format)
	if err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
		return err
	}

	next := *c
	if err := next.Apply(doc); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func decode(data []byte, format Format) (map[string]any, error) {
	doc := map[string]any{}

	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode json: %w", err)
		}
	case FormatKiCad:
		return decodeDRU(string(data))
	default:
		return nil, fmt.Errorf("unsupported rule format %q", format)
	}

	return doc, nil
}

func validateDocument(doc map[string]any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate rules: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]error, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, errors.New(desc.String()))
	}
	return fmt.Errorf("invalid rules: %w", errors.Join(errs...))
}

// Encode writes c as a flat document with lengths in their display units.
func (c Config) Encode(w io.Writer, format Format) error {
	doc := make(map[string]any, len(fields))
	for _, f := range fields {
		doc[f.key] = f.value(&c)
	}

	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	return fmt.Errorf("cannot encode rules as %q", format)
}
