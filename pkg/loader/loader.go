// Package loader reads and writes workflow definitions as YAML or JSON files.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/petrijr/workflows/pkg/api"
)

// Format names a definition file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var (
	// ErrEmptyDefinition is returned for input without a workflow id.
	ErrEmptyDefinition = errors.New("empty workflow definition")

	// ErrUnknownFormat is returned for an unsupported format or file extension.
	ErrUnknownFormat = errors.New("unknown definition format")
)

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// LoadFile reads the definition stored at path.
func LoadFile(path string) (api.Definition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return api.Definition{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return api.Definition{}, fmt.Errorf("reading definition %s: %w", path, err)
	}
	def, err := Load(data, format)
	if err != nil {
		return api.Definition{}, fmt.Errorf("reading definition %s: %w", path, err)
	}
	return def, nil
}

// Load decodes a definition. Unknown fields are rejected.
func Load(data []byte, format Format) (api.Definition, error) {
	var def api.Definition
	if len(bytes.TrimSpace(data)) == 0 {
		return def, ErrEmptyDefinition
	}

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil && !errors.Is(err, io.EOF) {
			return api.Definition{}, fmt.Errorf("decoding yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&def); err != nil {
			return api.Definition{}, fmt.Errorf("decoding json: %w", err)
		}
	default:
		return api.Definition{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if def.ID == "" {
		return api.Definition{}, ErrEmptyDefinition
	}
	return def, nil
}

// Marshal encodes def in the given format.
func Marshal(def api.Definition, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(def); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(def, "", "  ")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile encodes def in the format implied by path and writes it there.
func WriteFile(path string, def api.Definition) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(def, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing definition %s: %w", path, err)
	}
	return nil
}
