// Package config decodes configuration files for sigil and sigild.
//
// The format is chosen by extension: .toml, .yaml/.yml or .json. Anything
// else is tried as TOML, then YAML.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DecodeFile decodes the file at path into out, which should already hold
// defaults. It reports false, with no error, if the file does not exist.
func DecodeFile(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, filepath.Ext(path), out); err != nil {
		return false, err
	}
	return true, nil
}

// Decode decodes data in the format named by ext into out.
func Decode(data []byte, ext string, out any) error {
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), out); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), out); err == nil {
			return nil
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse config: unrecognised format")
		}
	}
	return nil
}
