package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "REFLECTCSV_"
)

// Load builds the configuration from defaults, the options file at path (if
// path is non-empty) and environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (REFLECTCSV_PARSING_MISSING_TYPE, REFLECTCSV_LOGGING_LEVEL, etc.)
//  2. Options file (.yaml, .yml or .toml)
//  3. Hardcoded defaults
//
// # Environment Variable Mapping
//
// The prefix is dropped and the rest split on the first underscore:
//
//	REFLECTCSV_PARSING_TYPE_KEYS  -> parsing.type_keys
//	REFLECTCSV_OUTPUT_DELIMITER   -> output.delimiter
//	REFLECTCSV_ANONYMIZE_SALT     -> anonymize.salt
//
// List values are comma separated.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readOptionsFile(path)
		if err != nil {
			return nil, err
		}
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		// Use rawbytes provider to avoid re-opening the file
		if err := k.Load(rawbytes.Provider(content), parser); err != nil {
			return nil, fmt.Errorf("failed to load options file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Unmarshal over the defaults so absent keys keep their default values
	cfg := base()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// envKey maps REFLECTCSV_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// readOptionsFile opens the file once and validates it through the open
// descriptor before reading.
func readOptionsFile(path string) ([]byte, error) {
	f, err := os.Open(path) // #nosec G304 -- options file is a user-provided path
	if err != nil {
		return nil, fmt.Errorf("failed to open options file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat options file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("options file %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("options file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}
	return content, nil
}

// parserFor selects a koanf parser from the file extension.
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return TOMLParser(), nil
	default:
		return nil, fmt.Errorf("unsupported options file extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// tomlParser adapts BurntSushi/toml to koanf.Parser.
type tomlParser struct{}

// TOMLParser returns a koanf.Parser for TOML documents.
func TOMLParser() koanf.Parser {
	return tomlParser{}
}

func (tomlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return out, nil
}

func (tomlParser) Marshal(o map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
