package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOptions(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeOptions(t, "options.yaml", `parsing:
  type_keys: [kind]
  missing_type: skip
  attributes: false
  column_order: alphabetical
output:
  delimiter: ";"
  crlf: true
anonymize:
  enabled: true
  salt: pepper
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"kind"}, cfg.Parsing.TypeKeys)
	assert.Equal(t, "skip", cfg.Parsing.MissingType)
	assert.False(t, cfg.Parsing.Attributes)
	assert.Equal(t, "alphabetical", cfg.Parsing.ColumnOrder)
	assert.Equal(t, ";", cfg.Output.Delimiter)
	assert.True(t, cfg.Output.CRLF)
	assert.True(t, cfg.Anonymize.Enabled)
	assert.Equal(t, "pepper", cfg.Anonymize.Salt)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched keys keep their defaults
	assert.Equal(t, "auto", cfg.Parsing.Shape)
	assert.Equal(t, "json", cfg.Parsing.Nested)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_TOML(t *testing.T) {
	path := writeOptions(t, "options.toml", `[parsing]
nested = "flatten"
date_epoch = "reference"
timezone = "UTC"
type_keys = ["template", "type"]

[output]
delimiter = "|"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "flatten", cfg.Parsing.Nested)
	assert.Equal(t, "reference", cfg.Parsing.DateEpoch)
	assert.Equal(t, "UTC", cfg.Parsing.Timezone)
	assert.Equal(t, []string{"template", "type"}, cfg.Parsing.TypeKeys)
	assert.Equal(t, "|", cfg.Output.Delimiter)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	path := writeOptions(t, "options.yml", `parsing:
  missing_type: skip
logging:
  level: debug
`)
	t.Setenv("REFLECTCSV_PARSING_MISSING_TYPE", "strict")
	t.Setenv("REFLECTCSV_PARSING_TYPE_KEYS", "kind,label")
	t.Setenv("REFLECTCSV_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "strict", cfg.Parsing.MissingType)
	assert.Equal(t, []string{"kind", "label"}, cfg.Parsing.TypeKeys)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open options file")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeOptions(t, "options.ini", "a=b")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported options file extension")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeOptions(t, "options.yaml", "parsing: [unclosed")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load options file")
	})

	t.Run("invalid toml", func(t *testing.T) {
		path := writeOptions(t, "options.toml", "[parsing\nshape=")
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("invalid value", func(t *testing.T) {
		path := writeOptions(t, "options.yaml", "parsing:\n  nested: deep\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config validation failed")
	})

	t.Run("file too large", func(t *testing.T) {
		path := writeOptions(t, "options.yaml", "# "+strings.Repeat("x", maxConfigFileSize))
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})

	t.Run("directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "opts.yaml")
		require.NoError(t, os.Mkdir(dir, 0700))
		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a directory")
	})
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"REFLECTCSV_PARSING_TYPE_KEYS", "parsing.type_keys"},
		{"REFLECTCSV_OUTPUT_DELIMITER", "output.delimiter"},
		{"REFLECTCSV_ANONYMIZE_NAN", "anonymize.nan"},
		{"REFLECTCSV_VERBOSE", "verbose"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, envKey(tt.input))
		})
	}
}
