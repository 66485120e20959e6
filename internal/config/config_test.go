package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/reflectcsv/internal/reflection"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "auto", cfg.Parsing.Shape)
	assert.Equal(t, []string{"type", "name"}, cfg.Parsing.TypeKeys)
	assert.Equal(t, "reflections", cfg.Parsing.RecordsKey)
	assert.Equal(t, "strict", cfg.Parsing.MissingType)
	assert.Equal(t, "json", cfg.Parsing.Nested)
	assert.Equal(t, "first_seen", cfg.Parsing.ColumnOrder)
	assert.True(t, cfg.Parsing.Attributes)
	assert.Equal(t, "unix", cfg.Parsing.DateEpoch)
	assert.Equal(t, "Local", cfg.Parsing.Timezone)
	assert.Equal(t, ",", cfg.Output.Delimiter)
	assert.False(t, cfg.Output.CRLF)
	assert.False(t, cfg.Anonymize.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestConfig_ParseOptions(t *testing.T) {
	cfg := Default()
	cfg.Parsing.MissingType = "skip"
	cfg.Parsing.Nested = "flatten"
	cfg.Parsing.ColumnOrder = "alphabetical"
	cfg.Parsing.DateEpoch = "reference"
	cfg.Parsing.Timezone = "UTC"

	opts, err := cfg.ParseOptions()
	require.NoError(t, err)

	assert.Equal(t, reflection.MissingTypeSkip, opts.MissingType)
	assert.Equal(t, reflection.NestedFlatten, opts.Nested)
	assert.Equal(t, reflection.OrderAlphabetical, opts.ColumnOrder)
	assert.Equal(t, reflection.EpochReference, opts.DateEpoch)
	assert.Equal(t, time.UTC, opts.Location)
	assert.Equal(t, []string{"type", "name"}, opts.TypeKeys)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown shape",
			mutate:  func(c *Config) { c.Parsing.Shape = "tree" },
			wantErr: "shape must be",
		},
		{
			name:    "unknown missing type policy",
			mutate:  func(c *Config) { c.Parsing.MissingType = "ignore" },
			wantErr: "missing_type must be",
		},
		{
			name:    "unknown timezone",
			mutate:  func(c *Config) { c.Parsing.Timezone = "Mars/Olympus_Mons" },
			wantErr: "unknown timezone",
		},
		{
			name:    "empty type key",
			mutate:  func(c *Config) { c.Parsing.TypeKeys = []string{""} },
			wantErr: "type key 0 is empty",
		},
		{
			name:    "multi character delimiter",
			mutate:  func(c *Config) { c.Output.Delimiter = ";;" },
			wantErr: "single character",
		},
		{
			name:    "quote delimiter",
			mutate:  func(c *Config) { c.Output.Delimiter = `"` },
			wantErr: "not allowed",
		},
		{
			name:    "nan without anonymize",
			mutate:  func(c *Config) { c.Anonymize.NaN = true },
			wantErr: "anonymize.nan requires anonymize.enabled",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOutputConfig_Comma(t *testing.T) {
	r, err := OutputConfig{Delimiter: "\t"}.Comma()
	require.NoError(t, err)
	assert.Equal(t, '\t', r)

	r, err = OutputConfig{Delimiter: ";"}.Comma()
	require.NoError(t, err)
	assert.Equal(t, ';', r)
}
