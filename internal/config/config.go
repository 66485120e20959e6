// Package config provides layered option loading for reflectcsv.
//
// Options come from hardcoded defaults, an optional YAML or TOML options file
// and REFLECTCSV_* environment variables, in increasing precedence. Command
// line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/fyrsmithlabs/reflectcsv/internal/logging"
	"github.com/fyrsmithlabs/reflectcsv/internal/reflection"
)

// Config holds the complete reflectcsv configuration.
type Config struct {
	Parsing   ParsingConfig   `koanf:"parsing"`
	Output    OutputConfig    `koanf:"output"`
	Anonymize AnonymizeConfig `koanf:"anonymize"`
	Logging   logging.Config  `koanf:"logging"`
}

// ParsingConfig controls how the input document is read.
type ParsingConfig struct {
	Shape       string   `koanf:"shape"`        // auto, flat or export
	TypeKeys    []string `koanf:"type_keys"`    // keys searched for the type name
	RecordsKey  string   `koanf:"records_key"`  // record array key when the top level is an object
	MissingType string   `koanf:"missing_type"` // strict or skip
	Nested      string   `koanf:"nested"`       // json or flatten
	ColumnOrder string   `koanf:"column_order"` // first_seen or alphabetical
	Attributes  bool     `koanf:"attributes"`   // Timestamp/Date/ID/Notes columns for export records
	DateEpoch   string   `koanf:"date_epoch"`   // unix or reference
	DateLayout  string   `koanf:"date_layout"`  // Go time layout of the Date column
	Timezone    string   `koanf:"timezone"`     // IANA zone name, "Local" or "UTC"
}

// OutputConfig controls CSV encoding.
type OutputConfig struct {
	Delimiter string `koanf:"delimiter"`
	CRLF      bool   `koanf:"crlf"`
}

// AnonymizeConfig controls pseudonymization of written tables.
type AnonymizeConfig struct {
	Enabled bool   `koanf:"enabled"`
	NaN     bool   `koanf:"nan"`
	Salt    string `koanf:"salt"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := base()
	applyDefaults(cfg)
	return cfg
}

// base holds the scalar defaults. Load unmarshals over it.
func base() *Config {
	return &Config{
		Parsing: ParsingConfig{
			Shape:       string(reflection.ShapeAuto),
			RecordsKey:  reflection.DefaultRecordsKey,
			MissingType: string(reflection.MissingTypeStrict),
			Nested:      string(reflection.NestedJSON),
			ColumnOrder: string(reflection.OrderFirstSeen),
			Attributes:  true,
			DateEpoch:   string(reflection.EpochUnix),
			DateLayout:  reflection.DefaultDateLayout,
			Timezone:    "Local",
		},
		Output: OutputConfig{
			Delimiter: ",",
		},
		Logging: *logging.NewDefaultConfig(),
	}
}

// applyDefaults fills fields a file or environment left empty. Slices are
// defaulted here rather than in Default so a configured list replaces the
// default instead of merging into it.
func applyDefaults(cfg *Config) {
	if len(cfg.Parsing.TypeKeys) == 0 {
		cfg.Parsing.TypeKeys = []string{"type", "name"}
	}
	if cfg.Parsing.RecordsKey == "" {
		cfg.Parsing.RecordsKey = reflection.DefaultRecordsKey
	}
	if cfg.Parsing.DateLayout == "" {
		cfg.Parsing.DateLayout = reflection.DefaultDateLayout
	}
	if cfg.Parsing.Timezone == "" {
		cfg.Parsing.Timezone = "Local"
	}
	if cfg.Output.Delimiter == "" {
		cfg.Output.Delimiter = ","
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := c.ParseOptions(); err != nil {
		return err
	}
	if _, err := c.Output.Comma(); err != nil {
		return err
	}
	if c.Anonymize.NaN && !c.Anonymize.Enabled {
		return errors.New("anonymize.nan requires anonymize.enabled")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// ParseOptions converts the parsing section into reflection.Options.
func (c *Config) ParseOptions() (reflection.Options, error) {
	loc, err := loadLocation(c.Parsing.Timezone)
	if err != nil {
		return reflection.Options{}, err
	}
	opts := reflection.Options{
		Shape:       reflection.Shape(c.Parsing.Shape),
		TypeKeys:    append([]string(nil), c.Parsing.TypeKeys...),
		RecordsKey:  c.Parsing.RecordsKey,
		MissingType: reflection.MissingTypePolicy(c.Parsing.MissingType),
		Nested:      reflection.NestedMode(c.Parsing.Nested),
		ColumnOrder: reflection.ColumnOrder(c.Parsing.ColumnOrder),
		Attributes:  c.Parsing.Attributes,
		DateEpoch:   reflection.DateEpoch(c.Parsing.DateEpoch),
		DateLayout:  c.Parsing.DateLayout,
		Location:    loc,
	}
	if err := opts.Validate(); err != nil {
		return reflection.Options{}, fmt.Errorf("parsing: %w", err)
	}
	return opts, nil
}

// Comma returns the delimiter rune.
func (o OutputConfig) Comma() (rune, error) {
	if utf8.RuneCountInString(o.Delimiter) != 1 {
		return 0, fmt.Errorf("output delimiter must be a single character, got %q", o.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(o.Delimiter)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("output delimiter %q is not allowed", o.Delimiter)
	}
	return r, nil
}

func loadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "Local", "local":
		return time.Local, nil
	case "UTC", "utc":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("parsing: unknown timezone %q: %w", name, err)
	}
	return loc, nil
}
