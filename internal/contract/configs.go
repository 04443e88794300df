package contract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vintlab/vint/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 10
	MaxResultLimit     = 1000
	DefaultPrecision   = 1

	// DefaultThreshold is the outlier cutoff in standard deviations.
	DefaultThreshold = 3.0

	// DefaultWindow is the trailing window for level-outlier statistics.
	DefaultWindow = 12

	// DefaultMinWindow is the smallest window worth scoring.
	DefaultMinWindow = 2

	// DefaultMinRevisions gates revision-outlier verdicts.
	DefaultMinRevisions = 2

	// LagSketchAccuracy is the DDSketch relative accuracy for release-lag
	// percentiles.
	LagSketchAccuracy = 0.01
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a vint invocation.
// This struct is the final, validated config.
type Config struct {
	SeriesID        string
	ObservationDate time.Time // single observation for revision queries
	Range           schema.ObservationRange
	Vintage         time.Time // as-of date for point-in-time queries
	VintageB        time.Time // second vintage for compare
	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string

	Threshold    float64
	Window       int
	MinRevisions int
	Kind         string // outlier kind: "level", "revision" or "both"

	Source    string // "csv" or "http"
	SourceURL string // base URL for the HTTP adapter
	APIKey    string // Please use env var as this is plaintext
	CSVPath   string // triple file for the CSV adapter

	Frequency schema.Frequency // registration metadata for new series
	Units     string
	Title     string

	Backend   schema.DatabaseBackend
	DBConnect string // Please use env var as this is plaintext

	Width     int  // Terminal width override (0 = auto-detect)
	UseColors bool // Enable colored labels in table output
}

// Clone returns a copy of the config that callers can mutate per request.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config
// file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	SeriesIDStr        string
	ObservationDateStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Start      string `mapstructure:"start"`
	End        string `mapstructure:"end"`
	Vintage    string `mapstructure:"vintage"`
	Limit      int    `mapstructure:"limit"`
	Precision  int    `mapstructure:"precision"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Backend    string `mapstructure:"backend"`
	DBConnect  string `mapstructure:"db-connect"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`

	// --- Fields from ingestCmd.Flags() ---
	Source    string `mapstructure:"source"`
	SourceURL string `mapstructure:"source-url"`
	APIKey    string `mapstructure:"api-key"`
	CSVPath   string `mapstructure:"csv-path"`
	Frequency string `mapstructure:"frequency"`
	Units     string `mapstructure:"units"`
	Title     string `mapstructure:"title"`

	// --- Fields from outliersCmd.Flags() ---
	Threshold    float64 `mapstructure:"threshold"`
	Window       int     `mapstructure:"window"`
	MinRevisions int     `mapstructure:"min-revisions"`
	Kind         string  `mapstructure:"kind"`

	// --- Fields from compareCmd.Flags() ---
	VintageB string `mapstructure:"vintage-b"`
}

// ProcessAndValidate performs all complex parsing and validation on the raw
// inputs and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	cfg.SeriesID = strings.TrimSpace(input.SeriesIDStr)

	var err error
	if cfg.Range.Start, err = parseOptionalDate(input.Start); err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	if cfg.Range.End, err = parseOptionalDate(input.End); err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}
	if !cfg.Range.Start.IsZero() && !cfg.Range.End.IsZero() && cfg.Range.End.Before(cfg.Range.Start) {
		return schema.InvalidArgument("--end precedes --start")
	}
	if cfg.Vintage, err = parseOptionalDate(input.Vintage); err != nil {
		return fmt.Errorf("invalid --vintage: %w", err)
	}
	if cfg.VintageB, err = parseOptionalDate(input.VintageB); err != nil {
		return fmt.Errorf("invalid --vintage-b: %w", err)
	}
	if cfg.ObservationDate, err = parseOptionalDate(input.ObservationDateStr); err != nil {
		return fmt.Errorf("invalid observation date: %w", err)
	}

	if input.Limit < 1 || input.Limit > MaxResultLimit {
		return schema.InvalidArgument("--limit must be between 1 and %d", MaxResultLimit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 0 || input.Precision > 6 {
		return schema.InvalidArgument("--precision must be between 0 and 6")
	}
	cfg.Precision = input.Precision

	switch schema.OutputMode(input.Output) {
	case schema.TextOut, schema.CSVOut, schema.JSONOut, schema.ParquetOut:
		cfg.Output = schema.OutputMode(input.Output)
	default:
		return schema.InvalidArgument("--output must be text, csv, json or parquet")
	}
	cfg.OutputFile = input.OutputFile

	switch schema.DatabaseBackend(input.Backend) {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend, schema.NoneBackend:
		cfg.Backend = schema.DatabaseBackend(input.Backend)
	default:
		return schema.InvalidArgument("--backend must be sqlite, mysql, postgresql or none")
	}
	cfg.DBConnect = input.DBConnect
	if err := ValidateDatabaseConnectionString(cfg.Backend, cfg.DBConnect); err != nil {
		return err
	}

	if input.Threshold <= 0 {
		return schema.InvalidArgument("--threshold must be positive")
	}
	cfg.Threshold = input.Threshold
	if input.Window < DefaultMinWindow {
		return schema.InvalidArgument("--window must be at least %d", DefaultMinWindow)
	}
	cfg.Window = input.Window
	if input.MinRevisions < 1 {
		return schema.InvalidArgument("--min-revisions must be at least 1")
	}
	cfg.MinRevisions = input.MinRevisions
	switch input.Kind {
	case "", "both":
		cfg.Kind = "both"
	case "level", "revision":
		cfg.Kind = input.Kind
	default:
		return schema.InvalidArgument("--kind must be level, revision or both")
	}

	cfg.Source = input.Source
	cfg.SourceURL = input.SourceURL
	cfg.APIKey = input.APIKey
	cfg.CSVPath = input.CSVPath
	cfg.Units = input.Units
	cfg.Title = input.Title
	if input.Frequency != "" {
		freq, ok := schema.ParseFrequency(input.Frequency)
		if !ok {
			return schema.InvalidArgument("--frequency must be daily, weekly, monthly, quarterly or annual")
		}
		cfg.Frequency = freq
	}

	cfg.Width = input.Width
	cfg.UseColors = parseBoolish(input.Color, true)
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ValidateDatabaseConnectionString validates that the connection string is
// plausible for network database backends. SQLite and none need nothing.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") && !strings.HasPrefix(connStr, "postgres://") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' or use a postgres:// URL")
		}
	}
	return nil
}

// parseOptionalDate accepts an empty string (zero time), a plain date or an
// RFC3339 timestamp.
func parseOptionalDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(schema.DateFormat, s); err == nil {
		return schema.Day(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a date (want %s or RFC3339)", s, schema.DateFormat)
	}
	return schema.Day(t), nil
}

// parseBoolish interprets yes/no style flag values, falling back to the
// given default when the string is empty or unparseable.
func parseBoolish(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "on":
		return true
	case "no", "n", "off":
		return false
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	return fallback
}
