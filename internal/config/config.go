package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for a mongoops run.
// One instance is shared by every subcommand; operation-specific
// fields are only populated by the flags of that operation.
type Config struct {
	URI       string
	SourceURI string
	DestURI   string
	Database  string
	AppEnv    string
	BatchSize int
	LogFormat string // "text" or "json"
	LogFile   string
	Timeout   time.Duration
	Strict    bool

	Collections []string `yaml:"collections"`
	Exclude     []string `yaml:"exclude"`

	// export
	OutDir string
	Zip    bool
	Limit  int64

	// import
	InputPath   string
	Collection  string
	Drop        bool
	StopOnError bool

	// copy
	Wipe bool

	// stats
	OutFile string
	Format  string // "csv" or "json"

	// seed
	Kind   string
	Count  int
	Seed   uint64
	DryRun bool

	// backfill
	CSVPath     string
	MatchField  string
	TargetField string
	SourceField string
	ReportFile  string
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Collections []string `yaml:"collections"`
	Exclude     []string `yaml:"exclude"`
}

// ResolveEnv returns the value of key for the active APP_ENV.
// KEY_<APP_ENV> takes precedence over KEY, e.g. MONGO_URI_PROD over MONGO_URI.
func ResolveEnv(key, appEnv string) string {
	if appEnv != "" {
		if v := os.Getenv(key + "_" + strings.ToUpper(appEnv)); v != "" {
			return v
		}
	}
	return os.Getenv(key)
}

// ResolveURIs fills connection fields from the environment for any
// that were not set by flags.
func (c *Config) ResolveURIs() {
	if c.AppEnv == "" {
		c.AppEnv = os.Getenv("APP_ENV")
	}
	if c.URI == "" {
		c.URI = ResolveEnv("MONGO_URI", c.AppEnv)
	}
	if c.SourceURI == "" {
		c.SourceURI = ResolveEnv("MONGO_SOURCE_URI", c.AppEnv)
		if c.SourceURI == "" {
			c.SourceURI = c.URI
		}
	}
	if c.DestURI == "" {
		c.DestURI = ResolveEnv("MONGO_DEST_URI", c.AppEnv)
	}
	if c.Database == "" {
		c.Database = ResolveEnv("MONGO_DB", c.AppEnv)
	}
}

// LoadFromFile reads a YAML config file and merges its collection lists
// into Config. Flag-provided lists win over file-provided ones.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if len(c.Collections) == 0 {
		c.Collections = yc.Collections
	}
	if len(c.Exclude) == 0 {
		c.Exclude = yc.Exclude
	}
	return nil
}

// SplitList turns a comma-separated flag value into a trimmed list.
// Empty input yields an empty list.
func SplitList(listValue string) []string {
	if strings.TrimSpace(listValue) == "" {
		return []string{}
	}
	parts := strings.Split(listValue, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the fields every operation needs.
func (c *Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("--uri or MONGO_URI is required")
	}
	if c.Database == "" {
		return fmt.Errorf("--db or MONGO_DB is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("--batch-size must be positive")
	}
	return nil
}

// ValidateCopy checks the fields the copy operation needs.
func (c *Config) ValidateCopy() error {
	if c.SourceURI == "" {
		return fmt.Errorf("--source-uri or MONGO_SOURCE_URI is required")
	}
	if c.DestURI == "" {
		return fmt.Errorf("--dest-uri or MONGO_DEST_URI is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("--batch-size must be positive")
	}
	return nil
}

// ValidateBackfill checks the fields the backfill operation needs.
func (c *Config) ValidateBackfill() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.CSVPath == "" {
		return fmt.Errorf("--csv is required")
	}
	if _, err := os.Stat(c.CSVPath); err != nil {
		return fmt.Errorf("csv file not accessible: %w", err)
	}
	switch c.MatchField {
	case "npi", "name":
	default:
		return fmt.Errorf("--match-field must be npi or name, got %q", c.MatchField)
	}
	if c.TargetField == "" {
		return fmt.Errorf("--target-field is required")
	}
	return nil
}
