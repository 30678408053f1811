package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResolveEnv_AppEnvVariantWins(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://base:27017")
	t.Setenv("MONGO_URI_PROD", "mongodb://prod:27017")

	if got := ResolveEnv("MONGO_URI", "prod"); got != "mongodb://prod:27017" {
		t.Errorf("expected prod variant, got %q", got)
	}
	if got := ResolveEnv("MONGO_URI", ""); got != "mongodb://base:27017" {
		t.Errorf("expected base value, got %q", got)
	}
	if got := ResolveEnv("MONGO_URI", "dev"); got != "mongodb://base:27017" {
		t.Errorf("expected fallback to base for unset variant, got %q", got)
	}
}

func TestResolveURIs_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "DEV")
	t.Setenv("MONGO_URI_DEV", "mongodb://dev:27017")
	t.Setenv("MONGO_DB", "appdata")

	var c Config
	c.ResolveURIs()
	if c.URI != "mongodb://dev:27017" {
		t.Errorf("URI = %q", c.URI)
	}
	if c.Database != "appdata" {
		t.Errorf("Database = %q", c.Database)
	}
	// SourceURI defaults to URI when no dedicated source is set.
	if c.SourceURI != c.URI {
		t.Errorf("SourceURI = %q, expected fallback to URI", c.SourceURI)
	}
}

func TestResolveURIs_FlagsWin(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://env:27017")

	c := Config{URI: "mongodb://flag:27017"}
	c.ResolveURIs()
	if c.URI != "mongodb://flag:27017" {
		t.Errorf("flag value overwritten: %q", c.URI)
	}
}

func TestLoadFromFile_Valid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("collections:\n  - Users\n  - Patients\nexclude:\n  - Sessions\n"), 0644)

	var c Config
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if len(c.Collections) != 2 || c.Collections[0] != "Users" || c.Collections[1] != "Patients" {
		t.Errorf("unexpected collections: %v", c.Collections)
	}
	if len(c.Exclude) != 1 || c.Exclude[0] != "Sessions" {
		t.Errorf("unexpected exclude: %v", c.Exclude)
	}
}

func TestLoadFromFile_FlagListWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("collections:\n  - FromFile\n"), 0644)

	c := Config{Collections: []string{"FromFlag"}}
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if len(c.Collections) != 1 || c.Collections[0] != "FromFlag" {
		t.Errorf("flag list overwritten: %v", c.Collections)
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	var c Config
	if err := c.LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" Users, Patients ,,StaffAvailability ")
	want := []string{"Users", "Patients", "StaffAvailability"}
	if len(got) != len(want) {
		t.Fatalf("SplitList = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if got := SplitList("  "); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	c := Config{URI: "mongodb://x", Database: "d", BatchSize: 100, Timeout: time.Second}
	if err := c.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	c.BatchSize = 0
	if err := c.Validate(); err == nil {
		t.Error("expected error for zero batch size")
	}

	c = Config{Database: "d", BatchSize: 1}
	if err := c.Validate(); err == nil {
		t.Error("expected error for missing URI")
	}
}

func TestValidateBackfill(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "providers.csv")
	os.WriteFile(csvPath, []byte("first_name,last_name,npi\n"), 0644)

	c := Config{
		URI: "mongodb://x", Database: "d", BatchSize: 100,
		CSVPath: csvPath, MatchField: "npi", TargetField: "providerId",
	}
	if err := c.ValidateBackfill(); err != nil {
		t.Errorf("valid backfill config rejected: %v", err)
	}

	c.MatchField = "email"
	if err := c.ValidateBackfill(); err == nil {
		t.Error("expected error for unknown match field")
	}

	c.MatchField = "name"
	c.CSVPath = filepath.Join(dir, "missing.csv")
	if err := c.ValidateBackfill(); err == nil {
		t.Error("expected error for missing csv file")
	}
}
