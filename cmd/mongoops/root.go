package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Korrojo/mongoops/internal/config"
	"github.com/Korrojo/mongoops/internal/db"
	"github.com/Korrojo/mongoops/internal/exitcode"
	"github.com/Korrojo/mongoops/internal/logging"
)

var cfg config.Config

var (
	collectionsFlag string
	excludeFlag     string
	configFile      string
)

var rootCmd = &cobra.Command{
	Use:   "mongoops",
	Short: "Operational utilities for MongoDB-backed application data",
	Long: "Export/import collections between environments, copy data across deployments,\n" +
		"compute collection and index statistics, generate synthetic test data, and run\n" +
		"CSV-driven backfills.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; explicit env vars and flags win.
		_ = godotenv.Load()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.URI, "uri", "", "MongoDB connection string (or set MONGO_URI / MONGO_URI_<APP_ENV>)")
	pf.StringVar(&cfg.Database, "db", "", "Database name (or set MONGO_DB)")
	pf.StringVar(&cfg.AppEnv, "app-env", "", "Environment selector, e.g. DEV or PROD (or set APP_ENV)")
	pf.StringVar(&collectionsFlag, "collections", "", "Comma-separated collection list (empty = all non-system)")
	pf.StringVar(&excludeFlag, "exclude", "", "Comma-separated collections to skip")
	pf.StringVar(&configFile, "config", "", "YAML config file with collection lists")
	pf.IntVar(&cfg.BatchSize, "batch-size", 1000, "Documents per batch")
	pf.DurationVar(&cfg.Timeout, "timeout", 10*time.Minute, "Overall operation timeout")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.LogFile, "log-file", "", "Also write logs to this rotated file")
	pf.BoolVar(&cfg.Strict, "strict", false, "Exit non-zero when any document was skipped")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}

// prepare resolves env-based config, merges the optional YAML file, and
// returns the logger plus a fresh run ID tagged on every log line.
func prepare() (zerolog.Logger, string) {
	runID := uuid.New().String()
	log := logging.Setup(cfg.LogFormat, cfg.LogFile).With().Str("run_id", runID).Logger()

	cfg.ResolveURIs()
	cfg.Collections = config.SplitList(collectionsFlag)
	cfg.Exclude = config.SplitList(excludeFlag)
	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			log.Error().Err(err).Msg("config file load failed")
			os.Exit(exitcode.UsageError)
		}
	}
	return log, runID
}

// connect dials uri and exits with DBConnError when the deployment is
// unreachable after the retry budget.
func connect(ctx context.Context, log zerolog.Logger, uri string) *mongo.Client {
	client, err := db.Connect(ctx, log, uri)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	return client
}
