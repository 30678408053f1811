package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Korrojo/mongoops/internal/exitcode"
	"github.com/Korrojo/mongoops/internal/ops"
	"github.com/Korrojo/mongoops/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate and insert synthetic test documents",
	RunE:  runSeed,
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&cfg.Kind, "kind", seed.KindUsers, "Record kind: users, patients, or staff-availability")
	f.IntVar(&cfg.Count, "count", 100, "Number of documents to generate")
	f.Uint64Var(&cfg.Seed, "seed", 0, "Random seed (same seed, same documents; 0 = random)")
	f.StringVar(&cfg.Collection, "collection", "", "Target collection (default: per kind)")
	f.BoolVar(&cfg.DryRun, "dry-run", false, "Write documents to a JSON file instead of the database")
	f.StringVar(&cfg.OutDir, "out", "", "Directory for dry-run output (default: current dir)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	log, runID := prepare()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if cfg.Count <= 0 {
		log.Error().Int("count", cfg.Count).Msg("--count must be positive")
		os.Exit(exitcode.UsageError)
	}

	var database *mongo.Database
	if !cfg.DryRun {
		if err := cfg.Validate(); err != nil {
			log.Error().Err(err).Msg("config validation failed")
			os.Exit(exitcode.UsageError)
		}
		client := connect(ctx, log, cfg.URI)
		defer client.Disconnect(ctx)
		database = client.Database(cfg.Database)
	}

	summary, err := seed.Run(ctx, database, log, &cfg, runID)
	if err != nil {
		var oe *ops.OpError
		if errors.As(err, &oe) {
			log.Error().Err(oe.Err).Str("phase", oe.Phase).Msg("seed failed")
			switch oe.Phase {
			case "generate":
				os.Exit(exitcode.UsageError)
			case "write":
				os.Exit(exitcode.WriteError)
			default:
				os.Exit(exitcode.WriteError)
			}
		}
		log.Error().Err(err).Msg("seed failed")
		os.Exit(exitcode.WriteError)
	}

	fmt.Printf("Seed complete: %d documents generated, %d written, %d skipped (%.1fs)\n",
		summary.TotalRead(), summary.TotalWritten(), summary.TotalSkipped(),
		summary.DurationTotal.Seconds())
	return nil
}
