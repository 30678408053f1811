package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Korrojo/mongoops/internal/exitcode"
	"github.com/Korrojo/mongoops/internal/importer"
	"github.com/Korrojo/mongoops/internal/ops"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import JSON files into collections",
	RunE:  runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&cfg.InputPath, "in", "", "JSON file or directory of *.json files (required)")
	f.StringVar(&cfg.Collection, "collection", "", "Target collection (default: derived from filename)")
	f.BoolVar(&cfg.Drop, "drop", false, "Clear each target collection before loading")
	f.BoolVar(&cfg.StopOnError, "stop-on-error", false, "Abort on the first failed batch instead of skipping duplicates")
	_ = importCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	log, runID := prepare()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	client := connect(ctx, log, cfg.URI)
	defer client.Disconnect(ctx)

	summary, err := importer.Run(ctx, client.Database(cfg.Database), log, &cfg, runID)
	if err != nil {
		var oe *ops.OpError
		if errors.As(err, &oe) {
			log.Error().Err(oe.Err).Str("phase", oe.Phase).Msg("import failed")
			if oe.Phase == "resolve" {
				os.Exit(exitcode.ValidationError)
			}
			os.Exit(exitcode.WriteError)
		}
		log.Error().Err(err).Msg("import failed")
		os.Exit(exitcode.WriteError)
	}

	fmt.Printf("Import complete: %d files, %d documents inserted, %d skipped (%.1fs)\n",
		len(summary.Collections), summary.TotalWritten(), summary.TotalSkipped(),
		summary.DurationTotal.Seconds())

	if cfg.Strict && summary.TotalSkipped() > 0 {
		os.Exit(exitcode.PartialFailure)
	}
	return nil
}
