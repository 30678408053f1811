package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Korrojo/mongoops/internal/backfill"
	"github.com/Korrojo/mongoops/internal/exitcode"
	"github.com/Korrojo/mongoops/internal/ops"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "CSV-driven match and update of the Users collection",
	Long: "Matches each CSV row against Users (by NPI or by first/last name) and sets the\n" +
		"target field from a CSV column on the single matched document. Rows with no match,\n" +
		"multiple matches, or an already-populated target field are skipped and logged.",
	RunE: runBackfill,
}

func init() {
	f := backfillCmd.Flags()
	f.StringVar(&cfg.CSVPath, "csv", "", "Input CSV file (required)")
	f.StringVar(&cfg.MatchField, "match-field", "npi", "Match key: npi or name")
	f.StringVar(&cfg.TargetField, "target-field", "providerId", "User field to set")
	f.StringVar(&cfg.SourceField, "source-field", "provider_id", "CSV column holding the new value")
	f.BoolVar(&cfg.DryRun, "dry-run", false, "Log would-be updates without writing")
	f.StringVar(&cfg.ReportFile, "report", "", "Write a per-row outcome CSV to this path")
	_ = backfillCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	log, runID := prepare()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := cfg.ValidateBackfill(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	client := connect(ctx, log, cfg.URI)
	defer client.Disconnect(ctx)

	summary, err := backfill.Run(ctx, client.Database(cfg.Database), log, &cfg, runID)
	if err != nil {
		var oe *ops.OpError
		if errors.As(err, &oe) {
			log.Error().Err(oe.Err).Str("phase", oe.Phase).Msg("backfill failed")
			switch oe.Phase {
			case "parse":
				os.Exit(exitcode.ValidationError)
			case "report":
				os.Exit(exitcode.WriteError)
			default:
				os.Exit(exitcode.WriteError)
			}
		}
		log.Error().Err(err).Msg("backfill failed")
		os.Exit(exitcode.WriteError)
	}

	fmt.Printf("Backfill complete: %d rows, %d updated, %d skipped, %d errors (%.1fs)\n",
		summary.Rows, summary.Updated, summary.Skipped(), summary.Errors,
		summary.Duration.Seconds())

	if summary.Errors > 0 || (cfg.Strict && summary.Skipped() > 0) {
		os.Exit(exitcode.PartialFailure)
	}
	return nil
}
