package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Korrojo/mongoops/internal/exitcode"
	"github.com/Korrojo/mongoops/internal/ops"
	"github.com/Korrojo/mongoops/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Collection and index statistics report",
	RunE:  runStats,
}

func init() {
	f := statsCmd.Flags()
	f.StringVar(&cfg.OutFile, "out", "stats.csv", "Report file path")
	f.StringVar(&cfg.Format, "format", "csv", "Report format: csv or json")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	log, runID := prepare()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if cfg.Format != "csv" && cfg.Format != "json" {
		log.Error().Str("format", cfg.Format).Msg("--format must be csv or json")
		os.Exit(exitcode.UsageError)
	}

	client := connect(ctx, log, cfg.URI)
	defer client.Disconnect(ctx)

	report, err := stats.Collect(ctx, client.Database(cfg.Database), log, &cfg, runID)
	if err != nil {
		var oe *ops.OpError
		if errors.As(err, &oe) {
			log.Error().Err(oe.Err).Str("phase", oe.Phase).Msg("stats failed")
			if oe.Phase == "resolve" {
				os.Exit(exitcode.ValidationError)
			}
			os.Exit(exitcode.ReadError)
		}
		log.Error().Err(err).Msg("stats failed")
		os.Exit(exitcode.ReadError)
	}

	if err := stats.WriteReport(report, cfg.OutFile, cfg.Format); err != nil {
		log.Error().Err(err).Msg("report write failed")
		os.Exit(exitcode.WriteError)
	}

	var docs int64
	for _, cs := range report.Collections {
		docs += cs.Documents
	}
	fmt.Printf("Stats complete: %d collections, %d documents, report written to %s\n",
		len(report.Collections), docs, cfg.OutFile)
	return nil
}
