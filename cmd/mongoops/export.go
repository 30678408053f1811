package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Korrojo/mongoops/internal/exitcode"
	"github.com/Korrojo/mongoops/internal/export"
	"github.com/Korrojo/mongoops/internal/ops"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export collections to JSON files",
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&cfg.OutDir, "out", "export", "Output directory for JSON files")
	f.BoolVar(&cfg.Zip, "zip", false, "Pack the exported files into <out>.zip")
	f.Int64Var(&cfg.Limit, "limit", 0, "Max documents per collection (0 = all)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	log, runID := prepare()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	client := connect(ctx, log, cfg.URI)
	defer client.Disconnect(ctx)

	summary, err := export.Run(ctx, client.Database(cfg.Database), log, &cfg, runID)
	if err != nil {
		var oe *ops.OpError
		if errors.As(err, &oe) {
			log.Error().Err(oe.Err).Str("phase", oe.Phase).Msg("export failed")
			switch oe.Phase {
			case "resolve":
				os.Exit(exitcode.ValidationError)
			case "archive", "prepare":
				os.Exit(exitcode.WriteError)
			default:
				os.Exit(exitcode.ReadError)
			}
		}
		log.Error().Err(err).Msg("export failed")
		os.Exit(exitcode.ReadError)
	}

	fmt.Printf("Export complete: %d collections, %d documents written, %d skipped (%.1fs)\n",
		len(summary.Collections), summary.TotalWritten(), summary.TotalSkipped(),
		summary.DurationTotal.Seconds())

	if cfg.Strict && summary.TotalSkipped() > 0 {
		os.Exit(exitcode.PartialFailure)
	}
	return nil
}
