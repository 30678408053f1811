package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Korrojo/mongoops/internal/exitcode"
	"github.com/Korrojo/mongoops/internal/ops"
	"github.com/Korrojo/mongoops/internal/transfer"
)

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy collections between two deployments",
	RunE:  runCopy,
}

func init() {
	f := copyCmd.Flags()
	f.StringVar(&cfg.SourceURI, "source-uri", "", "Source connection string (or set MONGO_SOURCE_URI)")
	f.StringVar(&cfg.DestURI, "dest-uri", "", "Destination connection string (or set MONGO_DEST_URI)")
	f.BoolVar(&cfg.Wipe, "wipe", false, "Clear each destination collection before copying")
	rootCmd.AddCommand(copyCmd)
}

func runCopy(cmd *cobra.Command, args []string) error {
	log, runID := prepare()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := cfg.ValidateCopy(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	source := connect(ctx, log, cfg.SourceURI)
	defer source.Disconnect(ctx)
	dest := connect(ctx, log, cfg.DestURI)
	defer dest.Disconnect(ctx)

	summary, err := transfer.Run(ctx, source, dest, log, &cfg, runID)
	if err != nil {
		var oe *ops.OpError
		if errors.As(err, &oe) {
			log.Error().Err(oe.Err).Str("phase", oe.Phase).Msg("copy failed")
			if oe.Phase == "resolve" {
				os.Exit(exitcode.ValidationError)
			}
			os.Exit(exitcode.WriteError)
		}
		log.Error().Err(err).Msg("copy failed")
		os.Exit(exitcode.WriteError)
	}

	fmt.Printf("Copy complete: %d collections, %d documents copied, %d skipped (%.1fs)\n",
		len(summary.Collections), summary.TotalWritten(), summary.TotalSkipped(),
		summary.DurationTotal.Seconds())

	if cfg.Strict && summary.TotalSkipped() > 0 {
		os.Exit(exitcode.PartialFailure)
	}
	return nil
}
