package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Korrojo/mongoops/internal/config"
	"github.com/Korrojo/mongoops/internal/importer"
	"github.com/Korrojo/mongoops/internal/model"
	"github.com/Korrojo/mongoops/internal/ops"
)

// Run generates cfg.Count synthetic documents of cfg.Kind and inserts
// them in batches. With cfg.DryRun the documents are written to a JSON
// file instead of the database; database may then be nil.
func Run(ctx context.Context, database *mongo.Database, log zerolog.Logger, cfg *config.Config, runID string) (*model.RunSummary, error) {
	totalStart := time.Now()

	gen, err := NewGenerator(cfg.Kind, cfg.Seed)
	if err != nil {
		return nil, &ops.OpError{Phase: "generate", Err: err}
	}

	coll := cfg.Collection
	if coll == "" {
		coll = gen.Collection()
	}

	docs := gen.Generate(cfg.Count)
	log.Info().Str("kind", cfg.Kind).Int("count", len(docs)).Uint64("seed", cfg.Seed).Msg("documents generated")

	summary := &model.RunSummary{
		RunID:     runID,
		Operation: "seed",
		Collections: []model.CollectionSummary{
			{Collection: coll, Read: int64(len(docs))},
		},
	}
	cs := &summary.Collections[0]

	if cfg.DryRun {
		path := coll + ".seed.json"
		if cfg.OutDir != "" {
			if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
				return nil, &ops.OpError{Phase: "write", Err: fmt.Errorf("create output dir: %w", err)}
			}
			path = filepath.Join(cfg.OutDir, path)
		}
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return nil, &ops.OpError{Phase: "write", Err: fmt.Errorf("marshal: %w", err)}
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, &ops.OpError{Phase: "write", Err: fmt.Errorf("write file: %w", err)}
		}
		cs.Written = int64(len(docs))
		log.Info().Str("file", path).Msg("dry run, documents written to file")
		summary.DurationTotal = time.Since(totalStart)
		return summary, nil
	}

	summary.Database = database.Name()
	target := database.Collection(coll)

	for _, batch := range importer.Batches(docs, cfg.BatchSize) {
		res, err := target.InsertMany(ctx, batch, options.InsertMany().SetOrdered(false))
		if res != nil {
			cs.Written += int64(len(res.InsertedIDs))
		}
		if err != nil {
			dups, allDup := ops.DuplicateKeySkips(err)
			if !allDup {
				return nil, &ops.OpError{Phase: "insert", Err: err}
			}
			cs.Skipped += dups
			log.Warn().Int64("duplicates", dups).Msg("duplicate documents skipped")
		}
	}

	cs.Duration = time.Since(totalStart)
	summary.DurationTotal = cs.Duration
	log.Info().
		Str("collection", coll).
		Int64("generated", cs.Read).
		Int64("inserted", cs.Written).
		Int64("skipped", cs.Skipped).
		Str("duration", cs.Duration.String()).
		Msg("seed complete")

	return summary, nil
}
