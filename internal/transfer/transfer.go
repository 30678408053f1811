package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Korrojo/mongoops/internal/config"
	"github.com/Korrojo/mongoops/internal/db"
	"github.com/Korrojo/mongoops/internal/model"
	"github.com/Korrojo/mongoops/internal/ops"
)

// Run copies collections from the source deployment to the destination.
// With cfg.Database set only that database is copied; otherwise every
// non-system database on the source is walked.
func Run(ctx context.Context, source, dest *mongo.Client, log zerolog.Logger, cfg *config.Config, runID string) (*model.RunSummary, error) {
	totalStart := time.Now()

	summary := &model.RunSummary{
		RunID:     runID,
		Operation: "copy",
		Database:  cfg.Database,
	}

	dbNames := []string{cfg.Database}
	if cfg.Database == "" {
		names, err := source.ListDatabaseNames(ctx, bson.D{})
		if err != nil {
			return nil, &ops.OpError{Phase: "resolve", Err: fmt.Errorf("list databases: %w", err)}
		}
		dbNames = dbNames[:0]
		for _, name := range names {
			if !db.IsSystemDatabase(name) {
				dbNames = append(dbNames, name)
			}
		}
	}

	for _, dbName := range dbNames {
		srcDB := source.Database(dbName)
		colls, err := ops.ResolveCollections(ctx, srcDB, cfg.Collections, cfg.Exclude)
		if err != nil {
			return nil, &ops.OpError{Phase: "resolve", Err: err}
		}

		for _, coll := range colls {
			cs, err := copyCollection(ctx, srcDB, dest.Database(dbName), log, cfg, coll)
			if err != nil {
				return nil, &ops.OpError{Phase: "copy", Err: fmt.Errorf("%s.%s: %w", dbName, coll, err)}
			}
			summary.Collections = append(summary.Collections, *cs)
		}
	}

	summary.DurationTotal = time.Since(totalStart)
	log.Info().
		Int64("read", summary.TotalRead()).
		Int64("copied", summary.TotalWritten()).
		Int64("skipped", summary.TotalSkipped()).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("copy complete")

	return summary, nil
}

func copyCollection(ctx context.Context, srcDB, dstDB *mongo.Database, log zerolog.Logger, cfg *config.Config, coll string) (*model.CollectionSummary, error) {
	start := time.Now()

	target := dstDB.Collection(coll)
	if cfg.Wipe {
		if _, err := target.DeleteMany(ctx, bson.M{}); err != nil {
			return nil, fmt.Errorf("wipe destination: %w", err)
		}
		log.Info().Str("collection", coll).Msg("wiped destination collection")
	}

	cursor, err := srcDB.Collection(coll).Find(ctx, bson.D{},
		options.Find().SetBatchSize(int32(cfg.BatchSize)))
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cursor.Close(ctx)

	cs := &model.CollectionSummary{Collection: coll}
	batch := make([]interface{}, 0, cfg.BatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		res, err := target.InsertMany(ctx, batch, options.InsertMany().SetOrdered(false))
		if res != nil {
			cs.Written += int64(len(res.InsertedIDs))
		}
		if err != nil {
			dups, allDup := ops.DuplicateKeySkips(err)
			if !allDup {
				return fmt.Errorf("insert batch: %w", err)
			}
			cs.Skipped += dups
			log.Warn().Str("collection", coll).Int64("duplicates", dups).Msg("existing documents skipped")
		}
		batch = batch[:0]
		return nil
	}

	for cursor.Next(ctx) {
		cs.Read++
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			cs.Skipped++
			log.Warn().Err(err).Str("collection", coll).Int64("doc", cs.Read).Msg("document skipped")
			continue
		}
		batch = append(batch, doc)
		if len(batch) >= cfg.BatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	cs.Duration = time.Since(start)
	log.Info().
		Str("collection", coll).
		Int64("read", cs.Read).
		Int64("copied", cs.Written).
		Int64("skipped", cs.Skipped).
		Str("duration", cs.Duration.String()).
		Msg("collection copied")

	return cs, nil
}
