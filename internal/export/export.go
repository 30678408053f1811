package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Korrojo/mongoops/internal/config"
	"github.com/Korrojo/mongoops/internal/model"
	"github.com/Korrojo/mongoops/internal/normalize"
	"github.com/Korrojo/mongoops/internal/ops"
)

// Run exports the configured collections to one JSON array file each
// under cfg.OutDir. When cfg.Zip is set the files are packed into
// <OutDir>.zip and the loose files removed.
func Run(ctx context.Context, database *mongo.Database, log zerolog.Logger, cfg *config.Config, runID string) (*model.RunSummary, error) {
	totalStart := time.Now()

	colls, err := ops.ResolveCollections(ctx, database, cfg.Collections, cfg.Exclude)
	if err != nil {
		return nil, &ops.OpError{Phase: "resolve", Err: err}
	}

	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return nil, &ops.OpError{Phase: "prepare", Err: fmt.Errorf("create output dir: %w", err)}
	}

	summary := &model.RunSummary{
		RunID:     runID,
		Operation: "export",
		Database:  database.Name(),
	}

	var written []string
	for _, coll := range colls {
		cs, path, err := exportCollection(ctx, database, log, cfg, coll)
		if err != nil {
			return nil, &ops.OpError{Phase: "export", Err: fmt.Errorf("collection %s: %w", coll, err)}
		}
		summary.Collections = append(summary.Collections, *cs)
		written = append(written, path)
	}

	if cfg.Zip {
		archive := cfg.OutDir + ".zip"
		log.Info().Str("archive", archive).Int("files", len(written)).Msg("packing archive")
		if err := Archive(archive, written); err != nil {
			return nil, &ops.OpError{Phase: "archive", Err: err}
		}
		for _, p := range written {
			if err := os.Remove(p); err != nil {
				log.Warn().Err(err).Str("file", p).Msg("cleanup failed (non-fatal)")
			}
		}
	}

	summary.DurationTotal = time.Since(totalStart)
	log.Info().
		Int64("read", summary.TotalRead()).
		Int64("written", summary.TotalWritten()).
		Int64("skipped", summary.TotalSkipped()).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("export complete")

	return summary, nil
}

func exportCollection(ctx context.Context, database *mongo.Database, log zerolog.Logger, cfg *config.Config, coll string) (*model.CollectionSummary, string, error) {
	start := time.Now()

	findOpts := options.Find().SetBatchSize(int32(cfg.BatchSize))
	if cfg.Limit > 0 {
		findOpts.SetLimit(cfg.Limit)
	}

	cursor, err := database.Collection(coll).Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, "", fmt.Errorf("find: %w", err)
	}
	defer cursor.Close(ctx)

	cs := &model.CollectionSummary{Collection: coll}
	docs := make([]map[string]interface{}, 0, cfg.BatchSize)

	for cursor.Next(ctx) {
		cs.Read++
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			cs.Skipped++
			log.Warn().Err(err).Str("collection", coll).Int64("doc", cs.Read).Msg("document skipped")
			continue
		}
		docs = append(docs, JSONSafe(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, "", fmt.Errorf("cursor: %w", err)
	}

	path := filepath.Join(cfg.OutDir, coll+".json")
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, "", fmt.Errorf("write file: %w", err)
	}
	cs.Written = int64(len(docs))
	cs.Duration = time.Since(start)

	sha, err := normalize.FileHash(path)
	if err != nil {
		return nil, "", fmt.Errorf("hash output: %w", err)
	}

	log.Info().
		Str("collection", coll).
		Str("file", path).
		Str("sha256", sha).
		Int64("read", cs.Read).
		Int64("written", cs.Written).
		Int64("skipped", cs.Skipped).
		Str("duration", cs.Duration.String()).
		Msg("collection exported")

	return cs, path, nil
}

// JSONSafe rewrites BSON-specific values into plain JSON-encodable ones:
// ObjectIDs become hex strings, datetimes RFC 3339 strings, Decimal128
// its string form. Nested documents and arrays are walked recursively.
func JSONSafe(doc bson.M) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = jsonSafeValue(v)
	}
	return out
}

func jsonSafeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	case primitive.Decimal128:
		return t.String()
	case primitive.Binary:
		return fmt.Sprintf("%x", t.Data)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case bson.M:
		return JSONSafe(t)
	case map[string]interface{}:
		return JSONSafe(bson.M(t))
	case bson.D:
		m := make(bson.M, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return JSONSafe(m)
	case bson.A:
		arr := make([]interface{}, len(t))
		for i, e := range t {
			arr[i] = jsonSafeValue(e)
		}
		return arr
	case []interface{}:
		arr := make([]interface{}, len(t))
		for i, e := range t {
			arr[i] = jsonSafeValue(e)
		}
		return arr
	default:
		return v
	}
}
