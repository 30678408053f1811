package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Korrojo/mongoops/internal/config"
	"github.com/Korrojo/mongoops/internal/model"
	"github.com/Korrojo/mongoops/internal/ops"
)

// Run imports one JSON file or every *.json file in a directory into
// the target database. Each file becomes one collection load.
func Run(ctx context.Context, database *mongo.Database, log zerolog.Logger, cfg *config.Config, runID string) (*model.RunSummary, error) {
	totalStart := time.Now()

	files, err := inputFiles(cfg.InputPath)
	if err != nil {
		return nil, &ops.OpError{Phase: "resolve", Err: err}
	}

	summary := &model.RunSummary{
		RunID:     runID,
		Operation: "import",
		Database:  database.Name(),
	}

	for _, file := range files {
		coll := cfg.Collection
		if coll == "" {
			coll = CollectionFromFilename(file)
		}
		if coll == "" {
			log.Warn().Str("file", file).Msg("skipping file with no derivable collection name")
			continue
		}

		cs, err := importFile(ctx, database, log, cfg, file, coll)
		if err != nil {
			return nil, &ops.OpError{Phase: "import", Err: fmt.Errorf("file %s: %w", file, err)}
		}
		summary.Collections = append(summary.Collections, *cs)
	}

	summary.DurationTotal = time.Since(totalStart)
	log.Info().
		Int64("read", summary.TotalRead()).
		Int64("inserted", summary.TotalWritten()).
		Int64("skipped", summary.TotalSkipped()).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("import complete")

	return summary, nil
}

func inputFiles(path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input path: %w", err)
	}
	if !fi.IsDir() {
		return []string{path}, nil
	}
	files, err := filepath.Glob(filepath.Join(path, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan input dir: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no *.json files in %s", path)
	}
	sort.Strings(files)
	return files, nil
}

func importFile(ctx context.Context, database *mongo.Database, log zerolog.Logger, cfg *config.Config, file, coll string) (*model.CollectionSummary, error) {
	start := time.Now()

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	docs, err := DecodeDocuments(data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	target := database.Collection(coll)
	if cfg.Drop {
		if _, err := target.DeleteMany(ctx, bson.M{}); err != nil {
			return nil, fmt.Errorf("clear collection: %w", err)
		}
		log.Info().Str("collection", coll).Msg("cleared existing documents")
	}

	cs := &model.CollectionSummary{Collection: coll, Read: int64(len(docs))}

	for _, batch := range Batches(docs, cfg.BatchSize) {
		res, err := target.InsertMany(ctx, batch, options.InsertMany().SetOrdered(false))
		if res != nil {
			cs.Written += int64(len(res.InsertedIDs))
		}
		if err != nil {
			dups, allDup := ops.DuplicateKeySkips(err)
			if !allDup || cfg.StopOnError {
				return nil, fmt.Errorf("insert batch: %w", err)
			}
			cs.Skipped += dups
			log.Warn().
				Str("collection", coll).
				Int64("duplicates", dups).
				Msg("duplicate documents skipped")
		}
	}

	cs.Duration = time.Since(start)
	log.Info().
		Str("collection", coll).
		Str("file", filepath.Base(file)).
		Int64("read", cs.Read).
		Int64("inserted", cs.Written).
		Int64("skipped", cs.Skipped).
		Str("duration", cs.Duration.String()).
		Msg("file imported")

	return cs, nil
}

// CollectionFromFilename derives a collection name from a JSON file
// name: "Users.json" → "Users", "appdata.Users.json" → "Users".
// Returns "" for names it cannot interpret.
func CollectionFromFilename(path string) string {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".json") {
		return ""
	}
	name = strings.TrimSuffix(name, ".json")
	if name == "" {
		return ""
	}
	parts := strings.Split(name, ".")
	return parts[len(parts)-1]
}

// DecodeDocuments parses a JSON array or a single JSON object into a
// slice of insertable documents.
func DecodeDocuments(data []byte) ([]interface{}, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	switch v := raw.(type) {
	case []interface{}:
		return v, nil
	case map[string]interface{}:
		return []interface{}{v}, nil
	default:
		return nil, fmt.Errorf("expected a JSON object or array, got %T", raw)
	}
}

// Batches splits docs into consecutive slices of at most size elements.
func Batches(docs []interface{}, size int) [][]interface{} {
	if size <= 0 {
		size = len(docs)
	}
	var out [][]interface{}
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		out = append(out, docs[start:end])
	}
	return out
}
