package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Korrojo/mongoops/internal/config"
	"github.com/Korrojo/mongoops/internal/model"
	"github.com/Korrojo/mongoops/internal/ops"
)

// Collect gathers document, storage, and index statistics for the
// configured collections.
func Collect(ctx context.Context, database *mongo.Database, log zerolog.Logger, cfg *config.Config, runID string) (*model.StatsReport, error) {
	colls, err := ops.ResolveCollections(ctx, database, cfg.Collections, cfg.Exclude)
	if err != nil {
		return nil, &ops.OpError{Phase: "resolve", Err: err}
	}

	report := &model.StatsReport{
		RunID:       runID,
		Database:    database.Name(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, coll := range colls {
		cs, err := collectCollection(ctx, database, coll)
		if err != nil {
			return nil, &ops.OpError{Phase: "collect", Err: fmt.Errorf("collection %s: %w", coll, err)}
		}
		report.Collections = append(report.Collections, *cs)
		log.Info().
			Str("collection", coll).
			Int64("documents", cs.Documents).
			Int64("size_bytes", cs.SizeBytes).
			Int("indexes", cs.IndexCount).
			Msg("collection measured")
	}

	return report, nil
}

func collectCollection(ctx context.Context, database *mongo.Database, coll string) (*model.CollectionStat, error) {
	c := database.Collection(coll)

	count, err := c.EstimatedDocumentCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	cs := &model.CollectionStat{Collection: coll, Documents: count}

	storage, err := storageStats(ctx, c)
	if err != nil {
		return nil, err
	}
	if storage != nil {
		cs.SizeBytes = toInt64(storage["size"])
		cs.StorageSize = toInt64(storage["storageSize"])
		cs.AvgObjSize = toInt64(storage["avgObjSize"])
		cs.Capped, _ = storage["capped"].(bool)
	}

	indexes, err := indexStats(ctx, c, storage)
	if err != nil {
		return nil, err
	}
	cs.Indexes = indexes
	cs.IndexCount = len(indexes)

	return cs, nil
}

// storageStats runs a $collStats aggregation and returns the
// storageStats sub-document, or nil when the server reports none.
func storageStats(ctx context.Context, c *mongo.Collection) (bson.M, error) {
	cursor, err := c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$collStats", Value: bson.M{"storageStats": bson.M{}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("collStats: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return nil, cursor.Err()
	}
	var doc bson.M
	if err := cursor.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode collStats: %w", err)
	}
	return subDocument(doc["storageStats"]), nil
}

// subDocument normalizes an embedded document to bson.M. The driver
// decodes nested documents inside bson.M as bson.D by default.
func subDocument(v interface{}) bson.M {
	switch t := v.(type) {
	case bson.M:
		return t
	case bson.D:
		m := make(bson.M, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return m
	default:
		return nil
	}
}

// indexStats merges index definitions, $indexStats access counters, and
// per-index sizes from storageStats.
func indexStats(ctx context.Context, c *mongo.Collection, storage bson.M) ([]model.IndexStat, error) {
	defCursor, err := c.Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	defer defCursor.Close(ctx)

	accesses, err := indexAccesses(ctx, c)
	if err != nil {
		return nil, err
	}

	var sizes bson.M
	if storage != nil {
		sizes = subDocument(storage["indexSizes"])
	}

	var out []model.IndexStat
	for defCursor.Next(ctx) {
		var def bson.M
		if err := defCursor.Decode(&def); err != nil {
			return nil, fmt.Errorf("decode index: %w", err)
		}
		name, _ := def["name"].(string)
		is := model.IndexStat{
			Name:     name,
			KeySpec:  keySpecString(def["key"]),
			Accesses: accesses[name],
		}
		is.Unique, _ = def["unique"].(bool)
		is.Sparse, _ = def["sparse"].(bool)
		if sizes != nil {
			is.SizeBytes = toInt64(sizes[name])
		}
		out = append(out, is)
	}
	return out, defCursor.Err()
}

func indexAccesses(ctx context.Context, c *mongo.Collection) (map[string]int64, error) {
	cursor, err := c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$indexStats", Value: bson.M{}}},
	})
	if err != nil {
		// $indexStats is unavailable on some topologies (e.g. mongos
		// without shard targeting); treat as zero counts.
		return map[string]int64{}, nil
	}
	defer cursor.Close(ctx)

	out := make(map[string]int64)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode indexStats: %w", err)
		}
		name, _ := doc["name"].(string)
		if acc := subDocument(doc["accesses"]); acc != nil {
			out[name] = toInt64(acc["ops"])
		}
	}
	return out, cursor.Err()
}

// keySpecString renders an index key document as "field_1,other_-1".
func keySpecString(key interface{}) string {
	d, ok := key.(bson.D)
	if !ok {
		return ""
	}
	spec := ""
	for i, e := range d {
		if i > 0 {
			spec += ","
		}
		spec += fmt.Sprintf("%s_%v", e.Key, e.Value)
	}
	return spec
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int32:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}
