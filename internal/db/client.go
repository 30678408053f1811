package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectAttempts = 3
	connectPause    = 2 * time.Second
)

// Connect dials the deployment at uri and verifies it with a primary ping.
// Transient failures are retried a fixed number of times before giving up.
func Connect(ctx context.Context, log zerolog.Logger, uri string) (*mongo.Client, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err == nil {
			if err = client.Ping(ctx, readpref.Primary()); err == nil {
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}
		lastErr = err
		if attempt < connectAttempts {
			log.Warn().Err(err).Int("attempt", attempt).Msg("connect failed, retrying")
			select {
			case <-time.After(connectPause):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("connect after %d attempts: %w", connectAttempts, lastErr)
}

// Disconnect closes the client, logging instead of failing on error.
func Disconnect(ctx context.Context, log zerolog.Logger, client *mongo.Client) {
	if client == nil {
		return
	}
	if err := client.Disconnect(ctx); err != nil {
		log.Warn().Err(err).Msg("disconnect failed")
	}
}

// systemDatabases are never touched when iterating a whole deployment.
var systemDatabases = map[string]bool{
	"admin":  true,
	"config": true,
	"local":  true,
}

// IsSystemDatabase reports whether name is a MongoDB-internal database.
func IsSystemDatabase(name string) bool {
	return systemDatabases[name]
}
