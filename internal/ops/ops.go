package ops

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// OpError wraps an error with the phase where it occurred.
type OpError struct {
	Phase string
	Err   error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// ResolveCollections returns the collections an operation should touch.
// An explicit include list wins and every entry must exist; otherwise all
// non-system collections minus the exclude list, sorted by name.
func ResolveCollections(ctx context.Context, database *mongo.Database, includes, excludes []string) ([]string, error) {
	colls, err := database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	colls = slices.DeleteFunc(colls, func(name string) bool {
		return strings.HasPrefix(name, "system.")
	})

	if len(includes) > 0 {
		for _, inc := range includes {
			if !slices.Contains(colls, inc) {
				return nil, fmt.Errorf("collection %q not found in database %q", inc, database.Name())
			}
		}
		colls = slices.DeleteFunc(colls, func(name string) bool {
			return !slices.Contains(includes, name)
		})
	} else if len(excludes) > 0 {
		colls = slices.DeleteFunc(colls, func(name string) bool {
			return slices.Contains(excludes, name)
		})
	}
	if len(colls) == 0 {
		return nil, fmt.Errorf("no collections to process in database %q", database.Name())
	}

	slices.Sort(colls)
	return colls, nil
}

// DuplicateKeySkips counts duplicate-key write errors in err and reports
// whether every error in it was a duplicate key. A nil err yields (0, true).
func DuplicateKeySkips(err error) (int64, bool) {
	if err == nil {
		return 0, true
	}
	bwe, ok := err.(mongo.BulkWriteException)
	if !ok {
		return 0, false
	}
	var dups int64
	for _, we := range bwe.WriteErrors {
		if we.Code != 11000 {
			return dups, false
		}
		dups++
	}
	return dups, bwe.WriteConcernError == nil
}
