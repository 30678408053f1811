package backfill

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Korrojo/mongoops/internal/config"
)

// Integration test: requires a running deployment, e.g.
// MONGOOPS_TEST_URI=mongodb://localhost:27017 go test ./internal/backfill/
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGOOPS_TEST_URI")
	if uri == "" {
		t.Skip("MONGOOPS_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	name := fmt.Sprintf("mongoops_backfill_%d", time.Now().UnixNano())
	db := client.Database(name)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestRun_UpdatesAndSkips(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()

	users := db.Collection("Users")
	_, err := users.InsertMany(ctx, []interface{}{
		bson.M{"firstName": "Jane", "lastName": "Doe", "npi": "1111111111"},
		bson.M{"firstName": "John", "lastName": "Smith", "npi": "2222222222", "providerId": "PRV-OLD"},
		bson.M{"firstName": "Ann", "lastName": "Lee", "npi": "3333333333"},
		bson.M{"firstName": "Ann", "lastName": "Lee", "npi": "4444444444"},
	})
	require.NoError(t, err)

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "providers.csv")
	content := "npi,provider_id\n" +
		"1111111111,PRV-1\n" + // updates
		"2222222222,PRV-2\n" + // already set
		"9999999999,PRV-3\n" + // no match
		"bad,PRV-4\n" + // invalid npi
		"3333333333,\n" // empty source value
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0644))

	reportPath := filepath.Join(dir, "report.csv")
	cfg := &config.Config{
		CSVPath:     csvPath,
		MatchField:  "npi",
		TargetField: "providerId",
		SourceField: "provider_id",
		ReportFile:  reportPath,
	}

	summary, err := Run(ctx, db, zerolog.Nop(), cfg, "test-run")
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Rows)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.AlreadySet)
	assert.Equal(t, 1, summary.NoMatch)
	assert.Equal(t, 2, summary.Invalid)
	assert.Equal(t, 0, summary.Errors)

	var jane bson.M
	require.NoError(t, users.FindOne(ctx, bson.M{"npi": "1111111111"}).Decode(&jane))
	assert.Equal(t, "PRV-1", jane["providerId"])

	var john bson.M
	require.NoError(t, users.FindOne(ctx, bson.M{"npi": "2222222222"}).Decode(&john))
	assert.Equal(t, "PRV-OLD", john["providerId"])

	_, err = os.Stat(reportPath)
	assert.NoError(t, err)
}

func TestRun_NameMatchDuplicates(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()

	users := db.Collection("Users")
	_, err := users.InsertMany(ctx, []interface{}{
		bson.M{"firstName": "Ann", "lastName": "Lee"},
		bson.M{"firstName": "ann", "lastName": "LEE"},
		bson.M{"firstName": "Bob", "lastName": "Ray"},
	})
	require.NoError(t, err)

	csvPath := filepath.Join(t.TempDir(), "providers.csv")
	content := "first_name,last_name,provider_id\n" +
		"Ann,Lee,PRV-1\n" + // duplicate (case-insensitive)
		"BOB,ray,PRV-2\n" // updates despite case difference
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0644))

	cfg := &config.Config{
		CSVPath:     csvPath,
		MatchField:  "name",
		TargetField: "providerId",
		SourceField: "provider_id",
	}

	summary, err := Run(ctx, db, zerolog.Nop(), cfg, "test-run")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Duplicate)
	assert.Equal(t, 1, summary.Updated)

	var bob bson.M
	require.NoError(t, users.FindOne(ctx, bson.M{"firstName": "Bob"}).Decode(&bob))
	assert.Equal(t, "PRV-2", bob["providerId"])
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()

	users := db.Collection("Users")
	_, err := users.InsertOne(ctx, bson.M{"firstName": "Jane", "lastName": "Doe", "npi": "1111111111"})
	require.NoError(t, err)

	csvPath := filepath.Join(t.TempDir(), "providers.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("npi,provider_id\n1111111111,PRV-1\n"), 0644))

	cfg := &config.Config{
		CSVPath:     csvPath,
		MatchField:  "npi",
		TargetField: "providerId",
		SourceField: "provider_id",
		DryRun:      true,
	}

	summary, err := Run(ctx, db, zerolog.Nop(), cfg, "test-run")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, StatusWouldUpdate, summary.Outcomes[0].Status)

	var jane bson.M
	require.NoError(t, users.FindOne(ctx, bson.M{"npi": "1111111111"}).Decode(&jane))
	_, has := jane["providerId"]
	assert.False(t, has)
}
