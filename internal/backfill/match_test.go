package backfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func row(fields map[string]string) Row {
	return Row{Num: 2, Fields: fields}
}

func TestBuildFilter_NPI(t *testing.T) {
	f, err := BuildFilter(row(map[string]string{"npi": " 123-456-7890 "}), "npi")
	require.NoError(t, err)
	assert.Equal(t, bson.M{"npi": "1234567890"}, f)

	_, err = BuildFilter(row(map[string]string{"npi": "123"}), "npi")
	assert.Error(t, err)

	_, err = BuildFilter(row(map[string]string{}), "npi")
	assert.Error(t, err)
}

func TestBuildFilter_Name(t *testing.T) {
	f, err := BuildFilter(row(map[string]string{"first_name": "  Jane ", "last_name": "VAN  Dyke"}), "name")
	require.NoError(t, err)

	first, ok := f["firstName"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, "^jane$", first.Pattern)
	assert.Equal(t, "i", first.Options)

	last, ok := f["lastName"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, "^van dyke$", last.Pattern)

	_, err = BuildFilter(row(map[string]string{"first_name": "Jane"}), "name")
	assert.Error(t, err)
}

func TestBuildFilter_NameQuotesMetaChars(t *testing.T) {
	f, err := BuildFilter(row(map[string]string{"first_name": "a.b", "last_name": "c"}), "name")
	require.NoError(t, err)
	first := f["firstName"].(primitive.Regex)
	assert.Equal(t, `^a\.b$`, first.Pattern)
}

func TestBuildFilter_UnknownField(t *testing.T) {
	_, err := BuildFilter(row(map[string]string{}), "email")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	id := primitive.NewObjectID()

	// No match.
	_, status, _ := Classify(nil, "providerId")
	assert.Equal(t, StatusNoMatch, status)

	// Duplicate match.
	_, status, reason := Classify([]bson.M{{"_id": id}, {"_id": primitive.NewObjectID()}}, "providerId")
	assert.Equal(t, StatusDuplicate, status)
	assert.Contains(t, reason, "2 users")

	// Single match, target absent: update.
	got, status, _ := Classify([]bson.M{{"_id": id, "firstName": "Jane"}}, "providerId")
	assert.Equal(t, StatusUpdated, status)
	assert.Equal(t, id, got)

	// Single match, target empty string: update.
	_, status, _ = Classify([]bson.M{{"_id": id, "providerId": ""}}, "providerId")
	assert.Equal(t, StatusUpdated, status)

	// Single match, target already populated: skip.
	_, status, reason = Classify([]bson.M{{"_id": id, "providerId": "PRV-9"}}, "providerId")
	assert.Equal(t, StatusAlreadySet, status)
	assert.Contains(t, reason, "providerId")

	// Non-string populated value also counts as set.
	_, status, _ = Classify([]bson.M{{"_id": id, "providerId": int32(7)}}, "providerId")
	assert.Equal(t, StatusAlreadySet, status)

	// Missing ObjectID _id.
	_, status, _ = Classify([]bson.M{{"_id": "string-id"}}, "providerId")
	assert.Equal(t, StatusError, status)
}
