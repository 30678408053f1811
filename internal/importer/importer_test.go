package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionFromFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Users.json", "Users"},
		{"/tmp/dump/Patients.json", "Patients"},
		{"appdata.Users.json", "Users"},
		{"StaffAvailability.json", "StaffAvailability"},
		{"notes.txt", ""},
		{".json", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CollectionFromFilename(c.in), "input %q", c.in)
	}
}

func TestDecodeDocuments_Array(t *testing.T) {
	docs, err := DecodeDocuments([]byte(`[{"a":1},{"b":2}]`))
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestDecodeDocuments_SingleObject(t *testing.T) {
	docs, err := DecodeDocuments([]byte(`{"a":1}`))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	m, ok := docs[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), m["a"])
}

func TestDecodeDocuments_Invalid(t *testing.T) {
	_, err := DecodeDocuments([]byte(`"just a string"`))
	assert.Error(t, err)

	_, err = DecodeDocuments([]byte(`{broken`))
	assert.Error(t, err)
}

func TestBatches(t *testing.T) {
	docs := make([]interface{}, 7)
	for i := range docs {
		docs[i] = i
	}

	batches := Batches(docs, 3)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[1], 3)
	assert.Len(t, batches[2], 1)

	// Zero size means everything in one batch.
	batches = Batches(docs, 0)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 7)

	assert.Empty(t, Batches(nil, 3))
}
