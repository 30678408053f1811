package backfill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseFile_Valid(t *testing.T) {
	path := writeCSV(t, "first_name,last_name,npi,provider_id\nJane,Doe,1234567890,PRV-1\nJohn,Smith,9876543210,PRV-2\n")

	parsed, err := ParseFile(path)
	require.NoError(t, err)
	assert.Empty(t, parsed.Warnings)
	require.Len(t, parsed.Rows, 2)

	assert.Equal(t, 2, parsed.Rows[0].Num)
	assert.Equal(t, "Jane", parsed.Rows[0].Get("first_name"))
	assert.Equal(t, "PRV-2", parsed.Rows[1].Get("provider_id"))
}

func TestParseFile_BOMHeader(t *testing.T) {
	path := writeCSV(t, "\ufeffnpi,provider_id\n1234567890,PRV-1\n")

	parsed, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"npi", "provider_id"}, parsed.Headers)
	assert.Equal(t, "", parsed.HasColumns("npi", "provider_id"))
}

func TestParseFile_ShortAndLongRows(t *testing.T) {
	path := writeCSV(t, "a,b,c\n1,2\n1,2,3,4\n1,2,3\n")

	parsed, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 3)
	require.Len(t, parsed.Warnings, 2)

	// Short row padded.
	assert.Equal(t, "", parsed.Rows[0].Get("c"))
	// Long row truncated.
	assert.Equal(t, "3", parsed.Rows[1].Get("c"))
}

func TestParseFile_EmptyAndHeaderOnly(t *testing.T) {
	_, err := ParseFile(writeCSV(t, ""))
	assert.Error(t, err)

	_, err = ParseFile(writeCSV(t, "a,b\n"))
	assert.Error(t, err)
}

func TestHasColumns(t *testing.T) {
	p := &ParseResult{Headers: []string{"npi", "provider_id"}}
	assert.Equal(t, "", p.HasColumns("npi"))
	assert.Equal(t, "first_name", p.HasColumns("npi", "first_name"))
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	outcomes := []Outcome{
		{Row: 2, Status: StatusUpdated, MatchedID: "abc123", Value: "PRV-1"},
		{Row: 3, Status: StatusDuplicate, Reason: "2 users matched", Value: "PRV-2"},
	}
	require.NoError(t, WriteReport(path, outcomes))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "row,status,reason,matched_id,value")
	assert.Contains(t, content, "2,updated,,abc123,PRV-1")
	assert.Contains(t, content, "3,duplicate-match,2 users matched,,PRV-2")
}
