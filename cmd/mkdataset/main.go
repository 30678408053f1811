// mkdataset creates a small representative JSON fixture from a larger export.
// Two-pass: first buckets all documents by interesting traits, then selects the best N.
// Usage: go run ./cmd/mkdataset --in export/Users.json --out testdata/users-small.json --rows 200
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

func main() {
	in := flag.String("in", "", "input JSON export (array of documents)")
	out := flag.String("out", "fixture.json", "output JSON fixture")
	maxRows := flag.Int("rows", 200, "max documents to output")
	checkOnly := flag.Bool("check", false, "only print stats, don't write")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "--in is required")
		os.Exit(1)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(1)
	}
	var docs []map[string]interface{}
	if err := json.Unmarshal(data, &docs); err != nil {
		fmt.Fprintf(os.Stderr, "parse input: %v\n", err)
		os.Exit(1)
	}

	if *checkOnly {
		fmt.Printf("Total: %d, NPI: %d, ProviderId: %d, Inactive: %d\n",
			len(docs), countField(docs, "npi"), countField(docs, "providerId"), countInactive(docs))
		return
	}

	// Pass 1: bucket by interesting traits.
	type bucket struct {
		name string
		docs []map[string]interface{}
		want int
	}
	buckets := []*bucket{
		{name: "npi", want: 40},
		{name: "providerId", want: 30},
		{name: "inactive", want: 20},
		{name: "general", want: 0},
	}
	bucketMap := make(map[string]*bucket)
	for _, b := range buckets {
		bucketMap[b.name] = b
	}

	for _, doc := range docs {
		placed := false
		if hasField(doc, "npi") && len(bucketMap["npi"].docs) < bucketMap["npi"].want {
			bucketMap["npi"].docs = append(bucketMap["npi"].docs, doc)
			placed = true
		}
		if hasField(doc, "providerId") && len(bucketMap["providerId"].docs) < bucketMap["providerId"].want {
			bucketMap["providerId"].docs = append(bucketMap["providerId"].docs, doc)
			placed = true
		}
		if isInactive(doc) && len(bucketMap["inactive"].docs) < bucketMap["inactive"].want {
			bucketMap["inactive"].docs = append(bucketMap["inactive"].docs, doc)
			placed = true
		}
		if !placed && len(bucketMap["general"].docs) < *maxRows {
			bucketMap["general"].docs = append(bucketMap["general"].docs, doc)
		}
	}

	// Merge buckets in priority order.
	var selected []map[string]interface{}
	for _, b := range buckets {
		for _, doc := range b.docs {
			if len(selected) >= *maxRows {
				break
			}
			selected = append(selected, doc)
		}
	}

	outData, err := json.MarshalIndent(selected, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, outData, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d of %d documents to %s\n", len(selected), len(docs), *out)
	fmt.Printf("  %-12s %d\n", "npi", countField(selected, "npi"))
	fmt.Printf("  %-12s %d\n", "providerId", countField(selected, "providerId"))
	fmt.Printf("  %-12s %d\n", "inactive", countInactive(selected))
}

func hasField(doc map[string]interface{}, field string) bool {
	v, ok := doc[field]
	if !ok {
		return false
	}
	s, isStr := v.(string)
	return !isStr || s != ""
}

func isInactive(doc map[string]interface{}) bool {
	v, ok := doc["active"].(bool)
	return ok && !v
}

func countField(docs []map[string]interface{}, field string) int {
	n := 0
	for _, d := range docs {
		if hasField(d, field) {
			n++
		}
	}
	return n
}

func countInactive(docs []map[string]interface{}) int {
	n := 0
	for _, d := range docs {
		if isInactive(d) {
			n++
		}
	}
	return n
}
