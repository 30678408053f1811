package backfill

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Korrojo/mongoops/internal/normalize"
)

// Status classifies the outcome of one CSV row.
type Status string

const (
	StatusUpdated     Status = "updated"
	StatusWouldUpdate Status = "would-update" // dry run
	StatusNoMatch     Status = "no-match"
	StatusDuplicate   Status = "duplicate-match"
	StatusAlreadySet  Status = "already-set"
	StatusInvalidRow  Status = "invalid-row"
	StatusError       Status = "error"
)

// Outcome is the per-row result written to the report.
type Outcome struct {
	Row       int
	Status    Status
	Reason    string
	MatchedID string
	Value     string
}

// BuildFilter constructs the Users match filter for a CSV row.
// matchField "npi" matches the normalized 10-digit NPI exactly;
// "name" matches first and last name case-insensitively.
func BuildFilter(row Row, matchField string) (bson.M, error) {
	switch matchField {
	case "npi":
		npi := normalize.NPI(row.Get("npi"))
		if npi == "" {
			return nil, fmt.Errorf("row %d: missing or malformed npi %q", row.Num, row.Get("npi"))
		}
		return bson.M{"npi": npi}, nil
	case "name":
		first := normalize.Name(row.Get("first_name"))
		last := normalize.Name(row.Get("last_name"))
		if first == "" || last == "" {
			return nil, fmt.Errorf("row %d: first_name and last_name are required", row.Num)
		}
		return bson.M{
			"firstName": ciExact(first),
			"lastName":  ciExact(last),
		}, nil
	default:
		return nil, fmt.Errorf("unknown match field %q", matchField)
	}
}

// ciExact builds a case-insensitive whole-string match.
func ciExact(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

// Classify inspects the matched documents for a row and decides the
// outcome before any write: exactly one match whose target field is
// empty proceeds, everything else is skipped with a reason.
func Classify(matches []bson.M, targetField string) (primitive.ObjectID, Status, string) {
	switch {
	case len(matches) == 0:
		return primitive.NilObjectID, StatusNoMatch, "no matching user"
	case len(matches) > 1:
		return primitive.NilObjectID, StatusDuplicate, fmt.Sprintf("%d users matched", len(matches))
	}

	doc := matches[0]
	id, ok := doc["_id"].(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, StatusError, "matched document has no ObjectID _id"
	}

	if v, present := doc[targetField]; present {
		if s, isStr := v.(string); !isStr || s != "" {
			return id, StatusAlreadySet, fmt.Sprintf("%s already set", targetField)
		}
	}
	return id, StatusUpdated, ""
}
