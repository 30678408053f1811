package backfill

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Korrojo/mongoops/internal/config"
	"github.com/Korrojo/mongoops/internal/ops"
)

const usersCollection = "Users"

// Summary aggregates the outcomes of a backfill run.
type Summary struct {
	RunID      string
	Rows       int
	Updated    int
	NoMatch    int
	Duplicate  int
	AlreadySet int
	Invalid    int
	Errors     int
	Outcomes   []Outcome
	Duration   time.Duration
}

// Skipped is the number of rows that did not result in an update.
func (s *Summary) Skipped() int {
	return s.NoMatch + s.Duplicate + s.AlreadySet + s.Invalid
}

// Run matches each CSV row against the Users collection and sets
// cfg.TargetField from the cfg.SourceField column on the single match.
// Rows with zero or multiple matches, or whose target field is already
// populated, are skipped and logged.
func Run(ctx context.Context, database *mongo.Database, log zerolog.Logger, cfg *config.Config, runID string) (*Summary, error) {
	start := time.Now()

	parsed, err := ParseFile(cfg.CSVPath)
	if err != nil {
		return nil, &ops.OpError{Phase: "parse", Err: err}
	}
	for _, w := range parsed.Warnings {
		log.Warn().Int("row", w.Row).Msg(w.Message)
	}

	required := []string{cfg.SourceField}
	if cfg.MatchField == "npi" {
		required = append(required, "npi")
	} else {
		required = append(required, "first_name", "last_name")
	}
	if missing := parsed.HasColumns(required...); missing != "" {
		return nil, &ops.OpError{Phase: "parse", Err: fmt.Errorf("missing required column %q", missing)}
	}

	users := database.Collection(usersCollection)
	summary := &Summary{RunID: runID, Rows: len(parsed.Rows)}

	for _, row := range parsed.Rows {
		outcome := processRow(ctx, users, log, cfg, row)
		summary.Outcomes = append(summary.Outcomes, outcome)
		switch outcome.Status {
		case StatusUpdated, StatusWouldUpdate:
			summary.Updated++
		case StatusNoMatch:
			summary.NoMatch++
		case StatusDuplicate:
			summary.Duplicate++
		case StatusAlreadySet:
			summary.AlreadySet++
		case StatusInvalidRow:
			summary.Invalid++
		case StatusError:
			summary.Errors++
		}
	}

	if cfg.ReportFile != "" {
		if err := WriteReport(cfg.ReportFile, summary.Outcomes); err != nil {
			return nil, &ops.OpError{Phase: "report", Err: err}
		}
		log.Info().Str("file", cfg.ReportFile).Msg("outcome report written")
	}

	summary.Duration = time.Since(start)
	log.Info().
		Int("rows", summary.Rows).
		Int("updated", summary.Updated).
		Int("no_match", summary.NoMatch).
		Int("duplicate_match", summary.Duplicate).
		Int("already_set", summary.AlreadySet).
		Int("invalid", summary.Invalid).
		Int("errors", summary.Errors).
		Bool("dry_run", cfg.DryRun).
		Str("duration", summary.Duration.String()).
		Msg("backfill complete")

	return summary, nil
}

func processRow(ctx context.Context, users *mongo.Collection, log zerolog.Logger, cfg *config.Config, row Row) Outcome {
	value := row.Get(cfg.SourceField)
	if value == "" {
		log.Warn().Int("row", row.Num).Str("column", cfg.SourceField).Msg("row skipped, empty source value")
		return Outcome{Row: row.Num, Status: StatusInvalidRow, Reason: fmt.Sprintf("empty %s", cfg.SourceField)}
	}

	filter, err := BuildFilter(row, cfg.MatchField)
	if err != nil {
		log.Warn().Err(err).Int("row", row.Num).Msg("row skipped")
		return Outcome{Row: row.Num, Status: StatusInvalidRow, Reason: err.Error(), Value: value}
	}

	// Two documents are enough to detect a duplicate match.
	cursor, err := users.Find(ctx, filter, options.Find().SetLimit(2))
	if err != nil {
		log.Error().Err(err).Int("row", row.Num).Msg("find failed")
		return Outcome{Row: row.Num, Status: StatusError, Reason: err.Error(), Value: value}
	}
	var matches []bson.M
	if err := cursor.All(ctx, &matches); err != nil {
		log.Error().Err(err).Int("row", row.Num).Msg("decode failed")
		return Outcome{Row: row.Num, Status: StatusError, Reason: err.Error(), Value: value}
	}

	id, status, reason := Classify(matches, cfg.TargetField)
	outcome := Outcome{Row: row.Num, Status: status, Reason: reason, Value: value}
	if id != primitive.NilObjectID {
		outcome.MatchedID = id.Hex()
	}
	if status != StatusUpdated {
		log.Info().Int("row", row.Num).Str("status", string(status)).Str("reason", reason).Msg("row skipped")
		return outcome
	}

	if cfg.DryRun {
		outcome.Status = StatusWouldUpdate
		log.Info().
			Int("row", row.Num).
			Str("user_id", outcome.MatchedID).
			Str("field", cfg.TargetField).
			Str("value", value).
			Msg("dry run, update skipped")
		return outcome
	}

	_, err = users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{cfg.TargetField: value}},
	)
	if err != nil {
		log.Error().Err(err).Int("row", row.Num).Msg("update failed")
		outcome.Status = StatusError
		outcome.Reason = err.Error()
		return outcome
	}

	log.Info().
		Int("row", row.Num).
		Str("user_id", outcome.MatchedID).
		Str("field", cfg.TargetField).
		Msg("user updated")
	return outcome
}

// WriteReport writes the per-row outcomes as a CSV file.
func WriteReport(path string, outcomes []Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"row", "status", "reason", "matched_id", "value"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, o := range outcomes {
		rec := []string{
			fmt.Sprintf("%d", o.Row),
			string(o.Status),
			o.Reason,
			o.MatchedID,
			o.Value,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}
