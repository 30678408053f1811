package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/Korrojo/mongoops/internal/model"
)

// WriteReport renders the report to path in the requested format
// ("csv" or "json").
func WriteReport(report *model.StatsReport, path, format string) error {
	switch format {
	case "json":
		return writeJSON(report, path)
	case "csv":
		return writeCSV(report, path)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func writeJSON(report *model.StatsReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// csvHeader is the column layout of the CSV report, one row per index
// with collection-level figures repeated.
var csvHeader = []string{
	"collection", "documents", "size_bytes", "storage_size_bytes",
	"avg_obj_size_bytes", "capped", "index_name", "index_key",
	"index_unique", "index_accesses", "index_size_bytes",
}

func writeCSV(report *model.StatsReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, cs := range report.Collections {
		base := []string{
			cs.Collection,
			strconv.FormatInt(cs.Documents, 10),
			strconv.FormatInt(cs.SizeBytes, 10),
			strconv.FormatInt(cs.StorageSize, 10),
			strconv.FormatInt(cs.AvgObjSize, 10),
			strconv.FormatBool(cs.Capped),
		}
		if len(cs.Indexes) == 0 {
			if err := w.Write(append(base, "", "", "", "", "")); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
			continue
		}
		for _, ix := range cs.Indexes {
			row := append(append([]string{}, base...),
				ix.Name,
				ix.KeySpec,
				strconv.FormatBool(ix.Unique),
				strconv.FormatInt(ix.Accesses, 10),
				strconv.FormatInt(ix.SizeBytes, 10),
			)
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}
