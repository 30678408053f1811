package model

// IndexStat describes one index of a collection.
type IndexStat struct {
	Name      string `json:"name"`
	KeySpec   string `json:"keySpec"`
	Unique    bool   `json:"unique"`
	Sparse    bool   `json:"sparse"`
	Accesses  int64  `json:"accesses"`
	SizeBytes int64  `json:"sizeBytes,omitempty"`
}

// CollectionStat is one row of a stats report.
type CollectionStat struct {
	Collection  string      `json:"collection"`
	Documents   int64       `json:"documents"`
	SizeBytes   int64       `json:"sizeBytes"`
	StorageSize int64       `json:"storageSizeBytes"`
	AvgObjSize  int64       `json:"avgObjSizeBytes"`
	Capped      bool        `json:"capped"`
	IndexCount  int         `json:"indexCount"`
	Indexes     []IndexStat `json:"indexes"`
}

// StatsReport is the full output of a stats run.
type StatsReport struct {
	RunID       string           `json:"runId"`
	Database    string           `json:"database"`
	GeneratedAt string           `json:"generatedAt"`
	Collections []CollectionStat `json:"collections"`
}
