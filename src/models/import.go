// backend/src/models/import.go
package models

// RawRecord is one undecoded row or array element of an uploaded file,
// keyed by the label used in that file.
type RawRecord map[string]any

type ImportSummary struct {
	TotalRows int `json:"total_rows"`
	Imported  int `json:"imported"`
	Failed    int `json:"failed"`
}

// ImportOutcome is the aggregate result of one import call.
type ImportOutcome struct {
	Imported []Purchase    `json:"imported"`
	Errors   []string      `json:"errors"`
	Summary  ImportSummary `json:"summary"`
}

// AllFailed reports whether the batch had errors and no row was imported.
func (o ImportOutcome) AllFailed() bool {
	return o.Summary.Imported == 0 && o.Summary.Failed > 0
}

// ExportMeta is the envelope header of a JSON export.
type ExportMeta struct {
	ExportedAt  string `json:"exported_at"`
	UserID      int64  `json:"user_id"`
	RecordCount int    `json:"record_count"`
	Format      string `json:"format"`
}

// ExportFormatVersion tags JSON exports so they can be re-imported.
const ExportFormatVersion = "expense-tracker-v1"
