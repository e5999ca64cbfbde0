package manifest

import "time"

// Entry records one cleaning run of one input file.
type Entry struct {
	ID        string         `json:"id"`
	Seq       int            `json:"seq"`
	RunID     string         `json:"run_id"`
	Input     string         `json:"input"`
	Output    string         `json:"output,omitempty"`
	Report    string         `json:"report,omitempty"`
	Profile   string         `json:"profile"`
	RowsIn    int            `json:"rows_in"`
	RowsOut   int            `json:"rows_out"`
	Outliers  int            `json:"outlier_rows"`
	Violation map[string]int `json:"violations,omitempty"`
	Aborted   bool           `json:"aborted,omitempty"`
	Error     string         `json:"error,omitempty"`
	CleanedAt time.Time      `json:"cleaned_at"`
}
