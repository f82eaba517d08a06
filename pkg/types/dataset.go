package types

// Dataset is one uploaded delimited file. The file itself lives under the
// project directory; rows are only materialized inside a pipeline run.
type Dataset struct {
	ID        string `json:"id" db:"id"`
	ProjectID string `json:"project_id" db:"project_id"`
	Name      string `json:"name" db:"name"`
	Path      string `json:"path" db:"path"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}
