package types

// InsightRecord is one entry of a dataset's insight catalog, keyed by its
// question_N position. Result stays nil until execution attaches rows;
// records whose query failed or returned nothing never reach the catalog.
type InsightRecord struct {
	InsightQuestion string  `json:"insight_question"`
	SQLQuery        string  `json:"sql_query"`
	Result          [][]any `json:"result,omitempty"`
	InsightSummary  string  `json:"insight_summary,omitempty"`
}

// InsightCatalog is the durable shape written beside the dataset file,
// overwritten wholesale on every regeneration.
type InsightCatalog struct {
	SQLQueries map[string]*InsightRecord `json:"sql_queries"`
}

func NewInsightCatalog() *InsightCatalog {
	return &InsightCatalog{
		SQLQueries: make(map[string]*InsightRecord),
	}
}

// PinnedInsight is a user-pinned copy of a catalog record, used as chat
// context. The ID is assigned at pin time, never derived from content.
type PinnedInsight struct {
	ID        string `json:"id" db:"id"`
	ProjectID string `json:"project_id" db:"project_id"`
	Dataset   string `json:"dataset" db:"dataset"`
	Question  string `json:"question" db:"question"`
	SQLQuery  string `json:"sql_query" db:"sql_query"`
	Summary   string `json:"summary" db:"summary"`
	Result    string `json:"result" db:"result"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}
