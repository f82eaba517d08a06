package types

// TableColumn mirrors one row of sqlite's table_info pragma.
type TableColumn struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	NotNull      bool   `json:"not_null"`
	DefaultValue string `json:"default_value"`
	PrimaryKey   bool   `json:"primary_key"`
}

// TableMeta maps loaded table names to their column descriptors.
type TableMeta map[string][]TableColumn

// QueryResult holds the rows of one read query against a tabular backend.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func (r QueryResult) Empty() bool {
	return len(r.Rows) == 0
}
