package v1

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/insighter-ai/insighter/pkg/types"
)

// renderSchema stringifies the introspected schema the way the agent
// prompts expect it: a table list plus a columns map.
func renderSchema(meta types.TableMeta) string {
	tables := lo.Keys(meta)

	columns, err := json.Marshal(meta)
	if err != nil {
		columns = []byte("{}")
	}

	return fmt.Sprintf("Tables: %v\nColumns: %s", tables, columns)
}

// renderRows flattens a query result into readable text for chat replies.
func renderRows(result types.QueryResult) string {
	if result.Empty() {
		return "The query returned no rows."
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(result.Columns, " | "))
	sb.WriteString("\n")
	for _, row := range result.Rows {
		cells := lo.Map(row, func(v any, _ int) string {
			return fmt.Sprint(v)
		})
		sb.WriteString(strings.Join(cells, " | "))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
