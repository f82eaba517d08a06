package ai

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// CleanJSONPayload normalizes a raw completion before unmarshalling.
// Models often wrap JSON in markdown code fences and pad it with prose
// newlines; both break a strict parse.
func CleanJSONPayload(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}

// ExtractField parses one flat JSON object out of a completion and returns
// the named string field, or "" when the payload does not parse or the
// field is absent. Callers treat "" as "model answered off-contract".
func ExtractField(text, field string) string {
	cleaned := CleanJSONPayload(text)

	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		slog.Warn("completion payload is not a json object",
			slog.String("field", field),
			slog.String("payload", cleaned),
			slog.String("error", err.Error()))
		return ""
	}

	v, ok := payload[field]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

func ParseRouterResult(text string) RouterResult {
	return RouterResult{Action: ExtractField(text, "action")}
}

func ParseSQLQueryResult(text string) SQLQueryResult {
	return SQLQueryResult{SQLQuery: ExtractField(text, "sql_query")}
}

// ParseSQLGenResult parses the batch text-to-sql payload. A malformed
// payload here is an error, not a degradation, because the whole catalog
// derives from it.
func ParseSQLGenResult(text string) (SQLGenResult, error) {
	var result SQLGenResult
	if err := json.Unmarshal([]byte(CleanJSONPayload(text)), &result); err != nil {
		return result, fmt.Errorf("failed to parse sql generation payload, %w", err)
	}
	if result.SQLQueries == nil {
		result.SQLQueries = make(map[string]*SQLGenRecord)
	}
	return result, nil
}

func ParseSummaryResult(text string) SummaryResult {
	var result SummaryResult
	if err := json.Unmarshal([]byte(CleanJSONPayload(text)), &result); err != nil {
		slog.Warn("summary payload is not a json object",
			slog.String("payload", text),
			slog.String("error", err.Error()))
	}
	if result.Insights == nil {
		result.Insights = make(map[string]string)
	}
	return result
}
