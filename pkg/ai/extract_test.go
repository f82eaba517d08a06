package ai

import (
	"strings"
	"testing"
)

func TestExtractField(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field string
		want  string
	}{
		{
			name:  "plain object",
			text:  `{"action": "alert"}`,
			field: "action",
			want:  "alert",
		},
		{
			name:  "fenced json",
			text:  "```json\n{\"sql_query\": \"SELECT region, SUM(sales) FROM sales_csv GROUP BY region\"}\n```",
			field: "sql_query",
			want:  "SELECT region, SUM(sales) FROM sales_csv GROUP BY region",
		},
		{
			name:  "not json",
			text:  "sorry, I cannot help with that",
			field: "action",
			want:  "",
		},
		{
			name:  "missing field",
			text:  `{"other": "x"}`,
			field: "action",
			want:  "",
		},
		{
			name:  "non-string field",
			text:  `{"action": 42}`,
			field: "action",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractField(tt.text, tt.field); got != tt.want {
				t.Errorf("ExtractField() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSQLGenResult(t *testing.T) {
	raw := "```json\n{\"sql_queries\": {\"question_1\": {\"insight_question\": \"Total sales?\", \"sql_query\": \"SELECT SUM(sales) FROM sales_csv\"}}}\n```"

	result, err := ParseSQLGenResult(raw)
	if err != nil {
		t.Fatalf("ParseSQLGenResult() error = %v", err)
	}
	rec, ok := result.SQLQueries["question_1"]
	if !ok {
		t.Fatal("question_1 missing from parsed result")
	}
	if rec.InsightQuestion != "Total sales?" {
		t.Errorf("InsightQuestion = %q", rec.InsightQuestion)
	}
}

func TestParseSQLGenResultMalformed(t *testing.T) {
	if _, err := ParseSQLGenResult("here are your queries: ..."); err == nil {
		t.Fatal("expected error for non-json payload")
	}
}

func TestParseSummaryResultMalformed(t *testing.T) {
	result := ParseSummaryResult("no json at all")
	if result.Insights == nil || len(result.Insights) != 0 {
		t.Fatalf("expected empty insights map, got %v", result.Insights)
	}
}

func TestPromptTemplateBuild(t *testing.T) {
	pt := &PromptTemplate{
		Body: PROMPT_ROUTER_EN,
		Lang: MODEL_BASE_LANGUAGE_EN,
	}
	pt.SetVar("${user_query}", "show me a chart of sales by region")

	prompt := pt.Build()
	if !strings.Contains(prompt, "show me a chart of sales by region") {
		t.Error("user query not substituted")
	}
	if strings.Contains(prompt, "${user_query}") {
		t.Error("placeholder left in built prompt")
	}
}
