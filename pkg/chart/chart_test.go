package chart

import (
	"bytes"
	"testing"
	"unicode/utf8"

	"github.com/insighter-ai/insighter/pkg/types"
)

func TestParseSpec(t *testing.T) {
	raw := "```json\n{\"chart_type\": \"line\", \"title\": \"Sales over time\", \"sql_query\": \"SELECT month, SUM(sales) FROM sales_csv GROUP BY month\", \"x_label\": \"Month\", \"y_label\": \"Sales\"}\n```"

	spec, err := ParseSpec(raw)
	if err != nil {
		t.Fatal(err)
	}
	if spec.ChartType != TYPE_LINE {
		t.Errorf("ChartType = %q", spec.ChartType)
	}
	if spec.SQLQuery == "" {
		t.Error("SQLQuery empty")
	}
}

func TestParseSpecMissingQuery(t *testing.T) {
	if _, err := ParseSpec(`{"chart_type": "bar", "title": "t"}`); err == nil {
		t.Fatal("expected error for spec without sql_query")
	}
}

func TestParseSpecDefaultsChartType(t *testing.T) {
	spec, err := ParseSpec(`{"sql_query": "SELECT a, b FROM t"}`)
	if err != nil {
		t.Fatal(err)
	}
	if spec.ChartType != TYPE_BAR {
		t.Errorf("ChartType = %q, want bar default", spec.ChartType)
	}
}

func TestRenderProducesPNG(t *testing.T) {
	result := types.QueryResult{
		Columns: []string{"region", "total"},
		Rows: [][]any{
			{"north", int64(275)},
			{"south", int64(250)},
		},
	}

	for _, chartType := range []string{TYPE_BAR, TYPE_LINE, TYPE_SCATTER, TYPE_PIE} {
		t.Run(chartType, func(t *testing.T) {
			png, err := Render(Spec{ChartType: chartType, Title: "Sales by region", XLabel: "Region", YLabel: "Sales"}, result)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(png, []byte("\x89PNG")) {
				t.Error("output is not a png")
			}
		})
	}
}

func TestTruncateLabelKeepsRunesWhole(t *testing.T) {
	long := "营业收入按地区分类汇总统计表"
	got := truncateLabel(long)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated label is not valid utf-8: %q", got)
	}
	if utf8.RuneCountInString(got) != 12 {
		t.Errorf("expected 12 runes, got %d", utf8.RuneCountInString(got))
	}
	if short := truncateLabel("north"); short != "north" {
		t.Errorf("short label changed: %q", short)
	}
}

func TestRenderMultibyteLabels(t *testing.T) {
	result := types.QueryResult{
		Columns: []string{"地区", "合计"},
		Rows: [][]any{
			{"华北地区销售数据二〇二四年度汇总", int64(275)},
			{"华南", int64(250)},
		},
	}
	png, err := Render(Spec{ChartType: TYPE_BAR, Title: "销售"}, result)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("output is not a png")
	}
}

func TestRenderNoNumericSeries(t *testing.T) {
	result := types.QueryResult{
		Columns: []string{"region", "note"},
		Rows:    [][]any{{"north", "fine"}},
	}
	if _, err := Render(Spec{ChartType: TYPE_BAR}, result); err == nil {
		t.Fatal("expected error when the value column is not numeric")
	}
}
