package chart

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/insighter-ai/insighter/pkg/ai"
	"github.com/insighter-ai/insighter/pkg/types"
	"github.com/insighter-ai/insighter/pkg/utils"
)

const (
	TYPE_BAR     = "bar"
	TYPE_LINE    = "line"
	TYPE_SCATTER = "scatter"
	TYPE_PIE     = "pie"
)

// Spec is the declarative chart description the visualization agent emits.
// The data query runs against the current turn's tabular backend; the first
// selected column is the label axis, the second the value axis.
type Spec struct {
	ChartType string `json:"chart_type"`
	Title     string `json:"title"`
	SQLQuery  string `json:"sql_query"`
	XLabel    string `json:"x_label"`
	YLabel    string `json:"y_label"`
}

func ParseSpec(text string) (Spec, error) {
	var spec Spec
	if err := json.Unmarshal([]byte(ai.CleanJSONPayload(text)), &spec); err != nil {
		return spec, fmt.Errorf("chart spec is not a json object, %w", err)
	}
	if spec.SQLQuery == "" {
		return spec, fmt.Errorf("chart spec has no sql_query")
	}
	if spec.ChartType == "" {
		spec.ChartType = TYPE_BAR
	}
	return spec, nil
}

// PlotFileName returns the output name for a rendered chart.
func PlotFileName() string {
	return fmt.Sprintf("plot_%d.png", time.Now().Unix())
}

const (
	width   = 640
	height  = 400
	padding = 60
)

// Dark panel theme, matching the product's dashboard styling.
const (
	colorBackground = "#262730"
	colorForeground = "#ffffff"
	colorSeries     = "#ff4b4b"
	colorAxis       = "#888888"
)

var pieColors = []string{"#ff4b4b", "#4b9fff", "#ffc84b", "#4bff88", "#c84bff", "#4bffe3"}

// Render draws the query result as the requested chart and returns PNG
// bytes. Rows with a non-numeric value column are skipped.
func Render(spec Spec, result types.QueryResult) ([]byte, error) {
	labels, values := seriesOf(result)
	if len(values) == 0 {
		return nil, fmt.Errorf("no numeric series to plot")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, width, height, colorBackground)
	if spec.Title != "" {
		fmt.Fprintf(&sb, `<text x="%d" y="28" fill="%s" font-size="18" text-anchor="middle">%s</text>`, width/2, colorForeground, escape(spec.Title))
	}

	switch spec.ChartType {
	case TYPE_PIE:
		renderPie(&sb, labels, values)
	case TYPE_LINE:
		renderAxes(&sb, spec, labels, values)
		renderLine(&sb, values)
	case TYPE_SCATTER:
		renderAxes(&sb, spec, labels, values)
		renderScatter(&sb, values)
	default:
		renderAxes(&sb, spec, labels, values)
		renderBars(&sb, values)
	}

	sb.WriteString("</svg>")

	return utils.ConvertSVGToPNG([]byte(sb.String()))
}

// seriesOf extracts the label column and the numeric value column.
func seriesOf(result types.QueryResult) ([]string, []float64) {
	var (
		labels []string
		values []float64
	)
	for _, row := range result.Rows {
		if len(row) < 2 {
			continue
		}
		v, ok := toFloat(row[1])
		if !ok {
			continue
		}
		labels = append(labels, fmt.Sprint(row[0]))
		values = append(values, v)
	}
	return labels, values
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func renderAxes(sb *strings.Builder, spec Spec, labels []string, values []float64) {
	fmt.Fprintf(sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1"/>`, padding, height-padding, width-padding/2, height-padding, colorAxis)
	fmt.Fprintf(sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1"/>`, padding, padding/2, padding, height-padding, colorAxis)
	if spec.XLabel != "" {
		fmt.Fprintf(sb, `<text x="%d" y="%d" fill="%s" font-size="12" text-anchor="middle">%s</text>`, width/2, height-12, colorForeground, escape(spec.XLabel))
	}
	if spec.YLabel != "" {
		fmt.Fprintf(sb, `<text x="16" y="%d" fill="%s" font-size="12" text-anchor="middle" transform="rotate(-90 16 %d)">%s</text>`, height/2, colorForeground, height/2, escape(spec.YLabel))
	}

	step := plotWidth() / float64(len(labels))
	for i, label := range labels {
		x := float64(padding) + step*(float64(i)+0.5)
		fmt.Fprintf(sb, `<text x="%.1f" y="%d" fill="%s" font-size="10" text-anchor="middle">%s</text>`, x, height-padding+16, colorForeground, escape(truncateLabel(label)))
	}
}

func renderBars(sb *strings.Builder, values []float64) {
	max := maxOf(values)
	step := plotWidth() / float64(len(values))
	barWidth := step * 0.7
	for i, v := range values {
		h := scaled(v, max)
		x := float64(padding) + step*float64(i) + (step-barWidth)/2
		fmt.Fprintf(sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`, x, float64(height-padding)-h, barWidth, h, colorSeries)
	}
}

func renderLine(sb *strings.Builder, values []float64) {
	max := maxOf(values)
	step := plotWidth() / float64(len(values))
	points := make([]string, len(values))
	for i, v := range values {
		x := float64(padding) + step*(float64(i)+0.5)
		y := float64(height-padding) - scaled(v, max)
		points[i] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	fmt.Fprintf(sb, `<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`, strings.Join(points, " "), colorSeries)
}

func renderScatter(sb *strings.Builder, values []float64) {
	max := maxOf(values)
	step := plotWidth() / float64(len(values))
	for i, v := range values {
		x := float64(padding) + step*(float64(i)+0.5)
		y := float64(height-padding) - scaled(v, max)
		fmt.Fprintf(sb, `<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>`, x, y, colorSeries)
	}
}

func renderPie(sb *strings.Builder, labels []string, values []float64) {
	var total float64
	for _, v := range values {
		total += math.Abs(v)
	}
	if total == 0 {
		return
	}

	cx, cy, r := float64(width)/2, float64(height)/2+10, 130.0
	angle := -math.Pi / 2
	for i, v := range values {
		share := math.Abs(v) / total
		end := angle + share*2*math.Pi
		largeArc := 0
		if share > 0.5 {
			largeArc = 1
		}
		x1, y1 := cx+r*math.Cos(angle), cy+r*math.Sin(angle)
		x2, y2 := cx+r*math.Cos(end), cy+r*math.Sin(end)
		color := pieColors[i%len(pieColors)]
		fmt.Fprintf(sb, `<path d="M %.1f %.1f L %.1f %.1f A %.1f %.1f 0 %d 1 %.1f %.1f Z" fill="%s"/>`, cx, cy, x1, y1, r, r, largeArc, x2, y2, color)

		mid := (angle + end) / 2
		lx, ly := cx+(r+24)*math.Cos(mid), cy+(r+24)*math.Sin(mid)
		fmt.Fprintf(sb, `<text x="%.1f" y="%.1f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, lx, ly, colorForeground, escape(truncateLabel(labels[i])))
		angle = end
	}
}

func plotWidth() float64 {
	return float64(width) - float64(padding) - float64(padding)/2
}

func scaled(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	if v < 0 {
		v = 0
	}
	return v / max * (float64(height) - float64(padding) - float64(padding)/2)
}

func maxOf(values []float64) float64 {
	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}

func truncateLabel(s string) string {
	r := []rune(s)
	if len(r) > 12 {
		return string(r[:12])
	}
	return s
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
