package v1_test

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/insighter-ai/insighter/app/core"
	"github.com/insighter-ai/insighter/app/core/srv"
	v1 "github.com/insighter-ai/insighter/app/logic/v1"
	"github.com/insighter-ai/insighter/pkg/ai"
	"github.com/insighter-ai/insighter/pkg/errors"
	"github.com/insighter-ai/insighter/pkg/testutils"
	"github.com/insighter-ai/insighter/pkg/types"
)

// scriptedDriver replays canned completions in call order.
type scriptedDriver struct {
	mu      sync.Mutex
	replies []string
	calls   int
}

func (d *scriptedDriver) Lang() string {
	return ai.MODEL_BASE_LANGUAGE_EN
}

func (d *scriptedDriver) Complete(ctx context.Context, prompt string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if len(d.replies) == 0 {
		return "", fmt.Errorf("no scripted reply for call %d", d.calls)
	}
	reply := d.replies[0]
	d.replies = d.replies[1:]
	return reply, nil
}

func TestMain(m *testing.M) {
	testutils.LoadEnv()
	os.Exit(m.Run())
}

var (
	setupOnce  sync.Once
	sharedCore *core.Core
)

func testCore(t *testing.T, driver *scriptedDriver) *core.Core {
	t.Helper()
	setupOnce.Do(func() {
		dir, err := os.MkdirTemp("", "insighter-logic-test")
		if err != nil {
			panic(err)
		}
		sharedCore = core.MustSetupCore(core.CoreConfig{
			Log:       core.Log{Level: "error"},
			SQLite:    core.SQLiteConfig{DSN: dir + "/insighter.db"},
			Workspace: core.WorkspaceConfig{Path: dir + "/projects"},
		})
	})
	sharedCore.InstallSrvs(srv.ApplyChatDriver(driver))
	return sharedCore
}

var projectSeq int

func newTestProject(t *testing.T, c *core.Core) *types.Project {
	t.Helper()
	projectSeq++
	logic := v1.NewProjectLogic(context.Background(), c)
	project, err := logic.CreateProject(fmt.Sprintf("proj-%s-%d", t.Name(), projectSeq), "test project")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return project
}

const salesCSV = "region,amount\nnorth,120\nsouth,80\nnorth,75\n"

func uploadSales(t *testing.T, c *core.Core, projectID string) *types.Dataset {
	t.Helper()
	logic := v1.NewProjectLogic(context.Background(), c)
	dataset, err := logic.UploadDataset(projectID, "sales.csv", strings.NewReader(salesCSV))
	if err != nil {
		t.Fatalf("UploadDataset: %v", err)
	}
	return dataset
}

func TestUploadDatasetRejectsUnknownExtension(t *testing.T) {
	c := testCore(t, &scriptedDriver{})
	project := newTestProject(t, c)

	logic := v1.NewProjectLogic(context.Background(), c)
	if _, err := logic.UploadDataset(project.ID, "notes.txt", strings.NewReader("hello")); err == nil {
		t.Fatal("expected an error for a .txt upload")
	}
}

func TestCreateProjectDuplicateName(t *testing.T) {
	c := testCore(t, &scriptedDriver{})
	project := newTestProject(t, c)

	logic := v1.NewProjectLogic(context.Background(), c)
	if _, err := logic.CreateProject(project.Name, ""); err == nil {
		t.Fatal("expected duplicate name to be rejected")
	}
}

func TestGenerateCatalog(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		"The table tracks sales amounts per region.",
		"1. Which region has the highest total amount?",
		`{"sql_queries": {
			"question_1": {
				"insight_question": "Which region has the highest total amount?",
				"sql_query": "SELECT region, SUM(amount) AS total FROM sales_csv GROUP BY region ORDER BY total DESC"
			},
			"question_2": {
				"insight_question": "A query against a missing table.",
				"sql_query": "SELECT x FROM missing_table"
			},
			"question_3": {
				"insight_question": "A query with no rows.",
				"sql_query": "SELECT region FROM sales_csv WHERE amount > 99999"
			}
		}}`,
		`{"insights": {"question_1": "North leads on total amount."}}`,
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	dataset := uploadSales(t, c, project.ID)

	logic := v1.NewInsightLogic(context.Background(), c)
	catalog, err := logic.GenerateCatalog(project.ID, dataset.ID)
	if err != nil {
		t.Fatalf("GenerateCatalog: %v", err)
	}

	if len(catalog.SQLQueries) != 1 {
		t.Fatalf("expected failed and empty queries to be dropped, got %d records", len(catalog.SQLQueries))
	}
	rec, ok := catalog.SQLQueries["question_1"]
	if !ok {
		t.Fatal("question_1 missing from catalog")
	}
	if rec.InsightSummary != "North leads on total amount." {
		t.Errorf("unexpected summary %q", rec.InsightSummary)
	}
	if len(rec.Result) != 2 {
		t.Errorf("expected 2 result rows, got %d", len(rec.Result))
	}

	// The catalog must survive a fresh read from disk.
	stored, err := logic.GetCatalog(project.ID, dataset.ID)
	if err != nil {
		t.Fatalf("GetCatalog: %v", err)
	}
	if len(stored.SQLQueries) != 1 {
		t.Errorf("stored catalog has %d records, want 1", len(stored.SQLQueries))
	}
}

func TestGenerateCatalogMalformedSQLGen(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		// first run succeeds and persists a catalog
		"metadata", "questions",
		`{"sql_queries": {"question_1": {"insight_question": "Totals per region?", "sql_query": "SELECT region, SUM(amount) FROM sales_csv GROUP BY region"}}}`,
		`{"insights": {"question_1": "North leads."}}`,
		// second run fails at the sql generation stage
		"metadata", "questions", "this is not json",
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	dataset := uploadSales(t, c, project.ID)

	logic := v1.NewInsightLogic(context.Background(), c)
	if _, err := logic.GenerateCatalog(project.ID, dataset.ID); err != nil {
		t.Fatalf("GenerateCatalog: %v", err)
	}

	if _, err := logic.GenerateCatalog(project.ID, dataset.ID); err == nil {
		t.Fatal("expected a malformed sql generation payload to fail the run")
	}

	// the aborted run must not touch the stored catalog
	stored, err := logic.GetCatalog(project.ID, dataset.ID)
	if err != nil {
		t.Fatalf("GetCatalog: %v", err)
	}
	rec, ok := stored.SQLQueries["question_1"]
	if !ok {
		t.Fatal("prior catalog lost after the aborted run")
	}
	if rec.InsightSummary != "North leads." {
		t.Errorf("prior summary changed: %q", rec.InsightSummary)
	}
}

func TestGenerateCatalogIdempotentKeys(t *testing.T) {
	run := []string{
		"metadata", "questions",
		`{"sql_queries": {
			"question_1": {"insight_question": "Totals per region?", "sql_query": "SELECT region, SUM(amount) FROM sales_csv GROUP BY region"},
			"question_2": {"insight_question": "No rows.", "sql_query": "SELECT region FROM sales_csv WHERE amount > 99999"}
		}}`,
		`{"insights": {"question_1": "North leads."}}`,
	}
	driver := &scriptedDriver{replies: append(append([]string{}, run...), run...)}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	dataset := uploadSales(t, c, project.ID)

	logic := v1.NewInsightLogic(context.Background(), c)
	first, err := logic.GenerateCatalog(project.ID, dataset.ID)
	if err != nil {
		t.Fatalf("GenerateCatalog: %v", err)
	}
	second, err := logic.GenerateCatalog(project.ID, dataset.ID)
	if err != nil {
		t.Fatalf("GenerateCatalog: %v", err)
	}

	if len(first.SQLQueries) != len(second.SQLQueries) {
		t.Fatalf("surviving keys differ: %d vs %d", len(first.SQLQueries), len(second.SQLQueries))
	}
	for key := range first.SQLQueries {
		if _, ok := second.SQLQueries[key]; !ok {
			t.Errorf("key %s missing from the second run", key)
		}
	}
}

func TestGenerateCatalogNoSurvivorsSkipsSummary(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		"metadata", "questions",
		`{"sql_queries": {"question_1": {"insight_question": "q", "sql_query": "SELECT region FROM sales_csv WHERE amount > 99999"}}}`,
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	dataset := uploadSales(t, c, project.ID)

	logic := v1.NewInsightLogic(context.Background(), c)
	catalog, err := logic.GenerateCatalog(project.ID, dataset.ID)
	if err != nil {
		t.Fatalf("GenerateCatalog: %v", err)
	}
	if len(catalog.SQLQueries) != 0 {
		t.Fatalf("expected an empty catalog, got %d records", len(catalog.SQLQueries))
	}
	if driver.calls != 3 {
		t.Errorf("expected summary stage to be skipped, driver saw %d calls", driver.calls)
	}
}

func TestGenerateCatalogBusyGate(t *testing.T) {
	c := testCore(t, &scriptedDriver{})
	project := newTestProject(t, c)
	dataset := uploadSales(t, c, project.ID)

	if !c.RunGate().TryAcquire(project.ID) {
		t.Fatal("gate should be free")
	}
	defer c.RunGate().Release(project.ID)

	logic := v1.NewInsightLogic(context.Background(), c)
	_, err := logic.GenerateCatalog(project.ID, dataset.ID)
	if err == nil {
		t.Fatal("expected a busy error while the gate is held")
	}
	ce, ok := err.(*errors.CustomizedError)
	if !ok || ce.GetCode() != http.StatusTooManyRequests {
		t.Errorf("expected http 429, got %v", err)
	}
}

func TestProcessQuerySQLDatabaseQuery(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		`{"action": "sql database query"}`,
		`{"sql_query": "SELECT region, SUM(amount) AS total FROM sales_csv GROUP BY region ORDER BY total DESC"}`,
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	uploadSales(t, c, project.ID)

	logic := v1.NewChatLogic(context.Background(), c)
	reply, err := logic.ProcessQuery(project.ID, "total amount per region?")
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}
	if !strings.Contains(reply.Content, "north") || !strings.Contains(reply.Content, "195") {
		t.Errorf("unexpected reply %q", reply.Content)
	}

	history, err := logic.History(project.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected user and assistant turns persisted, got %d", len(history))
	}
	if history[0].Role != types.USER_ROLE_USER || history[1].Role != types.USER_ROLE_ASSISTANT {
		t.Errorf("unexpected roles %q, %q", history[0].Role, history[1].Role)
	}
}

func TestProcessQueryEmptyExtractedSQL(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		`{"action": "sql database query"}`,
		"sorry, no idea",
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	uploadSales(t, c, project.ID)

	logic := v1.NewChatLogic(context.Background(), c)
	reply, err := logic.ProcessQuery(project.ID, "total amount per region?")
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}
	if reply.Content != "" {
		t.Errorf("expected an empty reply, got %q", reply.Content)
	}
}

func TestProcessQueryBadSQLReportsError(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		`{"action": "sql database query"}`,
		`{"sql_query": "SELECT x FROM missing_table"}`,
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	uploadSales(t, c, project.ID)

	logic := v1.NewChatLogic(context.Background(), c)
	reply, err := logic.ProcessQuery(project.ID, "query the missing table")
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}
	if !strings.HasPrefix(reply.Content, "Error executing SQL: ") {
		t.Errorf("unexpected reply %q", reply.Content)
	}
}

func TestProcessQueryFallback(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		`{"action": "interpretive dance"}`,
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	uploadSales(t, c, project.ID)

	logic := v1.NewChatLogic(context.Background(), c)
	reply, err := logic.ProcessQuery(project.ID, "do something odd")
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}
	if reply.Content != types.FALLBACK_REPLY {
		t.Errorf("expected the fallback reply, got %q", reply.Content)
	}
	if driver.calls != 1 {
		t.Errorf("fallback must not call a handler agent, driver saw %d calls", driver.calls)
	}
}

func TestProcessQueryAlertPersists(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		`{"action": "alert"}`,
		"Alert me when daily sales drop below 100.",
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	uploadSales(t, c, project.ID)

	chatLogic := v1.NewChatLogic(context.Background(), c)
	reply, err := chatLogic.ProcessQuery(project.ID, "notify me when sales drop below 100")
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}
	if reply.Content != "Alert me when daily sales drop below 100." {
		t.Errorf("unexpected reply %q", reply.Content)
	}

	alertLogic := v1.NewAlertLogic(context.Background(), c)
	alerts, err := alertLogic.ListAlerts(project.ID)
	if err != nil {
		t.Fatalf("ListAlerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Message != reply.Content {
		t.Errorf("expected the alert to be stored, got %+v", alerts)
	}

	if err = alertLogic.ClearAlerts(project.ID); err != nil {
		t.Fatalf("ClearAlerts: %v", err)
	}
	alerts, err = alertLogic.ListAlerts(project.ID)
	if err != nil {
		t.Fatalf("ListAlerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected alerts cleared, got %d", len(alerts))
	}
}

func TestProcessQueryVisualizationWritesPlot(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		`{"action": "visualization"}`,
		`{"chart_type": "bar", "title": "Totals", "sql_query": "SELECT region, SUM(amount) FROM sales_csv GROUP BY region", "x_label": "Region", "y_label": "Total"}`,
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	uploadSales(t, c, project.ID)

	logic := v1.NewChatLogic(context.Background(), c)
	reply, err := logic.ProcessQuery(project.ID, "plot totals by region")
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}
	if !strings.HasSuffix(reply.Content, ".png") {
		t.Fatalf("expected a plot path reply, got %q", reply.Content)
	}
	raw, err := os.ReadFile(reply.Content)
	if err != nil {
		t.Fatalf("reading plot file: %v", err)
	}
	if !strings.HasPrefix(string(raw), "\x89PNG") {
		t.Error("plot file is not a png")
	}
}

func TestProcessQueryComparison(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		`{"action": "comparison"}`,
		"North outsells south by 115.",
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	uploadSales(t, c, project.ID)

	logic := v1.NewChatLogic(context.Background(), c)
	reply, err := logic.ProcessQuery(project.ID, "compare north and south")
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}
	if reply.Content != "North outsells south by 115." {
		t.Errorf("unexpected reply %q", reply.Content)
	}
	if driver.calls != 2 {
		t.Errorf("expected router plus comparison agent, driver saw %d calls", driver.calls)
	}
}

func TestProcessQueryInsightDetails(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		`{"action": "insight details"}`,
		"The totals insight aggregates amount per region.",
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	uploadSales(t, c, project.ID)

	logic := v1.NewChatLogic(context.Background(), c)
	reply, err := logic.ProcessQuery(project.ID, "explain the totals insight")
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}
	if reply.Content != "The totals insight aggregates amount per region." {
		t.Errorf("unexpected reply %q", reply.Content)
	}
	if driver.calls != 2 {
		t.Errorf("expected router plus details agent, driver saw %d calls", driver.calls)
	}
}

func TestProcessQueryAlertHintAppended(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		`{"action": "chat"}`,
		"Sure, alert created.",
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	uploadSales(t, c, project.ID)

	logic := v1.NewChatLogic(context.Background(), c)
	if _, err := logic.ProcessQuery(project.ID, "please notify me about anomalies"); err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}

	history, err := logic.History(project.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	var hint bool
	for _, msg := range history {
		if msg.Role == types.USER_ROLE_SYSTEM && strings.Contains(msg.Content, "wants to create an alert") {
			hint = true
		}
	}
	if !hint {
		t.Error("expected the alert hint to be persisted as a system message")
	}
}

func TestProcessQueryUnknownProject(t *testing.T) {
	c := testCore(t, &scriptedDriver{})
	logic := v1.NewChatLogic(context.Background(), c)
	if _, err := logic.ProcessQuery("no-such-project", "hello"); err == nil {
		t.Fatal("expected an error for an unknown project")
	}
}

func TestClearHistory(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		`{"action": "chat"}`,
		"hello there",
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	uploadSales(t, c, project.ID)

	logic := v1.NewChatLogic(context.Background(), c)
	if _, err := logic.ProcessQuery(project.ID, "hi"); err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}
	if err := logic.ClearHistory(project.ID); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	history, err := logic.History(project.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected an empty history, got %d messages", len(history))
	}
}

func TestPinInsightLifecycle(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		"metadata", "questions",
		`{"sql_queries": {"question_1": {"insight_question": "Totals per region?", "sql_query": "SELECT region, SUM(amount) FROM sales_csv GROUP BY region"}}}`,
		`{"insights": {"question_1": "North leads."}}`,
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	dataset := uploadSales(t, c, project.ID)

	insightLogic := v1.NewInsightLogic(context.Background(), c)
	if _, err := insightLogic.GenerateCatalog(project.ID, dataset.ID); err != nil {
		t.Fatalf("GenerateCatalog: %v", err)
	}

	projectLogic := v1.NewProjectLogic(context.Background(), c)
	pin, err := projectLogic.PinInsight(project.ID, dataset.ID, "question_1")
	if err != nil {
		t.Fatalf("PinInsight: %v", err)
	}
	if pin.Dataset != "sales.csv" || pin.Summary != "North leads." {
		t.Errorf("unexpected pin %+v", pin)
	}

	if _, err = projectLogic.PinInsight(project.ID, dataset.ID, "question_9"); err == nil {
		t.Fatal("expected a missing catalog record to be rejected")
	}

	pins, err := projectLogic.ListPinnedInsights(project.ID)
	if err != nil {
		t.Fatalf("ListPinnedInsights: %v", err)
	}
	if len(pins) != 1 {
		t.Fatalf("expected 1 pin, got %d", len(pins))
	}

	if err = projectLogic.UnpinInsight(project.ID, pin.ID); err != nil {
		t.Fatalf("UnpinInsight: %v", err)
	}
	pins, err = projectLogic.ListPinnedInsights(project.ID)
	if err != nil {
		t.Fatalf("ListPinnedInsights: %v", err)
	}
	if len(pins) != 0 {
		t.Errorf("expected no pins after unpin, got %d", len(pins))
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		`{"action": "chat"}`,
		"hello",
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	dataset := uploadSales(t, c, project.ID)

	chatLogic := v1.NewChatLogic(context.Background(), c)
	if _, err := chatLogic.ProcessQuery(project.ID, "hi"); err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}

	projectLogic := v1.NewProjectLogic(context.Background(), c)
	if err := projectLogic.DeleteProject(project.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	if _, err := os.Stat(dataset.Path); !os.IsNotExist(err) {
		t.Error("expected the project directory to be removed")
	}
	if _, err := projectLogic.GetProject(project.ID); err == nil {
		t.Error("expected the project row to be gone")
	}
	history, err := chatLogic.History(project.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected chat history to be gone, got %d messages", len(history))
	}
}

func TestDeleteDatasetRemovesCatalog(t *testing.T) {
	driver := &scriptedDriver{replies: []string{
		"metadata", "questions",
		`{"sql_queries": {"question_1": {"insight_question": "q", "sql_query": "SELECT region FROM sales_csv"}}}`,
		`{"insights": {"question_1": "s"}}`,
	}}
	c := testCore(t, driver)
	project := newTestProject(t, c)
	dataset := uploadSales(t, c, project.ID)

	insightLogic := v1.NewInsightLogic(context.Background(), c)
	if _, err := insightLogic.GenerateCatalog(project.ID, dataset.ID); err != nil {
		t.Fatalf("GenerateCatalog: %v", err)
	}

	projectLogic := v1.NewProjectLogic(context.Background(), c)
	if err := projectLogic.DeleteDataset(project.ID, dataset.ID); err != nil {
		t.Fatalf("DeleteDataset: %v", err)
	}

	if _, err := os.Stat(dataset.Path); !os.IsNotExist(err) {
		t.Error("expected the dataset file to be removed")
	}
	catalogPath := strings.TrimSuffix(dataset.Path, ".csv") + ".json"
	if _, err := os.Stat(catalogPath); !os.IsNotExist(err) {
		t.Error("expected the catalog file to be removed")
	}
}
