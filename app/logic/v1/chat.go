package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/samber/lo"

	"github.com/insighter-ai/insighter/app/core"
	"github.com/insighter-ai/insighter/pkg/ai"
	"github.com/insighter-ai/insighter/pkg/chart"
	"github.com/insighter-ai/insighter/pkg/errors"
	"github.com/insighter-ai/insighter/pkg/i18n"
	"github.com/insighter-ai/insighter/pkg/tabular"
	"github.com/insighter-ai/insighter/pkg/types"
	"github.com/insighter-ai/insighter/pkg/utils"
)

// The chat context window covers at most this many prior user/assistant
// turns.
const historyWindow = 4

var alertPhrases = []string{
	"create alert", "create an alert", "set up alert", "set up an alert",
	"add alert", "add an alert", "make alert", "make an alert", "notify me",
}

var insightReferenceKeywords = []string{"compare", "explain", "tell me about", "insight"}

type ChatLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewChatLogic(ctx context.Context, core *core.Core) *ChatLogic {
	return &ChatLogic{
		ctx:  ctx,
		core: core,
	}
}

// ProcessQuery runs one chat turn: load every project dataset into a
// disposable backend, classify the intent, dispatch to the matching
// handler and persist both sides of the exchange. Unroutable intents get a
// fixed fallback reply without a model call.
func (l *ChatLogic) ProcessQuery(projectID, utterance string) (*types.ChatMessage, error) {
	project, err := l.core.Store().ProjectStore().GetProject(l.ctx, projectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("ChatLogic.ProcessQuery.ProjectStore.GetProject", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("ChatLogic.ProcessQuery.ProjectStore.GetProject", i18n.ERROR_INTERNAL, err)
	}

	if !l.core.RunGate().TryAcquire(projectID) {
		return nil, errors.New("ChatLogic.ProcessQuery.RunGate", i18n.ERROR_PIPELINE_BUSY, nil).Code(http.StatusTooManyRequests)
	}
	defer l.core.RunGate().Release(projectID)

	timer := l.core.Metrics().PipelineTimer("chat")
	defer timer.ObserveDuration()

	history, err := l.core.Store().ChatMessageStore().ListRecent(l.ctx, projectID, historyWindow*2)
	if err != nil {
		return nil, errors.New("ChatLogic.ProcessQuery.ChatMessageStore.ListRecent", i18n.ERROR_INTERNAL, err)
	}

	pins, err := l.core.Store().PinnedInsightStore().List(l.ctx, projectID)
	if err != nil {
		return nil, errors.New("ChatLogic.ProcessQuery.PinnedInsightStore.List", i18n.ERROR_INTERNAL, err)
	}
	insightsJSON := renderPinnedInsights(pins)

	if err = l.appendMessage(projectID, types.USER_ROLE_USER, utterance); err != nil {
		return nil, errors.Trace("ChatLogic.ProcessQuery.user", err)
	}

	hints := buildSystemHints(utterance, len(pins) > 0)
	for _, hint := range hints {
		if err = l.appendMessage(projectID, types.USER_ROLE_SYSTEM, hint); err != nil {
			return nil, errors.Trace("ChatLogic.ProcessQuery.hint", err)
		}
	}

	routedQuery := buildRoutedQuery(utterance, history, hints)

	datasets, err := l.core.Store().DatasetStore().List(l.ctx, projectID)
	if err != nil {
		return nil, errors.New("ChatLogic.ProcessQuery.DatasetStore.List", i18n.ERROR_INTERNAL, err)
	}
	files := lo.Map(datasets, func(d types.Dataset, _ int) string {
		return d.Path
	})

	backend, err := tabular.Load(l.ctx, files)
	if err != nil {
		return nil, errors.New("ChatLogic.ProcessQuery.tabular.Load", i18n.ERROR_DATASET_UNREADABLE, err)
	}
	defer backend.Close()

	meta, err := backend.Introspect(l.ctx)
	if err != nil {
		return nil, errors.New("ChatLogic.ProcessQuery.Introspect", i18n.ERROR_INTERNAL, err)
	}
	schema := renderSchema(meta)

	action, err := l.route(routedQuery)
	if err != nil {
		return nil, errors.Trace("ChatLogic.ProcessQuery.route", err)
	}

	handlers := map[string]func() (string, error){
		types.ACTION_SQL_QUERY: func() (string, error) {
			return l.handleSQLQuery(routedQuery, schema, backend)
		},
		types.ACTION_ALERT: func() (string, error) {
			return l.handleAlert(projectID, routedQuery, schema, insightsJSON)
		},
		types.ACTION_VISUALIZATION: func() (string, error) {
			return l.handleVisualization(project, routedQuery, schema, insightsJSON, backend)
		},
		types.ACTION_COMPARISON: func() (string, error) {
			return l.handleComparison(routedQuery, insightsJSON)
		},
		types.ACTION_INSIGHT_DETAILS: func() (string, error) {
			return l.handleInsightDetails(routedQuery, schema, insightsJSON)
		},
		types.ACTION_CHAT: func() (string, error) {
			return l.handleCasualChat(routedQuery, schema)
		},
	}

	var reply string
	if handler, ok := handlers[action]; ok {
		l.core.Metrics().DispatchInc(action)
		if reply, err = handler(); err != nil {
			return nil, errors.Trace("ChatLogic.ProcessQuery.dispatch", err)
		}
	} else {
		l.core.Metrics().DispatchInc("fallback")
		reply = types.FALLBACK_REPLY
	}

	assistant := &types.ChatMessage{
		ID:        utils.GenUniqIDStr(),
		ProjectID: projectID,
		Role:      types.USER_ROLE_ASSISTANT,
		Content:   reply,
	}
	if err = l.core.Store().ChatMessageStore().Create(l.ctx, assistant); err != nil {
		return nil, errors.New("ChatLogic.ProcessQuery.ChatMessageStore.Create", i18n.ERROR_INTERNAL, err)
	}

	return assistant, nil
}

func (l *ChatLogic) History(projectID string) ([]types.ChatMessage, error) {
	messages, err := l.core.Store().ChatMessageStore().List(l.ctx, projectID)
	if err != nil {
		return nil, errors.New("ChatLogic.History.ChatMessageStore.List", i18n.ERROR_INTERNAL, err)
	}
	return messages, nil
}

func (l *ChatLogic) ClearHistory(projectID string) error {
	if err := l.core.Store().ChatMessageStore().DeleteAll(l.ctx, projectID); err != nil {
		return errors.New("ChatLogic.ClearHistory.ChatMessageStore.DeleteAll", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *ChatLogic) appendMessage(projectID, role, content string) error {
	msg := &types.ChatMessage{
		ID:        utils.GenUniqIDStr(),
		ProjectID: projectID,
		Role:      role,
		Content:   content,
	}
	if err := l.core.Store().ChatMessageStore().Create(l.ctx, msg); err != nil {
		return errors.New("ChatLogic.appendMessage", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *ChatLogic) route(routedQuery string) (string, error) {
	body := ai.PROMPT_ROUTER_EN
	if custom := l.core.Cfg().Prompt.Router; custom != "" {
		body = custom
	}
	prompt := &ai.PromptTemplate{Body: body}
	prompt.SetVar("${user_query}", routedQuery)

	text, err := invokeAgent(l.ctx, l.core, "router", prompt.Build())
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(ai.ParseRouterResult(text).Action)), nil
}

func (l *ChatLogic) handleSQLQuery(routedQuery, schema string, backend *tabular.Backend) (string, error) {
	prompt := &ai.PromptTemplate{Body: ai.PROMPT_CHAT_SQL_EN}
	prompt.SetVar("${user_query}", routedQuery)
	prompt.SetVar("${columns}", schema)

	text, err := invokeAgent(l.ctx, l.core, "chat_sql", prompt.Build())
	if err != nil {
		return "", err
	}

	sqlQuery := ai.ParseSQLQueryResult(text).SQLQuery
	if sqlQuery == "" {
		return "", nil
	}

	result, execErr := backend.Execute(l.ctx, sqlQuery)
	if execErr != nil {
		return fmt.Sprintf("Error executing SQL: %s", execErr), nil
	}
	return renderRows(result), nil
}

func (l *ChatLogic) handleAlert(projectID, routedQuery, schema, insightsJSON string) (string, error) {
	prompt := &ai.PromptTemplate{Body: ai.PROMPT_ALERT_EN}
	prompt.SetVar("${user_query}", routedQuery)
	prompt.SetVar("${columns}", schema)
	prompt.SetVar("${insights}", insightsJSON)

	text, err := invokeAgent(l.ctx, l.core, "alert", prompt.Build())
	if err != nil {
		return "", err
	}

	alertText := strings.TrimSpace(text)
	if alertText != "" {
		err = l.core.Store().AlertStore().Create(l.ctx, types.Alert{
			ID:        utils.GenUniqIDStr(),
			ProjectID: projectID,
			Message:   alertText,
		})
		if err != nil {
			return "", errors.New("ChatLogic.handleAlert.AlertStore.Create", i18n.ERROR_INTERNAL, err)
		}
	}
	return alertText, nil
}

// handleVisualization asks the agent for a declarative chart description,
// runs its data query and renders the chart locally. Model output is never
// executed as code. Failures degrade to an error description in the reply.
func (l *ChatLogic) handleVisualization(project *types.Project, routedQuery, schema, insightsJSON string, backend *tabular.Backend) (string, error) {
	prompt := &ai.PromptTemplate{Body: ai.PROMPT_VISUALIZATION_EN}
	prompt.SetVar("${user_query}", routedQuery)
	prompt.SetVar("${columns}", schema)
	prompt.SetVar("${insights}", insightsJSON)

	text, err := invokeAgent(l.ctx, l.core, "visualization", prompt.Build())
	if err != nil {
		return "", err
	}

	spec, err := chart.ParseSpec(text)
	if err != nil {
		return fmt.Sprintf("Error: %s", err), nil
	}

	result, execErr := backend.Execute(l.ctx, spec.SQLQuery)
	if execErr != nil {
		return fmt.Sprintf("Error executing SQL: %s", execErr), nil
	}

	png, err := chart.Render(spec, result)
	if err != nil {
		return fmt.Sprintf("Error: %s", err), nil
	}

	plotPath := filepath.Join(project.Path, chart.PlotFileName())
	if err = os.WriteFile(plotPath, png, 0o644); err != nil {
		return "", errors.New("ChatLogic.handleVisualization.WriteFile", i18n.ERROR_INTERNAL, err)
	}
	return plotPath, nil
}

func (l *ChatLogic) handleComparison(routedQuery, insightsJSON string) (string, error) {
	prompt := &ai.PromptTemplate{Body: ai.PROMPT_COMPARISON_EN}
	prompt.SetVar("${user_query}", routedQuery)
	prompt.SetVar("${insights}", insightsJSON)

	return invokeAgent(l.ctx, l.core, "comparison", prompt.Build())
}

func (l *ChatLogic) handleInsightDetails(routedQuery, schema, insightsJSON string) (string, error) {
	prompt := &ai.PromptTemplate{Body: ai.PROMPT_INSIGHT_DETAILS_EN}
	prompt.SetVar("${user_query}", routedQuery)
	prompt.SetVar("${metadata}", schema)
	prompt.SetVar("${insights}", insightsJSON)

	return invokeAgent(l.ctx, l.core, "insight_details", prompt.Build())
}

func (l *ChatLogic) handleCasualChat(routedQuery, schema string) (string, error) {
	body := ai.PROMPT_CASUAL_CHAT_EN
	if custom := l.core.Cfg().Prompt.CasualChat; custom != "" {
		body = custom
	}
	prompt := &ai.PromptTemplate{Body: body}
	prompt.SetVar("${user_query}", routedQuery)
	prompt.SetVar("${metadata}", schema)

	return invokeAgent(l.ctx, l.core, "casual_chat", prompt.Build())
}

// buildSystemHints mirrors the conversational nudges the product adds
// before routing: pinned-insight context for short follow-ups and a
// directness hint for alert requests.
func buildSystemHints(utterance string, hasPins bool) []string {
	var hints []string

	lowered := strings.ToLower(utterance)

	if hasPins && len(strings.Fields(utterance)) < 5 {
		referencing := lo.SomeBy(insightReferenceKeywords, func(kw string) bool {
			return strings.Contains(lowered, kw)
		})
		if !referencing {
			hints = append(hints, "Note: The user has selected insights. Their message might be referring to those insights.")
		}
	}

	if lo.SomeBy(alertPhrases, func(p string) bool { return strings.Contains(lowered, p) }) {
		hints = append(hints, "Note: The user wants to create an alert. Respond with a simple, direct alert message.")
	}

	return hints
}

// buildRoutedQuery prefixes the utterance with up to four prior
// user/assistant turns. When the assembled context blows the token budget
// the prefix is dropped and the bare utterance routes alone.
func buildRoutedQuery(utterance string, history []types.ChatMessage, hints []string) string {
	var turns []string
	for _, msg := range history {
		if msg.Role != types.USER_ROLE_USER && msg.Role != types.USER_ROLE_ASSISTANT {
			continue
		}
		role := strings.ToUpper(msg.Role[:1]) + msg.Role[1:]
		turns = append(turns, fmt.Sprintf("%s: %s", role, msg.Content))
	}
	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}

	query := utterance
	if len(turns) > 0 {
		query = fmt.Sprintf("Previous conversation:\n%s\n\nCurrent question: %s", strings.Join(turns, "\n"), utterance)
	}
	for _, hint := range hints {
		query += "\n\n" + hint
	}

	if overTokenLimit(query) {
		query = utterance
		for _, hint := range hints {
			query += "\n\n" + hint
		}
	}

	return query
}

func overTokenLimit(query string) bool {
	n, err := ai.NumTokens([]openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: query},
	}, openai.GPT4oMini)
	if err != nil {
		return false
	}
	return n > 8000
}

// renderPinnedInsights serializes the pinned set in the shape the prompts
// expect, keyed by dataset and selection order.
func renderPinnedInsights(pins []types.PinnedInsight) string {
	if len(pins) == 0 {
		return ""
	}

	payload := make(map[string]map[string]any, len(pins))
	for i, pin := range pins {
		payload[fmt.Sprintf("selected_%s_%d", pin.Dataset, i)] = map[string]any{
			"insight_question": pin.Question,
			"insight_summary":  pin.Summary,
			"insight_query":    pin.SQLQuery,
			"insight_data":     pin.Result,
			"file_name":        pin.Dataset,
			"selection_order":  i,
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(raw)
}
