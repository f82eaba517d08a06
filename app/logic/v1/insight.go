package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/insighter-ai/insighter/app/core"
	"github.com/insighter-ai/insighter/pkg/ai"
	"github.com/insighter-ai/insighter/pkg/errors"
	"github.com/insighter-ai/insighter/pkg/i18n"
	"github.com/insighter-ai/insighter/pkg/tabular"
	"github.com/insighter-ai/insighter/pkg/types"
	"github.com/insighter-ai/insighter/pkg/utils"
)

type InsightLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewInsightLogic(ctx context.Context, core *core.Core) *InsightLogic {
	return &InsightLogic{
		ctx:  ctx,
		core: core,
	}
}

// GenerateCatalog runs the full insight pipeline for one dataset and
// overwrites the dataset's catalog with the outcome. Stages run in a fixed
// order over a single disposable backend: load, extract metadata, draft
// questions, generate sql, execute, summarize, merge.
func (l *InsightLogic) GenerateCatalog(projectID, datasetID string) (*types.InsightCatalog, error) {
	dataset, err := l.core.Store().DatasetStore().GetDataset(l.ctx, projectID, datasetID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("InsightLogic.GenerateCatalog.DatasetStore.GetDataset", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("InsightLogic.GenerateCatalog.DatasetStore.GetDataset", i18n.ERROR_INTERNAL, err)
	}

	if !l.core.RunGate().TryAcquire(projectID) {
		return nil, errors.New("InsightLogic.GenerateCatalog.RunGate", i18n.ERROR_PIPELINE_BUSY, nil).Code(http.StatusTooManyRequests)
	}
	defer l.core.RunGate().Release(projectID)

	timer := l.core.Metrics().PipelineTimer("insight")
	defer timer.ObserveDuration()

	backend, err := tabular.Load(l.ctx, []string{dataset.Path})
	if err != nil {
		return nil, errors.New("InsightLogic.GenerateCatalog.tabular.Load", i18n.ERROR_DATASET_UNREADABLE, err)
	}
	defer backend.Close()

	meta, err := backend.Introspect(l.ctx)
	if err != nil {
		return nil, errors.New("InsightLogic.GenerateCatalog.Introspect", i18n.ERROR_INTERNAL, err)
	}
	schema := renderSchema(meta)

	// Stage: metadata extraction.
	metadataPrompt := &ai.PromptTemplate{Body: ai.PROMPT_METADATA_EN}
	metadataPrompt.SetVar("${columns}", schema)
	metadataText, err := invokeAgent(l.ctx, l.core, "metadata", metadataPrompt.Build())
	if err != nil {
		return nil, errors.Trace("InsightLogic.GenerateCatalog.metadata", err)
	}
	metadataResult := "Table name : " + utils.NormalizeTableName(filepath.Base(dataset.Path)) + "\n" + metadataText

	// Stage: draft insight questions.
	questionsPrompt := &ai.PromptTemplate{Body: ai.PROMPT_INSIGHT_QUESTIONS_EN}
	questionsPrompt.SetVar("${metadata}", metadataResult)
	questions, err := invokeAgent(l.ctx, l.core, "insight_questions", questionsPrompt.Build())
	if err != nil {
		return nil, errors.Trace("InsightLogic.GenerateCatalog.questions", err)
	}

	// Stage: text-to-sql. A malformed payload is fatal to the run since
	// nothing downstream can proceed without structured queries.
	sqlGenPrompt := &ai.PromptTemplate{Body: ai.PROMPT_TEXT_TO_SQL_EN}
	sqlGenPrompt.SetVar("${metadata}", metadataResult)
	sqlGenPrompt.SetVar("${insight_questions}", questions)
	sqlGenText, err := invokeAgent(l.ctx, l.core, "text_to_sql", sqlGenPrompt.Build())
	if err != nil {
		return nil, errors.Trace("InsightLogic.GenerateCatalog.text_to_sql", err)
	}
	sqlGen, err := ai.ParseSQLGenResult(sqlGenText)
	if err != nil {
		return nil, errors.New("InsightLogic.GenerateCatalog.ParseSQLGenResult", i18n.ERROR_INTERNAL, err)
	}

	// Stage: execute. Records with a missing query, a failed query or an
	// empty result are dropped; the pipeline degrades instead of aborting.
	catalog := types.NewInsightCatalog()
	for key, rec := range sqlGen.SQLQueries {
		if rec == nil || rec.SQLQuery == "" {
			continue
		}
		result, execErr := backend.Execute(l.ctx, rec.SQLQuery)
		if execErr != nil || result.Empty() {
			continue
		}
		catalog.SQLQueries[key] = &types.InsightRecord{
			InsightQuestion: rec.InsightQuestion,
			SQLQuery:        rec.SQLQuery,
			Result:          result.Rows,
		}
	}

	l.core.Metrics().CatalogRecordCount(len(catalog.SQLQueries))

	// Stage: summarize. Skipped entirely when nothing survived execution.
	if len(catalog.SQLQueries) > 0 {
		payload, err := json.Marshal(catalog)
		if err != nil {
			return nil, errors.New("InsightLogic.GenerateCatalog.json.Marshal", i18n.ERROR_INTERNAL, err)
		}
		summaryPrompt := &ai.PromptTemplate{Body: ai.PROMPT_INSIGHT_SUMMARY_EN}
		summaryPrompt.SetVar("${sql_queries_and_results}", string(payload))
		summaryText, err := invokeAgent(l.ctx, l.core, "insight_summary", summaryPrompt.Build())
		if err != nil {
			return nil, errors.Trace("InsightLogic.GenerateCatalog.summary", err)
		}

		// Records absent from the summary payload keep no summary;
		// consumers treat them as incomplete.
		for key, summary := range ai.ParseSummaryResult(summaryText).Insights {
			if rec, ok := catalog.SQLQueries[key]; ok {
				rec.InsightSummary = summary
			}
		}
	}

	if err = l.core.CatalogStore().Write(dataset.Path, catalog); err != nil {
		return nil, errors.New("InsightLogic.GenerateCatalog.CatalogStore.Write", i18n.ERROR_INTERNAL, err)
	}

	return catalog, nil
}

// GetCatalog reads the stored catalog for one dataset. Absent or corrupt
// documents come back empty rather than failing the browse.
func (l *InsightLogic) GetCatalog(projectID, datasetID string) (*types.InsightCatalog, error) {
	dataset, err := l.core.Store().DatasetStore().GetDataset(l.ctx, projectID, datasetID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("InsightLogic.GetCatalog.DatasetStore.GetDataset", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("InsightLogic.GetCatalog.DatasetStore.GetDataset", i18n.ERROR_INTERNAL, err)
	}

	catalog, err := l.core.CatalogStore().Read(dataset.Path)
	if err != nil {
		return nil, errors.New("InsightLogic.GetCatalog.CatalogStore.Read", i18n.ERROR_INTERNAL, err)
	}
	return catalog, nil
}
