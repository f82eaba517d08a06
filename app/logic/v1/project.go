package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/insighter-ai/insighter/app/core"
	"github.com/insighter-ai/insighter/pkg/errors"
	"github.com/insighter-ai/insighter/pkg/i18n"
	"github.com/insighter-ai/insighter/pkg/types"
	"github.com/insighter-ai/insighter/pkg/utils"
)

type ProjectLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewProjectLogic(ctx context.Context, core *core.Core) *ProjectLogic {
	return &ProjectLogic{
		ctx:  ctx,
		core: core,
	}
}

func (l *ProjectLogic) CreateProject(name, description string) (*types.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("ProjectLogic.CreateProject.name", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	existing, err := l.core.Store().ProjectStore().GetByName(l.ctx, name)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("ProjectLogic.CreateProject.ProjectStore.GetByName", i18n.ERROR_INTERNAL, err)
	}
	if existing != nil {
		return nil, errors.New("ProjectLogic.CreateProject.exist", i18n.ERROR_EXIST, nil).Code(http.StatusForbidden)
	}

	project := types.Project{
		ID:          utils.GenUniqIDStr(),
		Name:        name,
		Description: description,
		Path:        filepath.Join(l.core.Cfg().Workspace.PathOrDefault(), name),
	}

	if err = os.MkdirAll(project.Path, 0o755); err != nil {
		return nil, errors.New("ProjectLogic.CreateProject.MkdirAll", i18n.ERROR_INTERNAL, err)
	}

	if err = l.core.Store().ProjectStore().Create(l.ctx, project); err != nil {
		return nil, errors.New("ProjectLogic.CreateProject.ProjectStore.Create", i18n.ERROR_INTERNAL, err)
	}
	return &project, nil
}

func (l *ProjectLogic) ListProjects() ([]types.Project, error) {
	projects, err := l.core.Store().ProjectStore().List(l.ctx)
	if err != nil {
		return nil, errors.New("ProjectLogic.ListProjects.ProjectStore.List", i18n.ERROR_INTERNAL, err)
	}
	return projects, nil
}

func (l *ProjectLogic) GetProject(projectID string) (*types.Project, error) {
	project, err := l.core.Store().ProjectStore().GetProject(l.ctx, projectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("ProjectLogic.GetProject", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("ProjectLogic.GetProject", i18n.ERROR_INTERNAL, err)
	}
	return project, nil
}

// DeleteProject removes the project row, every dependent row and the
// project directory (datasets, catalogs and plots included).
func (l *ProjectLogic) DeleteProject(projectID string) error {
	project, err := l.GetProject(projectID)
	if err != nil {
		return errors.Trace("ProjectLogic.DeleteProject", err)
	}

	err = l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().DatasetStore().DeleteAll(ctx, projectID); err != nil {
			return err
		}
		if err := l.core.Store().ChatMessageStore().DeleteAll(ctx, projectID); err != nil {
			return err
		}
		if err := l.core.Store().AlertStore().DeleteAll(ctx, projectID); err != nil {
			return err
		}
		if err := l.core.Store().PinnedInsightStore().DeleteAll(ctx, projectID); err != nil {
			return err
		}
		return l.core.Store().ProjectStore().Delete(ctx, projectID)
	})
	if err != nil {
		return errors.New("ProjectLogic.DeleteProject.Transaction", i18n.ERROR_INTERNAL, err)
	}

	if err = os.RemoveAll(project.Path); err != nil {
		return errors.New("ProjectLogic.DeleteProject.RemoveAll", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

// UploadDataset stores a delimited or spreadsheet file in the project
// directory and registers it.
func (l *ProjectLogic) UploadDataset(projectID, fileName string, content io.Reader) (*types.Dataset, error) {
	project, err := l.GetProject(projectID)
	if err != nil {
		return nil, errors.Trace("ProjectLogic.UploadDataset", err)
	}

	fileName = filepath.Base(strings.TrimSpace(fileName))
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".xlsx":
	default:
		return nil, errors.New("ProjectLogic.UploadDataset.ext", i18n.ERROR_UNSUPPORTED_FEATURE, nil).Code(http.StatusBadRequest)
	}

	path := filepath.Join(project.Path, fileName)
	out, err := os.Create(path)
	if err != nil {
		return nil, errors.New("ProjectLogic.UploadDataset.Create", i18n.ERROR_INTERNAL, err)
	}
	defer out.Close()

	if _, err = io.Copy(out, content); err != nil {
		return nil, errors.New("ProjectLogic.UploadDataset.Copy", i18n.ERROR_INTERNAL, err)
	}

	dataset := types.Dataset{
		ID:        utils.GenUniqIDStr(),
		ProjectID: projectID,
		Name:      fileName,
		Path:      path,
	}
	if err = l.core.Store().DatasetStore().Create(l.ctx, dataset); err != nil {
		return nil, errors.New("ProjectLogic.UploadDataset.DatasetStore.Create", i18n.ERROR_INTERNAL, err)
	}
	return &dataset, nil
}

func (l *ProjectLogic) ListDatasets(projectID string) ([]types.Dataset, error) {
	datasets, err := l.core.Store().DatasetStore().List(l.ctx, projectID)
	if err != nil {
		return nil, errors.New("ProjectLogic.ListDatasets", i18n.ERROR_INTERNAL, err)
	}
	return datasets, nil
}

// DeleteDataset removes the dataset row, the file and its catalog.
func (l *ProjectLogic) DeleteDataset(projectID, datasetID string) error {
	dataset, err := l.core.Store().DatasetStore().GetDataset(l.ctx, projectID, datasetID)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New("ProjectLogic.DeleteDataset", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return errors.New("ProjectLogic.DeleteDataset", i18n.ERROR_INTERNAL, err)
	}

	if err = l.core.Store().DatasetStore().Delete(l.ctx, projectID, datasetID); err != nil {
		return errors.New("ProjectLogic.DeleteDataset.DatasetStore.Delete", i18n.ERROR_INTERNAL, err)
	}
	if err = l.core.CatalogStore().Delete(dataset.Path); err != nil {
		return errors.New("ProjectLogic.DeleteDataset.CatalogStore.Delete", i18n.ERROR_INTERNAL, err)
	}
	if err = os.Remove(dataset.Path); err != nil && !os.IsNotExist(err) {
		return errors.New("ProjectLogic.DeleteDataset.Remove", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

// PinInsight copies one catalog record into the pinned set. The pin gets
// its own generated identifier; later regenerations of the catalog do not
// touch existing pins.
func (l *ProjectLogic) PinInsight(projectID, datasetID, questionKey string) (*types.PinnedInsight, error) {
	dataset, err := l.core.Store().DatasetStore().GetDataset(l.ctx, projectID, datasetID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("ProjectLogic.PinInsight.dataset", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("ProjectLogic.PinInsight.dataset", i18n.ERROR_INTERNAL, err)
	}

	catalog, err := l.core.CatalogStore().Read(dataset.Path)
	if err != nil {
		return nil, errors.New("ProjectLogic.PinInsight.CatalogStore.Read", i18n.ERROR_INTERNAL, err)
	}

	record, ok := catalog.SQLQueries[questionKey]
	if !ok {
		return nil, errors.New("ProjectLogic.PinInsight.record", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	resultJSON, err := json.Marshal(record.Result)
	if err != nil {
		return nil, errors.New("ProjectLogic.PinInsight.Marshal", i18n.ERROR_INTERNAL, err)
	}

	pin := types.PinnedInsight{
		ID:        utils.GenUniqIDStr(),
		ProjectID: projectID,
		Dataset:   dataset.Name,
		Question:  record.InsightQuestion,
		SQLQuery:  record.SQLQuery,
		Summary:   record.InsightSummary,
		Result:    string(resultJSON),
	}
	if err = l.core.Store().PinnedInsightStore().Create(l.ctx, pin); err != nil {
		return nil, errors.New("ProjectLogic.PinInsight.PinnedInsightStore.Create", i18n.ERROR_INTERNAL, err)
	}
	return &pin, nil
}

func (l *ProjectLogic) UnpinInsight(projectID, pinID string) error {
	if err := l.core.Store().PinnedInsightStore().Delete(l.ctx, projectID, pinID); err != nil {
		return errors.New("ProjectLogic.UnpinInsight", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *ProjectLogic) ListPinnedInsights(projectID string) ([]types.PinnedInsight, error) {
	pins, err := l.core.Store().PinnedInsightStore().List(l.ctx, projectID)
	if err != nil {
		return nil, errors.New("ProjectLogic.ListPinnedInsights", i18n.ERROR_INTERNAL, err)
	}
	return pins, nil
}
