package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/insighter-ai/insighter/pkg/register"
	"github.com/insighter-ai/insighter/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.DatasetStore = NewDatasetStore(provider)
	})
}

type DatasetStore struct {
	CommonFields
}

func NewDatasetStore(provider SqlProviderAchieve) *DatasetStore {
	repo := &DatasetStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_DATASET)
	repo.SetAllColumns("id", "project_id", "name", "path", "created_at")
	return repo
}

func (s *DatasetStore) Create(ctx context.Context, data types.Dataset) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "project_id", "name", "path", "created_at").
		Values(data.ID, data.ProjectID, data.Name, data.Path, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *DatasetStore) GetDataset(ctx context.Context, projectID, id string) (*types.Dataset, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"project_id": projectID, "id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var dataset types.Dataset
	if err = s.GetReplica(ctx).Get(&dataset, queryString, args...); err != nil {
		return nil, err
	}
	return &dataset, nil
}

func (s *DatasetStore) List(ctx context.Context, projectID string) ([]types.Dataset, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"project_id": projectID}).OrderBy("created_at ASC")
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var datasets []types.Dataset
	if err = s.GetReplica(ctx).Select(&datasets, queryString, args...); err != nil {
		return nil, err
	}
	return datasets, nil
}

func (s *DatasetStore) Delete(ctx context.Context, projectID, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"project_id": projectID, "id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *DatasetStore) DeleteAll(ctx context.Context, projectID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"project_id": projectID})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
