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
		provider.stores.AlertStore = NewAlertStore(provider)
	})
}

type AlertStore struct {
	CommonFields
}

func NewAlertStore(provider SqlProviderAchieve) *AlertStore {
	repo := &AlertStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_ALERT)
	repo.SetAllColumns("id", "project_id", "message", "created_at")
	return repo
}

func (s *AlertStore) Create(ctx context.Context, data types.Alert) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "project_id", "message", "created_at").
		Values(data.ID, data.ProjectID, data.Message, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *AlertStore) List(ctx context.Context, projectID string) ([]types.Alert, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("created_at DESC")
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var alerts []types.Alert
	if err = s.GetReplica(ctx).Select(&alerts, queryString, args...); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (s *AlertStore) Delete(ctx context.Context, projectID, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"project_id": projectID, "id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *AlertStore) DeleteAll(ctx context.Context, projectID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"project_id": projectID})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
