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
		provider.stores.PinnedInsightStore = NewPinnedInsightStore(provider)
	})
}

type PinnedInsightStore struct {
	CommonFields
}

func NewPinnedInsightStore(provider SqlProviderAchieve) *PinnedInsightStore {
	repo := &PinnedInsightStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_PINNED_INSIGHT)
	repo.SetAllColumns("id", "project_id", "dataset", "question", "sql_query", "summary", "result", "created_at")
	return repo
}

func (s *PinnedInsightStore) Create(ctx context.Context, data types.PinnedInsight) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "project_id", "dataset", "question", "sql_query", "summary", "result", "created_at").
		Values(data.ID, data.ProjectID, data.Dataset, data.Question, data.SQLQuery, data.Summary, data.Result, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *PinnedInsightStore) GetPinnedInsight(ctx context.Context, projectID, id string) (*types.PinnedInsight, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"project_id": projectID, "id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var pin types.PinnedInsight
	if err = s.GetReplica(ctx).Get(&pin, queryString, args...); err != nil {
		return nil, err
	}
	return &pin, nil
}

func (s *PinnedInsightStore) List(ctx context.Context, projectID string) ([]types.PinnedInsight, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("created_at ASC")
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var pins []types.PinnedInsight
	if err = s.GetReplica(ctx).Select(&pins, queryString, args...); err != nil {
		return nil, err
	}
	return pins, nil
}

func (s *PinnedInsightStore) Delete(ctx context.Context, projectID, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"project_id": projectID, "id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *PinnedInsightStore) DeleteAll(ctx context.Context, projectID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"project_id": projectID})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
