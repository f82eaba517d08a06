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
		provider.stores.ProjectStore = NewProjectStore(provider)
	})
}

type ProjectStore struct {
	CommonFields
}

func NewProjectStore(provider SqlProviderAchieve) *ProjectStore {
	repo := &ProjectStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_PROJECT)
	repo.SetAllColumns("id", "name", "description", "path", "created_at")
	return repo
}

func (s *ProjectStore) Create(ctx context.Context, data types.Project) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "name", "description", "path", "created_at").
		Values(data.ID, data.Name, data.Description, data.Path, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ProjectStore) GetProject(ctx context.Context, id string) (*types.Project, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var project types.Project
	if err = s.GetReplica(ctx).Get(&project, queryString, args...); err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectStore) GetByName(ctx context.Context, name string) (*types.Project, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"name": name})
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var project types.Project
	if err = s.GetReplica(ctx).Get(&project, queryString, args...); err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectStore) List(ctx context.Context) ([]types.Project, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("created_at DESC")
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var projects []types.Project
	if err = s.GetReplica(ctx).Select(&projects, queryString, args...); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
