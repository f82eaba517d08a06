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
		provider.stores.ChatMessageStore = NewChatMessageStore(provider)
	})
}

type ChatMessageStore struct {
	CommonFields
}

func NewChatMessageStore(provider SqlProviderAchieve) *ChatMessageStore {
	repo := &ChatMessageStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CHAT_MESSAGE)
	repo.SetAllColumns("id", "project_id", "role", "content", "send_time")
	return repo
}

func (s *ChatMessageStore) Create(ctx context.Context, data *types.ChatMessage) error {
	if data.SendTime == 0 {
		data.SendTime = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "project_id", "role", "content", "send_time").
		Values(data.ID, data.ProjectID, data.Role, data.Content, data.SendTime)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// ListRecent returns the latest messages, oldest first.
func (s *ChatMessageStore) ListRecent(ctx context.Context, projectID string, limit uint64) ([]types.ChatMessage, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("send_time DESC", "id DESC").
		Limit(limit)
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var messages []types.ChatMessage
	if err = s.GetReplica(ctx).Select(&messages, queryString, args...); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *ChatMessageStore) List(ctx context.Context, projectID string) ([]types.ChatMessage, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("send_time ASC", "id ASC")
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var messages []types.ChatMessage
	if err = s.GetReplica(ctx).Select(&messages, queryString, args...); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *ChatMessageStore) DeleteAll(ctx context.Context, projectID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"project_id": projectID})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
