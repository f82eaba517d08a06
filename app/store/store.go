package store

import (
	"context"

	"github.com/insighter-ai/insighter/pkg/sqlstore"
	"github.com/insighter-ai/insighter/pkg/types"
)

// ProjectStore 项目持久化
type ProjectStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.Project) error
	GetProject(ctx context.Context, id string) (*types.Project, error)
	GetByName(ctx context.Context, name string) (*types.Project, error)
	List(ctx context.Context) ([]types.Project, error)
	Delete(ctx context.Context, id string) error
}

// DatasetStore 数据集持久化
type DatasetStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.Dataset) error
	GetDataset(ctx context.Context, projectID, id string) (*types.Dataset, error)
	List(ctx context.Context, projectID string) ([]types.Dataset, error)
	Delete(ctx context.Context, projectID, id string) error
	DeleteAll(ctx context.Context, projectID string) error
}

// ChatMessageStore 会话消息持久化
type ChatMessageStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data *types.ChatMessage) error
	ListRecent(ctx context.Context, projectID string, limit uint64) ([]types.ChatMessage, error)
	List(ctx context.Context, projectID string) ([]types.ChatMessage, error)
	DeleteAll(ctx context.Context, projectID string) error
}

// AlertStore 告警持久化
type AlertStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.Alert) error
	List(ctx context.Context, projectID string) ([]types.Alert, error)
	Delete(ctx context.Context, projectID, id string) error
	DeleteAll(ctx context.Context, projectID string) error
}

// PinnedInsightStore 关注的洞察
type PinnedInsightStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.PinnedInsight) error
	GetPinnedInsight(ctx context.Context, projectID, id string) (*types.PinnedInsight, error)
	List(ctx context.Context, projectID string) ([]types.PinnedInsight, error)
	Delete(ctx context.Context, projectID, id string) error
	DeleteAll(ctx context.Context, projectID string) error
}
