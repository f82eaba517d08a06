package sqlstore

import (
	"fmt"
	"reflect"
	"time"

	"github.com/insighter-ai/insighter/app/store"
	"github.com/insighter-ai/insighter/pkg/register"
	"github.com/insighter-ai/insighter/pkg/sqlstore"
	"github.com/insighter-ai/insighter/pkg/types"
)

var provider = &Provider{
	stores: &Stores{},
}

func GetProvider() *Provider {
	return provider
}

type Provider struct {
	*sqlstore.SqlProvider
	stores *Stores
}

type Stores struct {
	store.ProjectStore
	store.DatasetStore
	store.ChatMessageStore
	store.AlertStore
	store.PinnedInsightStore
}

func (s *Provider) batchExecStoreFuncs(fname string) {
	val := reflect.ValueOf(s.stores)
	num := val.NumField()
	for i := 0; i < num; i++ {
		val.Field(i).MethodByName(fname).Call([]reflect.Value{})
	}
}

type RegisterKey struct{}

func MustSetup(conf sqlstore.ConnectConfig) func() *Provider {
	provider.SqlProvider = sqlstore.MustSetupProvider(conf)

	for _, f := range register.ResolveFuncHandlers[*Provider](RegisterKey{}) {
		f(provider)
	}

	return func() *Provider {
		return provider
	}
}

// Install 初始化所有数据表
func (p *Provider) Install() error {
	if err := p.ensureMigrationTable(); err != nil {
		return err
	}

	for _, m := range migrations {
		if executed, err := p.isMigrationExecuted(m.name); err != nil {
			return err
		} else if executed {
			continue
		}

		if _, err := p.SqlProvider.GetMaster().Exec(m.stmt); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", m.name, err)
		}

		if err := p.markMigrationExecuted(m.name); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) ensureMigrationTable() error {
	createTableSQL := `
CREATE TABLE IF NOT EXISTS ` + types.TABLE_PREFIX + `schema_migrations (
    name VARCHAR(255) PRIMARY KEY,
    executed_at BIGINT NOT NULL
);`
	_, err := p.SqlProvider.GetMaster().Exec(createTableSQL)
	return err
}

func (p *Provider) isMigrationExecuted(name string) (bool, error) {
	var count int
	err := p.SqlProvider.GetReplica().Get(&count,
		"SELECT COUNT(*) FROM "+types.TABLE_PREFIX+"schema_migrations WHERE name = ?", name)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *Provider) markMigrationExecuted(name string) error {
	_, err := p.SqlProvider.GetMaster().Exec(
		"INSERT INTO "+types.TABLE_PREFIX+"schema_migrations (name, executed_at) VALUES (?, ?) ON CONFLICT (name) DO NOTHING",
		name, time.Now().Unix())
	return err
}

type migration struct {
	name string
	stmt string
}

var migrations = []migration{
	{
		name: "001_project",
		stmt: `CREATE TABLE IF NOT EXISTS ` + types.TABLE_PREFIX + `project (
    id VARCHAR(32) PRIMARY KEY,
    name VARCHAR(64) NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    path TEXT NOT NULL,
    created_at BIGINT NOT NULL
);`,
	},
	{
		name: "002_dataset",
		stmt: `CREATE TABLE IF NOT EXISTS ` + types.TABLE_PREFIX + `dataset (
    id VARCHAR(32) PRIMARY KEY,
    project_id VARCHAR(32) NOT NULL,
    name VARCHAR(255) NOT NULL,
    path TEXT NOT NULL,
    created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dataset_project ON ` + types.TABLE_PREFIX + `dataset (project_id);`,
	},
	{
		name: "003_chat_message",
		stmt: `CREATE TABLE IF NOT EXISTS ` + types.TABLE_PREFIX + `chat_message (
    id VARCHAR(32) PRIMARY KEY,
    project_id VARCHAR(32) NOT NULL,
    role VARCHAR(16) NOT NULL,
    content TEXT NOT NULL,
    send_time BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_message_project ON ` + types.TABLE_PREFIX + `chat_message (project_id, send_time);`,
	},
	{
		name: "004_alert",
		stmt: `CREATE TABLE IF NOT EXISTS ` + types.TABLE_PREFIX + `alert (
    id VARCHAR(32) PRIMARY KEY,
    project_id VARCHAR(32) NOT NULL,
    message TEXT NOT NULL,
    created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_alert_project ON ` + types.TABLE_PREFIX + `alert (project_id);`,
	},
	{
		name: "005_pinned_insight",
		stmt: `CREATE TABLE IF NOT EXISTS ` + types.TABLE_PREFIX + `pinned_insight (
    id VARCHAR(32) PRIMARY KEY,
    project_id VARCHAR(32) NOT NULL,
    dataset VARCHAR(255) NOT NULL,
    question TEXT NOT NULL,
    sql_query TEXT NOT NULL,
    summary TEXT NOT NULL,
    result TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pinned_insight_project ON ` + types.TABLE_PREFIX + `pinned_insight (project_id);`,
	},
}

func (p *Provider) store() *Stores {
	return p.stores
}

func (p *Provider) ProjectStore() store.ProjectStore {
	return p.stores.ProjectStore
}

func (p *Provider) DatasetStore() store.DatasetStore {
	return p.stores.DatasetStore
}

func (p *Provider) ChatMessageStore() store.ChatMessageStore {
	return p.stores.ChatMessageStore
}

func (p *Provider) AlertStore() store.AlertStore {
	return p.stores.AlertStore
}

func (p *Provider) PinnedInsightStore() store.PinnedInsightStore {
	return p.stores.PinnedInsightStore
}
