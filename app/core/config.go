package core

import (
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/insighter-ai/insighter/app/core/srv"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	conf.SetConfigBytes(raw)

	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}

	return *conf
}

func (c CoreConfig) LoadCustomConfig(cfg any) error {
	if len(c.bytes) == 0 {
		return nil
	}
	if err := toml.Unmarshal(c.bytes, cfg); err != nil {
		return err
	}
	return nil
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	return c
}

type CoreConfig struct {
	Addr      string          `toml:"addr"`
	Log       Log             `toml:"log"`
	SQLite    SQLiteConfig    `toml:"sqlite"`
	Workspace WorkspaceConfig `toml:"workspace"`

	AI     srv.AIConfig `toml:"ai"`
	Alerts AlertsConfig `toml:"alerts"`

	Prompt Prompt `toml:"prompt"`

	bytes []byte `toml:"-"`
}

func (c *CoreConfig) SetConfigBytes(raw []byte) {
	c.bytes = raw
}

// Prompt 配置结构
// 用于自定义部分场景下使用的 prompt，为空则使用系统默认
type Prompt struct {
	Router     string `toml:"router"`
	CasualChat string `toml:"casual_chat"`
}

// WorkspaceConfig is where project directories (datasets, catalogs, plots)
// live on disk.
type WorkspaceConfig struct {
	Path string `toml:"path"`
}

func (w *WorkspaceConfig) FromENV() {
	w.Path = os.Getenv("INSIGHTER_WORKSPACE_PATH")
}

func (w WorkspaceConfig) PathOrDefault() string {
	if w.Path == "" {
		return "projects"
	}
	return w.Path
}

// AlertsConfig drives the sampled-alert generator.
type AlertsConfig struct {
	SampleCron string `toml:"sample_cron"` // cron spec, empty disables sampling
}

func (a *AlertsConfig) FromENV() {
	a.SampleCron = os.Getenv("INSIGHTER_ALERT_SAMPLE_CRON")
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("INSIGHTER_SERVICE_ADDRESS")
	c.Log.FromENV()
	c.SQLite.FromENV()
	c.Workspace.FromENV()
	c.AI.FromENV()
	c.Alerts.FromENV()
}

type SQLiteConfig struct {
	DSN string `toml:"dsn"`
}

func (m *SQLiteConfig) FromENV() {
	m.DSN = os.Getenv("INSIGHTER_SQLITE_DSN")
}

func (c SQLiteConfig) FormatDSN() string {
	if c.DSN == "" {
		return "insighter.db"
	}
	return c.DSN
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("INSIGHTER_LOG_LEVEL")
	l.Path = os.Getenv("INSIGHTER_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
