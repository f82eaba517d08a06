package core

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/insighter-ai/insighter/app/core/srv"
	"github.com/insighter-ai/insighter/app/store/filestore"
	"github.com/insighter-ai/insighter/app/store/sqlstore"
	"github.com/insighter-ai/insighter/pkg/utils"
)

type Core struct {
	cfg CoreConfig
	srv *srv.Srv

	stores   func() *sqlstore.Provider
	catalogs *filestore.CatalogStore

	httpClient *http.Client
	httpEngine *gin.Engine

	metrics *Metrics
	runGate *RunGate
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28,   //days
				Compress:   true, // disabled by default
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	utils.SetupIDWorker(1)

	core := &Core{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Second * 3},
		metrics:    NewMetrics("insighter", "core"),
		httpEngine: gin.New(),
		catalogs:   filestore.NewCatalogStore(),
		runGate:    NewRunGate(),
	}

	// setup store
	setupSqlStore(core)

	if err := os.MkdirAll(cfg.Workspace.PathOrDefault(), 0o755); err != nil {
		panic(err)
	}

	core.srv = srv.SetupSrvs(srv.ApplyAI(cfg.AI))

	return core
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}

// InstallSrvs rebuilds the service set, used by tests to stub drivers.
func (s *Core) InstallSrvs(opts ...srv.ApplyFunc) {
	s.srv = srv.SetupSrvs(opts...)
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores()
}

func (s *Core) CatalogStore() *filestore.CatalogStore {
	return s.catalogs
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) RunGate() *RunGate {
	return s.runGate
}

func setupSqlStore(core *Core) {
	core.stores = sqlstore.MustSetup(core.cfg.SQLite)
	if err := core.stores().Install(); err != nil {
		panic(err)
	}
	fmt.Println("setupSqlStore done")
}
