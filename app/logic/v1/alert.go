package v1

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/robfig/cron/v3"

	"github.com/insighter-ai/insighter/app/core"
	"github.com/insighter-ai/insighter/pkg/errors"
	"github.com/insighter-ai/insighter/pkg/i18n"
	"github.com/insighter-ai/insighter/pkg/safe"
	"github.com/insighter-ai/insighter/pkg/types"
	"github.com/insighter-ai/insighter/pkg/utils"
)

// sampleAlertMessages is the pool the scheduled generator draws from.
var sampleAlertMessages = []string{
	"Data quality issue detected in dataset",
	"Anomaly detected in recent data uploads",
	"Action required: Missing values in key columns",
	"Scheduled insight generation completed",
	"New correlation detected between variables",
	"Data drift observed in recent uploads",
}

type AlertLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewAlertLogic(ctx context.Context, core *core.Core) *AlertLogic {
	return &AlertLogic{
		ctx:  ctx,
		core: core,
	}
}

func (l *AlertLogic) ListAlerts(projectID string) ([]types.Alert, error) {
	alerts, err := l.core.Store().AlertStore().List(l.ctx, projectID)
	if err != nil {
		return nil, errors.New("AlertLogic.ListAlerts", i18n.ERROR_INTERNAL, err)
	}
	return alerts, nil
}

func (l *AlertLogic) ClearAlert(projectID, alertID string) error {
	if err := l.core.Store().AlertStore().Delete(l.ctx, projectID, alertID); err != nil {
		return errors.New("AlertLogic.ClearAlert", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *AlertLogic) ClearAlerts(projectID string) error {
	if err := l.core.Store().AlertStore().DeleteAll(l.ctx, projectID); err != nil {
		return errors.New("AlertLogic.ClearAlerts", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

// StartSampleAlerts schedules the sampled alert generator. Each tick writes
// one random message from the pool into every project. A missing cron
// expression disables the generator.
func StartSampleAlerts(ctx context.Context, core *core.Core) (*cron.Cron, error) {
	expr := core.Cfg().Alerts.SampleCron
	if expr == "" {
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		safe.Run(func() {
			generateSampleAlerts(ctx, core)
		})
	})
	if err != nil {
		return nil, errors.New("AlertLogic.StartSampleAlerts.AddFunc", i18n.ERROR_INTERNAL, err)
	}

	c.Start()
	slog.Info("sample alert generator started", slog.String("cron", expr))
	return c, nil
}

func generateSampleAlerts(ctx context.Context, core *core.Core) {
	projects, err := core.Store().ProjectStore().List(ctx)
	if err != nil {
		slog.Error("failed to list projects for sampled alerts", slog.String("error", err.Error()))
		return
	}

	for _, project := range projects {
		alert := types.Alert{
			ID:        utils.GenUniqIDStr(),
			ProjectID: project.ID,
			Message:   sampleAlertMessages[rand.Intn(len(sampleAlertMessages))],
		}
		if err := core.Store().AlertStore().Create(ctx, alert); err != nil {
			slog.Error("failed to create sampled alert",
				slog.String("project_id", project.ID),
				slog.String("error", err.Error()))
		}
	}
}
