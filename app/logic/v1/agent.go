package v1

import (
	"context"

	"github.com/insighter-ai/insighter/app/core"
	"github.com/insighter-ai/insighter/pkg/errors"
	"github.com/insighter-ai/insighter/pkg/i18n"
)

// invokeAgent runs one completion with per-agent metrics. Completion
// failures are never retried; they surface to the pipeline stage that
// asked.
func invokeAgent(ctx context.Context, c *core.Core, agent, prompt string) (string, error) {
	timer := c.Metrics().CompletionTimer(agent)
	defer timer.ObserveDuration()

	text, err := c.Srv().AI().Chat().Complete(ctx, prompt)
	if err != nil {
		c.Metrics().CompletionErrorInc(agent)
		return "", errors.New("agent."+agent, i18n.ERROR_AI_UNAVAILABLE, err)
	}
	return text, nil
}
