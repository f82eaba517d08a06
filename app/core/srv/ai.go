package srv

import (
	"os"
	"strconv"

	"github.com/insighter-ai/insighter/pkg/ai"
	"github.com/insighter-ai/insighter/pkg/ai/openai"
)

type AIConfig struct {
	Token       string  `toml:"token"`
	Endpoint    string  `toml:"endpoint"` // any openai-compatible endpoint
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
}

func (c *AIConfig) FromENV() {
	c.Token = os.Getenv("INSIGHTER_AI_TOKEN")
	c.Endpoint = os.Getenv("INSIGHTER_AI_ENDPOINT")
	c.Model = os.Getenv("INSIGHTER_AI_MODEL")
	if raw := os.Getenv("INSIGHTER_AI_TEMPERATURE"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 32); err == nil {
			c.Temperature = float32(v)
		}
	}
}

// AI holds the completion driver every agent call goes through.
type AI struct {
	chat ai.ChatDriver
}

func (a *AI) Chat() ai.ChatDriver {
	return a.chat
}

func ApplyAI(cfg AIConfig) ApplyFunc {
	return func(s *Srv) {
		s.ai = &AI{
			chat: openai.New(cfg.Token, cfg.Endpoint, cfg.Model, cfg.Temperature),
		}
	}
}

// ApplyChatDriver swaps in a prebuilt driver, used by tests.
func ApplyChatDriver(driver ai.ChatDriver) ApplyFunc {
	return func(s *Srv) {
		s.ai = &AI{chat: driver}
	}
}
