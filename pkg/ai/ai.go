package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	openai "github.com/sashabaranov/go-openai"
)

const (
	MODEL_BASE_LANGUAGE_CN = "cn"
	MODEL_BASE_LANGUAGE_EN = "en"
)

// ChatDriver is the single completion capability every agent prompt goes
// through. One prompt in, one raw completion out. Failures propagate to the
// caller; drivers must not retry.
type ChatDriver interface {
	Lang() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// RouterResult is the intent classification payload.
type RouterResult struct {
	Action string `json:"action"`
}

// SQLQueryResult is the single-query payload from the sql chat agent.
type SQLQueryResult struct {
	SQLQuery string `json:"sql_query"`
}

// SQLGenRecord pairs an insight question with its generated query.
type SQLGenRecord struct {
	InsightQuestion string `json:"insight_question"`
	SQLQuery        string `json:"sql_query"`
}

// SQLGenResult is the batch text-to-sql payload keyed question_N.
type SQLGenResult struct {
	SQLQueries map[string]*SQLGenRecord `json:"sql_queries"`
}

// SummaryResult maps question keys to insight summaries.
type SummaryResult struct {
	Insights map[string]string `json:"insights"`
}

func NumTokens(messages []openai.ChatCompletionMessage, model string) (numTokens int, err error) {
	var tokensPerMessage, tokensPerName int
	switch model {
	case "gpt-3.5-turbo-0613",
		"gpt-3.5-turbo-16k-0613",
		"gpt-4-0314",
		"gpt-4-32k-0314",
		"gpt-4-0613",
		"gpt-4-32k-0613":
		tokensPerMessage = 3
		tokensPerName = 1
	case "gpt-3.5-turbo-0301":
		tokensPerMessage = 4 // every message follows <|start|>{role/name}\n{content}<|end|>\n
		tokensPerName = -1   // if there's a name, the role is omitted
	default:
		if strings.Contains(model, "gpt-4") {
			return NumTokens(messages, "gpt-4-0613")
		} else {
			return NumTokens(messages, "gpt-3.5-turbo-0613")
		}
	}

	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		err = fmt.Errorf("encoding for model: %v", err)
		return
	}

	for _, message := range messages {
		numTokens += tokensPerMessage
		numTokens += len(tkm.Encode(message.Content, nil, nil))
		numTokens += len(tkm.Encode(message.Role, nil, nil))
		numTokens += len(tkm.Encode(message.Name, nil, nil))
		if message.Name != "" {
			numTokens += tokensPerName
		}
	}
	numTokens += 3 // every reply is primed with <|start|>assistant<|message|>
	return numTokens, nil
}
