package subagent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"

	mediagent "github.com/forgeworks/mediagent"
)

// ClaudeAgent delegates to Anthropic's Messages API for single-turn
// advisory work (drafting, critique, planning) and relays the reply as a
// progress step.
type ClaudeAgent struct {
	Client    *anthropic.Client
	Model     string
	MaxTokens int
	AgentName string
	AgentDesc string
}

// NewClaudeAgent constructs a delegate over the Anthropic SDK.
func NewClaudeAgent(apiKey, model, name, description string) *ClaudeAgent {
	cl := anthropic.NewClient(
		anthropicopt.WithAPIKey(apiKey),
	)
	return &ClaudeAgent{
		Client:    &cl,
		Model:     model, // e.g. "claude-3-5-sonnet-latest"
		MaxTokens: 1024,
		AgentName: name,
		AgentDesc: description,
	}
}

func (a *ClaudeAgent) Name() string        { return a.AgentName }
func (a *ClaudeAgent) Description() string { return a.AgentDesc }

func (a *ClaudeAgent) Run(ctx context.Context, query, instructions string, prog *mediagent.Progress) error {
	prompt := query
	if instructions != "" {
		prompt = fmt.Sprintf("%s\n\n%s", instructions, query)
	}

	msg, err := a.Client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: int64(a.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return err
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	reply := b.String()
	if reply == "" {
		return errors.New("empty reply from model")
	}
	return prog.Step(ctx, reply)
}
