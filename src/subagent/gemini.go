package subagent

import (
	"context"
	"errors"
	"fmt"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	mediagent "github.com/forgeworks/mediagent"
)

// GeminiAgent delegates to Google's Gemini models and relays the reply as a
// progress step.
type GeminiAgent struct {
	Client    *genai.Client
	Model     string
	AgentName string
	AgentDesc string
}

// NewGeminiAgent constructs a delegate over the Gemini SDK.
func NewGeminiAgent(ctx context.Context, apiKey, model, name, description string) (*GeminiAgent, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiAgent{Client: client, Model: model, AgentName: name, AgentDesc: description}, nil
}

func (g *GeminiAgent) Name() string        { return g.AgentName }
func (g *GeminiAgent) Description() string { return g.AgentDesc }

func (g *GeminiAgent) Run(ctx context.Context, query, instructions string, prog *mediagent.Progress) error {
	model := g.Client.GenerativeModel(g.Model)

	prompt := query
	if instructions != "" {
		prompt = fmt.Sprintf("%s\n\n%s", instructions, query)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return errors.New("gemini: empty response")
	}

	return prog.Step(ctx, fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
}
