package subagent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	mediagent "github.com/forgeworks/mediagent"
)

// OllamaAgent delegates to a locally hosted model through the Ollama API and
// relays the accumulated reply as a progress step.
type OllamaAgent struct {
	Client    *ollama.Client
	Model     string
	AgentName string
	AgentDesc string
}

// NewOllamaAgent constructs a delegate over a running Ollama host.
func NewOllamaAgent(host, model, name, description string) (*OllamaAgent, error) {
	if host == "" {
		host = "http://localhost:11434"
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}

	c := ollama.NewClient(u, httpClient)
	return &OllamaAgent{Client: c, Model: model, AgentName: name, AgentDesc: description}, nil
}

func (o *OllamaAgent) Name() string        { return o.AgentName }
func (o *OllamaAgent) Description() string { return o.AgentDesc }

func (o *OllamaAgent) Run(ctx context.Context, query, instructions string, prog *mediagent.Progress) error {
	prompt := query
	if instructions != "" {
		prompt = fmt.Sprintf("%s\n\n%s", instructions, query)
	}

	var text strings.Builder
	req := &ollama.GenerateRequest{
		Model:  o.Model,
		Prompt: prompt,
	}
	if err := o.Client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		if gr.Response != "" {
			text.WriteString(gr.Response)
		}
		return nil
	}); err != nil {
		return err
	}

	reply := text.String()
	if reply == "" {
		return errors.New("empty reply from model")
	}
	return prog.Step(ctx, reply)
}
