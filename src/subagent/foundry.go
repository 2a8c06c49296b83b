// Package subagent holds the delegated remote agents tools can forward work
// to. Each agent relays its own progress through the invocation's Progress
// handle unchanged; failures surface as returned errors for the adapter to
// translate.
package subagent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	mediagent "github.com/forgeworks/mediagent"
	"github.com/forgeworks/mediagent/src/config"
	"github.com/forgeworks/mediagent/src/jobs"
)

// FoundryAgent delegates to a pre-configured hosted agent over the
// threads/messages/runs REST surface. One Run call creates a fresh thread,
// posts the query, starts a run, polls it to a terminal status, and relays
// the agent's final reply.
type FoundryAgent struct {
	AgentID     string
	AgentName   string
	AgentDesc   string
	Cfg         config.Agent
	HTTPClient  *http.Client
	ExtraHeader map[string]string
}

// NewFoundryAgent builds a delegate for one hosted agent id.
func NewFoundryAgent(agentID, name, description string, cfg config.Agent) *FoundryAgent {
	return &FoundryAgent{
		AgentID:    agentID,
		AgentName:  name,
		AgentDesc:  description,
		Cfg:        cfg,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (f *FoundryAgent) Name() string        { return f.AgentName }
func (f *FoundryAgent) Description() string { return f.AgentDesc }

// Run executes one delegated interaction and narrates it through prog. The
// returned error carries the remote agent's failure when the run does not
// complete.
func (f *FoundryAgent) Run(ctx context.Context, query, instructions string, prog *mediagent.Progress) error {
	threadID, err := f.createThread(ctx)
	if err != nil {
		return fmt.Errorf("create thread: %w", err)
	}
	if err := prog.Step(ctx, "thread created: "+threadID); err != nil {
		return err
	}

	if err := f.postMessage(ctx, threadID, query); err != nil {
		return fmt.Errorf("post message: %w", err)
	}

	runID, err := f.createRun(ctx, threadID, instructions)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	if err := prog.Step(ctx, "run created: "+runID); err != nil {
		return err
	}

	var notifyErr error
	poller := jobs.Poller{
		Interval:    f.Cfg.PollInterval,
		MaxAttempts: f.Cfg.PollBudget,
		OnChange: func(s jobs.Status) error {
			notifyErr = prog.Step(ctx, "run status: "+string(s))
			return notifyErr
		},
	}
	var lastRunStatus, lastRunError string
	status, err := poller.Wait(ctx, func(ctx context.Context) (jobs.Status, error) {
		raw, errMsg, ferr := f.runStatus(ctx, threadID, runID)
		if ferr != nil {
			return "", ferr
		}
		lastRunStatus, lastRunError = raw, errMsg
		return mapRunStatus(raw), nil
	})
	if err != nil {
		if notifyErr != nil {
			return notifyErr
		}
		if errors.Is(err, jobs.ErrBudget) {
			return errors.New("job timeout: agent run did not reach a terminal status")
		}
		return err
	}
	if status != jobs.StatusSucceeded {
		if lastRunError != "" {
			return fmt.Errorf("agent run %s: %s", lastRunStatus, lastRunError)
		}
		return fmt.Errorf("agent run %s", lastRunStatus)
	}

	reply, err := f.lastAssistantMessage(ctx, threadID)
	if err != nil {
		return fmt.Errorf("fetch reply: %w", err)
	}
	if reply != "" {
		if err := prog.Step(ctx, reply); err != nil {
			return err
		}
	}
	return nil
}

// mapRunStatus folds the assistants-style run states onto the job state
// machine.
func mapRunStatus(raw string) jobs.Status {
	switch raw {
	case "completed":
		return jobs.StatusSucceeded
	case "failed", "expired", "incomplete":
		return jobs.StatusFailed
	case "cancelled", "cancelling":
		return jobs.StatusCancelled
	case "queued":
		return jobs.StatusQueued
	case "requires_action":
		return jobs.StatusProcessing
	default:
		return jobs.StatusRunning
	}
}

func (f *FoundryAgent) createThread(ctx context.Context) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := f.do(ctx, http.MethodPost, "/threads", map[string]any{}, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("thread response missing id")
	}
	return out.ID, nil
}

func (f *FoundryAgent) postMessage(ctx context.Context, threadID, content string) error {
	body := map[string]any{"role": "user", "content": content}
	return f.do(ctx, http.MethodPost, "/threads/"+threadID+"/messages", body, nil)
}

func (f *FoundryAgent) createRun(ctx context.Context, threadID, instructions string) (string, error) {
	body := map[string]any{"assistant_id": f.AgentID}
	if instructions != "" {
		body["additional_instructions"] = instructions
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := f.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("run response missing id")
	}
	return out.ID, nil
}

func (f *FoundryAgent) runStatus(ctx context.Context, threadID, runID string) (status, errMsg string, err error) {
	var out struct {
		Status    string `json:"status"`
		LastError *struct {
			Message string `json:"message"`
		} `json:"last_error"`
	}
	if err := f.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &out); err != nil {
		return "", "", err
	}
	if out.LastError != nil {
		errMsg = out.LastError.Message
	}
	return out.Status, errMsg, nil
}

func (f *FoundryAgent) lastAssistantMessage(ctx context.Context, threadID string) (string, error) {
	var out struct {
		Data []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text *struct {
					Value string `json:"value"`
				} `json:"text"`
			} `json:"content"`
		} `json:"data"`
	}
	if err := f.do(ctx, http.MethodGet, "/threads/"+threadID+"/messages?order=desc&limit=10", nil, &out); err != nil {
		return "", err
	}
	for _, msg := range out.Data {
		if msg.Role != "assistant" {
			continue
		}
		var b strings.Builder
		for _, part := range msg.Content {
			if part.Type == "text" && part.Text != nil {
				b.WriteString(part.Text.Value)
			}
		}
		return b.String(), nil
	}
	return "", nil
}

func (f *FoundryAgent) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return err
		}
		reader = buf
	}
	url := strings.TrimRight(f.Cfg.Endpoint, "/") + path
	if f.Cfg.APIVersion != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		url += sep + "api-version=" + f.Cfg.APIVersion
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.Cfg.APIKey)
	for k, v := range f.ExtraHeader {
		req.Header.Set(k, v)
	}

	client := f.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var decoded struct {
			Error *struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(raw, &decoded) == nil && decoded.Error != nil && decoded.Error.Message != "" {
			return errors.New(decoded.Error.Message)
		}
		return fmt.Errorf("agent api error: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
