package subagent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mediagent "github.com/forgeworks/mediagent"
	"github.com/forgeworks/mediagent/src/config"
)

type recorder struct {
	events []mediagent.Event
}

func (r *recorder) Notify(_ context.Context, ev mediagent.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) messages() []string {
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Message)
	}
	return out
}

func agentConfig(endpoint string) config.Agent {
	return config.Agent{
		Endpoint:     endpoint,
		APIKey:       "test-key",
		PollInterval: time.Millisecond,
		PollBudget:   10,
	}
}

func TestFoundryAgentRun(t *testing.T) {
	statusPolls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/threads":
			w.Write([]byte(`{"id":"thread-1"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/threads/thread-1/messages":
			w.Write([]byte(`{"id":"msg-1"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/threads/thread-1/runs":
			w.Write([]byte(`{"id":"run-1"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/threads/thread-1/runs/run-1":
			statusPolls++
			if statusPolls < 3 {
				w.Write([]byte(`{"id":"run-1","status":"in_progress"}`))
				return
			}
			w.Write([]byte(`{"id":"run-1","status":"completed"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/threads/thread-1/messages":
			w.Write([]byte(`{"data":[{"role":"assistant","content":[{"type":"text","text":{"value":"Here is your post."}}]},{"role":"user","content":[]}]}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	agent := NewFoundryAgent("asst-1", "writer", "writes posts", agentConfig(server.URL))
	sink := &recorder{}
	prog := mediagent.NewProgress("writer", sink)

	if err := agent.Run(context.Background(), "write a post", "keep it short", prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(sink.messages(), "\n")
	if !strings.Contains(joined, "thread created: thread-1") {
		t.Fatalf("missing thread event: %v", sink.messages())
	}
	if !strings.Contains(joined, "run status: succeeded") {
		t.Fatalf("missing terminal status event: %v", sink.messages())
	}
	if !strings.Contains(joined, "Here is your post.") {
		t.Fatalf("missing relayed reply: %v", sink.messages())
	}
}

func TestFoundryAgentRunFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/threads":
			w.Write([]byte(`{"id":"thread-1"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/threads/thread-1/messages":
			w.Write([]byte(`{"id":"msg-1"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/threads/thread-1/runs":
			w.Write([]byte(`{"id":"run-1"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/threads/thread-1/runs/run-1":
			w.Write([]byte(`{"id":"run-1","status":"failed","last_error":{"message":"rate limited"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	agent := NewFoundryAgent("asst-1", "writer", "writes posts", agentConfig(server.URL))
	prog := mediagent.NewProgress("writer", &recorder{})

	err := agent.Run(context.Background(), "write a post", "", prog)
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected failure with provider message, got %v", err)
	}
}

func TestFoundryAgentSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer server.Close()

	agent := NewFoundryAgent("asst-1", "writer", "writes posts", agentConfig(server.URL))
	prog := mediagent.NewProgress("writer", &recorder{})

	err := agent.Run(context.Background(), "write a post", "", prog)
	if err == nil || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestMapRunStatus(t *testing.T) {
	cases := map[string]string{
		"completed":       "succeeded",
		"failed":          "failed",
		"expired":         "failed",
		"cancelled":       "cancelled",
		"queued":          "queued",
		"in_progress":     "running",
		"requires_action": "processing",
	}
	for raw, want := range cases {
		if got := string(mapRunStatus(raw)); got != want {
			t.Fatalf("mapRunStatus(%q) = %q, want %q", raw, got, want)
		}
	}
}
