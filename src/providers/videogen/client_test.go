package videogen

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/forgeworks/mediagent/src/config"
	"github.com/forgeworks/mediagent/src/jobs"
)

func testConfig(endpoint string) config.Video {
	return config.Video{
		Endpoint:   endpoint,
		APIKey:     "test-key",
		Model:      "sora",
		APIVersion: "preview",
		Width:      480,
		Height:     480,
		Variants:   1,
	}
}

func TestCreateJob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.Contains(r.URL.Path, "/v1/video/generations/jobs") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("api-version"); got != "preview" {
			t.Errorf("unexpected api-version %q", got)
		}
		var body struct {
			Prompt   string `json:"prompt"`
			Width    int    `json:"width"`
			Height   int    `json:"height"`
			NSeconds int    `json:"n_seconds"`
			Model    string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Prompt != "a wave" || body.NSeconds != 5 || body.Width != 480 || body.Model != "sora" {
			t.Errorf("unexpected request body: %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"job-42"}`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL))
	id, err := client.CreateJob(context.Background(), "a wave", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "job-42" {
		t.Fatalf("unexpected job id %q", id)
	}
}

func TestCreateJobRejectsNonCreated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"unsupported duration"}`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL))
	if _, err := client.CreateJob(context.Background(), "a wave", 99); err == nil || err.Error() != "unsupported duration" {
		t.Fatalf("expected provider detail, got %v", err)
	}
}

func TestCreateJobRequiresID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL))
	if _, err := client.CreateJob(context.Background(), "a wave", 5); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestJobStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/v1/video/generations/jobs/job-42") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"id":"job-42","status":"succeeded","generations":[{"id":"gen-7"}]}`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL))
	job, err := client.JobStatus(context.Background(), "job-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != jobs.StatusSucceeded {
		t.Fatalf("unexpected status %s", job.Status)
	}
	if len(job.Generations) != 1 || job.Generations[0].ID != "gen-7" {
		t.Fatalf("unexpected generations %v", job.Generations)
	}
}

func TestJobStatusSurfacesErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"backend unavailable"}}`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL))
	if _, err := client.JobStatus(context.Background(), "job-42"); err == nil || err.Error() != "backend unavailable" {
		t.Fatalf("expected provider message, got %v", err)
	}
}

func TestContentStreamsBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/v1/video/generations/gen-7/content/video") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte("mp4-bytes"))
	}))
	defer server.Close()

	client := New(testConfig(server.URL))
	body, err := client.Content(context.Background(), "gen-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	if string(raw) != "mp4-bytes" {
		t.Fatalf("unexpected content %q", raw)
	}
}

func TestContentSurfacesErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"generation expired"}}`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL))
	if _, err := client.Content(context.Background(), "gen-7"); err == nil || err.Error() != "generation expired" {
		t.Fatalf("expected provider message, got %v", err)
	}
}
