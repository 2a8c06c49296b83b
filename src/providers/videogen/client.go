// Package videogen is the create-then-poll client for an asynchronous video
// generation jobs API. Job creation must answer 201 with the job id; status
// documents carry the generation ids once the job succeeds; content is
// fetched per generation as a raw byte stream.
package videogen

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

	"github.com/forgeworks/mediagent/src/config"
	"github.com/forgeworks/mediagent/src/jobs"
)

// Generation identifies one produced variant of a succeeded job.
type Generation struct {
	ID string `json:"id"`
}

// Job is the provider's job document.
type Job struct {
	ID            string       `json:"id"`
	Status        jobs.Status  `json:"status"`
	Generations   []Generation `json:"generations"`
	FailureReason string       `json:"failure_reason"`
}

// Client drives the video jobs API. It holds no per-job state; every job is
// identified by the provider-assigned id.
type Client struct {
	cfg  config.Video
	http *http.Client
}

// New builds a client from the video section of the configuration.
func New(cfg config.Video) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 120 * time.Second},
	}
}

// CreateJob submits a generation job and returns the provider-assigned job
// id. Any response other than 201 is a submission error carrying the
// provider's message when one is present.
func (c *Client) CreateJob(ctx context.Context, prompt string, seconds int) (string, error) {
	payload := map[string]any{
		"prompt":     prompt,
		"width":      c.cfg.Width,
		"height":     c.cfg.Height,
		"n_seconds":  seconds,
		"n_variants": c.cfg.Variants,
		"model":      c.cfg.Model,
	}
	body := &bytes.Buffer{}
	if err := json.NewEncoder(body).Encode(payload); err != nil {
		return "", fmt.Errorf("encode job request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/jobs"), body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", bodyError(raw, resp.Status)
	}

	var created Job
	if err := json.Unmarshal(raw, &created); err != nil {
		return "", fmt.Errorf("decode job response: %w", err)
	}
	if created.ID == "" {
		return "", errors.New("job response missing id")
	}
	return created.ID, nil
}

// JobStatus fetches the current job document.
func (c *Client) JobStatus(ctx context.Context, jobID string) (Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/jobs/"+jobID), nil)
	if err != nil {
		return Job{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Job{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Job{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Job{}, bodyError(raw, resp.Status)
	}

	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return Job{}, fmt.Errorf("decode status response: %w", err)
	}
	return job, nil
}

// Content streams the produced video for a generation id. The caller owns
// the returned reader and must close it.
func (c *Client) Content(ctx context.Context, generationID string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/"+generationID+"/content/video"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, bodyError(raw, resp.Status)
	}
	return resp.Body, nil
}

func (c *Client) url(path string) string {
	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/v1/video/generations" + path
	if c.cfg.APIVersion != "" {
		url += "?api-version=" + c.cfg.APIVersion
	}
	return url
}

// bodyError extracts the provider's error message. Creation failures use a
// top-level detail field; status and content failures nest the message under
// error. Both shapes are tolerated everywhere.
func bodyError(raw []byte, status string) error {
	var decoded struct {
		Detail string `json:"detail"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &decoded); err == nil {
		if decoded.Error != nil && decoded.Error.Message != "" {
			return errors.New(decoded.Error.Message)
		}
		if decoded.Detail != "" {
			return errors.New(decoded.Detail)
		}
	}
	return fmt.Errorf("video api error: %s", status)
}
