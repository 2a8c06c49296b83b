// Package imagegen is the single-shot client for an OpenAI-compatible
// images API: one request in, the full result set out.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/forgeworks/mediagent/src/config"
)

// Client performs image generation and image editing. Generation goes
// through the OpenAI SDK; edits are multipart form submissions carrying the
// source image bytes alongside prompt, size, and quality fields.
type Client struct {
	api  *openai.Client
	cfg  config.Image
	http *http.Client
}

// New builds a client for the configured endpoint. An empty endpoint keeps
// the SDK's default base URL.
func New(cfg config.Image) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	}
	return &Client{
		api:  openai.NewClientWithConfig(apiCfg),
		cfg:  cfg,
		http: &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate requests n images for the prompt and returns their base64
// payloads in response order.
func (c *Client) Generate(ctx context.Context, prompt string, n int) ([]string, error) {
	if n <= 0 {
		n = 1
	}
	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.cfg.Model,
		N:              n,
		Size:           c.cfg.Size,
		Quality:        c.cfg.Quality,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, providerError(err)
	}
	payloads := make([]string, 0, len(resp.Data))
	for _, item := range resp.Data {
		if item.B64JSON != "" {
			payloads = append(payloads, item.B64JSON)
		}
	}
	return payloads, nil
}

type editResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Edit submits a multipart edit request with the source image as the
// starting point and returns the base64 payloads of the edited images.
func (c *Client) Edit(ctx context.Context, prompt string, image []byte) ([]string, error) {
	if len(image) == 0 {
		return nil, errors.New("edit requires a source image")
	}

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="image.png"`)
	header.Set("Content-Type", "image/png")
	part, err := form.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := form.WriteField("prompt", prompt); err != nil {
		return nil, err
	}
	if err := form.WriteField("size", c.cfg.Size); err != nil {
		return nil, err
	}
	if err := form.WriteField("quality", c.cfg.Quality); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.editURL(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var decoded editResponse
	if err := json.Unmarshal(raw, &decoded); err != nil && resp.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("decode edit response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil && decoded.Error.Message != "" {
			return nil, errors.New(decoded.Error.Message)
		}
		return nil, fmt.Errorf("image edit failed: %s", resp.Status)
	}

	payloads := make([]string, 0, len(decoded.Data))
	for _, item := range decoded.Data {
		if item.B64JSON != "" {
			payloads = append(payloads, item.B64JSON)
		}
	}
	return payloads, nil
}

func (c *Client) editURL() string {
	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/images/edits"
	if c.cfg.APIVersion != "" {
		url += "?api-version=" + c.cfg.APIVersion
	}
	return url
}

// providerError unwraps SDK errors so step_failed events carry the
// provider's own message.
func providerError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return errors.New(apiErr.Message)
	}
	return err
}
