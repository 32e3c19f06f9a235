// Package ocrflux provides a client for an OCRFlux-compatible vision-OCR
// service exposing an OpenAI-style chat completions endpoint.
package ocrflux

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/fiscalwatch/countylens/internal/resilience"
)

// prompt instructs the model to transcribe a report page into markdown,
// preserving table structure so downstream pattern matching can see rows.
const prompt = `Transcribe this page of a government fiscal report into clean markdown.
Preserve all tables as markdown tables with their numeric cells intact.
Preserve section headings exactly as printed, including their numbering.
Output only the transcription, no commentary.`

// Client defines the vision-OCR operations.
type Client interface {
	// ExtractPage transcribes a rendered page image into markdown text.
	ExtractPage(ctx context.Context, image []byte) (*PageResult, error)
}

// PageResult is one transcribed page.
type PageResult struct {
	// Text is the markdown transcription.
	Text string
	// Confidence is the service's self-reported quality in [0,1]; 1.0 when
	// the service does not report one.
	Confidence float64
}

// chatRequest is the OpenAI-compatible chat completions payload.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Option configures the OCRFlux client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(perSec float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
	}
}

// WithMaxAttempts overrides how many times a transient failure is retried.
func WithMaxAttempts(n int) Option {
	return func(c *httpClient) {
		c.retry.MaxAttempts = n
	}
}

type httpClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a vision-OCR client for the given endpoint. apiKey may
// be empty for services that do not require authentication.
func NewClient(baseURL, apiKey, model string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http: &http.Client{
			Timeout: 180 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(2.0), 1),
		retry:   resilience.DefaultRetryConfig(),
	}
	c.retry.MaxAttempts = 1
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) ExtractPage(ctx context.Context, image []byte) (*PageResult, error) {
	if len(image) == 0 {
		return nil, eris.New("ocrflux: empty image")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "ocrflux: rate limit wait")
	}

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				},
			},
		},
		Temperature: 0,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "ocrflux: marshal request")
	}

	return resilience.DoVal(ctx, c.retry, "ocrflux.extract_page",
		func(ctx context.Context) (*PageResult, error) {
			return c.doOnce(ctx, body)
		})
}

func (c *httpClient) doOnce(ctx context.Context, body []byte) (*PageResult, error) {
	url := c.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "ocrflux: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "ocrflux: request failed"), 0)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ocrflux: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := eris.Errorf("ocrflux: status %d: %s", resp.StatusCode, truncate(respBody, 200))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(apiErr, resp.StatusCode)
		}
		return nil, apiErr
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, eris.Wrap(err, "ocrflux: unmarshal response")
	}
	if len(parsed.Choices) == 0 {
		return nil, eris.New("ocrflux: response has no choices")
	}

	conf := parsed.Confidence
	if conf <= 0 || conf > 1 {
		conf = 1.0
	}

	return &PageResult{
		Text:       parsed.Choices[0].Message.Content,
		Confidence: conf,
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return fmt.Sprintf("%s...", b[:n])
}
