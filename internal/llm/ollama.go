// Package llm calls the text-generation backend: an Ollama-style HTTP
// endpoint taking a prompt and returning one generated string.
//
// The call is a single blocking request with a generous timeout sized for
// slow model inference. There is no retry at this layer; a failed generation
// is fatal for the record being processed.
package llm

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout accommodates slow model inference on shared hardware.
const DefaultTimeout = 8 * time.Minute

// Options configures a Client.
type Options struct {
	// Timeout bounds the generation call (default DefaultTimeout).
	Timeout time.Duration

	// InsecureSkipVerify disables certificate verification for this client
	// only, for generation backends behind internal certificates.
	InsecureSkipVerify bool
}

// Client generates text through a fixed model at a fixed endpoint URL.
type Client struct {
	url   string
	model string
	http  *http.Client
}

// NewClient builds a generation client for the endpoint at url (e.g.
// "http://localhost:11434/api/generate") using the given model tag.
func NewClient(url, model string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		url:   url,
		model: model,
		http:  &http.Client{Timeout: timeout, Transport: transport},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends one prompt and returns the generated text. A non-200 status
// is an error carrying the status code and response body.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading generation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation backend returned %d: %s", resp.StatusCode, data)
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decoding generation response: %w", err)
	}
	return out.Response, nil
}
