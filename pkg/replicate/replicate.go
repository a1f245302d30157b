// Package replicate is a minimal client for Replicate's prediction API,
// used for post image generation. Predictions are asynchronous: submit,
// then poll until the prediction settles or the context expires.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.replicate.com/v1"

	// Stable Diffusion 3 Medium
	modelVersion = "2b017d9b67edd2ee1401c165221e92c5d566e50cf889147fba93b79e9b2b9e30"

	pollInterval = 5 * time.Second
)

type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiToken string) (*Client, error) {
	if apiToken == "" {
		return nil, fmt.Errorf("replicate API token is not set")
	}
	return &Client{
		apiToken:   apiToken,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// NewClientWithBaseURL points the client at a different API host, used by
// tests against httptest servers.
func NewClientWithBaseURL(apiToken, baseURL string) (*Client, error) {
	c, err := NewClient(apiToken)
	if err != nil {
		return nil, err
	}
	c.baseURL = baseURL
	return c, nil
}

type prediction struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Output []string `json:"output"`
	Error  string   `json:"error"`
}

// GenerateImage submits a prediction for the prompt and polls until it
// succeeds, fails, or ctx expires. Returns the first output URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	payload := map[string]interface{}{
		"version": modelVersion,
		"input": map[string]interface{}{
			"prompt":              prompt,
			"num_inference_steps": 25,
			"guidance_scale":      7.5,
		},
	}

	var created prediction
	if err := c.do(ctx, http.MethodPost, "/predictions", payload, &created); err != nil {
		return "", fmt.Errorf("failed to create prediction: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("no prediction ID returned")
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		var current prediction
		if err := c.do(ctx, http.MethodGet, "/predictions/"+created.ID, nil, &current); err != nil {
			return "", fmt.Errorf("failed to poll prediction: %w", err)
		}

		switch current.Status {
		case "succeeded":
			if len(current.Output) == 0 {
				return "", fmt.Errorf("prediction succeeded with no output")
			}
			return current.Output[0], nil
		case "failed", "canceled":
			if current.Error == "" {
				current.Error = "unknown error"
			}
			return "", fmt.Errorf("image generation failed: %s", current.Error)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Token "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("replicate API status %d: %s", resp.StatusCode, string(text))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
