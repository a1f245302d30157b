// Package anthropic is a minimal client for the Claude messages API, used
// for post content revision and image-prompt crafting.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	apiVersion     = "2023-06-01"
	model          = "claude-opus-4-5"

	reviseSystemPrompt = `You are an expert LinkedIn content strategist. Your job is to revise LinkedIn posts based on user feedback.

Rules:
1. Keep the post professional and on-brand
2. Maintain the core message
3. Improve engagement (use hooks, emojis, specific examples)
4. Keep it concise (LinkedIn best practices)
5. Return ONLY the revised post content, no explanations`

	summarySystemPrompt = "Summarize what changed in the revision in 1-2 sentences."

	imagePromptSystem = "Create a detailed, visual image prompt based on this LinkedIn post content. Focus on visual elements, mood, and style."
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is not set")
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func NewClientWithBaseURL(apiKey, baseURL string) (*Client, error) {
	c, err := NewClient(apiKey)
	if err != nil {
		return nil, err
	}
	c.baseURL = baseURL
	return c, nil
}

// Revise rewrites the post text per the instruction and asks for a short
// change summary in a second call.
func (c *Client) Revise(ctx context.Context, original, instruction string) (string, string, error) {
	userMessage := fmt.Sprintf(
		"Original post:\n%s\n\nRevision request:\n%s\n\nPlease revise the post according to the feedback.",
		original, instruction,
	)

	revised, err := c.complete(ctx, reviseSystemPrompt, userMessage, 1024)
	if err != nil {
		return "", "", fmt.Errorf("content revision: %w", err)
	}

	summary, err := c.complete(ctx, summarySystemPrompt,
		fmt.Sprintf("Original: %s\n\nRevised: %s", original, revised), 256)
	if err != nil {
		return "", "", fmt.Errorf("change summary: %w", err)
	}

	return revised, summary, nil
}

// ImagePrompt crafts a visual prompt from the post content. Callers fall
// back to a plain prompt when this fails.
func (c *Client) ImagePrompt(ctx context.Context, content string) (string, error) {
	// rune count, not bytes: slicing mid-rune would send invalid UTF-8
	if runes := []rune(content); len(runes) > 500 {
		content = string(runes[:500])
	}
	return c.complete(ctx, imagePromptSystem, "LinkedIn post: "+content, 150)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	payload := messagesRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: user}},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("anthropic API status %d: %s", resp.StatusCode, string(text))
	}

	var result messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.StopReason != "end_turn" {
		return "", fmt.Errorf("request did not complete (stop_reason=%s)", result.StopReason)
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	return strings.TrimSpace(result.Content[0].Text), nil
}
