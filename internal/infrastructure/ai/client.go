// Package ai wraps the LLM provider's embedding and chat endpoints.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type Config struct {
	BaseURL        string
	APIKey         string
	EmbeddingModel string
	ChatModel      string
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}
	return &Client{cfg: cfg, http: &http.Client{}}
}

func (c *Client) IsConfigured() bool { return c.cfg.BaseURL != "" && c.cfg.APIKey != "" }

// Embed returns a semantic fingerprint vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body := map[string]any{
		"model": c.cfg.EmbeddingModel,
		"input": text,
	}
	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/embeddings", body, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("ai: empty embedding response")
	}
	return out.Data[0].Embedding, nil
}

// Summary is a sentiment breakdown of a discussion thread: at most three
// points per side.
type Summary struct {
	Agreeing    []string `json:"agreeing"`
	Disagreeing []string `json:"disagreeing"`
}

const summarizePrompt = `You are summarizing the discussion thread of an approval request.
Given the comments below, list the main agreeing points and the main disagreeing points,
at most 3 per side, as JSON: {"agreeing": [...], "disagreeing": [...]}.
Comments:
`

// Summarize asks the chat model for a sentiment summary of the comments.
func (c *Client) Summarize(ctx context.Context, comments []string) (*Summary, error) {
	prompt := summarizePrompt
	for _, cm := range comments {
		prompt += "- " + cm + "\n"
	}
	body := map[string]any{
		"model": c.cfg.ChatModel,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]string{"type": "json_object"},
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.post(ctx, "/chat/completions", body, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("ai: empty completion response")
	}
	var s Summary
	if err := json.Unmarshal([]byte(out.Choices[0].Message.Content), &s); err != nil {
		return nil, fmt.Errorf("ai: parse summary: %w", err)
	}
	if len(s.Agreeing) > 3 {
		s.Agreeing = s.Agreeing[:3]
	}
	if len(s.Disagreeing) > 3 {
		s.Disagreeing = s.Disagreeing[:3]
	}
	return &s, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ai: %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
