package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ddscanner/internal/config"
	"ddscanner/internal/domain"
	"ddscanner/internal/ports"
)

// OllamaClient talks to a local Ollama-compatible /api/generate endpoint
// for post summarization and sentiment analysis.
type OllamaClient struct {
	endpoint   string
	model      string
	options    config.OllamaOptions
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.Enricher = (*OllamaClient)(nil)

// NewOllamaClient builds a client from configuration.
func NewOllamaClient(cfg config.OllamaConfig, logger *slog.Logger) *OllamaClient {
	return &OllamaClient{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		model:    cfg.Model,
		options:  cfg.Options,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
		logger: logger,
	}
}

type generateRequest struct {
	Model   string               `json:"model"`
	Stream  bool                 `json:"stream"`
	Options config.OllamaOptions `json:"options"`
	Prompt  string               `json:"prompt"`
}

type generateChunk struct {
	Response string `json:"response"`
}

type enrichmentReply struct {
	Summary        *string `json:"summary"`
	SentimentScore *int    `json:"sentiment_score"`
}

// Enrich sends one generation request and parses the reply into a summary
// and a sentiment value. Any returned error is soft for the caller: the
// post survives with its original body and a neutral sentiment.
//
// The transport may deliver the answer as newline-delimited partial
// chunks, each a JSON object with a `response` fragment. Malformed chunks
// are skipped; the surviving fragments are concatenated in arrival order
// and the concatenation is parsed as the final JSON object. The sentiment
// value is recorded as received, without clamping.
func (c *OllamaClient) Enrich(ctx context.Context, title, body string, comments []string) (domain.Enrichment, error) {
	if c.endpoint == "" || c.model == "" {
		return domain.Enrichment{}, fmt.Errorf("ollama client misconfigured")
	}

	payload, err := json.Marshal(generateRequest{
		Model:   c.model,
		Stream:  false,
		Options: c.options,
		Prompt:  buildPrompt(title, body, comments),
	})
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("marshal generate payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("call ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Enrichment{}, fmt.Errorf("ollama error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	content, err := c.collectFragments(resp.Body)
	if err != nil {
		return domain.Enrichment{}, err
	}

	var reply enrichmentReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return domain.Enrichment{}, fmt.Errorf("parse model reply: %w", err)
	}

	enrichment := domain.Enrichment{SentimentScore: domain.NeutralSentiment}
	if reply.Summary != nil {
		enrichment.Summary = *reply.Summary
	}
	if reply.SentimentScore != nil {
		enrichment.SentimentScore = *reply.SentimentScore
	}
	return enrichment, nil
}

// collectFragments reassembles the full model reply from the streamed body.
func (c *OllamaClient) collectFragments(body io.Reader) (string, error) {
	var content strings.Builder

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk generateChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			if c.logger != nil {
				c.logger.Warn("skipping malformed chunk", "line", line, "error", err)
			}
			continue
		}
		content.WriteString(chunk.Response)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read ollama stream: %w", err)
	}

	return content.String(), nil
}

func buildPrompt(title, body string, comments []string) string {
	return fmt.Sprintf(`You are a strictly JSON-based LLM that summarizes Reddit posts and analyzes sentiment.
You will receive a Reddit post with its title, body, and comments.
Only respond with valid JSON. Do not add code fences, explanations, or extra text.

JSON format:
{
  "summary": "short rewritten body",
  "sentiment_score": integer between 0 (negative) and 100 (positive)
}

Title: %s
Body: %s
Comments: %s

Respond with JSON only, no additional text or formatting.`, title, body, strings.Join(comments, " "))
}
