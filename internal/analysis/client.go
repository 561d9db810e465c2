package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

var reasoningRE = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Client sends transcripts to an OpenAI-compatible chat completions endpoint
type Client struct {
	apiURL   string
	apiKey   string
	model    string
	maxChars int
	client   *resty.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
		Cost             struct {
			TotalCost float64 `json:"total_cost"`
		} `json:"cost"`
	} `json:"usage"`
	Citations []string `json:"citations"`
}

// NewClient creates a new analysis client
func NewClient(apiURL, apiKey, model string, maxChars int, timeout time.Duration) *Client {
	return &Client{
		apiURL:   apiURL,
		apiKey:   apiKey,
		model:    model,
		maxChars: maxChars,
		client:   resty.New().SetTimeout(timeout),
	}
}

// Analyze returns the cleaned analysis of a transcript
func (c *Client) Analyze(ctx context.Context, transcript, title string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", errors.New("empty transcript")
	}

	if n := len([]rune(transcript)); n > c.maxChars {
		logrus.Warnf("Transcript too long (%d chars), truncating to %d", n, c.maxChars)
		transcript = TruncateRunes(transcript, c.maxChars)
	}

	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(analysisPrompt, title, transcript)},
		},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		Post(c.apiURL)
	if err != nil {
		return "", fmt.Errorf("failed to call LLM API: %w", err)
	}

	if !resp.IsSuccess() {
		logrus.WithField("status", resp.StatusCode()).Errorf("LLM API error: %s", resp.String())
		return "", fmt.Errorf("LLM API returned status %d", resp.StatusCode())
	}

	var chat chatResponse
	if err := json.Unmarshal(resp.Body(), &chat); err != nil {
		return "", fmt.Errorf("failed to parse LLM response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", errors.New("LLM response has no choices")
	}

	logrus.WithFields(logrus.Fields{
		"model":        c.model,
		"total_tokens": chat.Usage.TotalTokens,
		"cost":         fmt.Sprintf("$%.4f", chat.Usage.Cost.TotalCost),
		"citations":    len(chat.Citations),
	}).Info("LLM analysis completed")

	analysis := StripReasoning(chat.Choices[0].Message.Content)
	if analysis == "" {
		return "", errors.New("LLM returned an empty analysis")
	}
	return analysis, nil
}

// StripReasoning removes <think>...</think> blocks and trims the result
func StripReasoning(s string) string {
	return strings.TrimSpace(reasoningRE.ReplaceAllString(s, ""))
}

// TruncateRunes keeps at most n runes of s
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
