// Package semantic checks short answers for semantic equivalence against
// the expected answer using an OpenAI-compatible chat API. The exam engine
// treats this check as best-effort: any failure here downgrades grading to
// the local exact/fuzzy verdict.
package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
	log   zerolog.Logger
}

// New creates a semantic-equivalence client. baseURL may be empty to use
// the default OpenAI endpoint.
func New(baseURL, apiKey, modelName string, log zerolog.Logger) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
		log:   log.With().Str("component", "semantic_checker").Logger(),
	}
}

// verdict is the JSON shape the model is instructed to reply with.
type verdict struct {
	Equivalent bool   `json:"equivalent"`
	Reason     string `json:"reason,omitempty"`
}

// Equivalent asks the model whether the given answer means the same thing
// as the expected answer in the context of the question.
func (c *Client) Equivalent(ctx context.Context, question, expected, given string) (bool, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(question, expected)},
			{Role: openai.ChatMessageRoleUser, Content: given},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.0,
	})
	if err != nil {
		return false, fmt.Errorf("semantic check API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return false, fmt.Errorf("semantic check returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	c.log.Debug().Str("raw", raw).Msg("Semantic check response")

	result, err := parseVerdict(raw)
	if err != nil {
		return false, err
	}
	return result.Equivalent, nil
}

func buildSystemPrompt(question, expected string) string {
	var sb strings.Builder
	sb.WriteString("You are grading a short-answer exam question for a school student.\n\n")
	sb.WriteString("QUESTION: " + question + "\n")
	sb.WriteString("EXPECTED ANSWER: " + expected + "\n\n")
	sb.WriteString("The user message is the student's answer. Decide whether it is ")
	sb.WriteString("semantically equivalent to the expected answer: same meaning, ")
	sb.WriteString("minor spelling or phrasing differences allowed, but a different ")
	sb.WriteString("fact or entity is NOT equivalent.\n\n")
	sb.WriteString(`Respond with JSON: {"equivalent": true|false, "reason": "<short reason>"}`)
	return sb.String()
}

func parseVerdict(raw string) (*verdict, error) {
	var v verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("parse semantic verdict: %w (raw: %s)", err, raw)
	}
	return &v, nil
}
