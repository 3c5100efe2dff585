// Package brain wraps the Gemini SDK behind a small generation
// interface so the judge, ghostwriter and cascade strategists stay
// testable without network calls.
package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/repository"
)

// Request carries one model call. Layer/PostID/Platform are audit
// metadata for the llm_logs table, not part of the prompt.
type Request struct {
	Model    string
	System   string
	Prompt   string
	Layer    string
	PostID   string
	Platform models.Platform
}

// Generator is what the agent layers depend on.
type Generator interface {
	GenerateText(ctx context.Context, req Request) (string, error)
	GenerateJSON(ctx context.Context, req Request, out any) error
}

type GeminiBrain struct {
	client *genai.Client
	logs   repository.LLMLogRepository
}

var _ Generator = (*GeminiBrain)(nil)

// NewGeminiBrain builds the client. logs may be nil; calls are then
// unrecorded but still work.
func NewGeminiBrain(ctx context.Context, apiKey string, logs repository.LLMLogRepository) (*GeminiBrain, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiBrain{client: client, logs: logs}, nil
}

func (b *GeminiBrain) GenerateText(ctx context.Context, req Request) (string, error) {
	return b.generate(ctx, req, "")
}

// GenerateJSON asks for an application/json response and unmarshals it
// into out. Markdown fences around the payload are stripped first since
// models still emit them occasionally.
func (b *GeminiBrain) GenerateJSON(ctx context.Context, req Request, out any) error {
	raw, err := b.generate(ctx, req, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(cleanJSON(raw)), out); err != nil {
		return fmt.Errorf("parse %s response: %w", req.Layer, err)
	}
	return nil
}

// GenerateImage renders a prompt with an image-capable model and
// returns the first image part's raw bytes and MIME type.
func (b *GeminiBrain) GenerateImage(ctx context.Context, model, prompt string) ([]byte, string, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}
	result, err := b.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return nil, "", fmt.Errorf("image generation failed: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, "", fmt.Errorf("image generation returned no candidates")
	}
	for _, part := range result.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, part.InlineData.MIMEType, nil
		}
	}
	return nil, "", fmt.Errorf("image generation returned no image parts")
}

func (b *GeminiBrain) generate(ctx context.Context, req Request, mimeType string) (string, error) {
	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if mimeType != "" {
		config.ResponseMIMEType = mimeType
	}

	result, err := b.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("%s generation failed: %w", req.Layer, err)
	}
	if result == nil || len(result.Candidates) == 0 ||
		result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%s generation returned no candidates", req.Layer)
	}

	text := result.Candidates[0].Content.Parts[0].Text
	b.record(ctx, req, text, result.UsageMetadata)
	return text, nil
}

func (b *GeminiBrain) record(ctx context.Context, req Request, response string, usage *genai.GenerateContentResponseUsageMetadata) {
	if b.logs == nil {
		return
	}
	entry := &models.LLMLog{
		Provider:   "gemini",
		Model:      req.Model,
		Layer:      req.Layer,
		PostID:     req.PostID,
		Platform:   req.Platform,
		UserPrompt: req.Prompt,
		Response:   response,
	}
	if usage != nil {
		entry.InputTokens = int(usage.PromptTokenCount)
		entry.OutputTokens = int(usage.CandidatesTokenCount)
	}
	if err := b.logs.Create(ctx, entry); err != nil {
		slog.Warn("llm log write failed", "layer", req.Layer, "error", err.Error())
	}
}

func cleanJSON(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
