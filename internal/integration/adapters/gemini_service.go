// Package adapters provides implementations for external service integrations.
package adapters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultGeminiModel   = "gemini-2.5-flash-lite"
	defaultGeminiTimeout = 10 * time.Second

	geminiSystemInstruction = "あなたは優秀な家計簿アシスタントです。"
)

// GeminiService implements adapter.CategorySuggester using Google Gemini.
type GeminiService struct {
	apiKey    string
	modelName string
	timeout   time.Duration
}

// NewGeminiService creates a new Gemini service instance. Empty model and
// zero timeout fall back to defaults.
func NewGeminiService(apiKey, modelName string, timeout time.Duration) *GeminiService {
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	if timeout <= 0 {
		timeout = defaultGeminiTimeout
	}
	return &GeminiService{
		apiKey:    apiKey,
		modelName: modelName,
		timeout:   timeout,
	}
}

// IsAvailable checks if the Gemini service is available and properly configured.
func (s *GeminiService) IsAvailable() bool {
	return s.apiKey != ""
}

// SuggestCategory asks Gemini to pick exactly one of the candidates for the
// description and returns its raw answer.
func (s *GeminiService) SuggestCategory(ctx context.Context, description string, candidates []string) (string, error) {
	if !s.IsAvailable() {
		return "", fmt.Errorf("gemini service is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(s.modelName)

	// Deterministic single-label answers
	model.SetTemperature(0)
	model.SetCandidateCount(1)
	model.SystemInstruction = genai.NewUserContent(genai.Text(geminiSystemInstruction))

	resp, err := model.GenerateContent(ctx, genai.Text(buildCategoryPrompt(description, candidates)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	answer, err := parseCategoryResponse(resp)
	if err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return answer, nil
}

// buildCategoryPrompt creates the prompt for Gemini.
func buildCategoryPrompt(description string, candidates []string) string {
	var sb strings.Builder

	sb.WriteString("以下の内容から、家計簿のカテゴリを1つだけ選んで回答してください。\n")
	sb.WriteString("回答はカテゴリ名のみとし、余計な説明は不要です。\n")
	sb.WriteString("カテゴリ候補：")
	sb.WriteString(strings.Join(candidates, "、"))
	sb.WriteString("\n\n内容：")
	sb.WriteString(description)

	return sb.String()
}

// parseCategoryResponse extracts the first text part of the first candidate.
func parseCategoryResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("no content in response")
	}

	var textContent string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			textContent = string(text)
			break
		}
	}

	// Models sometimes wrap the answer in a code fence or quotes
	textContent = strings.TrimPrefix(strings.TrimSpace(textContent), "```")
	textContent = strings.TrimSuffix(textContent, "```")
	textContent = strings.Trim(strings.TrimSpace(textContent), "\"「」")

	if textContent == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return textContent, nil
}
