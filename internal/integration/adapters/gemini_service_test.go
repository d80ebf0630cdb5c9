package adapters

import (
	"context"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestBuildCategoryPrompt(t *testing.T) {
	prompt := buildCategoryPrompt("コンビニでおにぎり", []string{"食費", "日用品", "その他"})

	for _, want := range []string{"カテゴリ候補：食費、日用品、その他", "内容：コンビニでおにぎり", "1つだけ"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}
}

func TestParseCategoryResponse(t *testing.T) {
	textResponse := func(parts ...genai.Part) *genai.GenerateContentResponse {
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
		}
	}

	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr bool
	}{
		{name: "plain label", resp: textResponse(genai.Text("食費")), want: "食費"},
		{name: "whitespace and newline", resp: textResponse(genai.Text("  交通費\n")), want: "交通費"},
		{name: "quoted label", resp: textResponse(genai.Text("「娯楽」")), want: "娯楽"},
		{name: "fenced label", resp: textResponse(genai.Text("```\n美容\n```")), want: "美容"},
		{name: "nil response", resp: nil, wantErr: true},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, wantErr: true},
		{name: "nil content", resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, wantErr: true},
		{name: "blank text", resp: textResponse(genai.Text("   ")), wantErr: true},
		{name: "non-text part", resp: textResponse(genai.Blob{MIMEType: "image/png"}), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCategoryResponse(tt.resp)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGeminiService_Unconfigured(t *testing.T) {
	service := NewGeminiService("", "", 0)

	if service.IsAvailable() {
		t.Error("expected service without key to be unavailable")
	}
	if _, err := service.SuggestCategory(context.Background(), "ランチ", []string{"食費"}); err == nil {
		t.Error("expected error from unconfigured service")
	}
	if service.modelName != defaultGeminiModel || service.timeout != defaultGeminiTimeout {
		t.Errorf("expected defaults, got %s %s", service.modelName, service.timeout)
	}
}
