package category

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/kakeibo/backend/internal/domain/entity"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
)

type stubSuggester struct {
	available  bool
	answer     string
	err        error
	candidates []string
	calls      int
}

func (s *stubSuggester) SuggestCategory(ctx context.Context, description string, candidates []string) (string, error) {
	s.calls++
	s.candidates = candidates
	return s.answer, s.err
}

func (s *stubSuggester) IsAvailable() bool {
	return s.available
}

func TestGuessCategoryUseCase(t *testing.T) {
	tests := []struct {
		name       string
		suggester  *stubSuggester
		input      string
		want       string
		wantCode   domainerror.CategoryErrorCode
		wantCalled bool
	}{
		{
			name:       "vocabulary answer is returned",
			suggester:  &stubSuggester{available: true, answer: entity.CategoryFood},
			input:      "ランチ",
			want:       entity.CategoryFood,
			wantCalled: true,
		},
		{
			name:       "answer is trimmed",
			suggester:  &stubSuggester{available: true, answer: " 交通費\n"},
			input:      "Suica",
			want:       entity.CategoryTransport,
			wantCalled: true,
		},
		{
			name:       "off-vocabulary answer falls back",
			suggester:  &stubSuggester{available: true, answer: "groceries"},
			input:      "スーパー",
			want:       entity.CategoryFallback,
			wantCalled: true,
		},
		{
			name:       "suggester error falls back",
			suggester:  &stubSuggester{available: true, err: errors.New("quota exceeded")},
			input:      "ランチ",
			want:       entity.CategoryFallback,
			wantCode:   domainerror.ErrCodeClassificationFailed,
			wantCalled: true,
		},
		{
			name:      "unconfigured suggester falls back",
			suggester: &stubSuggester{},
			input:     "ランチ",
			want:      entity.CategoryFallback,
			wantCode:  domainerror.ErrCodeClassifierUnavailable,
		},
		{
			name:      "blank description is rejected without calling out",
			suggester: &stubSuggester{available: true, answer: entity.CategoryFood},
			input:     "   ",
			want:      entity.CategoryFallback,
			wantCode:  domainerror.ErrCodeEmptyClassificationInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewGuessCategoryUseCase(tt.suggester)
			out, err := uc.Execute(context.Background(), GuessCategoryInput{Description: tt.input})

			if out == nil || out.Category != tt.want {
				t.Errorf("expected category %q, got %+v", tt.want, out)
			}
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			} else {
				var catErr *domainerror.CategoryError
				if !errors.As(err, &catErr) || catErr.Code != tt.wantCode {
					t.Errorf("expected error code %s, got %v", tt.wantCode, err)
				}
			}
			if (tt.suggester.calls > 0) != tt.wantCalled {
				t.Errorf("expected suggester called=%v, got %d calls", tt.wantCalled, tt.suggester.calls)
			}
		})
	}
}

func TestGuessCategoryUseCase_SendsVocabulary(t *testing.T) {
	suggester := &stubSuggester{available: true, answer: entity.CategoryHealth}
	uc := NewGuessCategoryUseCase(suggester)

	if _, err := uc.Execute(context.Background(), GuessCategoryInput{Description: "薬局"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(suggester.candidates) != len(entity.CategoryVocabulary()) {
		t.Errorf("expected %d candidates, got %d", len(entity.CategoryVocabulary()), len(suggester.candidates))
	}
}

func TestClassifier_NeverFails(t *testing.T) {
	classifier := NewClassifier(NewGuessCategoryUseCase(&stubSuggester{available: true, err: errors.New("timeout")}))

	if got := classifier.Classify(context.Background(), "ランチ"); got != entity.CategoryFallback {
		t.Errorf("expected fallback, got %q", got)
	}
}

// captureWarnings routes the default logger to a buffer for the rest of the test.
func captureWarnings(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return &buf
}

func TestClassifier_FallbackIsLoggedAtWarn(t *testing.T) {
	tests := []struct {
		name      string
		suggester *stubSuggester
		wantCause string
	}{
		{
			name:      "no suggester configured",
			suggester: &stubSuggester{available: false},
			wantCause: "no AI suggester configured",
		},
		{
			name:      "suggester error",
			suggester: &stubSuggester{available: true, err: errors.New("quota exceeded")},
			wantCause: "quota exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureWarnings(t)
			classifier := NewClassifier(NewGuessCategoryUseCase(tt.suggester))

			if got := classifier.Classify(context.Background(), "ランチ"); got != entity.CategoryFallback {
				t.Errorf("expected fallback, got %q", got)
			}

			out := logs.String()
			if strings.Count(out, "level=WARN") != 1 {
				t.Errorf("expected exactly one WARN line, got:\n%s", out)
			}
			if !strings.Contains(out, tt.wantCause) {
				t.Errorf("expected the cause %q in the log, got:\n%s", tt.wantCause, out)
			}
		})
	}

	t.Run("empty description is not a warning", func(t *testing.T) {
		logs := captureWarnings(t)
		classifier := NewClassifier(NewGuessCategoryUseCase(&stubSuggester{available: true}))

		_ = classifier.Classify(context.Background(), "  ")
		if logs.Len() != 0 {
			t.Errorf("expected no warnings, got:\n%s", logs.String())
		}
	})
}

func TestListCategoriesUseCase(t *testing.T) {
	out := NewListCategoriesUseCase().Execute()

	if len(out.Categories) != 10 {
		t.Errorf("expected 10 categories, got %d", len(out.Categories))
	}
	if out.Fallback != entity.CategoryFallback || out.Manual != entity.CategoryManual {
		t.Errorf("unexpected sentinels %q %q", out.Fallback, out.Manual)
	}
}
