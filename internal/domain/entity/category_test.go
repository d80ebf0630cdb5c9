package entity

import "testing"

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"exact label", "食費", CategoryFood},
		{"surrounding whitespace is trimmed", "  交通費\n", CategoryTransport},
		{"other label from the vocabulary", "その他", CategoryOtherLabel},
		{"explanation is not a label", "食費です", CategoryFallback},
		{"english answer is coerced", "food", CategoryFallback},
		{"empty answer is coerced", "", CategoryFallback},
		{"sentinel is not a classifier label", CategoryManual, CategoryFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCategory(tt.raw); got != tt.want {
				t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsStorableCategory(t *testing.T) {
	for _, label := range CategoryVocabulary() {
		if !IsStorableCategory(label) {
			t.Errorf("expected vocabulary label %q to be storable", label)
		}
	}
	if !IsStorableCategory(CategoryFallback) {
		t.Error("expected fallback to be storable")
	}
	if !IsStorableCategory(CategoryManual) {
		t.Error("expected manual sentinel to be storable")
	}
	if IsStorableCategory("旅行") {
		t.Error("expected label outside the vocabulary to be rejected")
	}
}

func TestCategoryVocabulary_ReturnsCopy(t *testing.T) {
	labels := CategoryVocabulary()
	if len(labels) != 10 {
		t.Fatalf("expected 10 labels, got %d", len(labels))
	}
	labels[0] = "changed"
	if CategoryVocabulary()[0] != CategoryFood {
		t.Error("expected vocabulary to be immutable through the returned slice")
	}
}

func TestSumAmounts(t *testing.T) {
	if got := SumAmounts(nil); got != 0 {
		t.Errorf("expected empty sum 0, got %d", got)
	}

	txs := []*Transaction{
		{Amount: 1000},
		{Amount: 500},
		{Amount: -200},
	}
	if got := SumAmounts(txs); got != 1300 {
		t.Errorf("expected 1300, got %d", got)
	}
}

func TestIdentity_SameAs(t *testing.T) {
	a := &Identity{UserID: [16]byte{1}}
	b := &Identity{UserID: [16]byte{1}, Email: "changed@example.com"}
	c := &Identity{UserID: [16]byte{2}}
	var none *Identity

	if !a.SameAs(b) {
		t.Error("expected identities with the same user ID to match")
	}
	if a.SameAs(c) {
		t.Error("expected different user IDs not to match")
	}
	if a.SameAs(none) || none.SameAs(a) {
		t.Error("expected nil not to match a present identity")
	}
	if !none.SameAs(nil) {
		t.Error("expected nil to match nil")
	}
}
