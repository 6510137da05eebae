package question

import (
	"errors"
	"testing"
)

func TestSanitizeChoiceAnswer(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"D) Standard Deviation", "D"},
		{"b. the median", "B"},
		{"A", "A"},
		{"  c  ", "C"},
		{"C：mean", "C：mean"},
		{"Correlation", "Correlation"},
		{"E) none", "E) none"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeChoiceAnswer(tt.in); got != tt.want {
			t.Errorf("SanitizeChoiceAnswer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResponseChoiceLetter(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"b", "B"},
		{" c) the median ", "C"},
		{"d. spread", "D"},
		{"A、平均數", "A"},
		{"a lot of spread", "a lot of spread"},
		{"b: median", "b: median"},
		{"Correlation", "Correlation"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ResponseChoiceLetter(tt.in); got != tt.want {
			t.Errorf("ResponseChoiceLetter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"3", 3, false},
		{"basic", 1, false},
		{"Medium", 2, false},
		{" advanced ", 3, false},
		{"0", 0, true},
		{"4", 0, true},
		{"hard", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDifficulty(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidDifficulty) {
				t.Errorf("ParseDifficulty(%q): expected ErrInvalidDifficulty, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseDifficulty(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestTypeValid(t *testing.T) {
	if !TypeCaseStudy.Valid() {
		t.Error("case_study should be valid")
	}
	if Type("essay").Valid() {
		t.Error("essay should not be valid")
	}
}

func TestOptionLetter(t *testing.T) {
	if OptionLetter(0) != "A" || OptionLetter(3) != "D" {
		t.Errorf("unexpected letters %q %q", OptionLetter(0), OptionLetter(3))
	}
}
