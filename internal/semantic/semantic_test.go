package semantic

import (
	"strings"
	"testing"
)

func TestBuildSystemPrompt(t *testing.T) {
	prompt := buildSystemPrompt("What gas do plants absorb?", "carbon dioxide")

	for _, want := range []string{
		"QUESTION: What gas do plants absorb?",
		"EXPECTED ANSWER: carbon dioxide",
		`{"equivalent": true|false`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    bool
		wantErr bool
	}{
		{"equivalent", `{"equivalent": true, "reason": "synonym"}`, true, false},
		{"not equivalent", `{"equivalent": false, "reason": "different entity"}`, false, false},
		{"missing field defaults false", `{"reason": "no verdict"}`, false, false},
		{"not json", "the answer is correct", false, true},
		{"empty", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := parseVerdict(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected a parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Equivalent != tt.want {
				t.Errorf("equivalent = %v, want %v", v.Equivalent, tt.want)
			}
		})
	}
}
