package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/edventure/edventure-backend/internal/model"
	"github.com/rs/zerolog"
)

type stubSemantic struct {
	verdict bool
	err     error
	calls   int
}

func (s *stubSemantic) Equivalent(_ context.Context, _, _, _ string) (bool, error) {
	s.calls++
	return s.verdict, s.err
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Kuala Lumpur!", "kuala lumpur"},
		{"  KUALA   lumpur  ", "kuala lumpur"},
		{"photo-synthesis", "photosynthesis"},
		{"H2O.", "h2o"},
		{"", ""},
		{"?!.,", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"evaporation", "evaporation", 0},
		{"evaporation", "evapration", 1},
		{"evaporation", "evaporacion", 1},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEvaluateMCQ(t *testing.T) {
	e := NewEvaluator(nil, zerolog.Nop())

	q := &model.ExamQuestion{
		Question: model.Question{
			QuestionType:  model.QuestionTypeMCQ,
			CorrectAnswer: "Mars",
		},
		UserAnswer: "mars",
	}
	if !e.Evaluate(context.Background(), q) {
		t.Error("case-insensitive MCQ match should grade correct")
	}

	q.UserAnswer = "Venus"
	if e.Evaluate(context.Background(), q) {
		t.Error("wrong MCQ option should grade incorrect")
	}

	q.UserAnswer = ""
	if e.Evaluate(context.Background(), q) {
		t.Error("blank MCQ answer should grade incorrect")
	}
}

func TestEvaluateShortAnswerFuzzy(t *testing.T) {
	e := NewEvaluator(nil, zerolog.Nop())

	tests := []struct {
		name     string
		expected string
		given    string
		want     bool
	}{
		{"exact", "evaporation", "evaporation", true},
		{"exact after normalize", "Evaporation", "  evaporation! ", true},
		{"one typo", "evaporation", "evapration", true},
		{"two typos", "evaporation", "evaporacon", true},
		{"three typos", "evaporation", "evaporcon", false},
		{"blank", "evaporation", "", false},
		{"different word", "evaporation", "condensation", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &model.ExamQuestion{
				Question: model.Question{
					QuestionType:  model.QuestionTypeShortAnswer,
					CorrectAnswer: tt.expected,
				},
				UserAnswer: tt.given,
			}
			if got := e.Evaluate(context.Background(), q); got != tt.want {
				t.Errorf("Evaluate(%q vs %q) = %v, want %v", tt.given, tt.expected, got, tt.want)
			}
		})
	}
}

func TestEvaluateShortAnswerSemanticFallback(t *testing.T) {
	q := &model.ExamQuestion{
		Question: model.Question{
			QuestionType:  model.QuestionTypeShortAnswer,
			QuestionText:  "What gas do plants absorb?",
			CorrectAnswer: "carbon dioxide",
		},
		UserAnswer: "CO2",
	}

	// Remote check accepts the paraphrase.
	sem := &stubSemantic{verdict: true}
	e := NewEvaluator(sem, zerolog.Nop())
	if !e.Evaluate(context.Background(), q) {
		t.Error("semantic verdict true should grade correct")
	}
	if sem.calls != 1 {
		t.Errorf("semantic checker called %d times, want 1", sem.calls)
	}

	// Remote check rejects it.
	e = NewEvaluator(&stubSemantic{verdict: false}, zerolog.Nop())
	if e.Evaluate(context.Background(), q) {
		t.Error("semantic verdict false should grade incorrect")
	}

	// Remote check failing falls back to the fuzzy verdict.
	e = NewEvaluator(&stubSemantic{err: errors.New("timeout")}, zerolog.Nop())
	if e.Evaluate(context.Background(), q) {
		t.Error("semantic check failure should keep the fuzzy verdict")
	}

	// Fuzzy-passing answers never reach the remote check.
	sem = &stubSemantic{verdict: false}
	e = NewEvaluator(sem, zerolog.Nop())
	q.UserAnswer = "carbon dioxide"
	if !e.Evaluate(context.Background(), q) {
		t.Error("exact match should grade correct")
	}
	if sem.calls != 0 {
		t.Errorf("semantic checker called %d times for exact match, want 0", sem.calls)
	}
}

func TestEvaluateSubjective(t *testing.T) {
	e := NewEvaluator(nil, zerolog.Nop())

	q := &model.ExamQuestion{
		Question: model.Question{
			QuestionType:  model.QuestionTypeSubjective,
			CorrectAnswer: "light travels faster than sound",
		},
		UserAnswer: "We see it first because Light travels FASTER than sound does.",
	}
	if !e.Evaluate(context.Background(), q) {
		t.Error("answer containing the expected phrase should grade correct")
	}

	q.UserAnswer = "sound is loud"
	if e.Evaluate(context.Background(), q) {
		t.Error("answer missing the expected phrase should grade incorrect")
	}

	q.CorrectAnswer = ""
	if e.Evaluate(context.Background(), q) {
		t.Error("empty expected answer should never grade correct")
	}
}

func TestEvaluateMatching(t *testing.T) {
	e := NewEvaluator(nil, zerolog.Nop())

	q := &model.ExamQuestion{
		Question: model.Question{
			QuestionType:  model.QuestionTypeMatching,
			CorrectAnswer: "Frog:Amphibian;Eagle:Bird;Shark:Fish",
		},
	}

	// Assembly order does not matter.
	q.UserPairs = []string{"Shark:Fish", "Frog:Amphibian", "Eagle:Bird"}
	if !e.Evaluate(context.Background(), q) {
		t.Error("complete pair set in any order should grade correct")
	}

	q.UserPairs = []string{"Frog:Bird", "Eagle:Amphibian", "Shark:Fish"}
	if e.Evaluate(context.Background(), q) {
		t.Error("swapped pairs should grade incorrect")
	}

	q.UserPairs = []string{"Frog:Amphibian", "Eagle:Bird"}
	if e.Evaluate(context.Background(), q) {
		t.Error("incomplete pair set should grade incorrect")
	}

	q.UserPairs = nil
	if e.Evaluate(context.Background(), q) {
		t.Error("no pairs should grade incorrect")
	}
}

func TestEvaluateUnknownType(t *testing.T) {
	e := NewEvaluator(nil, zerolog.Nop())
	q := &model.ExamQuestion{
		Question:   model.Question{QuestionType: "essay"},
		UserAnswer: "anything",
	}
	if e.Evaluate(context.Background(), q) {
		t.Error("unknown question type should grade incorrect")
	}
}
