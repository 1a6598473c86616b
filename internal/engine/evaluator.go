package engine

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/edventure/edventure-backend/internal/model"
	"github.com/rs/zerolog"
)

// defaultFuzzyThreshold is the maximum Levenshtein distance between
// normalized strings still considered a short-answer match.
const defaultFuzzyThreshold = 2

// SemanticChecker is an optional remote semantic-equivalence check for
// short answers that failed the exact and fuzzy tiers.
type SemanticChecker interface {
	Equivalent(ctx context.Context, question, expected, given string) (bool, error)
}

// Evaluator grades a single answer by question type. All paths produce a
// best-effort boolean; remote-check failures are absorbed, never propagated.
type Evaluator struct {
	semantic       SemanticChecker // nil when not configured
	fuzzyThreshold int
	log            zerolog.Logger
}

// NewEvaluator creates an Evaluator. semantic may be nil, in which case
// short-answer grading stops at the exact/fuzzy tiers.
func NewEvaluator(semantic SemanticChecker, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		semantic:       semantic,
		fuzzyThreshold: defaultFuzzyThreshold,
		log:            log.With().Str("component", "evaluator").Logger(),
	}
}

// Evaluate grades one answered question. Only the short-answer path may
// suspend (remote semantic check); every other type is a pure comparison.
func (e *Evaluator) Evaluate(ctx context.Context, q *model.ExamQuestion) bool {
	switch q.QuestionType {
	case model.QuestionTypeMCQ:
		return Normalize(q.UserAnswer) == Normalize(q.CorrectAnswer)
	case model.QuestionTypeShortAnswer:
		return e.evaluateShortAnswer(ctx, q)
	case model.QuestionTypeSubjective:
		expected := Normalize(q.CorrectAnswer)
		if expected == "" {
			return false
		}
		return strings.Contains(Normalize(q.UserAnswer), expected)
	case model.QuestionTypeMatching:
		return canonicalPairs(q.UserPairs) == canonicalPairs(strings.Split(q.CorrectAnswer, model.MatchingAnswerSeparator))
	default:
		e.log.Warn().Str("type", string(q.QuestionType)).Msg("Unknown question type, grading as incorrect")
		return false
	}
}

func (e *Evaluator) evaluateShortAnswer(ctx context.Context, q *model.ExamQuestion) bool {
	given := Normalize(q.UserAnswer)
	expected := Normalize(q.CorrectAnswer)

	if given == "" {
		return false
	}
	if given == expected {
		return true
	}
	if levenshtein(given, expected) <= e.fuzzyThreshold {
		return true
	}

	if e.semantic == nil {
		// Not configured: the fuzzy verdict stands.
		return false
	}

	ok, err := e.semantic.Equivalent(ctx, q.QuestionText, q.CorrectAnswer, q.UserAnswer)
	if err != nil {
		// Downgrade to the exact/fuzzy verdict. Logged so telemetry can
		// distinguish "configured but failing" from "never configured".
		e.log.Warn().Err(err).
			Str("question_id", q.ID.String()).
			Msg("Semantic check unavailable, keeping fuzzy verdict")
		return false
	}
	return ok
}

// Normalize lowercases, trims, strips punctuation, and collapses whitespace.
// Applied to both sides of every comparison.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// canonicalPairs normalizes and sorts a pair list into one comparable
// string, so a correct set of pairs grades correct regardless of the order
// it was assembled in.
func canonicalPairs(pairs []string) string {
	cleaned := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if n := Normalize(p); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	if len(cleaned) == 0 {
		return ""
	}
	sort.Strings(cleaned)
	return strings.Join(cleaned, model.MatchingAnswerSeparator)
}

// levenshtein computes the edit distance between two strings using the
// two-row dynamic programming formulation.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
