package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/edventure/edventure-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// QuestionSource reads the question bank, newest-first.
type QuestionSource interface {
	ListForSelection(ctx context.Context, levels []model.GradeLevel, subject string, types []model.QuestionType) ([]model.Question, error)
}

// ExamHistory reads a student's completed exams for seen-question exclusion.
type ExamHistory interface {
	ListCompletedQuestionIDs(ctx context.Context, studentID uuid.UUID, subject string) ([]uuid.UUID, error)
}

// Selector builds a deduplicated, shuffled working set of questions for one
// exam, preferring questions the student has not seen before.
type Selector struct {
	questions QuestionSource
	history   ExamHistory
	log       zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a Selector. rng is injectable so tests can supply a
// deterministic seed; pass rand.New(rand.NewSource(time.Now().UnixNano()))
// in production wiring.
func NewSelector(questions QuestionSource, history ExamHistory, rng *rand.Rand, log zerolog.Logger) *Selector {
	return &Selector{
		questions: questions,
		history:   history,
		rng:       rng,
		log:       log.With().Str("component", "selector").Logger(),
	}
}

// Select produces the exam working set for a student. It fails with
// ErrInsufficientQuestions when the filtered pool cannot fill the mode's
// required count even after falling back to already-seen questions.
func (s *Selector) Select(ctx context.Context, studentID uuid.UUID, level model.GradeLevel, subject string, mode model.ExamMode) ([]model.ExamQuestion, error) {
	cfg, ok := ModeFor(mode)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownMode, mode)
	}
	required := cfg.QuestionCount

	levels := model.AllowedSourceLevels(level)
	if len(levels) == 0 {
		return nil, fmt.Errorf("unknown grade level %q", level)
	}

	// Pool comes back newest-first so the oversample window below biases
	// toward fresh content.
	pool, err := s.questions.ListForSelection(ctx, levels, subject, cfg.QuestionTypes)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(pool) < required {
		return nil, ErrInsufficientQuestions
	}

	seenIDs, err := s.history.ListCompletedQuestionIDs(ctx, studentID, subject)
	if err != nil {
		return nil, fmt.Errorf("list completed questions: %w", err)
	}
	seen := make(map[uuid.UUID]struct{}, len(seenIDs))
	for _, id := range seenIDs {
		seen[id] = struct{}{}
	}

	var fresh, repeats []model.Question
	for _, q := range pool {
		if _, ok := seen[q.ID]; ok {
			repeats = append(repeats, q)
		} else {
			fresh = append(fresh, q)
		}
	}

	var picked []model.Question
	switch {
	case len(fresh) >= required:
		// Oversample the newest 2xrequired fresh questions, then shuffle
		// within that window.
		window := fresh
		if len(window) > 2*required {
			window = window[:2*required]
		}
		window = append([]model.Question(nil), window...)
		s.shuffle(window)
		picked = window[:required]
	case len(fresh) > 0:
		picked = append(picked, fresh...)
		pad := append([]model.Question(nil), repeats...)
		s.shuffle(pad)
		picked = append(picked, pad[:required-len(fresh)]...)
	default:
		pad := append([]model.Question(nil), repeats...)
		s.shuffle(pad)
		picked = pad[:required]
	}

	if len(picked) < required {
		return nil, ErrInsufficientQuestions
	}

	s.shuffle(picked)

	s.log.Debug().
		Str("student_id", studentID.String()).
		Str("subject", subject).
		Str("mode", string(mode)).
		Int("pool", len(pool)).
		Int("fresh", len(fresh)).
		Msg("Selected exam working set")

	working := make([]model.ExamQuestion, len(picked))
	for i, q := range picked {
		working[i] = model.ExamQuestion{Question: q}
	}
	return working, nil
}

// shuffle is an in-place Fisher-Yates shuffle using the injected source.
func (s *Selector) shuffle(qs []model.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(qs) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}
