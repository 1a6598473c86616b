package engine

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/edventure/edventure-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Step is the exam session lifecycle stage.
type Step string

const (
	StepSetup   Step = "setup"
	StepExam    Step = "exam"
	StepResults Step = "results"
)

// MatchingPair is the session-local pairing state for one left item of the
// current matching question. Right initially holds a shuffled decoy;
// Matched marks a student-made assignment.
type MatchingPair struct {
	Left    string `json:"left"`
	Right   string `json:"right"`
	Matched bool   `json:"matched"`
}

// SubmitGate lists the 1-based numbers of unanswered questions blocking a
// submission until the caller jumps back or forces through.
type SubmitGate struct {
	Unanswered []int `json:"unanswered"`
}

// EventType tags a session stream event.
type EventType string

const (
	EventTick      EventType = "tick"
	EventAnswer    EventType = "answer"
	EventSubmitted EventType = "submitted"
	EventClosed    EventType = "closed"
)

// Event is one entry in a session's live event stream.
type Event struct {
	Type     EventType `json:"type"`
	TimeLeft int       `json:"time_left"`
	Index    int       `json:"index"`
	Score    int       `json:"score,omitempty"`
}

// StudentReader fetches the student a session belongs to.
type StudentReader interface {
	GetStudent(ctx context.Context, id uuid.UUID) (*model.Student, error)
}

// Session owns one student's exam lifecycle: setup, in-progress answer
// capture and navigation, timer-driven auto-submit, and the results view.
// All state mutations are snapshotted to the student's durable slot so a
// reload resumes mid-exam.
type Session struct {
	mu        sync.Mutex
	studentID uuid.UUID
	level     model.GradeLevel

	state SessionState
	pairs []MatchingPair
	gate  *SubmitGate

	selector  *Selector
	pipeline  *Pipeline
	snapshots SnapshotStore
	rng       *rand.Rand
	log       zerolog.Logger

	events      chan Event
	timerCancel context.CancelFunc
	finishing   bool
	summary     *Summary
}

func newSession(studentID uuid.UUID, level model.GradeLevel, selector *Selector, pipeline *Pipeline, snapshots SnapshotStore, rng *rand.Rand, log zerolog.Logger) *Session {
	return &Session{
		studentID: studentID,
		level:     level,
		state:     SessionState{Step: StepSetup},
		selector:  selector,
		pipeline:  pipeline,
		snapshots: snapshots,
		rng:       rng,
		log: log.With().
			Str("component", "exam_session").
			Str("student_id", studentID.String()).
			Logger(),
		events: make(chan Event, 32),
	}
}

// Events exposes the live event stream for this session. Events are dropped
// when no consumer keeps up; the snapshot remains the source of truth.
func (s *Session) Events() <-chan Event {
	return s.events
}

func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}

// State returns a copy of the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pairs returns a copy of the matching-pair state for the current question.
func (s *Session) Pairs() []MatchingPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MatchingPair(nil), s.pairs...)
}

// Summary returns the submission summary once the session is in results.
func (s *Session) Summary() *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// StartExam selects the working set and transitions setup -> exam. On
// ErrInsufficientQuestions the session remains in setup.
func (s *Session) StartExam(ctx context.Context, subject string, mode model.ExamMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Step == StepExam {
		return ErrExamInProgress
	}

	cfg, ok := ModeFor(mode)
	if !ok {
		return ErrUnknownMode
	}

	questions, err := s.selector.Select(ctx, s.studentID, s.level, subject, mode)
	if err != nil {
		return err
	}

	s.state = SessionState{
		Step:         StepExam,
		Subject:      subject,
		Mode:         mode,
		Questions:    questions,
		CurrentIndex: 0,
		TimeLeft:     int(cfg.TimeBudget.Seconds()),
	}
	s.gate = nil
	s.summary = nil
	s.initPairsLocked()
	s.saveSnapshotLocked(ctx)
	s.startTimerLocked()

	s.log.Info().
		Str("subject", subject).
		Str("mode", string(mode)).
		Int("questions", len(questions)).
		Msg("Exam started")
	return nil
}

// SelectAnswer records an answer on the current question only.
func (s *Session) SelectAnswer(ctx context.Context, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Step != StepExam || s.finishing {
		return ErrNoActiveExam
	}

	q := &s.state.Questions[s.state.CurrentIndex]
	q.UserAnswer = answer
	s.saveSnapshotLocked(ctx)
	s.emit(Event{Type: EventAnswer, Index: s.state.CurrentIndex, TimeLeft: s.state.TimeLeft})
	return nil
}

// SelectMatch toggles a pairing on the current matching question. Assigning
// a right item that is already matched to a different left steals it,
// unmatching the previous pairing. The consolidated matched pairs are
// serialized into the question's answer after every toggle.
func (s *Session) SelectMatch(ctx context.Context, left, right string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Step != StepExam || s.finishing {
		return ErrNoActiveExam
	}

	q := &s.state.Questions[s.state.CurrentIndex]
	if q.QuestionType != model.QuestionTypeMatching {
		return ErrNoActiveExam
	}

	var target *MatchingPair
	for i := range s.pairs {
		if s.pairs[i].Left == left {
			target = &s.pairs[i]
			break
		}
	}
	if target == nil {
		return ErrIndexOutOfRange
	}

	// At most one left maps to a given right at any time.
	for i := range s.pairs {
		if s.pairs[i].Matched && s.pairs[i].Right == right && s.pairs[i].Left != left {
			s.pairs[i].Matched = false
		}
	}
	target.Right = right
	target.Matched = true

	s.serializePairsLocked(q)
	s.saveSnapshotLocked(ctx)
	s.emit(Event{Type: EventAnswer, Index: s.state.CurrentIndex, TimeLeft: s.state.TimeLeft})
	return nil
}

// IsAnswered reports whether the question at index has an answer. Matching
// questions require at least one matched pair; every other type requires a
// non-empty answer string.
func (s *Session) IsAnswered(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.state.Questions) {
		return false
	}
	return questionAnswered(&s.state.Questions[index])
}

func questionAnswered(q *model.ExamQuestion) bool {
	if q.QuestionType == model.QuestionTypeMatching {
		return len(q.UserPairs) > 0
	}
	return strings.TrimSpace(q.UserAnswer) != ""
}

// Next advances to the next question. On the last question it instead
// computes the unanswered set: a non-empty set raises a submit gate, an
// empty one proceeds straight to submission.
func (s *Session) Next(ctx context.Context) (*SubmitGate, *Summary, error) {
	s.mu.Lock()
	if s.state.Step != StepExam || s.finishing {
		s.mu.Unlock()
		return nil, nil, ErrNoActiveExam
	}

	if s.state.CurrentIndex < len(s.state.Questions)-1 {
		s.moveToLocked(ctx, s.state.CurrentIndex+1)
		s.mu.Unlock()
		return nil, nil, nil
	}

	if unanswered := s.unansweredNumbersLocked(); len(unanswered) > 0 {
		s.gate = &SubmitGate{Unanswered: unanswered}
		gate := s.gate
		s.mu.Unlock()
		return gate, nil, nil
	}
	s.mu.Unlock()

	summary, err := s.finish(ctx)
	return nil, summary, err
}

// Previous moves back one question.
func (s *Session) Previous(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Step != StepExam || s.finishing {
		return ErrNoActiveExam
	}
	if s.state.CurrentIndex == 0 {
		return nil
	}
	s.moveToLocked(ctx, s.state.CurrentIndex-1)
	return nil
}

// JumpTo moves directly to the question at index.
func (s *Session) JumpTo(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Step != StepExam || s.finishing {
		return ErrNoActiveExam
	}
	if index < 0 || index >= len(s.state.Questions) {
		return ErrIndexOutOfRange
	}
	s.moveToLocked(ctx, index)
	return nil
}

// JumpToFirstUnanswered resolves a submit gate by jumping back to the first
// unanswered question.
func (s *Session) JumpToFirstUnanswered(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Step != StepExam || s.finishing {
		return ErrNoActiveExam
	}
	for i := range s.state.Questions {
		if !questionAnswered(&s.state.Questions[i]) {
			s.moveToLocked(ctx, i)
			return nil
		}
	}
	return nil
}

// moveToLocked updates the index, clears any pending gate, and rebuilds the
// matching-pair state for the newly current question (fresh decoy shuffle);
// the saved answer snapshot on each question is preserved.
func (s *Session) moveToLocked(ctx context.Context, index int) {
	s.gate = nil
	s.state.CurrentIndex = index
	s.initPairsLocked()
	s.saveSnapshotLocked(ctx)
}

// Submit finishes the exam. Without force, unanswered questions raise a
// submit gate instead.
func (s *Session) Submit(ctx context.Context, force bool) (*SubmitGate, *Summary, error) {
	s.mu.Lock()
	if s.state.Step != StepExam || s.finishing {
		s.mu.Unlock()
		return nil, nil, ErrNoActiveExam
	}
	if !force {
		if unanswered := s.unansweredNumbersLocked(); len(unanswered) > 0 {
			s.gate = &SubmitGate{Unanswered: unanswered}
			gate := s.gate
			s.mu.Unlock()
			return gate, nil, nil
		}
	}
	s.mu.Unlock()

	summary, err := s.finish(ctx)
	return nil, summary, err
}

// TryAgain resets a finished session back to setup, clearing question,
// matching, gate, and score state.
func (s *Session) TryAgain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Step != StepResults {
		return ErrNoActiveExam
	}
	s.state = SessionState{Step: StepSetup}
	s.pairs = nil
	s.gate = nil
	s.summary = nil
	s.saveSnapshotLocked(ctx)
	return nil
}

// Close tears the session down and clears the durable snapshot.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.emit(Event{Type: EventClosed})
	if err := s.snapshots.Clear(ctx, s.studentID); err != nil {
		s.log.Warn().Err(err).Msg("Failed to clear session snapshot on close")
		return err
	}
	return nil
}

// finish runs the submission pipeline exactly once. Concurrent triggers
// (timer expiry racing a manual submit) are rejected while one is in
// flight. On pipeline failure the session stays in the exam step so the
// caller can retry.
func (s *Session) finish(ctx context.Context) (*Summary, error) {
	s.mu.Lock()
	if s.state.Step != StepExam || s.finishing {
		s.mu.Unlock()
		return nil, ErrNoActiveExam
	}
	s.finishing = true
	s.stopTimerLocked()
	state := &s.state
	s.mu.Unlock()

	summary, err := s.pipeline.Finish(ctx, s.studentID, state)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishing = false

	if err != nil {
		// Not marked complete; resume the clock if there is time left.
		if s.state.TimeLeft > 0 {
			s.startTimerLocked()
		}
		return nil, err
	}

	s.state.Step = StepResults
	s.state.Score = summary.Score
	s.summary = summary
	s.gate = nil
	s.pairs = nil
	if clearErr := s.snapshots.Clear(context.WithoutCancel(ctx), s.studentID); clearErr != nil {
		s.log.Warn().Err(clearErr).Msg("Failed to clear session snapshot after submission")
	}
	s.emit(Event{Type: EventSubmitted, Score: summary.Score})
	s.log.Info().Int("score", summary.Score).Int("xp", summary.XPGained).Msg("Exam submitted")
	return summary, nil
}

// ────────────────────────────────────────────────────────────────────────────
// Timer
// ────────────────────────────────────────────────────────────────────────────

// startTimerLocked launches the once-per-second countdown. Reaching zero
// triggers the normal finish path; timeout is a transition, not an error.
func (s *Session) startTimerLocked() {
	s.stopTimerLocked()
	ctx, cancel := context.WithCancel(context.Background())
	s.timerCancel = cancel
	go s.runTimer(ctx)
}

func (s *Session) stopTimerLocked() {
	if s.timerCancel != nil {
		s.timerCancel()
		s.timerCancel = nil
	}
}

func (s *Session) runTimer(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.tick() {
				// Detached context: the view may already be gone, but a
				// successful submission must not be lost.
				if _, err := s.finish(context.Background()); err != nil {
					s.log.Error().Err(err).Msg("Timeout auto-submit failed")
				}
				return
			}
		}
	}
}

// tick decrements the countdown and reports whether time just ran out.
func (s *Session) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Step != StepExam || s.finishing || s.state.TimeLeft <= 0 {
		return false
	}

	s.state.TimeLeft--
	s.saveSnapshotLocked(context.Background())
	s.emit(Event{Type: EventTick, TimeLeft: s.state.TimeLeft, Index: s.state.CurrentIndex})
	return s.state.TimeLeft == 0
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

func (s *Session) unansweredNumbersLocked() []int {
	var numbers []int
	for i := range s.state.Questions {
		if !questionAnswered(&s.state.Questions[i]) {
			numbers = append(numbers, i+1)
		}
	}
	return numbers
}

// initPairsLocked rebuilds matching-pair state for the current question:
// left items keep the option order, right items get a fresh decoy shuffle.
func (s *Session) initPairsLocked() {
	s.pairs = nil
	if len(s.state.Questions) == 0 {
		return
	}
	q := &s.state.Questions[s.state.CurrentIndex]
	if q.QuestionType != model.QuestionTypeMatching {
		return
	}

	lefts := make([]string, 0, len(q.Options))
	rights := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		left, right, ok := strings.Cut(opt, model.MatchingPairSeparator)
		if !ok {
			continue
		}
		lefts = append(lefts, left)
		rights = append(rights, right)
	}

	for i := len(rights) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		rights[i], rights[j] = rights[j], rights[i]
	}

	s.pairs = make([]MatchingPair, len(lefts))
	for i := range lefts {
		s.pairs[i] = MatchingPair{Left: lefts[i], Right: rights[i]}
	}
}

// serializePairsLocked snapshots the matched pairs into the question's
// answer fields.
func (s *Session) serializePairsLocked(q *model.ExamQuestion) {
	var pairs []string
	for _, p := range s.pairs {
		if p.Matched {
			pairs = append(pairs, p.Left+model.MatchingPairSeparator+p.Right)
		}
	}
	q.UserPairs = pairs
	q.UserAnswer = strings.Join(pairs, model.MatchingAnswerSeparator)
}

func (s *Session) saveSnapshotLocked(ctx context.Context) {
	if err := s.snapshots.Save(ctx, s.studentID, &s.state); err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist session snapshot")
	}
}
