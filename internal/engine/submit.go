package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/edventure/edventure-backend/internal/model"
	"github.com/edventure/edventure-backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	persistMaxAttempts = 3
	xpPerCorrect       = 10
)

// Outcome reports how a submission was persisted.
type Outcome string

const (
	// OutcomeSynced means the exam record reached the backend.
	OutcomeSynced Outcome = "synced"
	// OutcomeOfflineDeferred means the record was queued locally; remote
	// sync (and the XP update) happens when connectivity returns. Not a
	// failure: the score is final.
	OutcomeOfflineDeferred Outcome = "offline_deferred"
)

// Summary is the result of a completed submission.
type Summary struct {
	Score     int                  `json:"score"`
	Correct   int                  `json:"correct"`
	Total     int                  `json:"total"`
	XPGained  int                  `json:"xp_gained"`
	Questions []model.ExamQuestion `json:"questions"`
	Outcome   Outcome              `json:"outcome"`
	Progress  Progress             `json:"progress"`
}

// QueuedExam is one offline-queued submission. It carries the XP delta so
// the sync worker can apply it once the record lands remotely.
type QueuedExam struct {
	Record   model.ExamRecord `json:"record"`
	XPDelta  int              `json:"xp_delta"`
	QueuedAt time.Time        `json:"queued_at"`
	Offline  bool             `json:"offline"`
}

// ExamRecordStore persists exam records. Insert must tolerate retries of an
// already-applied insert (the record ID is the idempotency key).
type ExamRecordStore interface {
	Insert(ctx context.Context, record *model.ExamRecord) error
}

// StudentXP reads and mutates a student's cumulative XP.
type StudentXP interface {
	XP(ctx context.Context, studentID uuid.UUID) (int, error)
	AddXP(ctx context.Context, studentID uuid.UUID, delta int) error
}

// CredentialCheck verifies the caller still holds a valid session
// credential immediately before persistence.
type CredentialCheck interface {
	VerifyStudentSession(ctx context.Context, studentID uuid.UUID) error
}

// ConnectivitySignal reports whether the backend is reachable.
type ConnectivitySignal interface {
	Online() bool
}

// Pipeline grades a finished exam, persists the record, and applies the XP
// reward. Persistence is local-first: with no connectivity the record is
// queued and the submission still succeeds.
type Pipeline struct {
	evaluator *Evaluator
	records   ExamRecordStore
	students  StudentXP
	auth      CredentialCheck
	queue     store.Queue
	conn      ConnectivitySignal
	delay     DelayFunc
	log       zerolog.Logger
}

// NewPipeline creates a Pipeline with the production linear backoff
// (attempt x 1s) between persistence retries.
func NewPipeline(
	evaluator *Evaluator,
	records ExamRecordStore,
	students StudentXP,
	auth CredentialCheck,
	queue store.Queue,
	conn ConnectivitySignal,
	log zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		evaluator: evaluator,
		records:   records,
		students:  students,
		auth:      auth,
		queue:     queue,
		conn:      conn,
		delay:     LinearBackoff(time.Second),
		log:       log.With().Str("component", "submission_pipeline").Logger(),
	}
}

// Finish grades every question (concurrently; order does not matter),
// computes score and XP, persists the exam record, and updates the
// student's XP. Questions are graded in place.
func (p *Pipeline) Finish(ctx context.Context, studentID uuid.UUID, state *SessionState) (*Summary, error) {
	questions := state.Questions
	total := len(questions)
	if total == 0 {
		return nil, ErrNoActiveExam
	}

	var wg sync.WaitGroup
	for i := range questions {
		wg.Add(1)
		go func(q *model.ExamQuestion) {
			defer wg.Done()
			q.IsCorrect = p.evaluator.Evaluate(ctx, q)
		}(&questions[i])
	}
	wg.Wait()

	correct := 0
	for i := range questions {
		if questions[i].IsCorrect {
			correct++
		}
	}
	score := int(math.Round(100 * float64(correct) / float64(total)))
	xpGained := correct*xpPerCorrect + scoreBonus(score)

	// Credential check before any persistence attempt.
	if err := p.auth.VerifyStudentSession(ctx, studentID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthRequired, err)
	}

	record := &model.ExamRecord{
		ID:             uuid.New(),
		StudentID:      studentID,
		Subject:        state.Subject,
		Mode:           state.Mode,
		TotalQuestions: total,
		Score:          score,
		QuestionIDs:    questionIDs(questions),
		Completed:      true,
	}

	summary := &Summary{
		Score:     score,
		Correct:   correct,
		Total:     total,
		XPGained:  xpGained,
		Questions: questions,
	}

	if !p.conn.Online() {
		if err := p.enqueueOffline(ctx, record, xpGained); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
		}
		summary.Outcome = OutcomeOfflineDeferred
		summary.Progress = p.progressAfter(ctx, studentID, xpGained)
		p.log.Info().
			Str("student_id", studentID.String()).
			Int("score", score).
			Msg("Offline submission queued for sync")
		return summary, nil
	}

	err := RetryWithBackoff(ctx, persistMaxAttempts, p.delay, func(ctx context.Context) error {
		return p.records.Insert(ctx, record)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	// The exam record is durable now. An XP update failure is logged, not
	// surfaced: it must not roll back or fail the submission.
	if err := p.students.AddXP(ctx, studentID, xpGained); err != nil {
		p.log.Warn().Err(err).
			Str("student_id", studentID.String()).
			Int("xp_delta", xpGained).
			Msg("XP update failed after successful persistence")
	}

	summary.Outcome = OutcomeSynced
	summary.Progress = p.progressAfter(ctx, studentID, 0)
	return summary, nil
}

// SyncQueued drains the offline queue, persisting each record remotely and
// removing only the ones that succeed. A failing record is put back at the
// head of the queue and draining stops until the next attempt.
func (p *Pipeline) SyncQueued(ctx context.Context) (synced int, err error) {
	for {
		raw, popErr := p.queue.Pop(ctx)
		if errors.Is(popErr, store.ErrNotFound) {
			return synced, nil
		}
		if popErr != nil {
			return synced, popErr
		}

		var queued QueuedExam
		if unmarshalErr := json.Unmarshal(raw, &queued); unmarshalErr != nil {
			// Unreadable entries cannot ever sync; drop them.
			p.log.Error().Err(unmarshalErr).Msg("Dropping corrupt offline queue entry")
			continue
		}

		if insertErr := p.records.Insert(ctx, &queued.Record); insertErr != nil {
			if pushErr := p.queue.PushFront(ctx, raw); pushErr != nil {
				p.log.Error().Err(pushErr).Msg("Failed to requeue offline exam")
			}
			return synced, insertErr
		}

		if xpErr := p.students.AddXP(ctx, queued.Record.StudentID, queued.XPDelta); xpErr != nil {
			p.log.Warn().Err(xpErr).
				Str("student_id", queued.Record.StudentID.String()).
				Msg("Deferred XP update failed after sync")
		}

		synced++
		p.log.Info().
			Str("record_id", queued.Record.ID.String()).
			Str("student_id", queued.Record.StudentID.String()).
			Msg("Offline exam synced")
	}
}

func (p *Pipeline) enqueueOffline(ctx context.Context, record *model.ExamRecord, xpDelta int) error {
	raw, err := json.Marshal(QueuedExam{
		Record:   *record,
		XPDelta:  xpDelta,
		QueuedAt: time.Now().UTC(),
		Offline:  true,
	})
	if err != nil {
		return err
	}
	return p.queue.Push(ctx, raw)
}

// progressAfter decorates the summary with level information for the XP
// total including pendingDelta (non-zero for deferred offline XP). A read
// failure degrades to progress computed from the delta alone.
func (p *Pipeline) progressAfter(ctx context.Context, studentID uuid.UUID, pendingDelta int) Progress {
	xp, err := p.students.XP(ctx, studentID)
	if err != nil {
		p.log.Warn().Err(err).
			Str("student_id", studentID.String()).
			Msg("Could not read XP for progress decoration")
		xp = 0
	}
	return LevelOf(xp + pendingDelta)
}

func scoreBonus(score int) int {
	switch {
	case score == 100:
		return 100
	case score >= 90:
		return 50
	case score >= 80:
		return 25
	default:
		return 0
	}
}

func questionIDs(questions []model.ExamQuestion) []uuid.UUID {
	ids := make([]uuid.UUID, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
	}
	return ids
}
