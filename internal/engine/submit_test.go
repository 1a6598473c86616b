package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/edventure/edventure-backend/internal/model"
	"github.com/edventure/edventure-backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type fakeRecordStore struct {
	failures int // insert attempts to fail before succeeding
	calls    int
	inserted []model.ExamRecord
}

func (f *fakeRecordStore) Insert(_ context.Context, record *model.ExamRecord) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection reset")
	}
	f.inserted = append(f.inserted, *record)
	return nil
}

type fakeStudentXP struct {
	xp     int
	xpErr  error
	addErr error
	deltas []int
}

func (f *fakeStudentXP) XP(_ context.Context, _ uuid.UUID) (int, error) {
	return f.xp, f.xpErr
}

func (f *fakeStudentXP) AddXP(_ context.Context, _ uuid.UUID, delta int) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.deltas = append(f.deltas, delta)
	return nil
}

type fakeCredCheck struct{ err error }

func (f *fakeCredCheck) VerifyStudentSession(context.Context, uuid.UUID) error { return f.err }

type fakeConn struct{ online bool }

func (f *fakeConn) Online() bool { return f.online }

type pipelineFixture struct {
	pipeline *Pipeline
	records  *fakeRecordStore
	students *fakeStudentXP
	auth     *fakeCredCheck
	conn     *fakeConn
	queue    *store.MemoryQueue
}

func newPipelineFixture() *pipelineFixture {
	f := &pipelineFixture{
		records:  &fakeRecordStore{},
		students: &fakeStudentXP{},
		auth:     &fakeCredCheck{},
		conn:     &fakeConn{online: true},
		queue:    store.NewMemoryQueue(),
	}
	f.pipeline = NewPipeline(
		NewEvaluator(nil, zerolog.Nop()),
		f.records,
		f.students,
		f.auth,
		f.queue,
		f.conn,
		zerolog.Nop(),
	)
	f.pipeline.delay = func(int) time.Duration { return 0 }
	return f
}

// mcqState builds an easy-style exam state with correct answers on the first
// `correct` questions and wrong answers on the rest.
func mcqState(total, correct int) *SessionState {
	questions := make([]model.ExamQuestion, total)
	for i := range questions {
		answer := "Paris"
		if i >= correct {
			answer = "Berlin"
		}
		questions[i] = model.ExamQuestion{
			Question: model.Question{
				ID:            uuid.New(),
				QuestionType:  model.QuestionTypeMCQ,
				CorrectAnswer: "Paris",
			},
			UserAnswer: answer,
		}
	}
	return &SessionState{
		Step:      StepExam,
		Subject:   "Geography",
		Mode:      model.ExamModeEasy,
		Questions: questions,
	}
}

func TestFinishScoreAndXP(t *testing.T) {
	tests := []struct {
		name      string
		correct   int
		wantScore int
		wantXP    int
	}{
		{"perfect score", 10, 100, 200},
		{"ninety percent", 9, 90, 140},
		{"eighty percent", 8, 80, 105},
		{"seventy percent", 7, 70, 70},
		{"zero", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPipelineFixture()
			summary, err := f.pipeline.Finish(context.Background(), uuid.New(), mcqState(10, tt.correct))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if summary.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", summary.Score, tt.wantScore)
			}
			if summary.Correct != tt.correct {
				t.Errorf("correct = %d, want %d", summary.Correct, tt.correct)
			}
			if summary.XPGained != tt.wantXP {
				t.Errorf("xp = %d, want %d", summary.XPGained, tt.wantXP)
			}
			if summary.Outcome != OutcomeSynced {
				t.Errorf("outcome = %q, want %q", summary.Outcome, OutcomeSynced)
			}
			if len(f.students.deltas) != 1 || f.students.deltas[0] != tt.wantXP {
				t.Errorf("applied XP deltas = %v, want [%d]", f.students.deltas, tt.wantXP)
			}
		})
	}
}

func TestFinishScoreRounding(t *testing.T) {
	// 2 of 3 correct is 66.67, which rounds to 67.
	f := newPipelineFixture()
	summary, err := f.pipeline.Finish(context.Background(), uuid.New(), mcqState(3, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Score != 67 {
		t.Errorf("score = %d, want 67", summary.Score)
	}
}

func TestFinishPersistsRecord(t *testing.T) {
	f := newPipelineFixture()
	studentID := uuid.New()
	state := mcqState(10, 10)

	if _, err := f.pipeline.Finish(context.Background(), studentID, state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.records.inserted) != 1 {
		t.Fatalf("inserted %d records, want 1", len(f.records.inserted))
	}
	rec := f.records.inserted[0]
	if rec.ID == uuid.Nil {
		t.Error("record ID was not generated before insert")
	}
	if rec.StudentID != studentID {
		t.Errorf("record student = %s, want %s", rec.StudentID, studentID)
	}
	if rec.Subject != "Geography" || rec.Mode != model.ExamModeEasy {
		t.Errorf("record subject/mode = %s/%s", rec.Subject, rec.Mode)
	}
	if rec.TotalQuestions != 10 || rec.Score != 100 || !rec.Completed {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.QuestionIDs) != 10 {
		t.Errorf("record carries %d question IDs, want 10", len(rec.QuestionIDs))
	}
}

func TestFinishEmptyState(t *testing.T) {
	f := newPipelineFixture()
	_, err := f.pipeline.Finish(context.Background(), uuid.New(), &SessionState{Step: StepExam})
	if !errors.Is(err, ErrNoActiveExam) {
		t.Fatalf("got %v, want ErrNoActiveExam", err)
	}
}

func TestFinishAuthFailure(t *testing.T) {
	f := newPipelineFixture()
	f.auth.err = errors.New("session revoked")

	_, err := f.pipeline.Finish(context.Background(), uuid.New(), mcqState(10, 10))
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("got %v, want ErrAuthRequired", err)
	}
	if f.records.calls != 0 {
		t.Error("insert attempted despite failed credential check")
	}
	if n, _ := f.queue.Len(context.Background()); n != 0 {
		t.Error("record queued despite failed credential check")
	}
}

func TestFinishRetriesTransientFailures(t *testing.T) {
	f := newPipelineFixture()
	f.records.failures = 2

	summary, err := f.pipeline.Finish(context.Background(), uuid.New(), mcqState(10, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.records.calls != 3 {
		t.Errorf("insert attempted %d times, want 3", f.records.calls)
	}
	if summary.Outcome != OutcomeSynced {
		t.Errorf("outcome = %q, want %q", summary.Outcome, OutcomeSynced)
	}
}

func TestFinishExhaustedRetries(t *testing.T) {
	f := newPipelineFixture()
	f.records.failures = 3

	_, err := f.pipeline.Finish(context.Background(), uuid.New(), mcqState(10, 10))
	if !errors.Is(err, ErrPersistenceFailed) {
		t.Fatalf("got %v, want ErrPersistenceFailed", err)
	}
	if f.records.calls != 3 {
		t.Errorf("insert attempted %d times, want 3", f.records.calls)
	}
	if len(f.students.deltas) != 0 {
		t.Error("XP applied despite failed persistence")
	}
}

func TestFinishXPFailureDoesNotFailSubmission(t *testing.T) {
	f := newPipelineFixture()
	f.students.addErr = errors.New("update timeout")

	summary, err := f.pipeline.Finish(context.Background(), uuid.New(), mcqState(10, 10))
	if err != nil {
		t.Fatalf("submission failed on XP error: %v", err)
	}
	if summary.Outcome != OutcomeSynced {
		t.Errorf("outcome = %q, want %q", summary.Outcome, OutcomeSynced)
	}
}

func TestFinishOfflineDefersRecord(t *testing.T) {
	f := newPipelineFixture()
	f.conn.online = false
	f.students.xp = 50

	summary, err := f.pipeline.Finish(context.Background(), uuid.New(), mcqState(10, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Outcome != OutcomeOfflineDeferred {
		t.Errorf("outcome = %q, want %q", summary.Outcome, OutcomeOfflineDeferred)
	}
	if f.records.calls != 0 {
		t.Error("insert attempted while offline")
	}
	if len(f.students.deltas) != 0 {
		t.Error("XP applied while offline; it must wait for sync")
	}

	n, _ := f.queue.Len(context.Background())
	if n != 1 {
		t.Fatalf("queue holds %d entries, want 1", n)
	}
	raw, _ := f.queue.Pop(context.Background())
	var queued QueuedExam
	if err := json.Unmarshal(raw, &queued); err != nil {
		t.Fatalf("queued entry not decodable: %v", err)
	}
	if queued.XPDelta != 200 || !queued.Offline {
		t.Errorf("queued = %+v, want XPDelta 200 and Offline true", queued)
	}

	// The deferred XP is already reflected in the reported progress.
	if want := LevelOf(250); summary.Progress != want {
		t.Errorf("progress = %+v, want %+v", summary.Progress, want)
	}
}

func TestSyncQueuedDrainsInOrder(t *testing.T) {
	f := newPipelineFixture()
	studentID := uuid.New()

	for i := 0; i < 3; i++ {
		raw, _ := json.Marshal(QueuedExam{
			Record: model.ExamRecord{
				ID:        uuid.New(),
				StudentID: studentID,
				Subject:   "Science",
				Mode:      model.ExamModeEasy,
			},
			XPDelta: 100 + i,
			Offline: true,
		})
		if err := f.queue.Push(context.Background(), raw); err != nil {
			t.Fatal(err)
		}
	}

	synced, err := f.pipeline.SyncQueued(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if synced != 3 {
		t.Errorf("synced %d records, want 3", synced)
	}
	if len(f.records.inserted) != 3 {
		t.Errorf("inserted %d records, want 3", len(f.records.inserted))
	}
	if want := []int{100, 101, 102}; len(f.students.deltas) != 3 ||
		f.students.deltas[0] != want[0] || f.students.deltas[1] != want[1] || f.students.deltas[2] != want[2] {
		t.Errorf("applied deltas = %v, want %v", f.students.deltas, want)
	}
	if n, _ := f.queue.Len(context.Background()); n != 0 {
		t.Errorf("queue holds %d entries after sync, want 0", n)
	}
}

func TestSyncQueuedDropsCorruptEntries(t *testing.T) {
	f := newPipelineFixture()
	_ = f.queue.Push(context.Background(), []byte("{not json"))
	raw, _ := json.Marshal(QueuedExam{Record: model.ExamRecord{ID: uuid.New()}, XPDelta: 10})
	_ = f.queue.Push(context.Background(), raw)

	synced, err := f.pipeline.SyncQueued(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if synced != 1 {
		t.Errorf("synced %d records, want 1", synced)
	}
	if n, _ := f.queue.Len(context.Background()); n != 0 {
		t.Errorf("queue holds %d entries, want 0 (corrupt entry dropped)", n)
	}
}

func TestSyncQueuedRequeuesOnInsertFailure(t *testing.T) {
	f := newPipelineFixture()
	f.records.failures = 1000

	raw, _ := json.Marshal(QueuedExam{Record: model.ExamRecord{ID: uuid.New()}, XPDelta: 10})
	_ = f.queue.Push(context.Background(), raw)

	synced, err := f.pipeline.SyncQueued(context.Background())
	if err == nil {
		t.Fatal("expected insert failure to surface")
	}
	if synced != 0 {
		t.Errorf("synced %d records, want 0", synced)
	}
	if n, _ := f.queue.Len(context.Background()); n != 1 {
		t.Errorf("queue holds %d entries, want 1 (failed record requeued)", n)
	}
}
