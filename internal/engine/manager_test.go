package engine

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/edventure/edventure-backend/internal/model"
	"github.com/edventure/edventure-backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type stubStudentReader struct {
	students map[uuid.UUID]*model.Student
}

func (s *stubStudentReader) GetStudent(_ context.Context, id uuid.UUID) (*model.Student, error) {
	st, ok := s.students[id]
	if !ok {
		return nil, errors.New("student not found")
	}
	return st, nil
}

type managerFixture struct {
	manager  *Manager
	students *stubStudentReader
	snaps    SnapshotStore
}

func newManagerFixture(t *testing.T, poolSize int) *managerFixture {
	t.Helper()

	pool := make([]model.Question, poolSize)
	for i := range pool {
		pool[i] = model.Question{
			ID:            uuid.New(),
			QuestionType:  model.QuestionTypeMCQ,
			CorrectAnswer: "Paris",
			Level:         model.GradeStandard4,
			Subject:       "Geography",
		}
	}

	pf := newPipelineFixture()
	selector := newTestSelector(&stubQuestionSource{pool: pool}, &stubExamHistory{})
	snaps := NewSnapshotStore(store.NewMemoryKV(), zerolog.Nop())
	readers := &stubStudentReader{students: make(map[uuid.UUID]*model.Student)}

	m := NewManager(selector, pf.pipeline, snaps, readers, rand.New(rand.NewSource(7)), zerolog.Nop())
	t.Cleanup(m.Shutdown)

	return &managerFixture{manager: m, students: readers, snaps: snaps}
}

func (f *managerFixture) addStudent() uuid.UUID {
	id := uuid.New()
	f.students.students[id] = &model.Student{ID: id, Level: model.GradeStandard4}
	return id
}

func TestManagerReusesSession(t *testing.T) {
	f := newManagerFixture(t, 25)
	id := f.addStudent()

	first, err := f.manager.Session(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.manager.Session(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("same student got two different sessions")
	}
}

func TestManagerIsolatesStudents(t *testing.T) {
	f := newManagerFixture(t, 25)
	a, b := f.addStudent(), f.addStudent()

	sa, err := f.manager.Session(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	sb, err := f.manager.Session(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if sa == sb {
		t.Fatal("different students share a session")
	}

	if err := sa.StartExam(context.Background(), "Geography", model.ExamModeEasy); err != nil {
		t.Fatal(err)
	}
	if sb.State().Step != StepSetup {
		t.Error("starting one student's exam changed another student's session")
	}
}

func TestManagerUnknownStudent(t *testing.T) {
	f := newManagerFixture(t, 25)
	if _, err := f.manager.Session(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error for unknown student")
	}
}

func TestManagerRestoresSnapshot(t *testing.T) {
	f := newManagerFixture(t, 25)
	id := f.addStudent()

	saved := &SessionState{
		Step:    StepExam,
		Subject: "Geography",
		Mode:    model.ExamModeEasy,
		Questions: []model.ExamQuestion{{
			Question:   model.Question{ID: uuid.New(), QuestionType: model.QuestionTypeMCQ, CorrectAnswer: "Paris"},
			UserAnswer: "Paris",
		}},
		CurrentIndex: 0,
		TimeLeft:     120,
	}
	if err := f.snaps.Save(context.Background(), id, saved); err != nil {
		t.Fatal(err)
	}

	s, err := f.manager.Session(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}

	state := s.State()
	if state.Step != StepExam {
		t.Errorf("restored step = %q, want %q", state.Step, StepExam)
	}
	if state.TimeLeft != 120 {
		t.Errorf("restored time left = %d, want 120", state.TimeLeft)
	}
	if len(state.Questions) != 1 || state.Questions[0].UserAnswer != "Paris" {
		t.Errorf("restored questions = %+v", state.Questions)
	}
}

func TestManagerDiscardsOutOfRangeSnapshot(t *testing.T) {
	f := newManagerFixture(t, 25)
	id := f.addStudent()

	saved := &SessionState{
		Step: StepExam,
		Questions: []model.ExamQuestion{{
			Question: model.Question{ID: uuid.New(), QuestionType: model.QuestionTypeMCQ},
		}},
		CurrentIndex: 7,
		TimeLeft:     60,
	}
	if err := f.snaps.Save(context.Background(), id, saved); err != nil {
		t.Fatal(err)
	}

	s, err := f.manager.Session(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.State().Step; got != StepSetup {
		t.Errorf("malformed snapshot restored, step = %q, want %q", got, StepSetup)
	}
}

func TestManagerRestoreExpiredExamSubmits(t *testing.T) {
	f := newManagerFixture(t, 25)
	id := f.addStudent()

	saved := &SessionState{
		Step:    StepExam,
		Subject: "Geography",
		Mode:    model.ExamModeEasy,
		Questions: []model.ExamQuestion{{
			Question:   model.Question{ID: uuid.New(), QuestionType: model.QuestionTypeMCQ, CorrectAnswer: "Paris"},
			UserAnswer: "Paris",
		}},
		CurrentIndex: 0,
		TimeLeft:     0,
	}
	if err := f.snaps.Save(context.Background(), id, saved); err != nil {
		t.Fatal(err)
	}

	s, err := f.manager.Session(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.State().Step != StepResults {
		if time.Now().After(deadline) {
			t.Fatalf("expired exam never submitted, step = %q", s.State().Step)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if sum := s.Summary(); sum == nil || sum.Score != 100 {
		t.Errorf("summary = %+v, want score 100", sum)
	}
}

func TestManagerRemoveCreatesFreshSession(t *testing.T) {
	f := newManagerFixture(t, 25)
	id := f.addStudent()

	first, err := f.manager.Session(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}

	f.manager.Remove(id)

	second, err := f.manager.Session(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("session survived removal")
	}
}
