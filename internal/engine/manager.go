package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Manager hands out exam sessions keyed per student. A session is restored
// from its durable snapshot when one exists (mid-exam reload), otherwise
// created fresh in the setup step. Sessions for different students are
// fully independent.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	selector  *Selector
	pipeline  *Pipeline
	snapshots SnapshotStore
	students  StudentReader
	rng       *rand.Rand
	log       zerolog.Logger
}

// NewManager creates a session manager. rng seeds each session's private
// shuffle source, so tests can make decoy shuffles deterministic.
func NewManager(selector *Selector, pipeline *Pipeline, snapshots SnapshotStore, students StudentReader, rng *rand.Rand, log zerolog.Logger) *Manager {
	return &Manager{
		sessions:  make(map[uuid.UUID]*Session),
		selector:  selector,
		pipeline:  pipeline,
		snapshots: snapshots,
		students:  students,
		rng:       rng,
		log:       log.With().Str("component", "session_manager").Logger(),
	}
}

// Session returns the student's active session, restoring a snapshotted
// one or creating a fresh setup-step session as needed.
func (m *Manager) Session(ctx context.Context, studentID uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[studentID]; ok {
		return s, nil
	}

	student, err := m.students.GetStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}

	s := newSession(
		studentID,
		student.Level,
		m.selector,
		m.pipeline,
		m.snapshots,
		rand.New(rand.NewSource(m.rng.Int63())),
		m.log,
	)

	state, err := m.snapshots.Load(ctx, studentID)
	if err != nil {
		m.log.Warn().Err(err).
			Str("student_id", studentID.String()).
			Msg("Snapshot load failed, starting fresh")
	} else if state != nil {
		s.restore(state)
	}

	m.sessions[studentID] = s
	return s, nil
}

// Remove drops the in-memory session after an explicit close.
func (m *Manager) Remove(studentID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[studentID]; ok {
		s.mu.Lock()
		s.stopTimerLocked()
		s.mu.Unlock()
		delete(m.sessions, studentID)
	}
}

// Shutdown stops every active session timer. Snapshots stay in place so
// in-flight exams resume after a restart.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		s.mu.Lock()
		s.stopTimerLocked()
		s.mu.Unlock()
	}
	m.sessions = make(map[uuid.UUID]*Session)
}

// restore reconstitutes a session from a validated snapshot and resumes
// the countdown if the exam was mid-flight. An exam whose clock already ran
// out (snapshot written at expiry, then a restart) is submitted right away
// instead of idling without a timer.
func (s *Session) restore(state *SessionState) {
	s.mu.Lock()
	s.state = *state
	s.initPairsLocked()
	expired := s.state.Step == StepExam && s.state.TimeLeft <= 0
	if s.state.Step == StepExam && !expired {
		s.startTimerLocked()
	}
	step, timeLeft := s.state.Step, s.state.TimeLeft
	s.mu.Unlock()

	s.log.Info().
		Str("step", string(step)).
		Int("time_left", timeLeft).
		Msg("Session restored from snapshot")

	if expired {
		go func() {
			if _, err := s.finish(context.Background()); err != nil {
				s.log.Error().Err(err).Msg("Auto-submit of expired exam failed after restore")
			}
		}()
	}
}
