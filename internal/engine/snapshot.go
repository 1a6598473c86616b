package engine

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/edventure/edventure-backend/internal/config"
	"github.com/edventure/edventure-backend/internal/model"
	"github.com/edventure/edventure-backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// snapshotSchemaVersion guards against reconstituting stale snapshot
// shapes. Bump whenever SessionState changes incompatibly; old snapshots
// then fall back to a fresh setup state instead of being trusted.
const snapshotSchemaVersion = 1

// SessionState is the versioned, explicitly-typed snapshot of one exam
// session, persisted to the student's durable slot after every mutation so
// a reload resumes mid-exam instead of losing progress.
type SessionState struct {
	SchemaVersion int                  `json:"schema_version"`
	Step          Step                 `json:"step"`
	Subject       string               `json:"subject"`
	Mode          model.ExamMode       `json:"mode"`
	Questions     []model.ExamQuestion `json:"questions"`
	CurrentIndex  int                  `json:"current_index"`
	TimeLeft      int                  `json:"time_left"`
	Score         int                  `json:"score"`
}

// SnapshotStore persists per-student session snapshots.
type SnapshotStore interface {
	// Load returns the stored snapshot, or nil when absent or invalid.
	Load(ctx context.Context, studentID uuid.UUID) (*SessionState, error)
	Save(ctx context.Context, studentID uuid.UUID, state *SessionState) error
	Clear(ctx context.Context, studentID uuid.UUID) error
}

// kvSnapshotStore stores JSON snapshots in an injected KV.
type kvSnapshotStore struct {
	kv  store.KV
	log zerolog.Logger
}

// NewSnapshotStore creates a SnapshotStore over the given KV.
func NewSnapshotStore(kv store.KV, log zerolog.Logger) SnapshotStore {
	return &kvSnapshotStore{
		kv:  kv,
		log: log.With().Str("component", "snapshot_store").Logger(),
	}
}

func (s *kvSnapshotStore) Load(ctx context.Context, studentID uuid.UUID) (*SessionState, error) {
	raw, err := s.kv.Get(ctx, config.CacheKey.StudentSnapshotKey(studentID.String()))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		s.log.Warn().Err(err).
			Str("student_id", studentID.String()).
			Msg("Corrupt session snapshot, discarding")
		return nil, nil
	}
	if state.SchemaVersion != snapshotSchemaVersion {
		s.log.Warn().
			Int("found", state.SchemaVersion).
			Int("want", snapshotSchemaVersion).
			Str("student_id", studentID.String()).
			Msg("Stale snapshot schema, discarding")
		return nil, nil
	}
	if !validSessionShape(&state) {
		s.log.Warn().
			Str("step", string(state.Step)).
			Int("current_index", state.CurrentIndex).
			Int("questions", len(state.Questions)).
			Str("student_id", studentID.String()).
			Msg("Malformed session snapshot, discarding")
		return nil, nil
	}
	return &state, nil
}

// validSessionShape rejects stored states a restoring session cannot trust:
// an unknown step, an exam step without questions, a current index outside
// the question set, or a negative countdown.
func validSessionShape(st *SessionState) bool {
	switch st.Step {
	case StepSetup, StepExam, StepResults:
	default:
		return false
	}
	if st.TimeLeft < 0 {
		return false
	}
	if st.Step == StepExam && len(st.Questions) == 0 {
		return false
	}
	if len(st.Questions) == 0 {
		return st.CurrentIndex == 0
	}
	return st.CurrentIndex >= 0 && st.CurrentIndex < len(st.Questions)
}

func (s *kvSnapshotStore) Save(ctx context.Context, studentID uuid.UUID, state *SessionState) error {
	state.SchemaVersion = snapshotSchemaVersion
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, config.CacheKey.StudentSnapshotKey(studentID.String()), raw)
}

func (s *kvSnapshotStore) Clear(ctx context.Context, studentID uuid.UUID) error {
	return s.kv.Delete(ctx, config.CacheKey.StudentSnapshotKey(studentID.String()))
}
