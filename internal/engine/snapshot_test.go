package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/edventure/edventure-backend/internal/config"
	"github.com/edventure/edventure-backend/internal/model"
	"github.com/edventure/edventure-backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestSnapshotRoundTrip(t *testing.T) {
	snaps := NewSnapshotStore(store.NewMemoryKV(), zerolog.Nop())
	id := uuid.New()
	ctx := context.Background()

	questions := make([]model.ExamQuestion, 4)
	for i := range questions {
		questions[i] = model.ExamQuestion{
			Question: model.Question{ID: uuid.New(), QuestionType: model.QuestionTypeShortAnswer},
		}
	}
	questions[0].UserAnswer = "evaporation"

	state := &SessionState{
		Step:         StepExam,
		Subject:      "Mathematics",
		Mode:         model.ExamModeMedium,
		Questions:    questions,
		CurrentIndex: 3,
		TimeLeft:     1200,
	}
	if err := snaps.Save(ctx, id, state); err != nil {
		t.Fatal(err)
	}

	got, err := snaps.Load(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("saved snapshot not found")
	}
	if got.Step != StepExam || got.Subject != "Mathematics" || got.CurrentIndex != 3 || got.TimeLeft != 1200 {
		t.Errorf("loaded state = %+v", got)
	}
	if len(got.Questions) != 4 || got.Questions[0].UserAnswer != "evaporation" {
		t.Errorf("loaded questions = %+v", got.Questions)
	}
}

func TestSnapshotLoadAbsent(t *testing.T) {
	snaps := NewSnapshotStore(store.NewMemoryKV(), zerolog.Nop())
	got, err := snaps.Load(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got %+v for a student with no snapshot, want nil", got)
	}
}

func TestSnapshotDiscardsStaleSchema(t *testing.T) {
	kv := store.NewMemoryKV()
	snaps := NewSnapshotStore(kv, zerolog.Nop())
	id := uuid.New()
	ctx := context.Background()

	raw, _ := json.Marshal(SessionState{SchemaVersion: 99, Step: StepExam, TimeLeft: 60})
	if err := kv.Set(ctx, config.CacheKey.StudentSnapshotKey(id.String()), raw); err != nil {
		t.Fatal(err)
	}

	got, err := snaps.Load(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("stale schema snapshot was trusted: %+v", got)
	}
}

func TestSnapshotDiscardsMalformedState(t *testing.T) {
	question := model.ExamQuestion{
		Question: model.Question{ID: uuid.New(), QuestionType: model.QuestionTypeMCQ},
	}
	tests := []struct {
		name  string
		state SessionState
	}{
		{"index past question set", SessionState{Step: StepExam, Questions: []model.ExamQuestion{question}, CurrentIndex: 7, TimeLeft: 60}},
		{"negative index", SessionState{Step: StepExam, Questions: []model.ExamQuestion{question}, CurrentIndex: -1, TimeLeft: 60}},
		{"exam step without questions", SessionState{Step: StepExam, TimeLeft: 60}},
		{"negative time left", SessionState{Step: StepExam, Questions: []model.ExamQuestion{question}, TimeLeft: -5}},
		{"unknown step", SessionState{Step: Step("grading")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := store.NewMemoryKV()
			snaps := NewSnapshotStore(kv, zerolog.Nop())
			id := uuid.New()
			ctx := context.Background()

			tt.state.SchemaVersion = snapshotSchemaVersion
			raw, _ := json.Marshal(tt.state)
			if err := kv.Set(ctx, config.CacheKey.StudentSnapshotKey(id.String()), raw); err != nil {
				t.Fatal(err)
			}

			got, err := snaps.Load(ctx, id)
			if err != nil {
				t.Fatal(err)
			}
			if got != nil {
				t.Errorf("malformed snapshot was trusted: %+v", got)
			}
		})
	}
}

func TestSnapshotDiscardsCorrupt(t *testing.T) {
	kv := store.NewMemoryKV()
	snaps := NewSnapshotStore(kv, zerolog.Nop())
	id := uuid.New()
	ctx := context.Background()

	if err := kv.Set(ctx, config.CacheKey.StudentSnapshotKey(id.String()), []byte("{oops")); err != nil {
		t.Fatal(err)
	}

	got, err := snaps.Load(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("corrupt snapshot was trusted: %+v", got)
	}
}

func TestSnapshotClear(t *testing.T) {
	snaps := NewSnapshotStore(store.NewMemoryKV(), zerolog.Nop())
	id := uuid.New()
	ctx := context.Background()

	if err := snaps.Save(ctx, id, &SessionState{Step: StepSetup}); err != nil {
		t.Fatal(err)
	}
	if err := snaps.Clear(ctx, id); err != nil {
		t.Fatal(err)
	}
	got, err := snaps.Load(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("snapshot survived clear: %+v", got)
	}
}
