package engine

import (
	"time"

	"github.com/edventure/edventure-backend/internal/model"
)

// ModeConfig fixes the question count, time budget, and allowed question
// types for one exam mode.
type ModeConfig struct {
	QuestionCount int
	TimeBudget    time.Duration
	QuestionTypes []model.QuestionType
}

// modeTable is the fixed mode catalog.
var modeTable = map[model.ExamMode]ModeConfig{
	model.ExamModeEasy: {
		QuestionCount: 10,
		TimeBudget:    15 * time.Minute,
		QuestionTypes: []model.QuestionType{model.QuestionTypeMCQ},
	},
	model.ExamModeMedium: {
		QuestionCount: 20,
		TimeBudget:    30 * time.Minute,
		QuestionTypes: []model.QuestionType{model.QuestionTypeMCQ, model.QuestionTypeShortAnswer},
	},
	model.ExamModeFull: {
		QuestionCount: 40,
		TimeBudget:    60 * time.Minute,
		QuestionTypes: []model.QuestionType{
			model.QuestionTypeMCQ,
			model.QuestionTypeShortAnswer,
			model.QuestionTypeSubjective,
			model.QuestionTypeMatching,
		},
	},
}

// ModeFor returns the configuration for mode, and whether the mode exists.
func ModeFor(mode model.ExamMode) (ModeConfig, bool) {
	cfg, ok := modeTable[mode]
	return cfg, ok
}
