package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamMode names a fixed exam configuration (question count, time budget,
// allowed question types).
type ExamMode string

const (
	ExamModeEasy   ExamMode = "easy"
	ExamModeMedium ExamMode = "medium"
	ExamModeFull   ExamMode = "full"
)

// ExamRecord is the append-only persisted artifact of a completed exam.
// The ID is generated client-side before the first insert attempt so that
// retries after an ambiguous failure cannot create duplicates.
type ExamRecord struct {
	ID             uuid.UUID   `json:"id"`
	StudentID      uuid.UUID   `json:"student_id"`
	Subject        string      `json:"subject"`
	Mode           ExamMode    `json:"mode"`
	TotalQuestions int         `json:"total_questions"`
	Score          int         `json:"score"`
	QuestionIDs    []uuid.UUID `json:"question_ids"`
	Completed      bool        `json:"completed"`
	CreatedAt      time.Time   `json:"created_at"`
}

// StartExamRequest is the payload for starting a new exam session.
type StartExamRequest struct {
	Subject string `json:"subject" binding:"required,min=2,max=100"`
	Mode    string `json:"mode" binding:"required,oneof=easy medium full"`
}

// AnswerRequest is the payload for answering the current question.
type AnswerRequest struct {
	Answer string `json:"answer" binding:"max=4000"`
}

// MatchRequest is the payload for toggling a matching pair.
type MatchRequest struct {
	Left  string `json:"left" binding:"required,max=500"`
	Right string `json:"right" binding:"required,max=500"`
}

// NavigateRequest is the payload for exam navigation.
type NavigateRequest struct {
	Action string `json:"action" binding:"required,oneof=next previous jump first_unanswered"`
	Index  *int   `json:"index" binding:"omitempty,min=0"`
}

// SubmitRequest is the payload for submitting the exam.
type SubmitRequest struct {
	Force bool `json:"force"`
}
