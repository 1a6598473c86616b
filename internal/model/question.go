package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	QuestionTypeMCQ         QuestionType = "mcq"
	QuestionTypeShortAnswer QuestionType = "short_answer"
	QuestionTypeSubjective  QuestionType = "subjective"
	QuestionTypeMatching    QuestionType = "matching"
)

// MatchingPairSeparator joins the left and right item of one matching pair.
const MatchingPairSeparator = ":"

// MatchingAnswerSeparator joins the pairs of a matching answer into the
// canonical correct_answer encoding.
const MatchingAnswerSeparator = ";"

// Question is one immutable entry in the question bank. For matching
// questions each option encodes a "left:right" pair and CorrectAnswer is the
// joined canonical pair list.
type Question struct {
	ID            uuid.UUID    `json:"id"`
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation,omitempty"`
	Level         GradeLevel   `json:"level"`
	Subject       string       `json:"subject"`
	CreatedAt     time.Time    `json:"created_at"`
}

// ExamQuestion is a session-scoped question with the student's answer state.
// UserAnswer holds the plain answer text; matching questions additionally
// keep the ordered matched pairs in UserPairs and mirror their joined form
// into UserAnswer. IsCorrect is populated once, during submission.
type ExamQuestion struct {
	Question
	UserAnswer string   `json:"user_answer"`
	UserPairs  []string `json:"user_pairs,omitempty"`
	IsCorrect  bool     `json:"is_correct"`
}

// CreateQuestionRequest is the payload for adding a question to the bank.
type CreateQuestionRequest struct {
	QuestionText  string   `json:"question_text" binding:"required,min=1,max=2000"`
	QuestionType  string   `json:"question_type" binding:"required,oneof=mcq short_answer subjective matching"`
	Options       []string `json:"options" binding:"omitempty,dive,min=1,max=500"`
	CorrectAnswer string   `json:"correct_answer" binding:"required,max=2000"`
	Explanation   string   `json:"explanation" binding:"omitempty,max=2000"`
	Level         string   `json:"level" binding:"required,grade"`
	Subject       string   `json:"subject" binding:"required,min=2,max=100"`
}
