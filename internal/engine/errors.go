package engine

import "errors"

// Sentinel errors surfaced at the engine boundary.
var (
	// ErrInsufficientQuestions means the filtered question pool is smaller
	// than the mode's required count. Recoverable by changing subject/mode.
	ErrInsufficientQuestions = errors.New("not enough questions available for this subject and mode")

	// ErrAuthRequired means no valid credential existed at submit time.
	// Submission is aborted before any persistence attempt.
	ErrAuthRequired = errors.New("authentication required to submit exam")

	// ErrPersistenceFailed means the exam record could not be persisted
	// after exhausting retries. The session is not marked complete.
	ErrPersistenceFailed = errors.New("failed to save exam results")

	// ErrNoActiveExam means an exam operation was invoked outside the exam step.
	ErrNoActiveExam = errors.New("no exam in progress")

	// ErrExamInProgress means a new exam was requested while one is active.
	ErrExamInProgress = errors.New("an exam is already in progress")

	// ErrIndexOutOfRange means a navigation target is outside the question set.
	ErrIndexOutOfRange = errors.New("question index out of range")

	// ErrUnknownMode means the requested exam mode has no configuration.
	ErrUnknownMode = errors.New("unknown exam mode")
)
