package handler

import (
	"errors"
	"net/http"

	"github.com/edventure/edventure-backend/internal/engine"
	"github.com/edventure/edventure-backend/internal/middleware"
	"github.com/edventure/edventure-backend/internal/model"
	"github.com/edventure/edventure-backend/internal/response"
	"github.com/edventure/edventure-backend/internal/service"
	"github.com/edventure/edventure-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExamHandler handles the student exam session endpoints.
type ExamHandler struct {
	manager         *engine.Manager
	studentService  *service.StudentService
	questionService *service.QuestionService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(manager *engine.Manager, studentService *service.StudentService, questionService *service.QuestionService) *ExamHandler {
	return &ExamHandler{
		manager:         manager,
		studentService:  studentService,
		questionService: questionService,
	}
}

// questionView is an in-progress question stripped of grading fields. The
// correct answer and explanation are only disclosed in the results summary.
type questionView struct {
	Number       int                `json:"number"`
	ID           uuid.UUID          `json:"id"`
	QuestionText string             `json:"question_text"`
	QuestionType model.QuestionType `json:"question_type"`
	Options      []string           `json:"options"`
	UserAnswer   string             `json:"user_answer"`
	Answered     bool               `json:"answered"`
}

// sessionView is the client-facing snapshot of a session.
type sessionView struct {
	Step         engine.Step           `json:"step"`
	Subject      string                `json:"subject,omitempty"`
	Mode         model.ExamMode        `json:"mode,omitempty"`
	CurrentIndex int                   `json:"current_index"`
	TimeLeft     int                   `json:"time_left"`
	Total        int                   `json:"total"`
	Questions    []questionView        `json:"questions,omitempty"`
	Pairs        []engine.MatchingPair `json:"pairs,omitempty"`
	Summary      *engine.Summary       `json:"summary,omitempty"`
}

func buildSessionView(session *engine.Session) sessionView {
	state := session.State()

	view := sessionView{
		Step:         state.Step,
		Subject:      state.Subject,
		Mode:         state.Mode,
		CurrentIndex: state.CurrentIndex,
		TimeLeft:     state.TimeLeft,
		Total:        len(state.Questions),
	}

	switch state.Step {
	case engine.StepExam:
		view.Questions = make([]questionView, len(state.Questions))
		for i, q := range state.Questions {
			view.Questions[i] = questionView{
				Number:       i + 1,
				ID:           q.ID,
				QuestionText: q.QuestionText,
				QuestionType: q.QuestionType,
				Options:      q.Options,
				UserAnswer:   q.UserAnswer,
				Answered:     session.IsAnswered(i),
			}
		}
		if state.CurrentIndex < len(state.Questions) &&
			state.Questions[state.CurrentIndex].QuestionType == model.QuestionTypeMatching {
			view.Pairs = session.Pairs()
		}
	case engine.StepResults:
		view.Summary = session.Summary()
	}

	return view
}

func (h *ExamHandler) session(c *gin.Context) (*engine.Session, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}

	session, err := h.manager.Session(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return nil, false
	}
	return session, true
}

// GetSession godoc
// GET /api/v1/student/exam/session
// Returns the current session state, restoring a saved one on reload.
func (h *ExamHandler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": buildSessionView(session)})
}

// StartExam godoc
// POST /api/v1/student/exam/start
// Selects a question set and transitions the session into the exam step.
func (h *ExamHandler) StartExam(c *gin.Context) {
	var req model.StartExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	err := session.StartExam(c.Request.Context(), req.Subject, model.ExamMode(req.Mode))
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInsufficientQuestions):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrInsufficientQuestions)
		case errors.Is(err, engine.ErrExamInProgress):
			response.Fail(c, http.StatusConflict, response.ErrExamInProgress)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": buildSessionView(session)})
}

// Answer godoc
// POST /api/v1/student/exam/answer
// Records an answer for the current question.
func (h *ExamHandler) Answer(c *gin.Context) {
	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.SelectAnswer(c.Request.Context(), req.Answer); err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": buildSessionView(session)})
}

// Match godoc
// POST /api/v1/student/exam/match
// Toggles a pairing on the current matching question.
func (h *ExamHandler) Match(c *gin.Context) {
	var req model.MatchRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.SelectMatch(c.Request.Context(), req.Left, req.Right); err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": buildSessionView(session)})
}

// Navigate godoc
// POST /api/v1/student/exam/navigate
// Moves between questions. "next" on the last question starts submission,
// which may return a gate listing unanswered questions.
func (h *ExamHandler) Navigate(c *gin.Context) {
	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var (
		gate    *engine.SubmitGate
		summary *engine.Summary
		err     error
	)

	switch req.Action {
	case "next":
		gate, summary, err = session.Next(ctx)
	case "previous":
		err = session.Previous(ctx)
	case "jump":
		if req.Index == nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"index": "index is required for jump"})
			return
		}
		err = session.JumpTo(ctx, *req.Index)
	case "first_unanswered":
		err = session.JumpToFirstUnanswered(ctx)
	}

	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session": buildSessionView(session),
		"gate":    gate,
		"summary": summary,
	})
}

// Submit godoc
// POST /api/v1/student/exam/submit
// Submits the exam. Without force, unanswered questions return a gate
// instead of finishing.
func (h *ExamHandler) Submit(c *gin.Context) {
	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	gate, summary, err := session.Submit(c.Request.Context(), req.Force)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session": buildSessionView(session),
		"gate":    gate,
		"summary": summary,
	})
}

// TryAgain godoc
// POST /api/v1/student/exam/try-again
// Resets a results-step session back to setup.
func (h *ExamHandler) TryAgain(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.TryAgain(c.Request.Context()); err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": buildSessionView(session)})
}

// Close godoc
// POST /api/v1/student/exam/close
// Abandons the session without persisting anything.
func (h *ExamHandler) Close(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	session, err := h.manager.Session(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := session.Close(c.Request.Context()); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	h.manager.Remove(claims.UserID)

	response.Success(c, http.StatusOK, gin.H{})
}

// GetProgress godoc
// GET /api/v1/student/exam/progress
// Returns the student's XP mapped onto the level progression table.
func (h *ExamHandler) GetProgress(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	progress, err := h.studentService.Progress(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, progress)
}

// GetSubjects godoc
// GET /api/v1/student/exam/subjects
// Returns the subjects available for the student's grade level.
func (h *ExamHandler) GetSubjects(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	student, err := h.studentService.GetStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	subjects, err := h.questionService.SubjectsFor(c.Request.Context(), student.Level)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if subjects == nil {
		subjects = []string{}
	}

	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// GetHistory godoc
// GET /api/v1/student/exam/history
// Returns the student's completed exam records, newest first.
func (h *ExamHandler) GetHistory(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	records, err := h.studentService.History(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if records == nil {
		records = []model.ExamRecord{}
	}

	response.Success(c, http.StatusOK, gin.H{"records": records})
}

// failSessionError maps engine sentinel errors onto API error codes.
func (h *ExamHandler) failSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrNoActiveExam):
		response.Fail(c, http.StatusConflict, response.ErrNoActiveExam)
	case errors.Is(err, engine.ErrIndexOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrIndexOutOfRange)
	case errors.Is(err, engine.ErrAuthRequired):
		response.Fail(c, http.StatusUnauthorized, response.ErrAuthRequired)
	case errors.Is(err, engine.ErrPersistenceFailed):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrPersistenceFailed)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
