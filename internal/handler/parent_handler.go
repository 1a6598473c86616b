package handler

import (
	"net/http"

	"github.com/edventure/edventure-backend/internal/middleware"
	"github.com/edventure/edventure-backend/internal/model"
	"github.com/edventure/edventure-backend/internal/response"
	"github.com/edventure/edventure-backend/internal/service"
	"github.com/edventure/edventure-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ParentHandler handles parent-facing child profile endpoints.
type ParentHandler struct {
	parentService  *service.ParentService
	studentService *service.StudentService
}

// NewParentHandler creates a new ParentHandler.
func NewParentHandler(parentService *service.ParentService, studentService *service.StudentService) *ParentHandler {
	return &ParentHandler{parentService: parentService, studentService: studentService}
}

// CreateStudent godoc
// POST /api/v1/parent/students
// Creates a child profile under the authenticated parent account.
func (h *ParentHandler) CreateStudent(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.parentService.CreateStudent(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// ListStudents godoc
// GET /api/v1/parent/students
// Lists the parent's child profiles with progression info.
func (h *ParentHandler) ListStudents(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	students, err := h.studentService.ListByParent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if students == nil {
		students = []service.StudentProgress{}
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// GetStudentHistory godoc
// GET /api/v1/parent/students/:student_id/history
// Returns a child's completed exam records. The child must belong to the
// authenticated parent.
func (h *ParentHandler) GetStudentHistory(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	student, err := h.studentService.GetStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if student.ParentID != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	records, err := h.studentService.History(c.Request.Context(), studentID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if records == nil {
		records = []model.ExamRecord{}
	}

	response.Success(c, http.StatusOK, gin.H{"records": records})
}
