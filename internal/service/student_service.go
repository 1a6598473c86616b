package service

import (
	"context"
	"fmt"

	"github.com/edventure/edventure-backend/internal/engine"
	"github.com/edventure/edventure-backend/internal/model"
	"github.com/edventure/edventure-backend/internal/repository"
	"github.com/google/uuid"
)

// StudentService handles student profile reads and XP decoration.
type StudentService struct {
	studentRepo *repository.StudentRepository
	recordRepo  *repository.ExamRecordRepository
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository, recordRepo *repository.ExamRecordRepository) *StudentService {
	return &StudentService{studentRepo: studentRepo, recordRepo: recordRepo}
}

// GetStudent retrieves a student profile. Implements engine.StudentReader.
func (s *StudentService) GetStudent(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// StudentProgress decorates a student with level-progression information.
type StudentProgress struct {
	Student  model.Student   `json:"student"`
	Progress engine.Progress `json:"progress"`
}

// Progress returns a student's XP total mapped onto the progression table.
func (s *StudentService) Progress(ctx context.Context, id uuid.UUID) (*StudentProgress, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &StudentProgress{
		Student:  *student,
		Progress: engine.LevelOf(student.XP),
	}, nil
}

// ListByParent returns all student profiles a parent owns, each decorated
// with progression info.
func (s *StudentService) ListByParent(ctx context.Context, parentID uuid.UUID) ([]StudentProgress, error) {
	students, err := s.studentRepo.ListByParent(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	progress := make([]StudentProgress, len(students))
	for i, st := range students {
		progress[i] = StudentProgress{Student: st, Progress: engine.LevelOf(st.XP)}
	}
	return progress, nil
}

// History returns a student's completed exam records, newest first.
func (s *StudentService) History(ctx context.Context, studentID uuid.UUID) ([]model.ExamRecord, error) {
	return s.recordRepo.ListByStudent(ctx, studentID)
}
