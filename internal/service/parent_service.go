package service

import (
	"context"
	"fmt"

	"github.com/edventure/edventure-backend/internal/model"
	"github.com/edventure/edventure-backend/internal/repository"
	"github.com/google/uuid"
)

// ParentService handles parent accounts and child profile management.
type ParentService struct {
	parentRepo  *repository.ParentRepository
	studentRepo *repository.StudentRepository
	auth        *AuthService
}

// NewParentService creates a new ParentService.
func NewParentService(parentRepo *repository.ParentRepository, studentRepo *repository.StudentRepository, auth *AuthService) *ParentService {
	return &ParentService{parentRepo: parentRepo, studentRepo: studentRepo, auth: auth}
}

// Register creates a parent account with a hashed password.
func (s *ParentService) Register(ctx context.Context, req *model.ParentRegisterRequest) (*model.Parent, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	parent := &model.Parent{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.parentRepo.Create(ctx, parent); err != nil {
		return nil, err
	}
	return parent, nil
}

// GetByEmail loads a parent account for login.
func (s *ParentService) GetByEmail(ctx context.Context, email string) (*model.Parent, error) {
	return s.parentRepo.GetByEmail(ctx, email)
}

// GetByID loads a parent account.
func (s *ParentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Parent, error) {
	return s.parentRepo.GetByID(ctx, id)
}

// CreateStudent creates a child profile under a parent account.
func (s *ParentService) CreateStudent(ctx context.Context, parentID uuid.UUID, req *model.CreateStudentRequest) (*model.Student, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	student := &model.Student{
		ParentID:     parentID,
		Name:         req.Name,
		Level:        model.GradeLevel(req.Level),
		School:       req.School,
		PasswordHash: hash,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}
