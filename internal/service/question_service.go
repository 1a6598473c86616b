package service

import (
	"context"

	"github.com/edventure/edventure-backend/internal/model"
	"github.com/edventure/edventure-backend/internal/repository"
)

// QuestionService handles question bank reads and writes outside the exam
// selection path.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo}
}

// SubjectsFor returns the subjects with questions reachable from a grade
// level, including the adjacent lookback levels.
func (s *QuestionService) SubjectsFor(ctx context.Context, level model.GradeLevel) ([]string, error) {
	return s.questionRepo.ListSubjects(ctx, model.AllowedSourceLevels(level))
}

// Create validates and inserts a new question into the bank.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		QuestionText:  req.QuestionText,
		QuestionType:  model.QuestionType(req.QuestionType),
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		Level:         model.GradeLevel(req.Level),
		Subject:       req.Subject,
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}
