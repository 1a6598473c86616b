package repository

import (
	"context"

	"github.com/edventure/edventure-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListForSelection retrieves all questions matching the level set, subject,
// and type set, newest first.
func (r *QuestionRepository) ListForSelection(ctx context.Context, levels []model.GradeLevel, subject string, types []model.QuestionType) ([]model.Question, error) {
	levelStrs := make([]string, len(levels))
	for i, l := range levels {
		levelStrs[i] = string(l)
	}
	typeStrs := make([]string, len(types))
	for i, t := range types {
		typeStrs[i] = string(t)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, question_text, question_type, options, correct_answer, explanation, level, subject, created_at
		 FROM questions
		 WHERE level = ANY($1) AND subject = $2 AND question_type = ANY($3)
		 ORDER BY created_at DESC`,
		levelStrs, subject, typeStrs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.QuestionText, &q.QuestionType, &q.Options, &q.CorrectAnswer, &q.Explanation, &q.Level, &q.Subject, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Create inserts a new question into the bank.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (question_text, question_type, options, correct_answer, explanation, level, subject)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		q.QuestionText, q.QuestionType, q.Options, q.CorrectAnswer, q.Explanation, q.Level, q.Subject,
	).Scan(&q.ID, &q.CreatedAt)
}

// ListSubjects returns the distinct subjects available for a level set.
func (r *QuestionRepository) ListSubjects(ctx context.Context, levels []model.GradeLevel) ([]string, error) {
	levelStrs := make([]string, len(levels))
	for i, l := range levels {
		levelStrs[i] = string(l)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT subject FROM questions WHERE level = ANY($1) ORDER BY subject`,
		levelStrs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}
