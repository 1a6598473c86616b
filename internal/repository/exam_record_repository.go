package repository

import (
	"context"

	"github.com/edventure/edventure-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamRecordRepository handles the append-only exam record store.
type ExamRecordRepository struct {
	pool *pgxpool.Pool
}

// NewExamRecordRepository creates a new ExamRecordRepository.
func NewExamRecordRepository(pool *pgxpool.Pool) *ExamRecordRepository {
	return &ExamRecordRepository{pool: pool}
}

// Insert persists one exam record. The client-generated ID is the
// idempotency key: retrying an insert that already landed is a no-op, so
// an ambiguous retry failure cannot create duplicates.
func (r *ExamRecordRepository) Insert(ctx context.Context, record *model.ExamRecord) error {
	questionIDs := make([]uuid.UUID, len(record.QuestionIDs))
	copy(questionIDs, record.QuestionIDs)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_records (id, student_id, subject, mode, total_questions, score, question_ids, completed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		record.ID, record.StudentID, record.Subject, record.Mode,
		record.TotalQuestions, record.Score, questionIDs, record.Completed,
	)
	return err
}

// ListCompletedQuestionIDs flattens the question_ids of every completed
// exam the student took for a subject.
func (r *ExamRecordRepository) ListCompletedQuestionIDs(ctx context.Context, studentID uuid.UUID, subject string) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_ids FROM exam_records
		 WHERE student_id = $1 AND subject = $2 AND completed`,
		studentID, subject,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []uuid.UUID
	for rows.Next() {
		var ids []uuid.UUID
		if err := rows.Scan(&ids); err != nil {
			return nil, err
		}
		all = append(all, ids...)
	}
	return all, rows.Err()
}

// ListByStudent retrieves a student's exam history, newest first.
func (r *ExamRecordRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ExamRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, subject, mode, total_questions, score, question_ids, completed, created_at
		 FROM exam_records
		 WHERE student_id = $1
		 ORDER BY created_at DESC`,
		studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.ExamRecord
	for rows.Next() {
		var rec model.ExamRecord
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.Subject, &rec.Mode, &rec.TotalQuestions, &rec.Score, &rec.QuestionIDs, &rec.Completed, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
