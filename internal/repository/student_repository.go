package repository

import (
	"context"

	"github.com/edventure/edventure-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudentRepository handles student profile data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByID retrieves a student profile.
func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, parent_id, name, level, school, xp, password_hash, created_at, updated_at
		 FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.ParentID, &s.Name, &s.Level, &s.School, &s.XP, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByParent retrieves all student profiles owned by a parent.
func (r *StudentRepository) ListByParent(ctx context.Context, parentID uuid.UUID) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, parent_id, name, level, school, xp, password_hash, created_at, updated_at
		 FROM students WHERE parent_id = $1 ORDER BY name`, parentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.ParentID, &s.Name, &s.Level, &s.School, &s.XP, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Create inserts a new student profile.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO students (parent_id, name, level, school, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, xp, created_at, updated_at`,
		s.ParentID, s.Name, s.Level, s.School, s.PasswordHash,
	).Scan(&s.ID, &s.XP, &s.CreatedAt, &s.UpdatedAt)
}

// XP reads a student's cumulative XP.
func (r *StudentRepository) XP(ctx context.Context, id uuid.UUID) (int, error) {
	var xp int
	err := r.pool.QueryRow(ctx, `SELECT xp FROM students WHERE id = $1`, id).Scan(&xp)
	return xp, err
}

// AddXP applies a non-negative XP delta to a student.
func (r *StudentRepository) AddXP(ctx context.Context, id uuid.UUID, delta int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET xp = xp + $1, updated_at = NOW() WHERE id = $2`,
		delta, id,
	)
	return err
}
