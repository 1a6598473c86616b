package repository

import (
	"context"

	"github.com/edventure/edventure-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ParentRepository handles parent account data access.
type ParentRepository struct {
	pool *pgxpool.Pool
}

// NewParentRepository creates a new ParentRepository.
func NewParentRepository(pool *pgxpool.Pool) *ParentRepository {
	return &ParentRepository{pool: pool}
}

// GetByEmail retrieves a parent account by email.
func (r *ParentRepository) GetByEmail(ctx context.Context, email string) (*model.Parent, error) {
	p := &model.Parent{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM parents WHERE email = $1`, email,
	).Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID retrieves a parent account.
func (r *ParentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Parent, error) {
	p := &model.Parent{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM parents WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new parent account.
func (r *ParentRepository) Create(ctx context.Context, p *model.Parent) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO parents (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		p.Name, p.Email, p.PasswordHash,
	).Scan(&p.ID, &p.CreatedAt)
}
