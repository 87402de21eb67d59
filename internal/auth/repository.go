package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new operator and returns it.
func (r *Repository) Create(ctx context.Context, email, passwordHash, name string) (*Operator, error) {
	op := &Operator{Email: email, Name: name}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO operators (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id
	`, email, passwordHash, name)
	if err := row.Scan(&op.ID); err != nil {
		return nil, err
	}
	return op, nil
}

// GetByEmail returns the operator and password hash for login, or nil when
// no operator has that email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Operator, string, error) {
	var op Operator
	var passwordHash string
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash
		FROM operators WHERE email = $1
	`, email)
	if err := row.Scan(&op.ID, &op.Email, &op.Name, &passwordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return &op, passwordHash, nil
}
