package student

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Student represents a registered account.
type Student struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository persists student accounts in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account. The schema carries a UNIQUE constraint on
// email, so the race window left by the application-level pre-check still
// surfaces as ErrEmailTaken rather than an opaque failure.
func (r *Repository) Create(ctx context.Context, email, passwordHash string) (Student, error) {
	st := Student{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, st.ID, st.Email, st.PasswordHash)
	if err := row.Scan(&st.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Student{}, ErrEmailTaken
		}
		return Student{}, err
	}
	return st, nil
}

// FindByEmail returns the account for an email, or nil when none exists.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM students WHERE email = $1
	`, email)
	var st Student
	if err := row.Scan(&st.ID, &st.Email, &st.PasswordHash, &st.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// FindByID returns the account for an id, or nil when none exists.
func (r *Repository) FindByID(ctx context.Context, id string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM students WHERE id = $1
	`, id)
	var st Student
	if err := row.Scan(&st.ID, &st.Email, &st.PasswordHash, &st.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}
