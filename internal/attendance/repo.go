package attendance

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Repository persists check-in records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new record.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO checkins (id, user_id, image_url, capture_date, capture_time, location, mark)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, rec.ID, rec.UserID, rec.ImageURL, rec.Date, rec.Time, rec.Location, rec.Mark)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ListByUser returns every record owned by a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, image_url, capture_date, capture_time, location, mark, created_at
		FROM checkins
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ImageURL, &rec.Date, &rec.Time, &rec.Location, &rec.Mark, &rec.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// DeleteByUser removes every record owned by a user and reports how many went.
func (r *Repository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM checkins WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
