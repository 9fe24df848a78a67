package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/casting-agency/internal/model"
)

// GenderRepo reads the fixed gender lookup table and seeds it at startup.
type GenderRepo struct {
	db *sqlx.DB
}

// NewGenderRepo constructs a GenderRepo with the provided DB handle.
func NewGenderRepo(db *sqlx.DB) *GenderRepo {
	return &GenderRepo{db: db}
}

// Seed inserts the known gender rows unless they already exist.  It is safe
// to call on every start.
func (r *GenderRepo) Seed(ctx context.Context) error {
	rows := make([]string, len(model.Genders))
	args := make([]interface{}, len(model.Genders))
	for i, g := range model.Genders {
		rows[i] = "(?)"
		args[i] = g
	}
	q := `INSERT INTO gender (gender) VALUES ` + strings.Join(rows, ", ") +
		` ON DUPLICATE KEY UPDATE gender = gender`
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return writeErr("seed gender", err)
	}
	return nil
}

// GetByName looks up a gender by its already-normalized label.
func (r *GenderRepo) GetByName(ctx context.Context, name string) (*model.Gender, error) {
	const q = `SELECT id, gender FROM gender WHERE gender = ? LIMIT 1`
	var g model.Gender
	if err := r.db.GetContext(ctx, &g, q, strings.ToLower(name)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenderNotFound
		}
		return nil, err
	}
	return &g, nil
}

// List returns every gender row ordered by id.
func (r *GenderRepo) List(ctx context.Context) ([]model.Gender, error) {
	var out []model.Gender
	if err := r.db.SelectContext(ctx, &out, `SELECT id, gender FROM gender ORDER BY id`); err != nil {
		return nil, err
	}
	return out, nil
}
