package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/casting-agency/internal/model"
)

// MovieRepo provides CRUD operations on movies and owns the writes to the
// casting relation.
type MovieRepo struct {
	db *sqlx.DB
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sqlx.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

const movieSelect = `SELECT id, title, release_date FROM movies`

// Create inserts the movie and its cast in a single transaction and sets the
// new ID on m.  Actor ids must already be known to exist.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie, actorIDs []uint64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const q = `INSERT INTO movies (title, release_date) VALUES (?, ?)`
		res, err := tx.ExecContext(ctx, q, m.Title, m.ReleaseDate)
		if err != nil {
			return writeErr("insert movie", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return writeErr("insert movie", err)
		}
		if err := attachCast(ctx, tx, uint64(id), actorIDs); err != nil {
			return err
		}
		m.ID = uint64(id)
		return nil
	})
}

// GetByID returns the movie with the given id, including its cast names.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	var m model.Movie
	if err := r.db.GetContext(ctx, &m, movieSelect+` WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	names, err := namesByMovie(ctx, r.db, []uint64{m.ID})
	if err != nil {
		return nil, err
	}
	m.Actors = labelsFor(names, m.ID)
	return &m, nil
}

// ListAll returns every movie ordered by id.
func (r *MovieRepo) ListAll(ctx context.Context) ([]model.Movie, error) {
	movies := []model.Movie{}
	if err := r.db.SelectContext(ctx, &movies, movieSelect+` ORDER BY id`); err != nil {
		return nil, err
	}
	ids := make([]uint64, len(movies))
	for i := range movies {
		ids[i] = movies[i].ID
	}
	names, err := namesByMovie(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range movies {
		movies[i].Actors = labelsFor(names, movies[i].ID)
	}
	return movies, nil
}

// Update writes title and release date.  When replace is true the cast is
// replaced by actorIDs within the same transaction.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie, actorIDs []uint64, replace bool) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const q = `UPDATE movies SET title = ?, release_date = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, q, m.Title, m.ReleaseDate, m.ID); err != nil {
			return writeErr("update movie", err)
		}
		if !replace {
			return nil
		}
		return replaceCast(ctx, tx, m.ID, actorIDs)
	})
}

// Delete removes the movie and its casting rows in one transaction.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM casting WHERE movie_id = ?`, id); err != nil {
			return writeErr("delete movie cast", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
		if err != nil {
			return writeErr("delete movie", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return writeErr("delete movie", err)
		}
		if n == 0 {
			return ErrMovieNotFound
		}
		return nil
	})
}
