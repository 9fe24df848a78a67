package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/casting-agency/internal/model"
)

// ActorRepo provides CRUD operations on actors.  Reads resolve the gender
// label and the movie titles from the casting relation.
type ActorRepo struct {
	db *sqlx.DB
}

// NewActorRepo constructs an ActorRepo with the provided DB handle.
func NewActorRepo(db *sqlx.DB) *ActorRepo {
	return &ActorRepo{db: db}
}

const actorSelect = `SELECT a.id, a.name, a.age, a.gender_id, g.gender
	FROM actors a JOIN gender g ON g.id = a.gender_id`

// Create inserts a new actor and sets its ID on success.
func (r *ActorRepo) Create(ctx context.Context, a *model.Actor) error {
	const q = `INSERT INTO actors (name, age, gender_id) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.Name, a.Age, a.GenderID)
	if err != nil {
		return writeErr("insert actor", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return writeErr("insert actor", err)
	}
	a.ID = uint64(id)
	if a.Movies == nil {
		a.Movies = []string{}
	}
	return nil
}

// GetByID returns the actor with the given id, including its movie titles.
func (r *ActorRepo) GetByID(ctx context.Context, id uint64) (*model.Actor, error) {
	var a model.Actor
	if err := r.db.GetContext(ctx, &a, actorSelect+` WHERE a.id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActorNotFound
		}
		return nil, err
	}
	titles, err := titlesByActor(ctx, r.db, []uint64{a.ID})
	if err != nil {
		return nil, err
	}
	a.Movies = labelsFor(titles, a.ID)
	return &a, nil
}

// ListAll returns every actor ordered by id.  Movie titles for all actors
// are loaded with a single query.
func (r *ActorRepo) ListAll(ctx context.Context) ([]model.Actor, error) {
	actors := []model.Actor{}
	if err := r.db.SelectContext(ctx, &actors, actorSelect+` ORDER BY a.id`); err != nil {
		return nil, err
	}
	ids := make([]uint64, len(actors))
	for i := range actors {
		ids[i] = actors[i].ID
	}
	titles, err := titlesByActor(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range actors {
		actors[i].Movies = labelsFor(titles, actors[i].ID)
	}
	return actors, nil
}

// Update writes name, age and gender of an existing actor.  The caller is
// expected to have loaded the actor first; MySQL reports zero affected rows
// for an update that changes nothing, so the count is not used to detect a
// missing row.
func (r *ActorRepo) Update(ctx context.Context, a *model.Actor) error {
	const q = `UPDATE actors SET name = ?, age = ?, gender_id = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, a.Name, a.Age, a.GenderID, a.ID); err != nil {
		return writeErr("update actor", err)
	}
	return nil
}

// Delete removes the actor and its casting rows in one transaction.
func (r *ActorRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM casting WHERE actor_id = ?`, id); err != nil {
			return writeErr("delete actor cast", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM actors WHERE id = ?`, id)
		if err != nil {
			return writeErr("delete actor", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return writeErr("delete actor", err)
		}
		if n == 0 {
			return ErrActorNotFound
		}
		return nil
	})
}

// ExistingIDs returns the subset of ids that name an actor row.
func (r *ActorRepo) ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []uint64{}, nil
	}
	q, args, err := sqlx.In(`SELECT id FROM actors WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	found := []uint64{}
	if err := r.db.SelectContext(ctx, &found, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return found, nil
}
