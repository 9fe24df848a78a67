package repository

// The casting relation is a plain join table.  It is only written as part of
// a movie (or actor) transaction, so the helpers here take the caller's
// *sqlx.Tx instead of owning one.

import (
	"context"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/casting-agency/internal/model"
)

// attachCast inserts one casting row per distinct actor id.
func attachCast(ctx context.Context, tx *sqlx.Tx, movieID uint64, actorIDs []uint64) error {
	ids := uniqueIDs(actorIDs)
	if len(ids) == 0 {
		return nil
	}
	rows := make([]model.Casting, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.Casting{MovieID: movieID, ActorID: id})
	}
	const q = `INSERT INTO casting (movie_id, actor_id) VALUES (:movie_id, :actor_id)`
	if _, err := tx.NamedExecContext(ctx, q, rows); err != nil {
		return writeErr("attach cast", err)
	}
	return nil
}

// replaceCast clears the movie's cast and attaches actorIDs instead.  An
// empty actorIDs leaves the movie with no cast.
func replaceCast(ctx context.Context, tx *sqlx.Tx, movieID uint64, actorIDs []uint64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM casting WHERE movie_id = ?`, movieID); err != nil {
		return writeErr("clear cast", err)
	}
	return attachCast(ctx, tx, movieID, actorIDs)
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// castLabel is one (owner id, label) pair read from the casting relation.
type castLabel struct {
	OwnerID uint64 `db:"owner_id"`
	Label   string `db:"label"`
}

// titlesByActor returns the sorted movie titles for each actor id.
func titlesByActor(ctx context.Context, q queryer, actorIDs []uint64) (map[uint64][]string, error) {
	return loadLabels(ctx, q, `SELECT c.actor_id AS owner_id, m.title AS label
	      FROM casting c JOIN movies m ON m.id = c.movie_id
	      WHERE c.actor_id IN (?)`, actorIDs)
}

// namesByMovie returns the sorted actor names for each movie id.
func namesByMovie(ctx context.Context, q queryer, movieIDs []uint64) (map[uint64][]string, error) {
	return loadLabels(ctx, q, `SELECT c.movie_id AS owner_id, a.name AS label
	      FROM casting c JOIN actors a ON a.id = c.actor_id
	      WHERE c.movie_id IN (?)`, movieIDs)
}

func loadLabels(ctx context.Context, q queryer, query string, ids []uint64) (map[uint64][]string, error) {
	out := make(map[uint64][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return nil, err
	}
	var rows []castLabel
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.OwnerID] = append(out[r.OwnerID], r.Label)
	}
	for id := range out {
		sort.Strings(out[id])
	}
	return out, nil
}

// labelsFor returns the labels for id, never nil so JSON renders [].
func labelsFor(m map[uint64][]string, id uint64) []string {
	if l, ok := m[id]; ok {
		return l
	}
	return []string{}
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
