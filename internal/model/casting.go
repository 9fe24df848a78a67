package model

// Casting links one movie to one actor.  The pair is the primary key and
// the row carries no other attributes.
type Casting struct {
    MovieID uint64 `db:"movie_id"` // casting.movie_id
    ActorID uint64 `db:"actor_id"` // casting.actor_id
}
