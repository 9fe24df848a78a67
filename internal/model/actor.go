package model

// Actor is a performer that can be cast in many movies.  Each actor
// references exactly one Gender row.  Gender and Movies are not columns of
// the `actors` table; repositories fill them from the gender table and the
// casting relation when an actor is read.
//
// Fields:
//  ID       – primary key identifier.
//  Name     – unique, non-empty display name.
//  Age      – positive age in years.
//  GenderID – foreign key into gender.id.
//  Gender   – resolved gender label.
//  Movies   – titles of the movies the actor is cast in, sorted.
type Actor struct {
    ID       uint64   `db:"id"`        // actors.id
    Name     string   `db:"name"`      // actors.name
    Age      int      `db:"age"`       // actors.age
    GenderID uint64   `db:"gender_id"` // actors.gender_id
    Gender   string   `db:"gender"`    // gender.gender (joined)
    Movies   []string `db:"-"`         // casting → movies.title
}
