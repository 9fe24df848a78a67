package model

import "time"

// Movie is a title with a release date and a cast of actors.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – unique, non-empty title.
//  ReleaseDate – calendar date of release (time part is zero, UTC).
//  Actors      – names of the cast, sorted; filled from the casting relation.
type Movie struct {
    ID          uint64    `db:"id"`           // movies.id
    Title       string    `db:"title"`        // movies.title
    ReleaseDate time.Time `db:"release_date"` // movies.release_date
    Actors      []string  `db:"-"`            // casting → actors.name
}

// ReleaseDateLayout is the DD/MM/YYYY wire format of release dates.
const ReleaseDateLayout = "02/01/2006"

// FormattedReleaseDate renders the release date as DD/MM/YYYY.
func (m Movie) FormattedReleaseDate() string {
    return m.ReleaseDate.Format(ReleaseDateLayout)
}
