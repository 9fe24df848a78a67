package model

// Gender is a row of the fixed `gender` lookup table.  Only two rows ever
// exist (male, female); they are seeded at startup and never exposed for
// mutation.
//
// Fields:
//  ID     – primary key identifier.
//  Gender – lowercase label, unique.
type Gender struct {
    ID     uint64 `db:"id"`     // gender.id
    Gender string `db:"gender"` // gender.gender
}

// Known gender labels.
const (
    GenderMale   = "male"
    GenderFemale = "female"
)

// Genders lists the seeded labels in id order.
var Genders = []string{GenderMale, GenderFemale}
