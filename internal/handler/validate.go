package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Request bodies use pointer fields so an omitted field can be told apart
// from a zero value.  JSON type mismatches fail while binding.

type actorCreateRequest struct {
	Name   *string `json:"name" validate:"required,notblank"`
	Age    *int    `json:"age" validate:"required,gt=0"`
	Gender *string `json:"gender" validate:"required,notblank"`
}

type actorPatchRequest struct {
	Name   *string `json:"name" validate:"omitempty,notblank"`
	Age    *int    `json:"age" validate:"omitempty,gt=0"`
	Gender *string `json:"gender" validate:"omitempty,notblank"`
}

func (r actorPatchRequest) empty() bool {
	return r.Name == nil && r.Age == nil && r.Gender == nil
}

type movieCreateRequest struct {
	Title       *string  `json:"title" validate:"required,notblank"`
	ReleaseDate *string  `json:"release_date" validate:"required,dmydate"`
	Actors      []uint64 `json:"actors" validate:"omitempty,dive,gt=0"`
}

type moviePatchRequest struct {
	Title       *string  `json:"title" validate:"omitempty,notblank"`
	ReleaseDate *string  `json:"release_date" validate:"omitempty,dmydate"`
	Actors      []uint64 `json:"actors" validate:"omitempty,dive,gt=0"`
}

func (r moviePatchRequest) empty() bool {
	return r.Title == nil && r.ReleaseDate == nil && r.Actors == nil
}

// Validator wraps validator/v10 with the custom rules used by the request
// bodies.  now is the clock used to reject release dates in future years.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// NewValidator returns a Validator using the wall clock.
func NewValidator() *Validator {
	return newValidatorAt(time.Now)
}

func newValidatorAt(now func() time.Time) *Validator {
	cv := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), now: now}
	_ = cv.v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = cv.v.RegisterValidation("dmydate", func(fl validator.FieldLevel) bool {
		_, err := cv.ReleaseDate(fl.Field().String())
		return err == nil
	})
	return cv
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// ReleaseDate parses a "D/M/Y" date.  Day and month may be one or two
// digits; the year must lie between 1 and the current year and the triple
// must be a real calendar date.
func (cv *Validator) ReleaseDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("release date %q: want D/M/Y", s)
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || p == "" || p[0] == '+' || p[0] == '-' {
			return time.Time{}, fmt.Errorf("release date %q: %q is not a number", s, p)
		}
		n[i] = v
	}
	day, month, year := n[0], n[1], n[2]
	switch {
	case day < 1 || day > 31:
		return time.Time{}, fmt.Errorf("release date %q: day out of range", s)
	case month < 1 || month > 12:
		return time.Time{}, fmt.Errorf("release date %q: month out of range", s)
	case year < 1 || year > cv.now().Year():
		return time.Time{}, fmt.Errorf("release date %q: year out of range", s)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("release date %q: no such day", s)
	}
	return t, nil
}

// normalizeGender drops every whitespace character and lowercases, so
// " Fe male " resolves to "female".
func normalizeGender(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// bindBody decodes the request body only; path and query values are
// never bound into a DTO.
func bindBody(c echo.Context, dst interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return badRequest(err)
	}
	return nil
}

var errNoFields = errors.New("no updatable field in body")

// dedupeIDs drops repeated ids, keeping first-seen order.
func dedupeIDs(ids []uint64) []uint64 {
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

// parseID reads the :id path value.  Anything that cannot name a row is
// reported as not found.
func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, notFound(fmt.Errorf("invalid id %q", c.Param("id")))
	}
	return id, nil
}
