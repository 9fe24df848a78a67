package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/casting-agency/internal/model"
	"github.com/iliyamo/casting-agency/internal/queue"
	"github.com/iliyamo/casting-agency/internal/repository"
)

// MovieHandler serves the /movies endpoints.
type MovieHandler struct {
	Movies   *repository.MovieRepo
	Actors   *repository.ActorRepo
	validate *Validator
	notifier
}

// NewMovieHandler constructs a MovieHandler and panics if a repository is
// missing.  A nil publisher disables events.
func NewMovieHandler(movies *repository.MovieRepo, actors *repository.ActorRepo, v *Validator, events queue.Publisher, log logrus.FieldLogger) *MovieHandler {
	if movies == nil || actors == nil || v == nil || log == nil {
		panic("nil dependency passed to NewMovieHandler")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &MovieHandler{
		Movies:   movies,
		Actors:   actors,
		validate: v,
		notifier: notifier{events: events, log: log},
	}
}

type movieJSON struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate string   `json:"release_date"`
	Actors      []string `json:"actors"`
}

func toMovieJSON(m model.Movie) movieJSON {
	actors := m.Actors
	if actors == nil {
		actors = []string{}
	}
	return movieJSON{ID: m.ID, Title: m.Title, ReleaseDate: m.FormattedReleaseDate(), Actors: actors}
}

// List handles GET /movies.
func (h *MovieHandler) List(c echo.Context) error {
	movies, err := h.Movies.ListAll(c.Request().Context())
	if err != nil {
		return unprocessable(err)
	}
	out := make([]movieJSON, 0, len(movies))
	for _, m := range movies {
		out = append(out, toMovieJSON(m))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movies":       out,
		"total_movies": len(out),
		"success":      true,
		"status_code":  http.StatusOK,
	})
}

// Create handles POST /movies.  The optional actors list is attached in
// the same transaction as the movie row.
func (h *MovieHandler) Create(c echo.Context) error {
	var req movieCreateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := h.validate.Validate(req); err != nil {
		return badRequest(err)
	}
	released, err := h.validate.ReleaseDate(*req.ReleaseDate)
	if err != nil {
		return badRequest(err)
	}
	ctx := c.Request().Context()
	cast, err := h.resolveCast(c, req.Actors)
	if err != nil {
		return err
	}
	m := &model.Movie{Title: strings.TrimSpace(*req.Title), ReleaseDate: released}
	if err := h.Movies.Create(ctx, m, cast); err != nil {
		return unprocessable(err)
	}
	h.publish(ctx, queue.MovieCreated, queue.ResourceMovie, m.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"success":     true,
		"status_code": http.StatusCreated,
		"movie_id":    m.ID,
	})
}

// Update handles PATCH /movies/:id.  A present actors list replaces the
// cast; an empty list clears it.
func (h *MovieHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return notFound(err)
		}
		return unprocessable(err)
	}

	var req moviePatchRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.empty() {
		return badRequest(errNoFields)
	}
	if err := h.validate.Validate(req); err != nil {
		return badRequest(err)
	}

	if req.Title != nil {
		m.Title = strings.TrimSpace(*req.Title)
	}
	if req.ReleaseDate != nil {
		released, err := h.validate.ReleaseDate(*req.ReleaseDate)
		if err != nil {
			return badRequest(err)
		}
		m.ReleaseDate = released
	}
	replace := req.Actors != nil
	cast, err := h.resolveCast(c, req.Actors)
	if err != nil {
		return err
	}
	if err := h.Movies.Update(ctx, m, cast, replace); err != nil {
		return unprocessable(err)
	}
	if replace {
		fresh, err := h.Movies.GetByID(ctx, id)
		if err != nil {
			return unprocessable(err)
		}
		m = fresh
	}
	h.publish(ctx, queue.MovieUpdated, queue.ResourceMovie, m.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"movie":       toMovieJSON(*m),
		"success":     true,
		"status_code": http.StatusOK,
	})
}

// Delete handles DELETE /movies/:id.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.Movies.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return notFound(err)
		}
		return unprocessable(err)
	}
	h.publish(ctx, queue.MovieDeleted, queue.ResourceMovie, id)
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"status_code": http.StatusOK,
		"movie_id":    id,
	})
}

// resolveCast collapses duplicate ids and checks that every id names an
// actor.  Unknown ids are a client error.
func (h *MovieHandler) resolveCast(c echo.Context, ids []uint64) ([]uint64, error) {
	if len(ids) == 0 {
		return []uint64{}, nil
	}
	ids = dedupeIDs(ids)
	found, err := h.Actors.ExistingIDs(c.Request().Context(), ids)
	if err != nil {
		return nil, unprocessable(err)
	}
	if len(found) != len(ids) {
		return nil, badRequest(fmt.Errorf("unknown actor ids in %v", ids))
	}
	return ids, nil
}
