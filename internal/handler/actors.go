package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/casting-agency/internal/model"
	"github.com/iliyamo/casting-agency/internal/queue"
	"github.com/iliyamo/casting-agency/internal/repository"
)

// ActorHandler serves the /actors endpoints.
type ActorHandler struct {
	Actors   *repository.ActorRepo
	Genders  *repository.GenderRepo
	validate *Validator
	notifier
}

// NewActorHandler constructs an ActorHandler and panics if a repository is
// missing.  A nil publisher disables events.
func NewActorHandler(actors *repository.ActorRepo, genders *repository.GenderRepo, v *Validator, events queue.Publisher, log logrus.FieldLogger) *ActorHandler {
	if actors == nil || genders == nil || v == nil || log == nil {
		panic("nil dependency passed to NewActorHandler")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &ActorHandler{
		Actors:   actors,
		Genders:  genders,
		validate: v,
		notifier: notifier{events: events, log: log},
	}
}

type actorJSON struct {
	ID     uint64   `json:"id"`
	Name   string   `json:"name"`
	Age    int      `json:"age"`
	Gender string   `json:"gender"`
	Movies []string `json:"movies"`
}

func toActorJSON(a model.Actor) actorJSON {
	movies := a.Movies
	if movies == nil {
		movies = []string{}
	}
	return actorJSON{ID: a.ID, Name: a.Name, Age: a.Age, Gender: a.Gender, Movies: movies}
}

// List handles GET /actors.
func (h *ActorHandler) List(c echo.Context) error {
	actors, err := h.Actors.ListAll(c.Request().Context())
	if err != nil {
		return unprocessable(err)
	}
	out := make([]actorJSON, 0, len(actors))
	for _, a := range actors {
		out = append(out, toActorJSON(a))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"actors":       out,
		"total_actors": len(out),
		"success":      true,
		"status_code":  http.StatusOK,
	})
}

// Create handles POST /actors.
func (h *ActorHandler) Create(c echo.Context) error {
	var req actorCreateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := h.validate.Validate(req); err != nil {
		return badRequest(err)
	}
	ctx := c.Request().Context()
	g, err := h.resolveGender(c, *req.Gender)
	if err != nil {
		return err
	}
	a := &model.Actor{
		Name:     strings.TrimSpace(*req.Name),
		Age:      *req.Age,
		GenderID: g.ID,
		Gender:   g.Gender,
	}
	if err := h.Actors.Create(ctx, a); err != nil {
		return unprocessable(err)
	}
	h.publish(ctx, queue.ActorCreated, queue.ResourceActor, a.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"success":     true,
		"status_code": http.StatusCreated,
		"actor_id":    a.ID,
	})
}

// Update handles PATCH /actors/:id.  Omitted fields keep their value.
func (h *ActorHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.Actors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrActorNotFound) {
			return notFound(err)
		}
		return unprocessable(err)
	}

	var req actorPatchRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.empty() {
		return badRequest(errNoFields)
	}
	if err := h.validate.Validate(req); err != nil {
		return badRequest(err)
	}

	if req.Name != nil {
		a.Name = strings.TrimSpace(*req.Name)
	}
	if req.Age != nil {
		a.Age = *req.Age
	}
	if req.Gender != nil {
		g, err := h.resolveGender(c, *req.Gender)
		if err != nil {
			return err
		}
		a.GenderID, a.Gender = g.ID, g.Gender
	}
	if err := h.Actors.Update(ctx, a); err != nil {
		return unprocessable(err)
	}
	h.publish(ctx, queue.ActorUpdated, queue.ResourceActor, a.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"actor":       toActorJSON(*a),
		"success":     true,
		"status_code": http.StatusOK,
	})
}

// Delete handles DELETE /actors/:id.  Casting rows go with the actor.
func (h *ActorHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.Actors.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrActorNotFound) {
			return notFound(err)
		}
		return unprocessable(err)
	}
	h.publish(ctx, queue.ActorDeleted, queue.ResourceActor, id)
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"status_code": http.StatusOK,
		"actor_id":    id,
	})
}

// resolveGender maps a free-form gender label onto its lookup row.  An
// unknown label is a client error.
func (h *ActorHandler) resolveGender(c echo.Context, raw string) (*model.Gender, error) {
	g, err := h.Genders.GetByName(c.Request().Context(), normalizeGender(raw))
	if err != nil {
		if errors.Is(err, repository.ErrGenderNotFound) {
			return nil, badRequest(err)
		}
		return nil, unprocessable(err)
	}
	return g, nil
}
