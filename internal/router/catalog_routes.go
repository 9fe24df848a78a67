package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/casting-agency/internal/auth"
	"github.com/iliyamo/casting-agency/internal/handler"
	"github.com/iliyamo/casting-agency/internal/middleware"
)

// Cache namespaces.  An actor change alters the movies listing (cast
// names) and a movie change alters the actors listing (titles), so every
// mutation drops both.
const (
	cacheActors = "actors"
	cacheMovies = "movies"
)

// RegisterActors registers /actors.  Each route checks its own permission
// before anything else runs.
func RegisterActors(e *echo.Echo, h *handler.ActorHandler, a middleware.Authorizer, cache *middleware.ResponseCache) {
	purge := cache.Invalidate(cacheActors, cacheMovies)

	e.GET("/actors", h.List, middleware.RequirePermission(a, auth.PermGetActors), cache.Cache(cacheActors))
	e.POST("/actors", h.Create, middleware.RequirePermission(a, auth.PermPostActors), purge)
	e.PATCH("/actors/:id", h.Update, middleware.RequirePermission(a, auth.PermPatchActors), purge)
	e.DELETE("/actors/:id", h.Delete, middleware.RequirePermission(a, auth.PermDeleteActors), purge)
}

// RegisterMovies registers /movies.
func RegisterMovies(e *echo.Echo, h *handler.MovieHandler, a middleware.Authorizer, cache *middleware.ResponseCache) {
	purge := cache.Invalidate(cacheActors, cacheMovies)

	e.GET("/movies", h.List, middleware.RequirePermission(a, auth.PermGetMovies), cache.Cache(cacheMovies))
	e.POST("/movies", h.Create, middleware.RequirePermission(a, auth.PermPostMovies), purge)
	e.PATCH("/movies/:id", h.Update, middleware.RequirePermission(a, auth.PermPatchMovies), purge)
	e.DELETE("/movies/:id", h.Delete, middleware.RequirePermission(a, auth.PermDeleteMovies), purge)
}
