package router // package router builds the Echo instance and registers every route

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/casting-agency/internal/config"
	"github.com/iliyamo/casting-agency/internal/handler"
	"github.com/iliyamo/casting-agency/internal/middleware"
	"github.com/iliyamo/casting-agency/internal/queue"
	"github.com/iliyamo/casting-agency/internal/repository"
)

// Deps carries everything the HTTP layer needs.  Redis and Events are
// optional: without Redis the cache and rate limiter pass requests
// through, and without Events nothing is published.
type Deps struct {
	DB         *sqlx.DB
	Authorizer middleware.Authorizer
	Redis      *redis.Client
	Events     queue.Publisher
	Log        *logrus.Logger

	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Metrics   config.MetricsConfig
}

// New returns a fully wired Echo instance.
func New(d Deps) *echo.Echo {
	if d.DB == nil || d.Authorizer == nil || d.Log == nil {
		panic("router: DB, Authorizer and Log are required")
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	v := handler.NewValidator()
	e.Validator = v

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))
	if d.Metrics.Enabled {
		e.Use(middleware.Metrics())
		e.GET(d.Metrics.Path, echo.WrapHandler(promhttp.Handler()))
	}
	e.Use(echomw.Recover())
	tv, _ := d.Authorizer.(middleware.TokenVerifier)
	e.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis, tv, d.Log))

	RegisterRoutes(e, d.DB)

	actors := repository.NewActorRepo(d.DB)
	genders := repository.NewGenderRepo(d.DB)
	movies := repository.NewMovieRepo(d.DB)
	cache := middleware.NewResponseCache(d.Cache, d.Redis, d.Log)

	RegisterActors(e, handler.NewActorHandler(actors, genders, v, d.Events, d.Log), d.Authorizer, cache)
	RegisterMovies(e, handler.NewMovieHandler(movies, actors, v, d.Events, d.Log), d.Authorizer, cache)
	return e
}

// RegisterRoutes registers the unauthenticated probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}
