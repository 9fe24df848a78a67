package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one "request completed" entry per request with the
// request id, route, status and duration.  Errors returned by the chain are
// rendered through the HTTP error handler first so the logged status is the
// one the client sees.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			if err := next(c); err != nil {
				c.Error(err)
			}
			res := c.Response()
			entry := log.WithFields(logrus.Fields{
				"request-id": res.Header().Get(echo.HeaderXRequestID),
				"method":     req.Method,
				"path":       req.URL.Path,
				"route":      c.Path(),
				"status":     res.Status,
				"remote":     c.RealIP(),
				"duration":   time.Since(start).String(),
				"user":       userID(c),
			})
			switch {
			case res.Status >= 500:
				entry.Error("request completed")
			case res.Status >= 400:
				entry.Warn("request completed")
			default:
				entry.Info("request completed")
			}
			return nil
		}
	}
}
