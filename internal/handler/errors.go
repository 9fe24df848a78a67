package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// errorMessages are the only messages a client ever sees in an error body.
var errorMessages = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusUnauthorized:        "You don't have Authorization to access this endpoint",
	http.StatusNotFound:            "Not Found",
	http.StatusMethodNotAllowed:    "Method Not Allowed",
	http.StatusUnprocessableEntity: "Cannot be processed",
	http.StatusTooManyRequests:     "Too Many Requests",
	http.StatusInternalServerError: "Internal Server Error",
}

// ErrorHandler renders every error as {message, status_code, success:false}.
// The cause attached with SetInternal is logged and never written out.
// Codes without a message of their own are reported as 500.
func ErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		cause := err
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Internal != nil {
				cause = he.Internal
			}
		}
		msg, ok := errorMessages[code]
		if !ok {
			code = http.StatusInternalServerError
			msg = errorMessages[code]
		}

		entry := log.WithFields(logrus.Fields{
			"status":     code,
			"method":     c.Request().Method,
			"path":       c.Request().URL.Path,
			"request-id": c.Response().Header().Get(echo.HeaderXRequestID),
		}).WithError(cause)
		if code >= http.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Debug("request rejected")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"message": msg, "status_code": code, "success": false})
		}
		if err != nil {
			log.WithError(err).Error("write error response")
		}
	}
}

func badRequest(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
}

func notFound(err error) error {
	return echo.NewHTTPError(http.StatusNotFound).SetInternal(err)
}

func unprocessable(err error) error {
	return echo.NewHTTPError(http.StatusUnprocessableEntity).SetInternal(err)
}
