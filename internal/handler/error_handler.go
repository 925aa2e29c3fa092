package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "careercompass/internal/errors"
)

// ErrorHandler renders every error as {msg}. Malformed completions are logged
// with their raw text, which never reaches the client.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := apperrors.MapErrorToHTTP(err)

		var formatErr *apperrors.FormatError
		switch {
		case errors.As(err, &formatErr):
			e.Logger.Errorf("%s %s: %v; raw completion: %q", c.Request().Method, c.Path(), err, formatErr.Raw)
		case httpErr.StatusCode >= http.StatusInternalServerError:
			e.Logger.Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.StatusCode)
		} else {
			err = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if err != nil {
			e.Logger.Error(err)
		}
	}
}
