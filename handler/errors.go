package handler

import (
	"errors"
	"fmt"
	"net/http"

	"blog/domain"
	"blog/store"

	"github.com/labstack/echo/v4"
)

type detail struct {
	Detail string `json:"detail"`
}

// customHTTPErrorHandler renders every error returned by a handler as JSON.
// Unknown records answer 404 with an empty body.
func customHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var body any = detail{"Internal server error"}
	var validation domain.ValidationError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &validation):
		code, body = http.StatusBadRequest, validation
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated):
		code, body = http.StatusUnauthorized, detail{"Authentication credentials were not provided."}
	case errors.Is(err, domain.ErrForbidden):
		code, body = http.StatusForbidden, detail{"You do not have permission to perform this action."}
	case errors.Is(err, store.ErrConflict):
		code, body = http.StatusConflict, detail{"A user with that username already exists."}
	case errors.As(err, &he):
		code, body = he.Code, detail{fmt.Sprint(he.Message)}
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}
	if code == http.StatusUnauthorized {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="api"`)
	}

	if code == http.StatusNotFound || c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}
