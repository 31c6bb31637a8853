package http

import (
	"fmt"
	"net/http"

	"marketplace/internal/pkg/errs"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Problem is the body of every failed response.
type Problem struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// retryAfterSeconds is sent with conflicts; the whole request may simply be repeated.
const retryAfterSeconds = "1"

// StatusFor maps an error returned by a command or query to an HTTP status code.
func StatusFor(err error) int {
	switch errs.Kind(err) {
	case "not_found":
		return http.StatusNotFound
	case "forbidden":
		return http.StatusForbidden
	case "invalid_transition", "already_terminal", "already_resolved", "no_op", "conflict":
		return http.StatusConflict
	case "over_refund":
		return http.StatusUnprocessableEntity
	case "missing_reason", "invalid_argument":
		return http.StatusBadRequest
	case "timeout":
		return http.StatusGatewayTimeout
	case "canceled":
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func problemFor(err error) Problem {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return Problem{
			Code:    he.Code,
			Kind:    httpKind(he.Code),
			Message: fmt.Sprint(he.Message),
		}
	}

	code := StatusFor(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = http.StatusText(code)
	}
	return Problem{Code: code, Kind: errs.Kind(err), Message: message}
}

func httpKind(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusBadRequest:
		return "invalid_argument"
	default:
		if code >= http.StatusInternalServerError {
			return "internal"
		}
		return "http"
	}
}

// ErrorHandler writes a Problem for every error a route returns.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		p := problemFor(err)
		lg := zctx.From(c.Request().Context())
		if p.Code >= http.StatusInternalServerError {
			lg.Error("Request failed", zap.Error(err))
		} else {
			lg.Debug("Request rejected", zap.String("kind", p.Kind), zap.Error(err))
		}

		if errs.Retryable(err) {
			c.Response().Header().Set("Retry-After", retryAfterSeconds)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(p.Code)
		} else {
			writeErr = c.JSON(p.Code, p)
		}
		if writeErr != nil {
			lg.Warn("Write error response", zap.Error(writeErr))
		}
	}
}
