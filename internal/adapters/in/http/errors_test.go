package http_test

import (
	"context"
	"net/http"
	"testing"

	httpadapter "marketplace/internal/adapters/in/http"
	"marketplace/internal/pkg/errs"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errs.NewObjectNotFoundError("order id", "x"), http.StatusNotFound},
		{"forbidden", errs.NewForbiddenError("seller", "ship"), http.StatusForbidden},
		{"invalid transition", errs.NewInvalidTransitionError("order", "Delivered", "Shipped"), http.StatusConflict},
		{"no-op", errs.NewNoOpError("order", "Shipped"), http.StatusConflict},
		{"already terminal", errs.NewAlreadyTerminalError("delivery", "completed"), http.StatusConflict},
		{"already resolved", errs.NewAlreadyResolvedError(0, "Rejected"), http.StatusConflict},
		{"over refund", errs.NewOverRefundError("item", 2, 1, 2), http.StatusUnprocessableEntity},
		{"missing reason", errs.ErrMissingReason, http.StatusBadRequest},
		{"invalid argument", errs.NewValueIsRequiredError("cart"), http.StatusBadRequest},
		{"conflict", errs.NewConflictError("order", "x", 1), http.StatusConflict},
		{"wrapped", errors.Wrap(errs.NewObjectNotFoundError("order id", "x"), "load order"), http.StatusNotFound},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpadapter.StatusFor(tt.err))
		})
	}
}
