package errs_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("orderId", "123")

		assert.Equal(t, "orderId", err.ParamName)
		assert.Equal(t, "123", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: 123", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := errs.NewObjectNotFoundErrorWithCause("orderId", "123", cause)

		assert.Equal(t, "orderId", err.ParamName)
		assert.Equal(t, "123", err.ID)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: orderId, ID is: 123 (cause: database connection failed)",
			err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("Error with different ID types", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("refundIndex", 456)
		assert.Equal(t, "object not found: %!s(int=456)", err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("NewValueIsInvalidError", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("rejectReason")

		assert.Equal(t, "rejectReason", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: rejectReason", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("NewValueIsInvalidErrorWithCause", func(t *testing.T) {
		cause := errors.New("invalid format")
		err := errs.NewValueIsInvalidErrorWithCause("rejectReason", cause)

		assert.Equal(t, "rejectReason", err.ParamName)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "value is invalid: rejectReason (cause: invalid format)", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("NewValueIsOutOfRangeError", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("refundedQty", 150, 1, 120)

		assert.Equal(t, "refundedQty", err.ParamName)
		assert.Equal(t, 150, err.Value)
		assert.Equal(t, 1, err.Min)
		assert.Equal(t, 120, err.Max)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: 150 is refundedQty, min value is 1, max value is 120", err.Error())
		assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	})

	t.Run("NewValueIsOutOfRangeErrorWithCause", func(t *testing.T) {
		cause := errors.New("validation failed")
		err := errs.NewValueIsOutOfRangeErrorWithCause("quantity", -5, 1, 100, cause)

		assert.Equal(t, "quantity", err.ParamName)
		assert.Equal(t, -5, err.Value)
		assert.Equal(t, 1, err.Min)
		assert.Equal(t, 100, err.Max)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"value is invalid: -5 is quantity, min value is 1, max value is 100 (cause: validation failed)",
			err.Error())
		assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	})

	t.Run("sanitize function with newlines", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("text", "hello\nworld", 0, 10)
		assert.Contains(t, err.Error(), "hello world")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	t.Run("NewValueIsRequiredError", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("itemId")

		assert.Equal(t, "itemId", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is required: itemId", err.Error())
		assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())
	})

	t.Run("NewValueIsRequiredErrorWithCause", func(t *testing.T) {
		cause := errors.New("missing required field")
		err := errs.NewValueIsRequiredErrorWithCause("itemId", cause)

		assert.Equal(t, "itemId", err.ParamName)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "value is required: itemId (cause: missing required field)", err.Error())
		assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())
	})
}

func TestSentinelErrors(t *testing.T) {
	t.Run("sentinel errors are defined", func(t *testing.T) {
		require.Error(t, errs.ErrObjectNotFound)
		require.Error(t, errs.ErrValueIsInvalid)
		require.Error(t, errs.ErrValueIsOutOfRange)
		require.Error(t, errs.ErrValueIsRequired)
		require.Error(t, errs.ErrConflict)
	})

	t.Run("error messages match expectations", func(t *testing.T) {
		assert.Equal(t, "object not found", errs.ErrObjectNotFound.Error())
		assert.Equal(t, "value is invalid", errs.ErrValueIsInvalid.Error())
		assert.Equal(t, "value is out of range", errs.ErrValueIsOutOfRange.Error())
		assert.Equal(t, "value is required", errs.ErrValueIsRequired.Error())
		assert.Equal(t, "conflict", errs.ErrConflict.Error())
	})
}

func TestErrorsCanBeUnwrapped(t *testing.T) {
	t.Run("errors.Is works with custom errors", func(t *testing.T) {
		objectNotFoundErr := errs.NewObjectNotFoundError("orderId", "123")
		require.ErrorIs(t, objectNotFoundErr, errs.ErrObjectNotFound)

		valueInvalidErr := errs.NewValueIsInvalidError("rejectReason")
		require.ErrorIs(t, valueInvalidErr, errs.ErrValueIsInvalid)

		valueOutOfRangeErr := errs.NewValueIsOutOfRangeError("refundedQty", 150, 1, 120)
		require.ErrorIs(t, valueOutOfRangeErr, errs.ErrValueIsOutOfRange)

		valueRequiredErr := errs.NewValueIsRequiredError("itemId")
		require.ErrorIs(t, valueRequiredErr, errs.ErrValueIsRequired)

		conflictErr := errs.NewConflictError("order", "42", 3)
		require.ErrorIs(t, conflictErr, errs.ErrConflict)
	})
}

func TestDomainErrors(t *testing.T) {
	t.Run("InvalidTransitionError", func(t *testing.T) {
		err := errs.NewInvalidTransitionError("order status", "Delivered", "Shipped")

		assert.Equal(t, "invalid transition: order status from Delivered to Shipped", err.Error())
		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("InvalidTransitionErrorWithCause", func(t *testing.T) {
		err := errs.NewInvalidTransitionErrorWithCause("order status", "Shipped", "Processing",
			errors.New("status may only move forward"))

		assert.Equal(t,
			"invalid transition: order status from Shipped to Processing (cause: status may only move forward)",
			err.Error())
	})

	t.Run("ForbiddenError", func(t *testing.T) {
		err := errs.NewForbiddenError("seller", "finalize refund")

		assert.Equal(t, "forbidden: seller may not finalize refund", err.Error())
		require.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("NoOpError", func(t *testing.T) {
		err := errs.NewNoOpError("order status", "Shipped")

		assert.Equal(t, "no-op: order status is already Shipped", err.Error())
		require.ErrorIs(t, err, errs.ErrNoOp)
	})

	t.Run("AlreadyTerminalError", func(t *testing.T) {
		err := errs.NewAlreadyTerminalError("delivery assignment", "completed")

		assert.Equal(t, "already terminal: delivery assignment is completed", err.Error())
		require.ErrorIs(t, err, errs.ErrAlreadyTerminal)
	})

	t.Run("AlreadyResolvedError", func(t *testing.T) {
		err := errs.NewAlreadyResolvedError(2, "Rejected")

		assert.Equal(t, "already resolved: refund request 2 is Rejected", err.Error())
		require.ErrorIs(t, err, errs.ErrAlreadyResolved)
	})

	t.Run("OverRefundError", func(t *testing.T) {
		err := errs.NewOverRefundError("item-1", 3, 2, 2)

		assert.Equal(t, "over refund: item item-1 ordered 3, already refunded 2, requested 2", err.Error())
		require.ErrorIs(t, err, errs.ErrOverRefund)
	})

	t.Run("MissingReasonError", func(t *testing.T) {
		err := errs.NewMissingReasonError("rejectReason")

		assert.Equal(t, "missing reason: rejectReason", err.Error())
		require.ErrorIs(t, err, errs.ErrMissingReason)
	})

	t.Run("ConflictError", func(t *testing.T) {
		err := errs.NewConflictError("order", "42", 3)

		assert.Equal(t, "conflict: order 42 changed since version 3", err.Error())
		require.ErrorIs(t, err, errs.ErrConflict)
	})
}

func TestKind(t *testing.T) {
	testCases := []struct {
		err      error
		expected string
	}{
		{nil, ""},
		{errs.NewObjectNotFoundError("order", "1"), "not_found"},
		{errs.NewInvalidTransitionError("order status", "Delivered", "Shipped"), "invalid_transition"},
		{errs.NewForbiddenError("customer", "resolve refund"), "forbidden"},
		{errs.NewNoOpError("order status", "Shipped"), "no_op"},
		{errs.NewAlreadyTerminalError("delivery assignment", "declined"), "already_terminal"},
		{errs.NewAlreadyResolvedError(0, "RefundSuccess"), "already_resolved"},
		{errs.NewOverRefundError("i", 1, 1, 1), "over_refund"},
		{errs.NewMissingReasonError("rejectReason"), "missing_reason"},
		{errs.NewConflictError("order", "1", 1), "conflict"},
		{errs.NewValueIsRequiredError("itemId"), "invalid_argument"},
		{fmt.Errorf("load order: %w", errs.NewValueIsOutOfRangeError("qty", 0, 1, 2)), "invalid_argument"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("boom"), "internal"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, errs.Kind(tc.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, errs.Retryable(fmt.Errorf("save: %w", errs.NewConflictError("order", "1", 1))))
	assert.False(t, errs.Retryable(errs.NewForbiddenError("seller", "cancel")))
	assert.False(t, errs.Retryable(nil))
}
