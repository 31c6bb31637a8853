// Package errs provides standardized error types for the marketplace order service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes two families of errors:
//   - Validation errors: ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError,
//     ObjectNotFoundError
//   - Domain outcomes of the order lifecycle: InvalidTransitionError, ForbiddenError,
//     NoOpError, AlreadyTerminalError, AlreadyResolvedError, OverRefundError,
//     MissingReasonError, and the persistence level ConflictError
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrOverRefund)
//   - A struct type with fields for error details
//   - Constructor functions
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel, so errors.Is works after wrapping
//
// None of these errors are fatal. A failed transition returns one of them instead of
// mutating, and the caller leaves the persisted state untouched. Kind maps an error to
// a stable name for transports and logs; Retryable reports whether the caller may rerun
// the whole read-modify-write.
package errs
