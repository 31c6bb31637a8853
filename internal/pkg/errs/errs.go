package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrValueIsOutOfRange = errors.New("value is out of range")
	ErrValueIsRequired   = errors.New("value is required")

	ErrInvalidTransition = errors.New("invalid transition")
	ErrForbidden         = errors.New("forbidden")
	ErrNoOp              = errors.New("no-op")
	ErrAlreadyTerminal   = errors.New("already terminal")
	ErrAlreadyResolved   = errors.New("already resolved")
	ErrOverRefund        = errors.New("over refund")
	ErrMissingReason     = errors.New("missing reason")

	// ErrConflict marks a stale read-modify-write. It is retryable.
	ErrConflict = errors.New("conflict")
)

// sanitize keeps user supplied values on one line inside error messages.
func sanitize(v any) string {
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(fmt.Sprintf("%v", v))
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (cause: %v)", msg, cause)
}

// ObjectNotFoundError reports a missing aggregate or entity.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)", ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a value that failed validation.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName), e.Cause)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside of [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	return withCause(fmt.Sprintf("%s: %s is %s, min value is %s, max value is %s",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max)), e.Cause)
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName), e.Cause)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// InvalidTransitionError reports a state change the state machine does not allow.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
	Cause  error
}

func NewInvalidTransitionError(entity, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from, To: to}
}

func NewInvalidTransitionErrorWithCause(entity, from, to string, cause error) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from, To: to, Cause: cause}
}

func (e *InvalidTransitionError) Error() string {
	return withCause(fmt.Sprintf("%s: %s from %s to %s", ErrInvalidTransition, e.Entity, e.From, e.To), e.Cause)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ForbiddenError reports an actor that may not perform an action.
type ForbiddenError struct {
	Actor  string
	Action string
}

func NewForbiddenError(actor, action string) *ForbiddenError {
	return &ForbiddenError{Actor: actor, Action: action}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: %s may not %s", ErrForbidden, e.Actor, e.Action)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// NoOpError reports a request that would not change anything.
type NoOpError struct {
	Entity string
	State  string
}

func NewNoOpError(entity, state string) *NoOpError {
	return &NoOpError{Entity: entity, State: state}
}

func (e *NoOpError) Error() string {
	return fmt.Sprintf("%s: %s is already %s", ErrNoOp, e.Entity, e.State)
}

func (e *NoOpError) Unwrap() error {
	return ErrNoOp
}

// AlreadyTerminalError reports a mutation attempted on an entity in a final state.
type AlreadyTerminalError struct {
	Entity string
	State  string
}

func NewAlreadyTerminalError(entity, state string) *AlreadyTerminalError {
	return &AlreadyTerminalError{Entity: entity, State: state}
}

func (e *AlreadyTerminalError) Error() string {
	return fmt.Sprintf("%s: %s is %s", ErrAlreadyTerminal, e.Entity, e.State)
}

func (e *AlreadyTerminalError) Unwrap() error {
	return ErrAlreadyTerminal
}

// AlreadyResolvedError reports a refund request that already has a final decision.
type AlreadyResolvedError struct {
	Index int
	State string
}

func NewAlreadyResolvedError(index int, state string) *AlreadyResolvedError {
	return &AlreadyResolvedError{Index: index, State: state}
}

func (e *AlreadyResolvedError) Error() string {
	return fmt.Sprintf("%s: refund request %d is %s", ErrAlreadyResolved, e.Index, e.State)
}

func (e *AlreadyResolvedError) Unwrap() error {
	return ErrAlreadyResolved
}

// OverRefundError reports a refund that would exceed the ordered quantity of an item.
type OverRefundError struct {
	ItemID      string
	OriginalQty int
	Refunded    int
	Requested   int
}

func NewOverRefundError(itemID string, originalQty, refunded, requested int) *OverRefundError {
	return &OverRefundError{ItemID: itemID, OriginalQty: originalQty, Refunded: refunded, Requested: requested}
}

func (e *OverRefundError) Error() string {
	return fmt.Sprintf("%s: item %s ordered %d, already refunded %d, requested %d",
		ErrOverRefund, e.ItemID, e.OriginalQty, e.Refunded, e.Requested)
}

func (e *OverRefundError) Unwrap() error {
	return ErrOverRefund
}

// MissingReasonError reports a rejection without an explanation.
type MissingReasonError struct {
	ParamName string
}

func NewMissingReasonError(paramName string) *MissingReasonError {
	return &MissingReasonError{ParamName: paramName}
}

func (e *MissingReasonError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingReason, e.ParamName)
}

func (e *MissingReasonError) Unwrap() error {
	return ErrMissingReason
}

// ConflictError reports a write against a stale version of an aggregate.
type ConflictError struct {
	Aggregate string
	ID        string
	Version   int
}

func NewConflictError(aggregate, id string, version int) *ConflictError {
	return &ConflictError{Aggregate: aggregate, ID: id, Version: version}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s %s changed since version %d", ErrConflict, e.Aggregate, e.ID, e.Version)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
