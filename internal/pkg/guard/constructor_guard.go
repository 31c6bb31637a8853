// Package guard provides ConstructorGuard, a marker that lets value objects, entities,
// commands and queries tell a constructor-built instance apart from a zero value.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded into types that must only be created through their
// constructor. The zero value is "not constructed".
//
// Example:
//
//	var ErrRefundRequestIsNotConstructed = errors.New("RefundRequest must be created via NewRefundRequest")
//
//	type RefundRequest struct {
//	    itemID      kernel.UUID
//	    refundedQty int
//	    guard       guard.ConstructorGuard
//	}
//
//	func (r *RefundRequest) Validate() error {
//	    return r.guard.Validate(ErrRefundRequestIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed. Call it from constructors only.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard was not created by NewConstructorGuard.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
