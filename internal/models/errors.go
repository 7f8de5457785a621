package models

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindInsufficientStock ErrorKind = "insufficient_stock"
	KindInvalidQuantity   ErrorKind = "invalid_quantity"
	KindInvalidInput      ErrorKind = "invalid_input"
	KindNotFound          ErrorKind = "not_found"
	KindForbidden         ErrorKind = "forbidden"
	KindAlreadyRedeemed   ErrorKind = "already_redeemed"
	KindConflict          ErrorKind = "conflict"
	KindBusy              ErrorKind = "busy"
	KindInternal          ErrorKind = "internal"
)

// Error is the typed error returned by the ledger, issuer, gate and stats
// services. Two errors match under errors.Is when their kinds are equal.
type Error struct {
	Kind    ErrorKind
	Message string
	// Details carries the ticket payload of an AlreadyRedeemed error.
	Details *TicketDetails
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock, Message: "insufficient stock"}
	ErrInvalidQuantity   = &Error{Kind: KindInvalidQuantity, Message: "invalid quantity"}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrAlreadyRedeemed   = &Error{Kind: KindAlreadyRedeemed, Message: "ticket already redeemed"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "conflict"}
	ErrBusy              = &Error{Kind: KindBusy, Message: "resource busy, retry later"}
	ErrInternal          = &Error{Kind: KindInternal, Message: "internal error"}
)

func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InsufficientStock(ticketTypeName string, requested, available int) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("insufficient stock for ticket type %q: requested %d, available %d", ticketTypeName, requested, available),
	}
}

func InvalidQuantity(quantity, max int) *Error {
	return &Error{
		Kind:    KindInvalidQuantity,
		Message: fmt.Sprintf("quantity %d outside allowed range [1, %d]", quantity, max),
	}
}

func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

func NotFound(what, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", what, id)}
}

func AlreadyRedeemed(details *TicketDetails) *Error {
	return &Error{Kind: KindAlreadyRedeemed, Message: "ticket already redeemed", Details: details}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsRetryable reports whether the caller may retry without re-validating state.
func IsRetryable(err error) bool {
	return err != nil && KindOf(err) == KindBusy
}
