package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuantity rejects a quantity that is not a positive integer.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrNoActiveOrder means the session has no cart to operate on.
	ErrNoActiveOrder = errors.New("no active order for session")

	// ErrOrderNotFound means a tracking lookup matched no order id.
	ErrOrderNotFound = errors.New("order not found")
)

// UnknownItemError aborts a finalization that references an item missing
// from the menu. Nothing is committed.
type UnknownItemError struct {
	Item string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("item %q is not on the menu", e.Item)
}

// PersistenceError wraps a storage failure. The session cart survives it,
// so the user can retry the same operation.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persistence failure: " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }
