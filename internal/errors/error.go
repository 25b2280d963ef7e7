// Package errors provides the storefront's sentinel errors.
package errors

import (
	"errors"
	"fmt"
)

var ErrInvalidProduct = errors.New("invalid product")
var ErrProductNotFound = errors.New("product not found")
var ErrOrderNotFound = errors.New("order not found")
var ErrInvalidCustomer = errors.New("invalid customer")

var ErrCorruptPersistedState = errors.New("corrupt persisted state")

var ErrRecordNotFound = errors.New("record not found")
var ErrReadRecord = errors.New("failed to read record")
var ErrPersistRecord = errors.New("failed to persist record")

// CorruptStateError names the durability key whose value could not be decoded.
// It matches ErrCorruptPersistedState with errors.Is.
type CorruptStateError struct {
	Key string
	Err error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("%s: key %q: %v", ErrCorruptPersistedState, e.Key, e.Err)
}

func (e *CorruptStateError) Is(target error) bool {
	return target == ErrCorruptPersistedState
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}
