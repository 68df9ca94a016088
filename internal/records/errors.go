package records

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/authstate/keyspace"
)

var (
	// ErrStoreWrite marks a rejected write. It is the only store error callers observe.
	ErrStoreWrite = errors.New("store write failed")
	// ErrStoreRead marks a failed backend read; logged, never returned.
	ErrStoreRead = errors.New("store read failed")
	// ErrStoreDelete marks a failed backend delete; logged, never returned.
	ErrStoreDelete = errors.New("store delete failed")
	// ErrEnumeration marks a failed session key enumeration; logged, never returned.
	ErrEnumeration = errors.New("session enumeration failed")
	// ErrReconstruct marks a value the category hook could not convert; logged, never returned.
	ErrReconstruct = errors.New("record reconstruction failed")
)

// WriteError reports a failed write of one record.
type WriteError struct {
	Category keyspace.Category
	ItemID   string
	Err      error
}

func (e *WriteError) Error() string {
	if e.Category == keyspace.CategoryCreds {
		return fmt.Sprintf("%v: creds: %v", ErrStoreWrite, e.Err)
	}
	return fmt.Sprintf("%v: %s/%s: %v", ErrStoreWrite, e.Category, e.ItemID, e.Err)
}

// Unwrap exposes both ErrStoreWrite and the underlying cause to errors.Is/As.
func (e *WriteError) Unwrap() []error {
	return []error{ErrStoreWrite, e.Err}
}
