package hashtable

import "errors"

var (
	// ErrEndCursor is the panic value for dereferencing or advancing the end cursor
	ErrEndCursor = errors.New("hashtable: cursor is positioned at the end")

	// ErrStaleCursor is the panic value for using a cursor after the table was rehashed or cleared, or after the
	// entry it pointed to was removed
	ErrStaleCursor = errors.New("hashtable: cursor was invalidated by a structural modification")

	// ErrKeyNotFound is the panic value for At calls with a missing key
	ErrKeyNotFound = errors.New("hashtable: key not found")

	// ErrHasherMismatch is the panic value for creating a table with a hasher for a different key type
	ErrHasherMismatch = errors.New("hashtable: hasher does not match the key type")
)
