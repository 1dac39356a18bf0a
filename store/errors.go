package store

import "errors"

var (
	// ErrNilSnapshot indicates a nil or unkeyed snapshot.
	ErrNilSnapshot = errors.New("store: nil snapshot")

	// ErrSaleNotFound indicates no snapshot is stored for the issued token.
	ErrSaleNotFound = errors.New("store: sale not found")

	// ErrInvalidPage indicates a malformed offset/limit pair.
	ErrInvalidPage = errors.New("store: invalid page")
)
