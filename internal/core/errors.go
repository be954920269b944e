package core

import "errors"

var (
	// ErrNameTaken is returned when a roster operation would give two
	// entries the same display name.
	ErrNameTaken = errors.New("name already taken")

	// ErrAddrTaken is returned when an address is already connected.
	ErrAddrTaken = errors.New("address already connected")

	// ErrNotFound is returned by lookups and removals for addresses or
	// names with no roster entry.
	ErrNotFound = errors.New("no such entry")
)
