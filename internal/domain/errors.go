package domain

import "errors"

var (
	// ErrMalformedInput marks an order or pool document missing required
	// fields. Fatal to the single order, never to the batch.
	ErrMalformedInput = errors.New("malformed input")

	// ErrZeroToken marks an order whose sell or buy token is empty or
	// self-referential.
	ErrZeroToken = errors.New("zero or duplicate token")

	// ErrMalformedPool marks a pool with a missing reserve key.
	ErrMalformedPool = errors.New("malformed pool")

	// ErrZeroReserve marks a pool with an empty or negative reserve.
	// Fatal to the route being evaluated; sibling candidates keep going.
	ErrZeroReserve = errors.New("zero or negative reserve")
)
