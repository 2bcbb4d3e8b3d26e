package domain

import (
	"github.com/denis-papin/doka.one/internal/errors"
)

// Customer key store errors.
var (
	// ErrUnknownCustomer indicates no key has ever existed for the customer code.
	ErrUnknownCustomer = errors.Wrap(errors.ErrNotFound, "unknown customer")

	// ErrDuplicateCustomer indicates the customer already has a non-revoked key.
	ErrDuplicateCustomer = errors.Wrap(errors.ErrConflict, "customer key already exists")

	// ErrRevokedCustomer indicates the customer's key has been tombstoned.
	// A revoked key must never again encrypt or decrypt anything.
	ErrRevokedCustomer = errors.Wrap(errors.ErrUnauthorized, "customer key revoked")
)
