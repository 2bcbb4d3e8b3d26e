// Package domain defines the customer and user entities.
//
// A customer is a tenant: a company with its own users, its own encryption
// key, and its own documents and files. The customer code is the short stable
// identifier that routes every tenant-scoped operation, including session
// token key resolution.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/denis-papin/doka.one/internal/errors"
)

// Customer represents a tenant account.
type Customer struct {
	ID           uuid.UUID
	Code         string
	Name         string
	ContactEmail string
	CreatedAt    time.Time
	DeletedAt    *time.Time
}

// Deleted reports whether the customer has been removed.
func (c *Customer) Deleted() bool {
	return c.DeletedAt != nil
}

// User represents a person able to log in under a customer account.
type User struct {
	ID           uuid.UUID
	CustomerCode string
	Name         string
	Email        string
	Password     string // argon2id hash, never the plaintext
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleAdmin is granted to the user created during customer provisioning.
const RoleAdmin = "admin"

// Domain-specific errors for customer operations.
var (
	// ErrCustomerNotFound indicates the requested customer does not exist.
	ErrCustomerNotFound = errors.Wrap(errors.ErrNotFound, "customer not found")

	// ErrCustomerAlreadyExists indicates a customer with the same code already exists.
	ErrCustomerAlreadyExists = errors.Wrap(errors.ErrConflict, "customer already exists")

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists
	// under the customer.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrInvalidCredentials indicates a failed login. Wrong customer, wrong
	// email, and wrong password are indistinguishable to the caller.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrProvisioningFailed indicates customer creation could not complete and
	// any partially provisioned state was rolled back.
	ErrProvisioningFailed = errors.New("customer provisioning failed")
)
