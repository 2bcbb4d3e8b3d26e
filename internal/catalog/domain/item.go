// Package domain defines the document catalog entities.
//
// Items and tags are tenant-scoped: every row carries the owning customer
// code and every query filters on it. There is no cross-tenant listing.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/denis-papin/doka.one/internal/errors"
)

// Item is a catalog entry: a document, optionally backed by a stored file.
type Item struct {
	ID           uuid.UUID
	CustomerCode string
	Name         string
	FileID       *uuid.UUID // set when the item has file content attached
	CreatedAt    time.Time
	Tags         []TagValue
}

// Tag is a typed label definition owned by a customer.
type Tag struct {
	ID           uuid.UUID
	CustomerCode string
	Name         string
	ValueType    TagValueType
	CreatedAt    time.Time
}

// TagValueType enumerates the value types a tag can carry.
type TagValueType string

// Supported tag value types.
const (
	TagTypeString TagValueType = "string"
	TagTypeInt    TagValueType = "int"
	TagTypeBool   TagValueType = "bool"
	TagTypeDate   TagValueType = "date"
)

// Valid reports whether the value type is supported.
func (t TagValueType) Valid() bool {
	switch t {
	case TagTypeString, TagTypeInt, TagTypeBool, TagTypeDate:
		return true
	}
	return false
}

// TagValue attaches a tag to an item with a concrete value. The value is
// stored as text and interpreted according to the tag's value type.
type TagValue struct {
	TagID uuid.UUID
	Name  string
	Value string
}

// Domain-specific errors for catalog operations.
var (
	// ErrItemNotFound indicates the requested item does not exist in the
	// caller's tenant scope.
	ErrItemNotFound = errors.Wrap(errors.ErrNotFound, "item not found")

	// ErrTagNotFound indicates the referenced tag does not exist in the
	// caller's tenant scope.
	ErrTagNotFound = errors.Wrap(errors.ErrNotFound, "tag not found")

	// ErrTagAlreadyExists indicates a tag with the same name already exists
	// under the customer.
	ErrTagAlreadyExists = errors.Wrap(errors.ErrConflict, "tag already exists")

	// ErrMissingTenantScope indicates an operation was attempted without a
	// customer code. Tenant-scoped queries never run unscoped.
	ErrMissingTenantScope = errors.Wrap(errors.ErrInvalidInput, "missing tenant scope")
)
