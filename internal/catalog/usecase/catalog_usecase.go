// Package usecase implements catalog business logic with hard tenant scoping.
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	catalogDomain "github.com/denis-papin/doka.one/internal/catalog/domain"
	"github.com/denis-papin/doka.one/internal/database"
	appValidation "github.com/denis-papin/doka.one/internal/validation"
)

// CatalogRepository defines catalog persistence operations.
type CatalogRepository interface {
	CreateItem(ctx context.Context, item *catalogDomain.Item) error
	GetItem(ctx context.Context, customerCode string, id uuid.UUID) (*catalogDomain.Item, error)
	ListItems(ctx context.Context, customerCode string, limit, offset int) ([]*catalogDomain.Item, error)
	DeleteItem(ctx context.Context, customerCode string, id uuid.UUID) error
	CreateTag(ctx context.Context, tag *catalogDomain.Tag) error
	ListTags(ctx context.Context, customerCode string) ([]*catalogDomain.Tag, error)
	DeleteByCustomer(ctx context.Context, customerCode string) error
}

// CreateItemInput contains the input data for item creation.
type CreateItemInput struct {
	Name   string                   `json:"name"`
	FileID *uuid.UUID               `json:"file_id,omitempty"`
	Tags   []catalogDomain.TagValue `json:"tags,omitempty"`
}

// CreateTagInput contains the input data for tag creation.
type CreateTagInput struct {
	Name      string                     `json:"name"`
	ValueType catalogDomain.TagValueType `json:"value_type"`
}

// CatalogUseCase defines the catalog operations. Every method takes the
// caller's customer code and refuses to run without one.
type CatalogUseCase interface {
	CreateItem(ctx context.Context, customerCode string, input CreateItemInput) (*catalogDomain.Item, error)
	GetItem(ctx context.Context, customerCode string, id uuid.UUID) (*catalogDomain.Item, error)
	ListItems(ctx context.Context, customerCode string, limit, offset int) ([]*catalogDomain.Item, error)
	DeleteItem(ctx context.Context, customerCode string, id uuid.UUID) error
	CreateTag(ctx context.Context, customerCode string, input CreateTagInput) (*catalogDomain.Tag, error)
	ListTags(ctx context.Context, customerCode string) ([]*catalogDomain.Tag, error)
}

const defaultListLimit = 50

type catalogUseCase struct {
	txManager database.TxManager
	repo      CatalogRepository
}

// NewCatalogUseCase creates a new CatalogUseCase.
func NewCatalogUseCase(txManager database.TxManager, repo CatalogRepository) CatalogUseCase {
	return &catalogUseCase{txManager: txManager, repo: repo}
}

func requireScope(customerCode string) error {
	if strings.TrimSpace(customerCode) == "" {
		return catalogDomain.ErrMissingTenantScope
	}
	return nil
}

// CreateItem creates an item with its tag values in one transaction.
func (uc *catalogUseCase) CreateItem(
	ctx context.Context,
	customerCode string,
	input CreateItemInput,
) (*catalogDomain.Item, error) {
	if err := requireScope(customerCode); err != nil {
		return nil, err
	}

	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
	)
	if err != nil {
		return nil, appValidation.WrapValidationError(err)
	}

	item := &catalogDomain.Item{
		ID:           uuid.Must(uuid.NewV7()),
		CustomerCode: customerCode,
		Name:         strings.TrimSpace(input.Name),
		FileID:       input.FileID,
		CreatedAt:    time.Now().UTC(),
		Tags:         input.Tags,
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		return uc.repo.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// GetItem retrieves an item within the caller's scope.
func (uc *catalogUseCase) GetItem(
	ctx context.Context,
	customerCode string,
	id uuid.UUID,
) (*catalogDomain.Item, error) {
	if err := requireScope(customerCode); err != nil {
		return nil, err
	}
	return uc.repo.GetItem(ctx, customerCode, id)
}

// ListItems returns a page of the caller's items.
func (uc *catalogUseCase) ListItems(
	ctx context.Context,
	customerCode string,
	limit, offset int,
) ([]*catalogDomain.Item, error) {
	if err := requireScope(customerCode); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repo.ListItems(ctx, customerCode, limit, offset)
}

// DeleteItem removes an item within the caller's scope.
func (uc *catalogUseCase) DeleteItem(
	ctx context.Context,
	customerCode string,
	id uuid.UUID,
) error {
	if err := requireScope(customerCode); err != nil {
		return err
	}
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		return uc.repo.DeleteItem(ctx, customerCode, id)
	})
}

// CreateTag creates a tag definition.
func (uc *catalogUseCase) CreateTag(
	ctx context.Context,
	customerCode string,
	input CreateTagInput,
) (*catalogDomain.Tag, error) {
	if err := requireScope(customerCode); err != nil {
		return nil, err
	}

	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
	)
	if err != nil {
		return nil, appValidation.WrapValidationError(err)
	}
	if !input.ValueType.Valid() {
		return nil, appValidation.WrapValidationError(
			validation.NewError("validation_tag_type", "unsupported tag value type"),
		)
	}

	tag := &catalogDomain.Tag{
		ID:           uuid.Must(uuid.NewV7()),
		CustomerCode: customerCode,
		Name:         strings.TrimSpace(input.Name),
		ValueType:    input.ValueType,
		CreatedAt:    time.Now().UTC(),
	}

	if err := uc.repo.CreateTag(ctx, tag); err != nil {
		return nil, err
	}

	return tag, nil
}

// ListTags returns the caller's tag definitions.
func (uc *catalogUseCase) ListTags(
	ctx context.Context,
	customerCode string,
) ([]*catalogDomain.Tag, error) {
	if err := requireScope(customerCode); err != nil {
		return nil, err
	}
	return uc.repo.ListTags(ctx, customerCode)
}
