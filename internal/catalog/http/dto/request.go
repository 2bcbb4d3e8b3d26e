// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	catalogDomain "github.com/denis-papin/doka.one/internal/catalog/domain"
	customValidation "github.com/denis-papin/doka.one/internal/validation"
)

// TagValueRequest is one tag value attached to an item at creation.
type TagValueRequest struct {
	TagID string `json:"tag_id"`
	Value string `json:"value"`
}

// CreateItemRequest contains the parameters for creating a catalog item.
type CreateItemRequest struct {
	Name   string            `json:"name"`
	FileID string            `json:"file_id,omitempty"`
	Tags   []TagValueRequest `json:"tags,omitempty"`
}

// Validate checks if the create item request is valid.
func (r *CreateItemRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.FileID,
			validation.When(r.FileID != "", validation.By(validateUUIDString)),
		),
		validation.Field(&r.Tags,
			validation.Each(validation.By(validateTagValue)),
		),
	)
}

// CreateTagRequest contains the parameters for creating a tag definition.
type CreateTagRequest struct {
	Name      string `json:"name"`
	ValueType string `json:"value_type"`
}

// Validate checks if the create tag request is valid.
func (r *CreateTagRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.ValueType,
			validation.Required,
			validation.By(validateTagValueType),
		),
	)
}

func validateTagValue(value interface{}) error {
	tv, ok := value.(TagValueRequest)
	if !ok {
		return validation.NewError("validation_tag_value", "must be a tag value")
	}
	if err := validateUUIDString(tv.TagID); err != nil {
		return validation.NewError("validation_tag_value", "tag_id must be a valid UUID")
	}
	return nil
}

func validateTagValueType(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_tag_type", "must be a string")
	}
	if !catalogDomain.TagValueType(s).Valid() {
		return validation.NewError("validation_tag_type", "unsupported tag value type")
	}
	return nil
}
