package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	catalogDomain "github.com/denis-papin/doka.one/internal/catalog/domain"
)

// TagValueResponse is one tag value on an item in API responses.
type TagValueResponse struct {
	TagID string `json:"tag_id"`
	Name  string `json:"name,omitempty"`
	Value string `json:"value"`
}

// ItemResponse represents a catalog item in API responses.
type ItemResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	FileID    string             `json:"file_id,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	Tags      []TagValueResponse `json:"tags,omitempty"`
}

// MapItemToResponse converts a domain item to an API response.
func MapItemToResponse(item *catalogDomain.Item) ItemResponse {
	response := ItemResponse{
		ID:        item.ID.String(),
		Name:      item.Name,
		CreatedAt: item.CreatedAt,
	}
	if item.FileID != nil {
		response.FileID = item.FileID.String()
	}
	for _, tv := range item.Tags {
		response.Tags = append(response.Tags, TagValueResponse{
			TagID: tv.TagID.String(),
			Name:  tv.Name,
			Value: tv.Value,
		})
	}
	return response
}

// ListItemsResponse represents a paginated list of items in API responses.
type ListItemsResponse struct {
	Data []ItemResponse `json:"data"`
}

// TagResponse represents a tag definition in API responses.
type TagResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ValueType string    `json:"value_type"`
	CreatedAt time.Time `json:"created_at"`
}

// MapTagToResponse converts a domain tag to an API response.
func MapTagToResponse(tag *catalogDomain.Tag) TagResponse {
	return TagResponse{
		ID:        tag.ID.String(),
		Name:      tag.Name,
		ValueType: string(tag.ValueType),
		CreatedAt: tag.CreatedAt,
	}
}

// ListTagsResponse represents a list of tag definitions in API responses.
type ListTagsResponse struct {
	Data []TagResponse `json:"data"`
}

// validateUUIDString validates that a string parses as a UUID.
func validateUUIDString(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_uuid", "must be a string")
	}
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_uuid", "must be a valid UUID")
	}
	return nil
}
