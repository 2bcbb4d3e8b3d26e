// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/denis-papin/doka.one/internal/validation"
)

// IssueAdminTokenRequest contains the parameters for minting an admin token.
type IssueAdminTokenRequest struct {
	CustomerCode string `json:"customer_code"`
	TTLSeconds   int64  `json:"ttl_seconds,omitempty"`
}

// Validate checks if the issue admin token request is valid.
func (r *IssueAdminTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CustomerCode,
			validation.Required,
			customValidation.CustomerCode,
		),
		validation.Field(&r.TTLSeconds,
			validation.Min(int64(0)),
			validation.Max(int64(86400)),
		),
	)
}
