// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/denis-papin/doka.one/internal/validation"
)

// CreateCustomerRequest contains the parameters for provisioning a customer.
type CreateCustomerRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	ContactEmail  string `json:"contact_email"`
	AdminName     string `json:"admin_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

// Validate checks if the create customer request is valid.
//
// The use case re-validates everything; this pass exists so obviously broken
// requests are rejected before any dependency is touched.
func (r *CreateCustomerRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Code,
			validation.Required,
			customValidation.CustomerCode,
		),
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.ContactEmail,
			validation.Required,
			customValidation.Email,
		),
		validation.Field(&r.AdminName,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.AdminEmail,
			validation.Required,
			customValidation.Email,
		),
		validation.Field(&r.AdminPassword,
			validation.Required,
		),
	)
}

// LoginRequest contains the credentials presented at login.
type LoginRequest struct {
	CustomerCode string `json:"customer_code"`
	Email        string `json:"email"`
	Password     string `json:"password"`
}

// Validate checks if the login request is structurally valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CustomerCode, validation.Required),
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}
