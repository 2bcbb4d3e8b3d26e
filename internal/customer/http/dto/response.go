package dto

import (
	"time"

	customerDomain "github.com/denis-papin/doka.one/internal/customer/domain"
	sessionDomain "github.com/denis-papin/doka.one/internal/session/domain"
	tokenDomain "github.com/denis-papin/doka.one/internal/token/domain"
)

// CustomerResponse represents a customer in API responses.
type CustomerResponse struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	CreatedAt    time.Time `json:"created_at"`
}

// MapCustomerToResponse converts a domain customer to an API response.
func MapCustomerToResponse(customer *customerDomain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:           customer.ID.String(),
		Code:         customer.Code,
		Name:         customer.Name,
		ContactEmail: customer.ContactEmail,
		CreatedAt:    customer.CreatedAt,
	}
}

// LoginResponse contains the session token minted at login.
// SECURITY: The token is only returned once and is never persisted server-side.
type LoginResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapLoginToResponse converts a minted token and its claims to an API response.
func MapLoginToResponse(token string, claims *tokenDomain.SessionClaims) LoginResponse {
	return LoginResponse{
		Token:     token,
		SessionID: claims.SessionID.String(),
		ExpiresAt: claims.ExpiresAt,
	}
}

// SessionResponse represents a session in API responses.
type SessionResponse struct {
	ID           string     `json:"id"`
	CustomerCode string     `json:"customer_code"`
	UserID       string     `json:"user_id"`
	OpenedAt     time.Time  `json:"opened_at"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
}

// MapSessionToResponse converts a domain session to an API response.
func MapSessionToResponse(session *sessionDomain.Session) SessionResponse {
	return SessionResponse{
		ID:           session.ID.String(),
		CustomerCode: session.CustomerCode,
		UserID:       session.UserID.String(),
		OpenedAt:     session.OpenedAt,
		ClosedAt:     session.ClosedAt,
	}
}
