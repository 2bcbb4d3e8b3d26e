package dto

import (
	"time"

	tokenDomain "github.com/denis-papin/doka.one/internal/token/domain"
)

// IssueAdminTokenResponse contains the result of minting an admin token.
// SECURITY: The token is only returned once and must be handled securely.
type IssueAdminTokenResponse struct {
	Token        string    `json:"token"`
	CustomerCode string    `json:"customer_code"`
	SessionID    string    `json:"session_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// MapClaimsToAdminTokenResponse converts minted claims to an API response.
func MapClaimsToAdminTokenResponse(token string, claims *tokenDomain.SessionClaims) IssueAdminTokenResponse {
	return IssueAdminTokenResponse{
		Token:        token,
		CustomerCode: claims.CustomerCode,
		SessionID:    claims.SessionID.String(),
		ExpiresAt:    claims.ExpiresAt,
	}
}
