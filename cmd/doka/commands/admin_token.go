package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	tokenUsecase "github.com/denis-papin/doka.one/internal/token/usecase"
)

// RunIssueAdminToken mints an admin-generated token for a customer and prints
// it. The mint is recorded in the audit trail with the given actor.
func RunIssueAdminToken(
	ctx context.Context,
	issuer tokenUsecase.Issuer,
	out io.Writer,
	customerCode string,
	actor string,
	ttlSeconds int,
	format string,
) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	if customerCode == "" {
		return fmt.Errorf("customer code is required")
	}

	if ttlSeconds < 0 {
		return fmt.Errorf("ttl must not be negative")
	}

	if actor == "" {
		actor = "cli"
	}

	token, claims, err := issuer.IssueAdminToken(ctx, customerCode, actor, time.Duration(ttlSeconds)*time.Second)
	if err != nil {
		return fmt.Errorf("failed to issue admin token: %w", err)
	}

	if format == "json" {
		payload, err := json.MarshalIndent(map[string]interface{}{
			"token":         token,
			"customer_code": claims.CustomerCode,
			"expires_at":    claims.ExpiresAt,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Fprintln(out, string(payload))
		return nil
	}

	fmt.Fprintf(out, "Admin token issued for customer %s\n", claims.CustomerCode)
	fmt.Fprintf(out, "Expires at: %s\n", claims.ExpiresAt.Format(time.RFC3339))
	fmt.Fprintln(out)
	fmt.Fprintln(out, token)
	return nil
}
