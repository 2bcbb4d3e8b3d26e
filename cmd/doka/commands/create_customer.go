package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	customerUsecase "github.com/denis-papin/doka.one/internal/customer/usecase"
)

// RunCreateCustomer provisions a new customer with its encryption key and
// first admin user, then prints the result in the requested format.
func RunCreateCustomer(
	ctx context.Context,
	useCase customerUsecase.CustomerUseCase,
	out io.Writer,
	input customerUsecase.CreateCustomerInput,
	format string,
) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	customer, err := useCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	if format == "json" {
		payload, err := json.MarshalIndent(map[string]interface{}{
			"code":          customer.Code,
			"name":          customer.Name,
			"contact_email": customer.ContactEmail,
			"created_at":    customer.CreatedAt,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Fprintln(out, string(payload))
		return nil
	}

	fmt.Fprintf(out, "Customer created successfully\n")
	fmt.Fprintf(out, "Code:          %s\n", customer.Code)
	fmt.Fprintf(out, "Name:          %s\n", customer.Name)
	fmt.Fprintf(out, "Contact email: %s\n", customer.ContactEmail)
	fmt.Fprintf(out, "Admin user:    %s <%s>\n", input.AdminName, input.AdminEmail)
	return nil
}

// RunDeleteCustomer removes a customer and everything scoped to it: the key is
// revoked first, then every tenant-scoped table is purged.
func RunDeleteCustomer(
	ctx context.Context,
	useCase customerUsecase.CustomerUseCase,
	out io.Writer,
	code string,
) error {
	if code == "" {
		return fmt.Errorf("customer code is required")
	}

	if err := useCase.Delete(ctx, code); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	fmt.Fprintf(out, "Customer %s deleted\n", code)
	return nil
}
