// Package usecase implements the customer lifecycle and login business logic.
package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/go-pwdhash"

	auditDomain "github.com/denis-papin/doka.one/internal/audit/domain"
	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	"github.com/denis-papin/doka.one/internal/customer/domain"
	"github.com/denis-papin/doka.one/internal/database"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	keysDomain "github.com/denis-papin/doka.one/internal/keys/domain"
	keysUsecase "github.com/denis-papin/doka.one/internal/keys/usecase"
	appValidation "github.com/denis-papin/doka.one/internal/validation"
)

// customerUseCase implements CustomerUseCase.
//
// Provisioning order matters: the encryption key is created first, then the
// customer row and the admin user commit in one transaction. If the
// transaction fails the key is revoked, so a failed provisioning leaves no
// usable key behind.
type customerUseCase struct {
	txManager      database.TxManager
	customerRepo   CustomerRepository
	userRepo       UserRepository
	keyStore       keysUsecase.KeyStore
	auditRepo      AuditRecorder
	purgers        []Purger
	passwordHasher *pwdhash.PasswordHasher
	keyAlgorithm   cryptoDomain.Algorithm
}

// NewCustomerUseCase creates a new CustomerUseCase.
//
// purgers are the tenant-scoped tables cleaned during Delete (users,
// sessions, items, file references); they run concurrently.
func NewCustomerUseCase(
	txManager database.TxManager,
	customerRepo CustomerRepository,
	userRepo UserRepository,
	keyStore keysUsecase.KeyStore,
	auditRepo AuditRecorder,
	purgers []Purger,
	keyAlgorithm cryptoDomain.Algorithm,
) (CustomerUseCase, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &customerUseCase{
		txManager:      txManager,
		customerRepo:   customerRepo,
		userRepo:       userRepo,
		keyStore:       keyStore,
		auditRepo:      auditRepo,
		purgers:        purgers,
		passwordHasher: hasher,
		keyAlgorithm:   keyAlgorithm,
	}, nil
}

func (uc *customerUseCase) validateCreateInput(input CreateCustomerInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Code,
			validation.Required.Error("code is required"),
			appValidation.CustomerCode,
		),
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.ContactEmail,
			validation.Required.Error("contact email is required"),
			appValidation.Email,
		),
		validation.Field(&input.AdminName,
			validation.Required.Error("admin name is required"),
			appValidation.NotBlank,
		),
		validation.Field(&input.AdminEmail,
			validation.Required.Error("admin email is required"),
			appValidation.Email,
		),
		validation.Field(&input.AdminPassword,
			validation.Required.Error("admin password is required"),
			validation.Length(8, 128).Error("admin password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:     8,
				RequireUpper:  true,
				RequireLower:  true,
				RequireNumber: true,
			},
		),
	)
	return appValidation.WrapValidationError(err)
}

// Create provisions a new customer.
func (uc *customerUseCase) Create(
	ctx context.Context,
	input CreateCustomerInput,
) (*domain.Customer, error) {
	if err := uc.validateCreateInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.passwordHasher.Hash([]byte(input.AdminPassword))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash admin password")
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:           uuid.Must(uuid.NewV7()),
		Code:         input.Code,
		Name:         strings.TrimSpace(input.Name),
		ContactEmail: strings.TrimSpace(strings.ToLower(input.ContactEmail)),
		CreatedAt:    now,
	}
	adminUser := &domain.User{
		ID:           uuid.Must(uuid.NewV7()),
		CustomerCode: input.Code,
		Name:         strings.TrimSpace(input.AdminName),
		Email:        strings.TrimSpace(strings.ToLower(input.AdminEmail)),
		Password:     hashedPassword,
		Roles:        []string{domain.RoleAdmin},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The key comes first. If the rest of provisioning fails, the key is
	// revoked before the error surfaces.
	customerKey, err := uc.keyStore.Create(ctx, input.Code, uc.keyAlgorithm)
	if err != nil {
		if apperrors.Is(err, keysDomain.ErrDuplicateCustomer) {
			return nil, domain.ErrCustomerAlreadyExists
		}
		return nil, err
	}
	customerKey.Close()

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.customerRepo.Create(ctx, customer); err != nil {
			return err
		}
		if err := uc.userRepo.Create(ctx, adminUser); err != nil {
			return err
		}
		return uc.recordEvent(ctx, auditDomain.EventCustomerCreated, adminUser.Email, customer.Code, map[string]any{
			"customer_id": customer.ID,
			"admin_user":  adminUser.ID,
		})
	})
	if err != nil {
		uc.rollbackKey(ctx, input.Code)
		if apperrors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		return nil, apperrors.Wrap(domain.ErrProvisioningFailed, err.Error())
	}

	return customer, nil
}

// Get retrieves a customer by code.
func (uc *customerUseCase) Get(ctx context.Context, code string) (*domain.Customer, error) {
	return uc.customerRepo.GetByCode(ctx, code)
}

// Delete removes a customer and everything it owns.
//
// The key revocation happens before any row is touched: from that point on no
// session token for the customer validates, so the purge runs with the tenant
// already locked out.
func (uc *customerUseCase) Delete(ctx context.Context, code string) error {
	if _, err := uc.customerRepo.GetByCode(ctx, code); err != nil {
		return err
	}

	if err := uc.keyStore.Revoke(ctx, code); err != nil {
		if !apperrors.Is(err, keysDomain.ErrUnknownCustomer) {
			return err
		}
		// No key row exists; proceed with the purge anyway.
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, purger := range uc.purgers {
		group.Go(func() error {
			return purger.DeleteByCustomer(groupCtx, code)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	if err := uc.customerRepo.Delete(ctx, code); err != nil {
		return err
	}

	return uc.recordEvent(ctx, auditDomain.EventCustomerDeleted, "", code, nil)
}

func (uc *customerUseCase) rollbackKey(ctx context.Context, code string) {
	if err := uc.keyStore.Revoke(ctx, code); err != nil {
		slog.Error("failed to revoke key after provisioning failure",
			"customer_code", code,
			"error", err,
		)
	}
}

func (uc *customerUseCase) recordEvent(
	ctx context.Context,
	kind string,
	actor string,
	customerCode string,
	details map[string]any,
) error {
	payload := "{}"
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit details")
		}
		payload = string(raw)
	}

	return uc.auditRepo.Create(ctx, &auditDomain.AuditEvent{
		ID:           uuid.Must(uuid.NewV7()),
		Kind:         kind,
		Actor:        actor,
		CustomerCode: customerCode,
		Details:      payload,
		CreatedAt:    time.Now().UTC(),
	})
}
