package usecase

import (
	"context"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/go-pwdhash"

	"github.com/denis-papin/doka.one/internal/customer/domain"
	"github.com/denis-papin/doka.one/internal/database"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	sessionDomain "github.com/denis-papin/doka.one/internal/session/domain"
	tokenDomain "github.com/denis-papin/doka.one/internal/token/domain"
	tokenUsecase "github.com/denis-papin/doka.one/internal/token/usecase"
	appValidation "github.com/denis-papin/doka.one/internal/validation"
)

// loginUseCase implements LoginUseCase.
//
// Failed logins are deliberately flat: a wrong customer code, an unknown
// email, and a bad password all return ErrInvalidCredentials. The password
// hash is verified even when it will not matter, keeping the timing of the
// failure paths close to each other.
type loginUseCase struct {
	txManager      database.TxManager
	customerRepo   CustomerRepository
	userRepo       UserRepository
	sessionRepo    SessionRepository
	issuer         tokenUsecase.Issuer
	passwordHasher *pwdhash.PasswordHasher

	// dummyHash absorbs a Verify call on the unknown-customer and
	// unknown-user paths so they carry the same argon2 cost as a wrong
	// password.
	dummyHash string
}

// NewLoginUseCase creates a new LoginUseCase.
func NewLoginUseCase(
	txManager database.TxManager,
	customerRepo CustomerRepository,
	userRepo UserRepository,
	sessionRepo SessionRepository,
	issuer tokenUsecase.Issuer,
) (LoginUseCase, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	dummyHash, err := hasher.Hash([]byte(uuid.Must(uuid.NewV7()).String()))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash dummy password")
	}

	return &loginUseCase{
		txManager:      txManager,
		customerRepo:   customerRepo,
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		issuer:         issuer,
		passwordHasher: hasher,
		dummyHash:      dummyHash,
	}, nil
}

func (uc *loginUseCase) validateLoginInput(input LoginInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.CustomerCode,
			validation.Required.Error("customer code is required"),
			appValidation.CustomerCode,
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.Email,
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Login verifies credentials, opens a session, and mints its token.
func (uc *loginUseCase) Login(
	ctx context.Context,
	input LoginInput,
) (string, *tokenDomain.SessionClaims, error) {
	if err := uc.validateLoginInput(input); err != nil {
		return "", nil, err
	}

	if _, err := uc.customerRepo.GetByCode(ctx, input.CustomerCode); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", nil, uc.rejectWithDummyVerify(input.Password)
		}
		return "", nil, err
	}

	user, err := uc.userRepo.GetByEmail(ctx, input.CustomerCode, input.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", nil, uc.rejectWithDummyVerify(input.Password)
		}
		return "", nil, err
	}

	ok, err := uc.passwordHasher.Verify([]byte(input.Password), user.Password)
	if err != nil || !ok {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, claims, err := uc.issuer.IssueUserToken(ctx, input.CustomerCode, user.ID, user.Roles)
	if err != nil {
		return "", nil, err
	}

	session := &sessionDomain.Session{
		ID:           claims.SessionID,
		CustomerCode: claims.CustomerCode,
		UserID:       user.ID,
		OpenedAt:     claims.IssuedAt,
	}
	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return "", nil, err
	}

	return token, claims, nil
}

// rejectWithDummyVerify burns an argon2 verification against the dummy hash
// before rejecting, so an unknown customer or email costs the same as a wrong
// password.
func (uc *loginUseCase) rejectWithDummyVerify(password string) error {
	_, _ = uc.passwordHasher.Verify([]byte(password), uc.dummyHash)
	return domain.ErrInvalidCredentials
}

// ReadSession retrieves the session row for a validated token.
func (uc *loginUseCase) ReadSession(
	ctx context.Context,
	sessionID uuid.UUID,
) (*sessionDomain.Session, error) {
	return uc.sessionRepo.GetByID(ctx, sessionID)
}

// Logout closes the session. Idempotent.
func (uc *loginUseCase) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return uc.sessionRepo.Close(ctx, sessionID)
}
