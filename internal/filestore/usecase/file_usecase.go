// Package usecase implements the encrypted file store business logic.
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	catalogDomain "github.com/denis-papin/doka.one/internal/catalog/domain"
	"github.com/denis-papin/doka.one/internal/database"
	filestoreDomain "github.com/denis-papin/doka.one/internal/filestore/domain"
	filestoreService "github.com/denis-papin/doka.one/internal/filestore/service"
	keysUsecase "github.com/denis-papin/doka.one/internal/keys/usecase"
	appValidation "github.com/denis-papin/doka.one/internal/validation"
)

// FileRepository defines encrypted file persistence operations.
type FileRepository interface {
	CreateFile(ctx context.Context, file *filestoreDomain.FileRef) error
	GetFile(ctx context.Context, customerCode string, id uuid.UUID) (*filestoreDomain.FileRef, error)
	ListFiles(ctx context.Context, customerCode string) ([]filestoreDomain.FileRef, error)
	CreatePart(ctx context.Context, part *filestoreDomain.FilePart) error
	ListParts(ctx context.Context, fileID uuid.UUID) ([]filestoreDomain.FilePart, error)
	DeleteFile(ctx context.Context, customerCode string, id uuid.UUID) error
	DeleteByCustomer(ctx context.Context, customerCode string) error
}

// StoreFileInput contains the input data for storing a file.
type StoreFileInput struct {
	Name     string
	MimeType string
	Data     []byte
}

// FetchedFile is a decrypted file with its metadata.
type FetchedFile struct {
	Ref  *filestoreDomain.FileRef
	Data []byte
}

// FileUseCase defines the file store operations. Content is encrypted under
// the owning customer's key before anything reaches the repository.
type FileUseCase interface {
	Store(ctx context.Context, customerCode string, input StoreFileInput) (*filestoreDomain.FileRef, error)
	Fetch(ctx context.Context, customerCode string, id uuid.UUID) (*FetchedFile, error)
	Info(ctx context.Context, customerCode string, id uuid.UUID) (*filestoreDomain.FileRef, error)
	List(ctx context.Context, customerCode string) ([]filestoreDomain.FileRef, error)
	Delete(ctx context.Context, customerCode string, id uuid.UUID) error
}

type fileUseCase struct {
	txManager   database.TxManager
	repo        FileRepository
	keyStore    keysUsecase.KeyStore
	blockCipher filestoreService.BlockCipher
	blockSize   int
}

// NewFileUseCase creates a new FileUseCase. blockSize is the plaintext block
// size in bytes; zero or negative selects the default.
func NewFileUseCase(
	txManager database.TxManager,
	repo FileRepository,
	keyStore keysUsecase.KeyStore,
	blockCipher filestoreService.BlockCipher,
	blockSize int,
) FileUseCase {
	if blockSize <= 0 {
		blockSize = filestoreDomain.DefaultBlockSize
	}
	return &fileUseCase{
		txManager:   txManager,
		repo:        repo,
		keyStore:    keyStore,
		blockCipher: blockCipher,
		blockSize:   blockSize,
	}
}

func requireScope(customerCode string) error {
	if strings.TrimSpace(customerCode) == "" {
		return catalogDomain.ErrMissingTenantScope
	}
	return nil
}

// Store encrypts the content under the customer's key and persists the file
// reference together with its blocks in one transaction.
func (uc *fileUseCase) Store(
	ctx context.Context,
	customerCode string,
	input StoreFileInput,
) (*filestoreDomain.FileRef, error) {
	if err := requireScope(customerCode); err != nil {
		return nil, err
	}

	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.MimeType,
			validation.Length(0, 255).Error("mime_type must be at most 255 characters"),
		),
	)
	if err != nil {
		return nil, appValidation.WrapValidationError(err)
	}

	customerKey, err := uc.keyStore.Get(ctx, customerCode)
	if err != nil {
		return nil, err
	}
	defer customerKey.Close()

	fileID := uuid.Must(uuid.NewV7())
	parts, err := uc.blockCipher.EncryptBlocks(
		customerKey.Key,
		customerKey.Algorithm,
		fileID,
		input.Data,
		uc.blockSize,
	)
	if err != nil {
		return nil, err
	}

	file := &filestoreDomain.FileRef{
		ID:           fileID,
		CustomerCode: customerCode,
		Name:         strings.TrimSpace(input.Name),
		MimeType:     input.MimeType,
		Size:         int64(len(input.Data)),
		PartCount:    len(parts),
		CreatedAt:    time.Now().UTC(),
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.repo.CreateFile(ctx, file); err != nil {
			return err
		}
		for i := range parts {
			if err := uc.repo.CreatePart(ctx, &parts[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return file, nil
}

// Fetch loads a file within the caller's scope and decrypts its content.
func (uc *fileUseCase) Fetch(
	ctx context.Context,
	customerCode string,
	id uuid.UUID,
) (*FetchedFile, error) {
	if err := requireScope(customerCode); err != nil {
		return nil, err
	}

	file, err := uc.repo.GetFile(ctx, customerCode, id)
	if err != nil {
		return nil, err
	}

	customerKey, err := uc.keyStore.Get(ctx, customerCode)
	if err != nil {
		return nil, err
	}
	defer customerKey.Close()

	parts, err := uc.repo.ListParts(ctx, file.ID)
	if err != nil {
		return nil, err
	}
	if len(parts) != file.PartCount {
		return nil, filestoreDomain.ErrCorruptFile
	}

	data, err := uc.blockCipher.DecryptBlocks(customerKey.Key, customerKey.Algorithm, file.ID, parts)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != file.Size {
		return nil, filestoreDomain.ErrCorruptFile
	}

	return &FetchedFile{Ref: file, Data: data}, nil
}

// Info returns a file's metadata within the caller's scope. No content is
// decrypted.
func (uc *fileUseCase) Info(
	ctx context.Context,
	customerCode string,
	id uuid.UUID,
) (*filestoreDomain.FileRef, error) {
	if err := requireScope(customerCode); err != nil {
		return nil, err
	}
	return uc.repo.GetFile(ctx, customerCode, id)
}

// List returns the file references within the caller's scope.
func (uc *fileUseCase) List(ctx context.Context, customerCode string) ([]filestoreDomain.FileRef, error) {
	if err := requireScope(customerCode); err != nil {
		return nil, err
	}
	return uc.repo.ListFiles(ctx, customerCode)
}

// Delete removes a file and its blocks within the caller's scope.
func (uc *fileUseCase) Delete(ctx context.Context, customerCode string, id uuid.UUID) error {
	if err := requireScope(customerCode); err != nil {
		return err
	}
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		return uc.repo.DeleteFile(ctx, customerCode, id)
	})
}
