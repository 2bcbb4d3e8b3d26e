package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSService opens gocloud.dev secret keepers for unwrapping the master key file.
type KMSService interface {
	// OpenKeeper opens a secrets.Keeper for the configured KMS provider.
	// Returns an error if the KMS provider URI is invalid or connection fails.
	OpenKeeper(ctx context.Context, keyURI string) (*secrets.Keeper, error)
}

// kmsService implements KMSService using gocloud.dev/secrets.
type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens a secrets.Keeper for the configured KMS provider using the keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (*secrets.Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// LoadWrappedMasterKey reads a KMS-wrapped master key file and unwraps it
// through the keeper at keyURI.
//
// The file contains the base64 encoding of the KMS ciphertext of the 32 key
// bytes. Used when KMS_PROVIDER/KMS_KEY_URI are configured; otherwise the
// plain loader in the crypto domain applies. All failures surface as
// ErrKeyFile; a process that cannot unwrap its master key must not start.
func LoadWrappedMasterKey(ctx context.Context, kms KMSService, path, keyURI string) (*cryptoDomain.MasterKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %v", cryptoDomain.ErrKeyFile, path, err)
	}

	wrapped, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64", cryptoDomain.ErrKeyFile, path)
	}

	keeper, err := kms.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyFile, err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	material, err := keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: KMS unwrap failed", cryptoDomain.ErrKeyFile)
	}

	masterKey, err := cryptoDomain.NewMasterKey(material)
	cryptoDomain.Zero(material)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", cryptoDomain.ErrKeyFile, path, err)
	}

	return masterKey, nil
}
