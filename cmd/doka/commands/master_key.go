package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	cryptoService "github.com/denis-papin/doka.one/internal/crypto/service"
)

// RunCreateMasterKey generates a cryptographically secure 32-byte master key
// and writes it to the key file the server loads at startup.
//
// Without KMS flags the file holds the base64 encoding of the raw key bytes.
// With --kms-provider and --kms-key-uri the key is encrypted through the KMS
// keeper first and the file holds the base64 encoding of the ciphertext; the
// server must then run with the matching KMS_PROVIDER and KMS_KEY_URI.
//
// An existing key file is never overwritten unless force is set: replacing the
// master key orphans every customer key wrapped under the old one.
func RunCreateMasterKey(
	ctx context.Context,
	kms cryptoService.KMSService,
	out io.Writer,
	outputPath string,
	kmsProvider string,
	kmsKeyURI string,
	force bool,
) error {
	if outputPath == "" {
		return fmt.Errorf("--output is required")
	}

	if (kmsProvider == "") != (kmsKeyURI == "") {
		return fmt.Errorf("--kms-provider and --kms-key-uri must be set together")
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf(
				"key file %s already exists; replacing the master key makes every existing customer key undecryptable (use --force to overwrite)",
				outputPath,
			)
		}
	}

	material := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(material); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	defer cryptoDomain.Zero(material)

	payload := material
	if kmsProvider != "" {
		keeper, err := kms.OpenKeeper(ctx, kmsKeyURI)
		if err != nil {
			return fmt.Errorf("failed to open KMS keeper: %w", err)
		}
		defer func() {
			_ = keeper.Close()
		}()

		ciphertext, err := keeper.Encrypt(ctx, material)
		if err != nil {
			return fmt.Errorf("failed to encrypt master key with KMS: %w", err)
		}
		payload = ciphertext
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create key directory: %w", err)
		}
	}

	encoded := base64.StdEncoding.EncodeToString(payload)
	if err := os.WriteFile(outputPath, []byte(encoded+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}

	fmt.Fprintf(out, "Master key written to %s\n", outputPath)
	if kmsProvider != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "# The key file is KMS-wrapped; the server needs:")
		fmt.Fprintf(out, "KMS_PROVIDER=%q\n", kmsProvider)
		fmt.Fprintf(out, "KMS_KEY_URI=%q\n", kmsKeyURI)
	}
	fmt.Fprintf(out, "MASTER_KEY_FILE=%q\n", outputPath)

	return nil
}
