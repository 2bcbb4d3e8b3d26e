// Package domain defines the encrypted file store model.
//
// File content never touches the database in cleartext: it is split into
// fixed-size blocks and each block is AEAD-encrypted under the owning
// customer's key before persistence. Each block's associated data binds it to
// its file and position, so blocks cannot be swapped between files or
// reordered without failing authentication.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/denis-papin/doka.one/internal/errors"
)

// DefaultBlockSize is the plaintext block size used when none is configured.
const DefaultBlockSize = 1 << 20 // 1 MiB

// FileRef is the metadata row for a stored file.
type FileRef struct {
	ID           uuid.UUID
	CustomerCode string
	Name         string
	MimeType     string
	Size         int64 // total plaintext size in bytes
	PartCount    int
	CreatedAt    time.Time
}

// FilePart is one encrypted block of a file.
type FilePart struct {
	FileID     uuid.UUID
	Seq        int
	Nonce      []byte
	Ciphertext []byte
}

// Domain-specific errors for file operations.
var (
	// ErrFileNotFound indicates the requested file does not exist in the
	// caller's tenant scope.
	ErrFileNotFound = errors.Wrap(errors.ErrNotFound, "file not found")

	// ErrCorruptFile indicates stored parts are missing, out of order, or
	// fail authentication.
	ErrCorruptFile = errors.New("file content is corrupt")
)
