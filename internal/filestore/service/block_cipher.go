// Package service implements block-level file encryption.
package service

import (
	"fmt"

	"github.com/google/uuid"

	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	cryptoService "github.com/denis-papin/doka.one/internal/crypto/service"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	filestoreDomain "github.com/denis-papin/doka.one/internal/filestore/domain"
)

// BlockCipher encrypts and decrypts file content as a sequence of fixed-size
// blocks under a customer key.
type BlockCipher interface {
	// EncryptBlocks splits data into blocks of at most blockSize plaintext
	// bytes and encrypts each one. An empty input produces zero parts.
	EncryptBlocks(
		key []byte,
		alg cryptoDomain.Algorithm,
		fileID uuid.UUID,
		data []byte,
		blockSize int,
	) ([]filestoreDomain.FilePart, error)

	// DecryptBlocks authenticates and decrypts parts back into the original
	// content. Parts must be complete and in sequence order.
	DecryptBlocks(
		key []byte,
		alg cryptoDomain.Algorithm,
		fileID uuid.UUID,
		parts []filestoreDomain.FilePart,
	) ([]byte, error)
}

type blockCipher struct {
	aeadManager cryptoService.AEADManager
}

// NewBlockCipher creates a new BlockCipher.
func NewBlockCipher(aeadManager cryptoService.AEADManager) BlockCipher {
	return &blockCipher{aeadManager: aeadManager}
}

// partAAD binds a block to its file and position.
func partAAD(fileID uuid.UUID, seq int) []byte {
	return []byte(fmt.Sprintf("%s:%d", fileID, seq))
}

// EncryptBlocks splits data into blocks and encrypts each one.
func (b *blockCipher) EncryptBlocks(
	key []byte,
	alg cryptoDomain.Algorithm,
	fileID uuid.UUID,
	data []byte,
	blockSize int,
) ([]filestoreDomain.FilePart, error) {
	if blockSize <= 0 {
		blockSize = filestoreDomain.DefaultBlockSize
	}

	cipher, err := b.aeadManager.CreateCipher(key, alg)
	if err != nil {
		return nil, err
	}

	var parts []filestoreDomain.FilePart
	for seq := 0; len(data) > 0; seq++ {
		block := data
		if len(block) > blockSize {
			block = block[:blockSize]
		}
		data = data[len(block):]

		ciphertext, nonce, err := cipher.Encrypt(block, partAAD(fileID, seq))
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to encrypt file block")
		}

		parts = append(parts, filestoreDomain.FilePart{
			FileID:     fileID,
			Seq:        seq,
			Nonce:      nonce,
			Ciphertext: ciphertext,
		})
	}

	return parts, nil
}

// DecryptBlocks authenticates and decrypts parts back into the original content.
func (b *blockCipher) DecryptBlocks(
	key []byte,
	alg cryptoDomain.Algorithm,
	fileID uuid.UUID,
	parts []filestoreDomain.FilePart,
) ([]byte, error) {
	cipher, err := b.aeadManager.CreateCipher(key, alg)
	if err != nil {
		return nil, err
	}

	var data []byte
	for seq, part := range parts {
		if part.Seq != seq || part.FileID != fileID {
			return nil, filestoreDomain.ErrCorruptFile
		}

		block, err := cipher.Decrypt(part.Ciphertext, part.Nonce, partAAD(fileID, seq))
		if err != nil {
			return nil, filestoreDomain.ErrCorruptFile
		}
		data = append(data, block...)
	}

	return data, nil
}
