// Package repository implements encrypted file persistence. Only encrypted
// blocks are ever written.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/denis-papin/doka.one/internal/database"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	filestoreDomain "github.com/denis-papin/doka.one/internal/filestore/domain"
)

// PostgreSQLFileRepository implements file persistence for PostgreSQL databases.
type PostgreSQLFileRepository struct {
	db *sql.DB
}

// CreateFile inserts a file reference row.
func (p *PostgreSQLFileRepository) CreateFile(
	ctx context.Context,
	file *filestoreDomain.FileRef,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO files (id, customer_code, name, mime_type, size, part_count, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		file.ID,
		file.CustomerCode,
		file.Name,
		file.MimeType,
		file.Size,
		file.PartCount,
		file.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create file")
	}

	return nil
}

// GetFile retrieves a file reference by id within the customer scope.
func (p *PostgreSQLFileRepository) GetFile(
	ctx context.Context,
	customerCode string,
	id uuid.UUID,
) (*filestoreDomain.FileRef, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, customer_code, name, mime_type, size, part_count, created_at
			  FROM files
			  WHERE customer_code = $1 AND id = $2
			  LIMIT 1`

	var file filestoreDomain.FileRef
	err := querier.QueryRowContext(ctx, query, customerCode, id).Scan(
		&file.ID,
		&file.CustomerCode,
		&file.Name,
		&file.MimeType,
		&file.Size,
		&file.PartCount,
		&file.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, filestoreDomain.ErrFileNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get file")
	}

	return &file, nil
}

// ListFiles returns the file references of a customer, newest first.
func (p *PostgreSQLFileRepository) ListFiles(
	ctx context.Context,
	customerCode string,
) ([]filestoreDomain.FileRef, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, customer_code, name, mime_type, size, part_count, created_at
			  FROM files
			  WHERE customer_code = $1
			  ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, customerCode)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list files")
	}
	defer func() {
		_ = rows.Close()
	}()

	var files []filestoreDomain.FileRef
	for rows.Next() {
		var file filestoreDomain.FileRef
		err := rows.Scan(
			&file.ID,
			&file.CustomerCode,
			&file.Name,
			&file.MimeType,
			&file.Size,
			&file.PartCount,
			&file.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan file")
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate files")
	}

	return files, nil
}

// CreatePart inserts one encrypted block.
func (p *PostgreSQLFileRepository) CreatePart(
	ctx context.Context,
	part *filestoreDomain.FilePart,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO file_parts (file_id, seq, nonce, ciphertext)
			  VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(ctx, query, part.FileID, part.Seq, part.Nonce, part.Ciphertext)
	if err != nil {
		return apperrors.Wrap(err, "failed to create file part")
	}

	return nil
}

// ListParts returns a file's encrypted blocks in sequence order.
func (p *PostgreSQLFileRepository) ListParts(
	ctx context.Context,
	fileID uuid.UUID,
) ([]filestoreDomain.FilePart, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT file_id, seq, nonce, ciphertext
			  FROM file_parts
			  WHERE file_id = $1
			  ORDER BY seq`

	rows, err := querier.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list file parts")
	}
	defer func() {
		_ = rows.Close()
	}()

	var parts []filestoreDomain.FilePart
	for rows.Next() {
		var part filestoreDomain.FilePart
		if err := rows.Scan(&part.FileID, &part.Seq, &part.Nonce, &part.Ciphertext); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan file part")
		}
		parts = append(parts, part)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate file parts")
	}

	return parts, nil
}

// DeleteFile removes a file and its parts within the customer scope.
func (p *PostgreSQLFileRepository) DeleteFile(
	ctx context.Context,
	customerCode string,
	id uuid.UUID,
) error {
	querier := database.GetTx(ctx, p.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM file_parts WHERE file_id = $1`, id); err != nil {
		return apperrors.Wrap(err, "failed to delete file parts")
	}

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM files WHERE customer_code = $1 AND id = $2`,
		customerCode,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete file")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return filestoreDomain.ErrFileNotFound
	}

	return nil
}

// DeleteByCustomer removes every file row belonging to a customer.
func (p *PostgreSQLFileRepository) DeleteByCustomer(ctx context.Context, customerCode string) error {
	querier := database.GetTx(ctx, p.db)

	statements := []string{
		`DELETE FROM file_parts WHERE file_id IN (SELECT id FROM files WHERE customer_code = $1)`,
		`DELETE FROM files WHERE customer_code = $1`,
	}
	for _, statement := range statements {
		if _, err := querier.ExecContext(ctx, statement, customerCode); err != nil {
			return apperrors.Wrap(err, "failed to delete files by customer")
		}
	}

	return nil
}

// NewPostgreSQLFileRepository creates a new PostgreSQL file repository instance.
func NewPostgreSQLFileRepository(db *sql.DB) *PostgreSQLFileRepository {
	return &PostgreSQLFileRepository{db: db}
}
