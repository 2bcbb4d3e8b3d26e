package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/denis-papin/doka.one/internal/database"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	filestoreDomain "github.com/denis-papin/doka.one/internal/filestore/domain"
)

// MySQLFileRepository implements file persistence for MySQL databases.
type MySQLFileRepository struct {
	db *sql.DB
}

// CreateFile inserts a file reference row.
func (m *MySQLFileRepository) CreateFile(
	ctx context.Context,
	file *filestoreDomain.FileRef,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := file.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal file id")
	}

	query := `INSERT INTO files (id, customer_code, name, mime_type, size, part_count, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLFileRepository) GetFile(
	ctx context.Context,
	customerCode string,
	id uuid.UUID,
) (*filestoreDomain.FileRef, error) {
	querier := database.GetTx(ctx, m.db)

	binID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal file id")
	}

	query := `SELECT id, customer_code, name, mime_type, size, part_count, created_at
			  FROM files
			  WHERE customer_code = ? AND id = ?
			  LIMIT 1`

	var file filestoreDomain.FileRef
	var rowID []byte

	err = querier.QueryRowContext(ctx, query, customerCode, binID).Scan(
		&rowID,
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

	if err := file.ID.UnmarshalBinary(rowID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal file id")
	}

	return &file, nil
}

// ListFiles returns the file references of a customer, newest first.
func (m *MySQLFileRepository) ListFiles(
	ctx context.Context,
	customerCode string,
) ([]filestoreDomain.FileRef, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, customer_code, name, mime_type, size, part_count, created_at
			  FROM files
			  WHERE customer_code = ?
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
		var rowID []byte
		err := rows.Scan(
			&rowID,
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
		if err := file.ID.UnmarshalBinary(rowID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal file id")
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate files")
	}

	return files, nil
}

// CreatePart inserts one encrypted block.
func (m *MySQLFileRepository) CreatePart(
	ctx context.Context,
	part *filestoreDomain.FilePart,
) error {
	querier := database.GetTx(ctx, m.db)

	fileID, err := part.FileID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal file id")
	}

	query := `INSERT INTO file_parts (file_id, seq, nonce, ciphertext)
			  VALUES (?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, fileID, part.Seq, part.Nonce, part.Ciphertext)
	if err != nil {
		return apperrors.Wrap(err, "failed to create file part")
	}

	return nil
}

// ListParts returns a file's encrypted blocks in sequence order.
func (m *MySQLFileRepository) ListParts(
	ctx context.Context,
	fileID uuid.UUID,
) ([]filestoreDomain.FilePart, error) {
	querier := database.GetTx(ctx, m.db)

	binID, err := fileID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal file id")
	}

	query := `SELECT file_id, seq, nonce, ciphertext
			  FROM file_parts
			  WHERE file_id = ?
			  ORDER BY seq`

	rows, err := querier.QueryContext(ctx, query, binID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list file parts")
	}
	defer func() {
		_ = rows.Close()
	}()

	var parts []filestoreDomain.FilePart
	for rows.Next() {
		var part filestoreDomain.FilePart
		var rowFileID []byte
		if err := rows.Scan(&rowFileID, &part.Seq, &part.Nonce, &part.Ciphertext); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan file part")
		}
		if err := part.FileID.UnmarshalBinary(rowFileID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal file id")
		}
		parts = append(parts, part)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate file parts")
	}

	return parts, nil
}

// DeleteFile removes a file and its parts within the customer scope.
func (m *MySQLFileRepository) DeleteFile(
	ctx context.Context,
	customerCode string,
	id uuid.UUID,
) error {
	querier := database.GetTx(ctx, m.db)

	binID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal file id")
	}

	if _, err := querier.ExecContext(ctx, `DELETE FROM file_parts WHERE file_id = ?`, binID); err != nil {
		return apperrors.Wrap(err, "failed to delete file parts")
	}

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM files WHERE customer_code = ? AND id = ?`,
		customerCode,
		binID,
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
func (m *MySQLFileRepository) DeleteByCustomer(ctx context.Context, customerCode string) error {
	querier := database.GetTx(ctx, m.db)

	statements := []string{
		`DELETE fp FROM file_parts fp JOIN files f ON f.id = fp.file_id WHERE f.customer_code = ?`,
		`DELETE FROM files WHERE customer_code = ?`,
	}
	for _, statement := range statements {
		if _, err := querier.ExecContext(ctx, statement, customerCode); err != nil {
			return apperrors.Wrap(err, "failed to delete files by customer")
		}
	}

	return nil
}

// NewMySQLFileRepository creates a new MySQL file repository instance.
func NewMySQLFileRepository(db *sql.DB) *MySQLFileRepository {
	return &MySQLFileRepository{db: db}
}
