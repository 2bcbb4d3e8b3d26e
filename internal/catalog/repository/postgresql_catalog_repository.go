// Package repository implements catalog persistence. Every query is scoped by
// customer code.
package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	catalogDomain "github.com/denis-papin/doka.one/internal/catalog/domain"
	"github.com/denis-papin/doka.one/internal/database"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
)

// PostgreSQLCatalogRepository implements catalog persistence for PostgreSQL databases.
type PostgreSQLCatalogRepository struct {
	db *sql.DB
}

// CreateItem inserts a new item with its tag values.
func (p *PostgreSQLCatalogRepository) CreateItem(
	ctx context.Context,
	item *catalogDomain.Item,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO items (id, customer_code, name, file_id, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		item.ID,
		item.CustomerCode,
		item.Name,
		item.FileID,
		item.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create item")
	}

	for _, tagValue := range item.Tags {
		query := `INSERT INTO item_tags (item_id, tag_id, value) VALUES ($1, $2, $3)`
		if _, err := querier.ExecContext(ctx, query, item.ID, tagValue.TagID, tagValue.Value); err != nil {
			return apperrors.Wrap(err, "failed to create item tag value")
		}
	}

	return nil
}

// GetItem retrieves an item by id within the customer scope.
func (p *PostgreSQLCatalogRepository) GetItem(
	ctx context.Context,
	customerCode string,
	id uuid.UUID,
) (*catalogDomain.Item, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, customer_code, name, file_id, created_at
			  FROM items
			  WHERE customer_code = $1 AND id = $2
			  LIMIT 1`

	var item catalogDomain.Item
	err := querier.QueryRowContext(ctx, query, customerCode, id).Scan(
		&item.ID,
		&item.CustomerCode,
		&item.Name,
		&item.FileID,
		&item.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, catalogDomain.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get item")
	}

	tagQuery := `SELECT it.tag_id, t.name, it.value
				 FROM item_tags it
				 JOIN tags t ON t.id = it.tag_id
				 WHERE it.item_id = $1
				 ORDER BY t.name`

	rows, err := querier.QueryContext(ctx, tagQuery, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get item tags")
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var tagValue catalogDomain.TagValue
		if err := rows.Scan(&tagValue.TagID, &tagValue.Name, &tagValue.Value); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan item tag")
		}
		item.Tags = append(item.Tags, tagValue)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate item tags")
	}

	return &item, nil
}

// ListItems returns a page of the customer's items, newest first.
func (p *PostgreSQLCatalogRepository) ListItems(
	ctx context.Context,
	customerCode string,
	limit, offset int,
) ([]*catalogDomain.Item, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, customer_code, name, file_id, created_at
			  FROM items
			  WHERE customer_code = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, customerCode, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list items")
	}
	defer func() {
		_ = rows.Close()
	}()

	var items []*catalogDomain.Item
	for rows.Next() {
		var item catalogDomain.Item
		err := rows.Scan(&item.ID, &item.CustomerCode, &item.Name, &item.FileID, &item.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan item")
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate items")
	}

	return items, nil
}

// DeleteItem removes an item and its tag values within the customer scope.
func (p *PostgreSQLCatalogRepository) DeleteItem(
	ctx context.Context,
	customerCode string,
	id uuid.UUID,
) error {
	querier := database.GetTx(ctx, p.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = $1`, id); err != nil {
		return apperrors.Wrap(err, "failed to delete item tags")
	}

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM items WHERE customer_code = $1 AND id = $2`,
		customerCode,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete item")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return catalogDomain.ErrItemNotFound
	}

	return nil
}

// CreateTag inserts a new tag definition.
func (p *PostgreSQLCatalogRepository) CreateTag(
	ctx context.Context,
	tag *catalogDomain.Tag,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO tags (id, customer_code, name, value_type, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		tag.ID,
		tag.CustomerCode,
		tag.Name,
		tag.ValueType,
		tag.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return catalogDomain.ErrTagAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create tag")
	}

	return nil
}

// ListTags returns the customer's tag definitions ordered by name.
func (p *PostgreSQLCatalogRepository) ListTags(
	ctx context.Context,
	customerCode string,
) ([]*catalogDomain.Tag, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, customer_code, name, value_type, created_at
			  FROM tags
			  WHERE customer_code = $1
			  ORDER BY name`

	rows, err := querier.QueryContext(ctx, query, customerCode)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tags")
	}
	defer func() {
		_ = rows.Close()
	}()

	var tags []*catalogDomain.Tag
	for rows.Next() {
		var tag catalogDomain.Tag
		err := rows.Scan(&tag.ID, &tag.CustomerCode, &tag.Name, &tag.ValueType, &tag.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan tag")
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tags")
	}

	return tags, nil
}

// DeleteByCustomer removes every catalog row belonging to a customer.
func (p *PostgreSQLCatalogRepository) DeleteByCustomer(ctx context.Context, customerCode string) error {
	querier := database.GetTx(ctx, p.db)

	statements := []string{
		`DELETE FROM item_tags WHERE item_id IN (SELECT id FROM items WHERE customer_code = $1)`,
		`DELETE FROM items WHERE customer_code = $1`,
		`DELETE FROM tags WHERE customer_code = $1`,
	}
	for _, statement := range statements {
		if _, err := querier.ExecContext(ctx, statement, customerCode); err != nil {
			return apperrors.Wrap(err, "failed to delete catalog rows by customer")
		}
	}

	return nil
}

// isUniqueViolation checks if the error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "duplicate entry") ||
		strings.Contains(errMsg, "1062")
}

// NewPostgreSQLCatalogRepository creates a new PostgreSQL catalog repository instance.
func NewPostgreSQLCatalogRepository(db *sql.DB) *PostgreSQLCatalogRepository {
	return &PostgreSQLCatalogRepository{db: db}
}
