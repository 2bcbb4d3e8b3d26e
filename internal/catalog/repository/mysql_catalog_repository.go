package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	catalogDomain "github.com/denis-papin/doka.one/internal/catalog/domain"
	"github.com/denis-papin/doka.one/internal/database"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
)

// MySQLCatalogRepository implements catalog persistence for MySQL databases.
type MySQLCatalogRepository struct {
	db *sql.DB
}

// CreateItem inserts a new item with its tag values.
func (m *MySQLCatalogRepository) CreateItem(
	ctx context.Context,
	item *catalogDomain.Item,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := item.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal item id")
	}

	var fileID []byte
	if item.FileID != nil {
		fileID, err = item.FileID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal file id")
		}
	}

	query := `INSERT INTO items (id, customer_code, name, file_id, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, item.CustomerCode, item.Name, fileID, item.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create item")
	}

	for _, tagValue := range item.Tags {
		tagID, err := tagValue.TagID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal tag id")
		}
		query := `INSERT INTO item_tags (item_id, tag_id, value) VALUES (?, ?, ?)`
		if _, err := querier.ExecContext(ctx, query, id, tagID, tagValue.Value); err != nil {
			return apperrors.Wrap(err, "failed to create item tag value")
		}
	}

	return nil
}

// GetItem retrieves an item by id within the customer scope.
func (m *MySQLCatalogRepository) GetItem(
	ctx context.Context,
	customerCode string,
	id uuid.UUID,
) (*catalogDomain.Item, error) {
	querier := database.GetTx(ctx, m.db)

	binID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal item id")
	}

	query := `SELECT id, customer_code, name, file_id, created_at
			  FROM items
			  WHERE customer_code = ? AND id = ?
			  LIMIT 1`

	var item catalogDomain.Item
	var rowID, fileID []byte

	err = querier.QueryRowContext(ctx, query, customerCode, binID).Scan(
		&rowID,
		&item.CustomerCode,
		&item.Name,
		&fileID,
		&item.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, catalogDomain.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get item")
	}

	if err := item.ID.UnmarshalBinary(rowID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal item id")
	}
	if len(fileID) > 0 {
		var fid uuid.UUID
		if err := fid.UnmarshalBinary(fileID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal file id")
		}
		item.FileID = &fid
	}

	tagQuery := `SELECT it.tag_id, t.name, it.value
				 FROM item_tags it
				 JOIN tags t ON t.id = it.tag_id
				 WHERE it.item_id = ?
				 ORDER BY t.name`

	rows, err := querier.QueryContext(ctx, tagQuery, binID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get item tags")
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var tagValue catalogDomain.TagValue
		var tagID []byte
		if err := rows.Scan(&tagID, &tagValue.Name, &tagValue.Value); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan item tag")
		}
		if err := tagValue.TagID.UnmarshalBinary(tagID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal tag id")
		}
		item.Tags = append(item.Tags, tagValue)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate item tags")
	}

	return &item, nil
}

// ListItems returns a page of the customer's items, newest first.
func (m *MySQLCatalogRepository) ListItems(
	ctx context.Context,
	customerCode string,
	limit, offset int,
) ([]*catalogDomain.Item, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, customer_code, name, file_id, created_at
			  FROM items
			  WHERE customer_code = ?
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

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
		var rowID, fileID []byte
		err := rows.Scan(&rowID, &item.CustomerCode, &item.Name, &fileID, &item.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan item")
		}
		if err := item.ID.UnmarshalBinary(rowID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal item id")
		}
		if len(fileID) > 0 {
			var fid uuid.UUID
			if err := fid.UnmarshalBinary(fileID); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal file id")
			}
			item.FileID = &fid
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate items")
	}

	return items, nil
}

// DeleteItem removes an item and its tag values within the customer scope.
func (m *MySQLCatalogRepository) DeleteItem(
	ctx context.Context,
	customerCode string,
	id uuid.UUID,
) error {
	querier := database.GetTx(ctx, m.db)

	binID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal item id")
	}

	if _, err := querier.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = ?`, binID); err != nil {
		return apperrors.Wrap(err, "failed to delete item tags")
	}

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM items WHERE customer_code = ? AND id = ?`,
		customerCode,
		binID,
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
func (m *MySQLCatalogRepository) CreateTag(
	ctx context.Context,
	tag *catalogDomain.Tag,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := tag.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal tag id")
	}

	query := `INSERT INTO tags (id, customer_code, name, value_type, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, tag.CustomerCode, tag.Name, tag.ValueType, tag.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return catalogDomain.ErrTagAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create tag")
	}

	return nil
}

// ListTags returns the customer's tag definitions ordered by name.
func (m *MySQLCatalogRepository) ListTags(
	ctx context.Context,
	customerCode string,
) ([]*catalogDomain.Tag, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, customer_code, name, value_type, created_at
			  FROM tags
			  WHERE customer_code = ?
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
		var id []byte
		err := rows.Scan(&id, &tag.CustomerCode, &tag.Name, &tag.ValueType, &tag.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan tag")
		}
		if err := tag.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal tag id")
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tags")
	}

	return tags, nil
}

// DeleteByCustomer removes every catalog row belonging to a customer.
func (m *MySQLCatalogRepository) DeleteByCustomer(ctx context.Context, customerCode string) error {
	querier := database.GetTx(ctx, m.db)

	statements := []string{
		`DELETE it FROM item_tags it JOIN items i ON i.id = it.item_id WHERE i.customer_code = ?`,
		`DELETE FROM items WHERE customer_code = ?`,
		`DELETE FROM tags WHERE customer_code = ?`,
	}
	for _, statement := range statements {
		if _, err := querier.ExecContext(ctx, statement, customerCode); err != nil {
			return apperrors.Wrap(err, "failed to delete catalog rows by customer")
		}
	}

	return nil
}

// NewMySQLCatalogRepository creates a new MySQL catalog repository instance.
func NewMySQLCatalogRepository(db *sql.DB) *MySQLCatalogRepository {
	return &MySQLCatalogRepository{db: db}
}
