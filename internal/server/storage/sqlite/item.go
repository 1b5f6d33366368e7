package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stockroom/internal/models"
	"stockroom/internal/server/storage"
)

// itemColumns selects the item row joined with its owner.
// Owners are fetched eagerly so serialization never goes back to the store.
const itemColumns = `
	i.id, i.title, i.description, i.price, i.owner_id, i.created_at, i.updated_at,
	u.id, u.email, u.username, u.full_name, u.is_active, u.is_superuser, u.created_at, u.updated_at
`

func scanItem(scan func(dest ...any) error) (*models.Item, error) {
	item := &models.Item{}
	owner := &models.User{}
	var itemUpdated, ownerUpdated sql.NullTime

	err := scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.Price,
		&item.OwnerID,
		&item.CreatedAt,
		&itemUpdated,
		&owner.ID,
		&owner.Email,
		&owner.Username,
		&owner.FullName,
		&owner.IsActive,
		&owner.IsSuperuser,
		&owner.CreatedAt,
		&ownerUpdated,
	)
	if err != nil {
		return nil, err
	}

	if itemUpdated.Valid {
		item.UpdatedAt = &itemUpdated.Time
	}
	if ownerUpdated.Valid {
		owner.UpdatedAt = &ownerUpdated.Time
	}
	item.Owner = owner

	return item, nil
}

// CreateItem inserts a new item and sets item.ID
func (s *Storage) CreateItem(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (title, description, price, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		item.Title,
		item.Description,
		item.Price,
		item.OwnerID,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted item id: %w", err)
	}
	item.ID = id

	return nil
}

// GetItemByID retrieves an item with its owner
func (s *Storage) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	query := "SELECT " + itemColumns + " FROM items i JOIN users u ON u.id = i.owner_id WHERE i.id = ?"

	row := s.db.QueryRowContext(ctx, query, id)
	item, err := scanItem(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// ListItems returns a page of items ordered by ID plus the total count
// over the same filter predicate
func (s *Storage) ListItems(ctx context.Context, skip, limit int, ownerID *int64) ([]*models.Item, int, error) {
	countQuery := "SELECT COUNT(*) FROM items"
	listQuery := "SELECT " + itemColumns + " FROM items i JOIN users u ON u.id = i.owner_id"

	var countArgs, listArgs []any
	if ownerID != nil {
		countQuery += " WHERE owner_id = ?"
		listQuery += " WHERE i.owner_id = ?"
		countArgs = append(countArgs, *ownerID)
		listArgs = append(listArgs, *ownerID)
	}
	listQuery += " ORDER BY i.id LIMIT ? OFFSET ?"
	listArgs = append(listArgs, limit, skip)

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Item, 0, limit)
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, total, nil
}

// UpdateItem updates title, description and price by ID.
// owner_id is deliberately not part of the statement.
func (s *Storage) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET title = ?, description = ?, price = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		item.Title,
		item.Description,
		item.Price,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrItemNotFound
	}

	return nil
}

// DeleteItem deletes an item by ID
func (s *Storage) DeleteItem(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrItemNotFound
	}

	return nil
}
