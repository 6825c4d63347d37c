package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/crudimg/internal/db"
	"github.com/erazemk/crudimg/internal/model"
)

const itemColumns = `id, nombre, descripcion, cantidad, marca, precio, imagen`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem reads one row selected with itemColumns. NULL columns become zero values.
func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var name, description, brand, image sql.NullString
	var quantity sql.NullInt64
	var price sql.NullFloat64
	if err := row.Scan(&item.ID, &name, &description, &quantity, &brand, &price, &image); err != nil {
		return nil, err
	}
	item.Name = name.String
	item.Description = description.String
	item.Quantity = quantity.Int64
	item.Brand = brand.String
	item.Price = price.Float64
	item.ImageKey = image.String
	return item, nil
}

// nullableKey stores an empty image key as NULL.
func nullableKey(key string) sql.NullString {
	return sql.NullString{String: key, Valid: key != ""}
}

// ListItems returns every item ordered by id.
func ListItems(ctx context.Context, d *db.DB) ([]model.Item, error) {
	rows, err := d.QueryContext(ctx, `SELECT `+itemColumns+` FROM crudimg ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetItem returns an item by ID, or nil if it doesn't exist.
func GetItem(ctx context.Context, d *db.DB, id int64) (*model.Item, error) {
	item, err := scanItem(d.QueryRowContext(ctx,
		d.Rebind(`SELECT `+itemColumns+` FROM crudimg WHERE id = ?`), id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// GetItemImageKey returns the image key of an item. found is false when the
// item doesn't exist; key is empty when the item has no image.
func GetItemImageKey(ctx context.Context, d *db.DB, id int64) (key string, found bool, err error) {
	var image sql.NullString
	err = d.QueryRowContext(ctx,
		d.Rebind(`SELECT imagen FROM crudimg WHERE id = ?`), id,
	).Scan(&image)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting item image key: %w", err)
	}
	return image.String, true, nil
}

// ListImageKeys returns the image keys of all items that have one.
func ListImageKeys(ctx context.Context, d *db.DB) ([]string, error) {
	rows, err := d.QueryContext(ctx, `SELECT imagen FROM crudimg`)
	if err != nil {
		return nil, fmt.Errorf("listing image keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var image sql.NullString
		if err := rows.Scan(&image); err != nil {
			return nil, fmt.Errorf("scanning image key: %w", err)
		}
		if image.String != "" {
			keys = append(keys, image.String)
		}
	}
	return keys, rows.Err()
}

// CreateItem inserts a new item and returns its generated ID.
func CreateItem(ctx context.Context, d *db.DB, item *model.Item) (int64, error) {
	query := `INSERT INTO crudimg (nombre, descripcion, cantidad, marca, precio, imagen)
		 VALUES (?, ?, ?, ?, ?, ?)`
	args := []any{item.Name, item.Description, item.Quantity, item.Brand, item.Price, nullableKey(item.ImageKey)}

	if d.Dialect.Returning {
		var id int64
		if err := d.QueryRowContext(ctx, d.Rebind(query+` RETURNING id`), args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("creating item: %w", err)
		}
		return id, nil
	}

	result, err := d.ExecContext(ctx, d.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting item id: %w", err)
	}
	return id, nil
}

// UpdateItem overwrites every column of the item with the given ID.
// Updating a missing item is not an error.
func UpdateItem(ctx context.Context, d *db.DB, item *model.Item) error {
	_, err := d.ExecContext(ctx,
		d.Rebind(`UPDATE crudimg SET nombre = ?, descripcion = ?, cantidad = ?, marca = ?, precio = ?, imagen = ?
		 WHERE id = ?`),
		item.Name, item.Description, item.Quantity, item.Brand, item.Price, nullableKey(item.ImageKey), item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem removes an item.
func DeleteItem(ctx context.Context, d *db.DB, id int64) error {
	_, err := d.ExecContext(ctx, d.Rebind(`DELETE FROM crudimg WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// DeleteAllItems removes every item and returns how many were deleted.
func DeleteAllItems(ctx context.Context, d *db.DB) (int64, error) {
	result, err := d.ExecContext(ctx, `DELETE FROM crudimg`)
	if err != nil {
		return 0, fmt.Errorf("deleting all items: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted items: %w", err)
	}
	return n, nil
}
