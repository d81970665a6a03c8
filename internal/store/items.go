package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/inventar/internal/model"
)

const itemColumns = `id, serial_number, name, brand, date_added, added_by, employee_user,
	has_specs, model, warranty_expiration, cpu, ram, storage,
	edited_by, edited_at, image_mime, created_at`

// CreateItem inserts a new item and returns it as stored. It returns
// ErrDuplicate if the serial number is already taken.
func CreateItem(ctx context.Context, db DBTX, item *model.Item) (*model.Item, error) {
	args := []any{item.SerialNumber, item.Name, item.Brand, item.DateAdded, item.AddedBy, nullIfEmpty(item.EmployeeUser)}
	args = append(args, specArgs(item)...)

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (serial_number, name, brand, date_added, added_by, employee_user,
		                    has_specs, model, warranty_expiration, cpu, ram, storage)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db DBTX, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items, newest first.
func ListItems(ctx context.Context, db DBTX) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY id DESC`,
	)
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

// UpdateItem overwrites an item's editable fields and records who edited it.
// It reports whether a row was updated.
func UpdateItem(ctx context.Context, db DBTX, item *model.Item, editedBy string, editedAt time.Time) (bool, error) {
	args := []any{item.SerialNumber, item.Name, item.Brand, item.DateAdded, nullIfEmpty(item.EmployeeUser)}
	args = append(args, specArgs(item)...)
	args = append(args, editedBy, editedAt, item.ID)

	result, err := db.ExecContext(ctx,
		`UPDATE items SET serial_number = ?, name = ?, brand = ?, date_added = ?, employee_user = ?,
		                  has_specs = ?, model = ?, warranty_expiration = ?, cpu = ?, ram = ?, storage = ?,
		                  edited_by = ?, edited_at = ?
		 WHERE id = ?`,
		args...,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, ErrDuplicate
		}
		return false, fmt.Errorf("updating item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	return n > 0, nil
}

// DeleteItem removes an item. It reports whether a row was deleted.
func DeleteItem(ctx context.Context, db DBTX, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return n > 0, nil
}

// SetItemImage sets an item's image data. It reports whether the item exists.
func SetItemImage(ctx context.Context, db DBTX, id int64, image []byte, mime string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ? WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return false, fmt.Errorf("setting item image: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("setting item image: %w", err)
	}
	return n > 0, nil
}

// GetItemImage returns an item's image data and MIME type.
func GetItemImage(ctx context.Context, db DBTX, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

// specArgs returns has_specs followed by the five spec columns. Items
// without specs store NULL in every spec column.
func specArgs(item *model.Item) []any {
	if !item.HasSpecs || item.Specs == nil {
		return []any{false, nil, nil, nil, nil, nil}
	}
	s := item.Specs
	return []any{true, s.Model, s.WarrantyExpiration, s.CPU, s.RAM, s.Storage}
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var employee, editedBy, imageMime sql.NullString
	var specModel, warranty, cpu, ram, storage sql.NullString
	var editedAt sql.NullTime

	err := s.Scan(&item.ID, &item.SerialNumber, &item.Name, &item.Brand, &item.DateAdded, &item.AddedBy, &employee,
		&item.HasSpecs, &specModel, &warranty, &cpu, &ram, &storage,
		&editedBy, &editedAt, &imageMime, &item.CreatedAt)
	if err != nil {
		return nil, err
	}

	item.EmployeeUser = employee.String
	item.EditedBy = editedBy.String
	item.ImageMime = imageMime.String
	if editedAt.Valid {
		t := editedAt.Time.UTC()
		item.EditedAt = &t
	}
	if item.HasSpecs {
		item.Specs = &model.Specs{
			Model:              specModel.String,
			WarrantyExpiration: warranty.String,
			CPU:                cpu.String,
			RAM:                ram.String,
			Storage:            storage.String,
		}
	}
	return item, nil
}
