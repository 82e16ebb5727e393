package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"batchkit/internal/errors"
)

// Item is a stored inventory item
type Item struct {
	ID        int64     `json:"id" yaml:"id" toml:"id"`
	Name      string    `json:"name" yaml:"name" toml:"name"`
	Quantity  int       `json:"quantity" yaml:"quantity" toml:"quantity"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt" toml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt" toml:"updatedAt"`
}

// ItemInput is the request body for create, replace and patch.
// Nil fields are left unchanged by a patch.
type ItemInput struct {
	Name     *string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Quantity *int    `json:"quantity,omitempty" yaml:"quantity,omitempty" toml:"quantity,omitempty"`
}

// ItemStore persists items in SQLite
type ItemStore struct {
	db *DB
}

// NewItemStore creates a new item store
func NewItemStore(db *DB) *ItemStore {
	return &ItemStore{db: db}
}

const itemColumns = "id, name, quantity, created_at, updated_at"

// List returns all items ordered by id
func (s *ItemStore) List(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+itemColumns+" FROM items ORDER BY id")
	if err != nil {
		return nil, errors.New(errors.Unavailable, "list items", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(errors.Unavailable, "list items", err)
	}
	return items, nil
}

// Get returns the item with the given id
func (s *ItemStore) Get(ctx context.Context, id int64) (Item, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", id)
	item, err := scanItem(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Item{}, errors.Newf(errors.NotFound, "item %d not found", id)
	}
	return item, err
}

// Create inserts a new item and returns its id
func (s *ItemStore) Create(ctx context.Context, input ItemInput) (int64, error) {
	name, quantity, err := validateFull(input)
	if err != nil {
		return 0, err
	}

	now := timestamp()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO items (name, quantity, created_at, updated_at) VALUES (?, ?, ?, ?)",
		name, quantity, now, now)
	if err != nil {
		return 0, writeError("create item", name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.New(errors.Internal, "create item", err)
	}
	return id, nil
}

// Replace overwrites every field of an existing item
func (s *ItemStore) Replace(ctx context.Context, id int64, input ItemInput) error {
	name, quantity, err := validateFull(input)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE items SET name = ?, quantity = ?, updated_at = ? WHERE id = ?",
		name, quantity, timestamp(), id)
	if err != nil {
		return writeError("replace item", name, err)
	}
	return requireAffected(res, id)
}

// Patch updates the fields present in input
func (s *ItemStore) Patch(ctx context.Context, id int64, input ItemInput) error {
	if input.Name == nil && input.Quantity == nil {
		return errors.New(errors.Invalid, "patch must set at least one field", nil)
	}

	var (
		sets []string
		args []interface{}
	)
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return errors.New(errors.Invalid, "name must not be empty", nil)
		}
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return errors.New(errors.Invalid, "quantity must not be negative", nil)
		}
		sets = append(sets, "quantity = ?")
		args = append(args, *input.Quantity)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, timestamp(), id)

	res, err := s.db.ExecContext(ctx, "UPDATE items SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		name := ""
		if input.Name != nil {
			name = *input.Name
		}
		return writeError("patch item", name, err)
	}
	return requireAffected(res, id)
}

// Delete removes the item with the given id
func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return errors.New(errors.Unavailable, "delete item", err)
	}
	return requireAffected(res, id)
}

// Count returns the number of stored items
func (s *ItemStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&n); err != nil {
		return 0, errors.New(errors.Unavailable, "count items", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row scanner) (Item, error) {
	var (
		item             Item
		created, updated string
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Quantity, &created, &updated); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return Item{}, err
		}
		return Item{}, errors.New(errors.Unavailable, "read item", err)
	}

	var err error
	if item.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Item{}, errors.New(errors.Internal, "invalid created_at format", err)
	}
	if item.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return Item{}, errors.New(errors.Internal, "invalid updated_at format", err)
	}
	return item, nil
}

// validateFull checks an input used to create or replace a whole item
func validateFull(input ItemInput) (string, int, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return "", 0, errors.New(errors.Invalid, "name is required", nil)
	}
	quantity := 0
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	if quantity < 0 {
		return "", 0, errors.New(errors.Invalid, "quantity must not be negative", nil)
	}
	return strings.TrimSpace(*input.Name), quantity, nil
}

func writeError(op, name string, err error) error {
	var sqliteErr *sqlite.Error
	if stderrors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return errors.Newf(errors.Conflict, "item named %q already exists", name)
	}
	return errors.New(errors.Unavailable, op, err)
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.New(errors.Internal, "rows affected", err)
	}
	if n == 0 {
		return errors.Newf(errors.NotFound, "item %d not found", id)
	}
	return nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
