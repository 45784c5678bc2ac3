package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pos-billing/internal/common/db"
	"pos-billing/internal/domain"
)

type menuPG struct{ db *db.Conn }

func NewMenuPG(c *db.Conn) Menu { return &menuPG{db: c} }

func (r *menuPG) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, item_key, name, price, category, picker_id
		FROM menu_items
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	defer rows.Close()

	var out []domain.MenuItem
	for rows.Next() {
		var it domain.MenuItem
		if err := rows.Scan(&it.ID, &it.Key, &it.Name, &it.Price, &it.Category, &it.Picker); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *menuPG) AddItem(ctx context.Context, it *domain.MenuItem) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO menu_items (item_key, name, price, category, picker_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, it.Key, it.Name, it.Price, it.Category, it.Picker).Scan(&it.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("menu item %s: %w", it.Key, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert menu item: %w", err)
	}
	return nil
}

func (r *menuPG) UpdatePrice(ctx context.Context, id int64, price float64) error {
	tag, err := r.db.Exec(ctx, `UPDATE menu_items SET price = $2 WHERE id = $1`, id, price)
	if err != nil {
		return fmt.Errorf("failed to update price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *menuPG) DeleteItem(ctx context.Context, id int64) (domain.MenuItem, error) {
	var it domain.MenuItem
	err := r.db.QueryRow(ctx, `
		DELETE FROM menu_items WHERE id = $1
		RETURNING id, item_key, name, price, category, picker_id
	`, id).Scan(&it.ID, &it.Key, &it.Name, &it.Price, &it.Category, &it.Picker)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MenuItem{}, ErrNotFound
	}
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("failed to delete menu item: %w", err)
	}
	return it, nil
}

func (r *menuPG) SeedItems(ctx context.Context, items []domain.MenuItem) (n int, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Serialises concurrent starts so only one of them seeds.
	if _, err = tx.Exec(ctx, `LOCK TABLE menu_items IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return 0, fmt.Errorf("failed to lock menu: %w", err)
	}
	var existing int
	if err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&existing); err != nil {
		return 0, fmt.Errorf("failed to count menu: %w", err)
	}
	if existing > 0 {
		return 0, tx.Commit(ctx)
	}

	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`
			INSERT INTO menu_items (item_key, name, price, category, picker_id)
			VALUES ($1, $2, $3, $4, $5)
		`, it.Key, it.Name, it.Price, it.Category, it.Picker)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("failed to seed menu: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(items), nil
}
