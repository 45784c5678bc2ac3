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

const billColumns = `id, bill_number, date, COALESCE(company_name, ''), COALESCE(shop_name, ''),
	COALESCE(location, ''), COALESCE(shop_address, ''), COALESCE(shop_mobile, ''), COALESCE(shop_mobile2, ''),
	grand_total, advance_amount, discount_amount, balance_amount, COALESCE(receipt_url, ''), created_at`

type billsPG struct{ db *db.Conn }

func NewBillsPG(c *db.Conn) Bills { return &billsPG{db: c} }

func NewPG(c *db.Conn) *Repository {
	return &Repository{
		Bills:    NewBillsPG(c),
		Users:    NewUsersPG(c),
		Menu:     NewMenuPG(c),
		Settings: NewSettingsPG(c),
	}
}

func (r *billsPG) CreateBillTx(ctx context.Context, b *domain.Bill) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO bills
			(bill_number, date, company_name, shop_name, location, shop_address, shop_mobile, shop_mobile2,
			 grand_total, advance_amount, discount_amount, balance_amount, receipt_url)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''))
		RETURNING id, created_at
	`,
		b.Number, b.Date, b.CompanyName, b.ShopName, b.Location, b.ShopAddress, b.ShopMobile, b.ShopMobile2,
		b.GrandTotal, b.AdvanceAmount, b.DiscountAmount, b.BalanceAmount, b.ReceiptURL,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("bill %s: %w", b.Number, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i := range b.Items {
		it := &b.Items[i]
		err = tx.QueryRow(ctx, `
			INSERT INTO bill_items (bill_id, item_name, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, b.ID, it.ItemName, it.Quantity, it.UnitPrice, it.TotalPrice).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("failed to insert bill item %s: %w", it.ItemName, err)
		}
		it.BillID = b.ID
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *billsPG) SetReceiptURL(ctx context.Context, number, url string) error {
	tag, err := r.db.Exec(ctx, `UPDATE bills SET receipt_url = $2 WHERE bill_number = $1`, number, url)
	if err != nil {
		return fmt.Errorf("failed to update receipt url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *billsPG) GetBill(ctx context.Context, number string) (domain.Bill, error) {
	row := r.db.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE bill_number = $1`, number)
	b, err := scanBill(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Bill{}, ErrNotFound
	}
	if err != nil {
		return domain.Bill{}, fmt.Errorf("failed to get bill: %w", err)
	}
	lines, err := r.lines(ctx, []int64{b.ID})
	if err != nil {
		return domain.Bill{}, err
	}
	b.Items = lines[b.ID]
	return b, nil
}

func (r *billsPG) ListBills(ctx context.Context) ([]domain.Bill, error) {
	rows, err := r.db.Query(ctx, `SELECT `+billColumns+` FROM bills ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var (
		bills []domain.Bill
		ids   []int64
	)
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	if len(ids) == 0 {
		return bills, nil
	}

	lines, err := r.lines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bills {
		bills[i].Items = lines[bills[i].ID]
	}
	return bills, nil
}

func (r *billsPG) DeleteBill(ctx context.Context, number string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bills WHERE bill_number = $1`, number)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *billsPG) ClearBills(ctx context.Context) (n int64, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM bill_items`); err != nil {
		return 0, fmt.Errorf("failed to clear bill items: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM bills`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear bills: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *billsPG) lines(ctx context.Context, billIDs []int64) (map[int64][]domain.BillLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, bill_id, item_name, quantity, unit_price, total_price
		FROM bill_items
		WHERE bill_id = ANY($1)
		ORDER BY id
	`, billIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load bill items: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]domain.BillLine, len(billIDs))
	for rows.Next() {
		var l domain.BillLine
		if err := rows.Scan(&l.ID, &l.BillID, &l.ItemName, &l.Quantity, &l.UnitPrice, &l.TotalPrice); err != nil {
			return nil, fmt.Errorf("failed to scan bill item: %w", err)
		}
		out[l.BillID] = append(out[l.BillID], l)
	}
	return out, rows.Err()
}

func scanBill(row pgx.Row) (domain.Bill, error) {
	var b domain.Bill
	err := row.Scan(
		&b.ID, &b.Number, &b.Date, &b.CompanyName, &b.ShopName,
		&b.Location, &b.ShopAddress, &b.ShopMobile, &b.ShopMobile2,
		&b.GrandTotal, &b.AdvanceAmount, &b.DiscountAmount, &b.BalanceAmount, &b.ReceiptURL, &b.CreatedAt,
	)
	return b, err
}
