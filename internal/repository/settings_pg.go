package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pos-billing/internal/common/db"
	"pos-billing/internal/domain"
)

type settingsPG struct{ db *db.Conn }

func NewSettingsPG(c *db.Conn) Settings { return &settingsPG{db: c} }

const settingsColumns = `s.company_name, s.shop_name, s.address, s.mobile, s.mobile2`

func (r *settingsPG) GetSettings(ctx context.Context, username string) (domain.ShopSettings, error) {
	return r.scan(r.db.QueryRow(ctx, `
		SELECT `+settingsColumns+`
		FROM shop_settings s JOIN users u ON u.id = s.user_id
		WHERE u.username = $1
	`, username))
}

func (r *settingsPG) FirstSettings(ctx context.Context) (domain.ShopSettings, error) {
	return r.scan(r.db.QueryRow(ctx, `
		SELECT `+settingsColumns+`
		FROM shop_settings s
		ORDER BY s.user_id
		LIMIT 1
	`))
}

func (r *settingsPG) scan(row pgx.Row) (domain.ShopSettings, error) {
	var s domain.ShopSettings
	err := row.Scan(&s.CompanyName, &s.ShopName, &s.Address, &s.Mobile, &s.Mobile2)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ShopSettings{}, ErrNotFound
	}
	if err != nil {
		return domain.ShopSettings{}, fmt.Errorf("failed to load shop settings: %w", err)
	}
	return s, nil
}

func (r *settingsPG) SaveSettings(ctx context.Context, username string, s domain.ShopSettings) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO shop_settings (user_id, company_name, shop_name, address, mobile, mobile2)
		SELECT id, $2, $3, $4, $5, $6 FROM users WHERE username = $1
		ON CONFLICT (user_id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			shop_name = EXCLUDED.shop_name,
			address = EXCLUDED.address,
			mobile = EXCLUDED.mobile,
			mobile2 = EXCLUDED.mobile2,
			updated_at = NOW()
	`, username, s.CompanyName, s.ShopName, s.Address, s.Mobile, s.Mobile2)
	if err != nil {
		return fmt.Errorf("failed to save shop settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return nil
}
