package repository

import (
	"context"
	"errors"

	"pos-billing/internal/domain"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type Bills interface {
	// CreateBillTx stores the bill and its lines in one transaction and fills
	// in the generated ids.
	CreateBillTx(ctx context.Context, b *domain.Bill) error
	SetReceiptURL(ctx context.Context, number, url string) error
	GetBill(ctx context.Context, number string) (domain.Bill, error)
	// ListBills returns every bill with its lines, newest first.
	ListBills(ctx context.Context) ([]domain.Bill, error)
	DeleteBill(ctx context.Context, number string) error
	ClearBills(ctx context.Context) (int64, error)
}

type Users interface {
	CreateUser(ctx context.Context, u *domain.User) error
	FindUser(ctx context.Context, username string) (domain.User, error)
	// UpdateCredentials renames username to newUsername and stores hash. An
	// empty newUsername keeps the name, an empty hash keeps the password.
	UpdateCredentials(ctx context.Context, username, newUsername, hash string) error
}

type Menu interface {
	// ListItems returns every stored item in insertion order.
	ListItems(ctx context.Context) ([]domain.MenuItem, error)
	AddItem(ctx context.Context, it *domain.MenuItem) error
	UpdatePrice(ctx context.Context, id int64, price float64) error
	DeleteItem(ctx context.Context, id int64) (domain.MenuItem, error)
	// SeedItems stores items only when the menu is empty and reports how many
	// were written.
	SeedItems(ctx context.Context, items []domain.MenuItem) (int, error)
}

// Settings keeps one shop profile per account.
type Settings interface {
	GetSettings(ctx context.Context, username string) (domain.ShopSettings, error)
	// FirstSettings returns the profile of the oldest account that has one.
	FirstSettings(ctx context.Context) (domain.ShopSettings, error)
	// SaveSettings upserts the profile of an existing account.
	SaveSettings(ctx context.Context, username string, s domain.ShopSettings) error
}

type Repository struct {
	Bills    Bills
	Users    Users
	Menu     Menu
	Settings Settings
}
