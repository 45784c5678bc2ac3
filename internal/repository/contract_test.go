package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-billing/internal/domain"
)

// The contract helpers run against every backend so the in-memory
// repositories used by the service tests behave like postgres.

func billsContract(t *testing.T, r Bills) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	a := newBill("BILL-20240101100000", base)
	a.Items = append(a.Items, domain.BillLine{ItemName: "Popcorn", Quantity: 1, UnitPrice: 20, TotalPrice: 20})
	require.NoError(t, r.CreateBillTx(ctx, a))
	assert.NotZero(t, a.ID)
	for _, l := range a.Items {
		assert.NotZero(t, l.ID)
		assert.Equal(t, a.ID, l.BillID)
	}
	assert.ErrorIs(t, r.CreateBillTx(ctx, newBill(a.Number, base)), ErrDuplicate)

	b := newBill("BILL-20240101110000", base.Add(time.Hour))
	require.NoError(t, r.CreateBillTx(ctx, b))

	got, err := r.GetBill(ctx, a.Number)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Tea", got.Items[0].ItemName)
	assert.Equal(t, "Popcorn", got.Items[1].ItemName)

	require.NoError(t, r.SetReceiptURL(ctx, a.Number, "https://cdn/receipts/a.txt"))
	got, _ = r.GetBill(ctx, a.Number)
	assert.Equal(t, "https://cdn/receipts/a.txt", got.ReceiptURL)
	assert.ErrorIs(t, r.SetReceiptURL(ctx, "missing", "x"), ErrNotFound)

	list, err := r.ListBills(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.Number, list[0].Number)
	assert.Len(t, list[0].Items, 1)
	assert.Len(t, list[1].Items, 2)

	require.NoError(t, r.DeleteBill(ctx, b.Number))
	assert.ErrorIs(t, r.DeleteBill(ctx, b.Number), ErrNotFound)
	_, err = r.GetBill(ctx, b.Number)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := r.ClearBills(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	list, err = r.ListBills(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func usersContract(t *testing.T, users Users, settings Settings) {
	ctx := context.Background()

	_, err := settings.FirstSettings(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	owner := &domain.User{Username: "owner", PasswordHash: "h1"}
	require.NoError(t, users.CreateUser(ctx, owner))
	require.NoError(t, users.CreateUser(ctx, &domain.User{Username: "clerk", PasswordHash: "h2"}))
	assert.ErrorIs(t, users.CreateUser(ctx, &domain.User{Username: "owner", PasswordHash: "x"}), ErrDuplicate)

	_, err = settings.GetSettings(ctx, "owner")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, settings.SaveSettings(ctx, "nobody", domain.ShopSettings{}), ErrNotFound)

	clerkShop := domain.ShopSettings{CompanyName: "ICEBERG", ShopName: "Counter 2"}
	require.NoError(t, settings.SaveSettings(ctx, "clerk", clerkShop))
	ownerShop := domain.ShopSettings{CompanyName: "ICEBERG", ShopName: "Sri Krishna Bakery", Mobile: "9876543210"}
	require.NoError(t, settings.SaveSettings(ctx, "owner", ownerShop))
	ownerShop.Address = "Main Road"
	require.NoError(t, settings.SaveSettings(ctx, "owner", ownerShop))

	got, err := settings.GetSettings(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, ownerShop, got)

	first, err := settings.FirstSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, ownerShop, first)

	assert.ErrorIs(t, users.UpdateCredentials(ctx, "owner", "clerk", ""), ErrDuplicate)
	assert.ErrorIs(t, users.UpdateCredentials(ctx, "nobody", "x", ""), ErrNotFound)

	require.NoError(t, users.UpdateCredentials(ctx, "owner", "manager", ""))
	_, err = users.FindUser(ctx, "owner")
	assert.ErrorIs(t, err, ErrNotFound)
	renamed, err := users.FindUser(ctx, "manager")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, renamed.ID)
	assert.Equal(t, "h1", renamed.PasswordHash)

	got, err = settings.GetSettings(ctx, "manager")
	require.NoError(t, err)
	assert.Equal(t, ownerShop, got)

	require.NoError(t, users.UpdateCredentials(ctx, "manager", "", "h3"))
	renamed, _ = users.FindUser(ctx, "manager")
	assert.Equal(t, "h3", renamed.PasswordHash)
}

func menuContract(t *testing.T, r Menu) {
	ctx := context.Background()

	seed := []domain.MenuItem{
		{Key: "popcorn", Name: "Popcorn", Price: 20, Category: "Main"},
		{Key: "ice-cream", Name: "Ice Cream", Category: "Main"},
		{Key: "flavor-selection:Vanilla", Name: "Vanilla", Price: 30, Category: "Ice Cream", Picker: "flavor-selection"},
	}
	n, err := r.SeedItems(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = r.SeedItems(ctx, seed)
	require.NoError(t, err)
	assert.Zero(t, n)

	items, err := r.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Popcorn", items[0].Name)
	assert.Equal(t, "flavor-selection", items[2].Picker)
	assert.Equal(t, "Ice Cream", items[2].Category)

	added := &domain.MenuItem{Key: "tea", Name: "Tea", Price: 15, Category: "Main"}
	require.NoError(t, r.AddItem(ctx, added))
	assert.Greater(t, added.ID, items[2].ID)
	assert.ErrorIs(t, r.AddItem(ctx, &domain.MenuItem{Key: "tea", Name: "Tea"}), ErrDuplicate)

	require.NoError(t, r.UpdatePrice(ctx, added.ID, 18))
	assert.ErrorIs(t, r.UpdatePrice(ctx, added.ID+100, 1), ErrNotFound)

	deleted, err := r.DeleteItem(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Popcorn", deleted.Name)
	_, err = r.DeleteItem(ctx, items[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	items, err = r.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Tea", items[2].Name)
	assert.Equal(t, 18.0, items[2].Price)

	// a menu emptied by hand is seeded again on the next start
	for _, it := range items {
		_, err := r.DeleteItem(ctx, it.ID)
		require.NoError(t, err)
	}
	n, err = r.SeedItems(ctx, seed[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
