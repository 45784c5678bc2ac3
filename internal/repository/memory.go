package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pos-billing/internal/domain"
)

// NewMemory returns a process-local repository for tests.
func NewMemory() *Repository {
	users := newUsersMemory()
	return &Repository{Bills: NewBillsMemory(), Users: users, Menu: NewMenuMemory(), Settings: users}
}

type billsMemory struct {
	mu     sync.RWMutex
	nextID int64
	byNum  map[string]domain.Bill
}

func NewBillsMemory() Bills { return &billsMemory{byNum: make(map[string]domain.Bill)} }

func (r *billsMemory) CreateBillTx(_ context.Context, b *domain.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byNum[b.Number]; ok {
		return fmt.Errorf("bill %s: %w", b.Number, ErrDuplicate)
	}
	r.nextID++
	b.ID = r.nextID
	b.CreatedAt = time.Now().UTC()
	for i := range b.Items {
		r.nextID++
		b.Items[i].ID = r.nextID
		b.Items[i].BillID = b.ID
	}
	r.byNum[b.Number] = cloneBill(*b)
	return nil
}

func (r *billsMemory) SetReceiptURL(_ context.Context, number, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byNum[number]
	if !ok {
		return ErrNotFound
	}
	b.ReceiptURL = url
	r.byNum[number] = b
	return nil
}

func (r *billsMemory) GetBill(_ context.Context, number string) (domain.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byNum[number]
	if !ok {
		return domain.Bill{}, ErrNotFound
	}
	return cloneBill(b), nil
}

func (r *billsMemory) ListBills(context.Context) ([]domain.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Bill, 0, len(r.byNum))
	for _, b := range r.byNum {
		out = append(out, cloneBill(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *billsMemory) DeleteBill(_ context.Context, number string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byNum[number]; !ok {
		return ErrNotFound
	}
	delete(r.byNum, number)
	return nil
}

func (r *billsMemory) ClearBills(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.byNum))
	r.byNum = make(map[string]domain.Bill)
	return n, nil
}

func cloneBill(b domain.Bill) domain.Bill {
	b.Items = append([]domain.BillLine(nil), b.Items...)
	return b
}

type usersMemory struct {
	mu     sync.RWMutex
	nextID int64
	byName map[string]domain.User
	shops  map[int64]domain.ShopSettings // by user id
}

func newUsersMemory() *usersMemory {
	return &usersMemory{byName: make(map[string]domain.User), shops: make(map[int64]domain.ShopSettings)}
}

func NewUsersMemory() Users { return newUsersMemory() }

func (r *usersMemory) CreateUser(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[u.Username]; ok {
		return fmt.Errorf("user %s: %w", u.Username, ErrDuplicate)
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now().UTC()
	r.byName[u.Username] = *u
	return nil
}

func (r *usersMemory) FindUser(_ context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byName[username]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return u, nil
}

func (r *usersMemory) UpdateCredentials(_ context.Context, username, newUsername, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byName[username]
	if !ok {
		return ErrNotFound
	}
	if newUsername != "" && newUsername != username {
		if _, taken := r.byName[newUsername]; taken {
			return fmt.Errorf("user %s: %w", newUsername, ErrDuplicate)
		}
		delete(r.byName, username)
		u.Username = newUsername
	}
	if hash != "" {
		u.PasswordHash = hash
	}
	r.byName[u.Username] = u
	return nil
}

func (r *usersMemory) GetSettings(_ context.Context, username string) (domain.ShopSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byName[username]
	if !ok {
		return domain.ShopSettings{}, ErrNotFound
	}
	s, ok := r.shops[u.ID]
	if !ok {
		return domain.ShopSettings{}, ErrNotFound
	}
	return s, nil
}

func (r *usersMemory) FirstSettings(context.Context) (domain.ShopSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		first domain.ShopSettings
		minID int64
	)
	for id, s := range r.shops {
		if minID == 0 || id < minID {
			minID, first = id, s
		}
	}
	if minID == 0 {
		return domain.ShopSettings{}, ErrNotFound
	}
	return first, nil
}

func (r *usersMemory) SaveSettings(_ context.Context, username string, s domain.ShopSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byName[username]
	if !ok {
		return fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	r.shops[u.ID] = s
	return nil
}

type menuMemory struct {
	mu     sync.RWMutex
	nextID int64
	items  []domain.MenuItem
}

func NewMenuMemory() Menu { return &menuMemory{} }

func (r *menuMemory) ListItems(context.Context) ([]domain.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.MenuItem(nil), r.items...), nil
}

func (r *menuMemory) AddItem(_ context.Context, it *domain.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(it)
}

func (r *menuMemory) addLocked(it *domain.MenuItem) error {
	for _, have := range r.items {
		if have.Key == it.Key {
			return fmt.Errorf("menu item %s: %w", it.Key, ErrDuplicate)
		}
	}
	r.nextID++
	it.ID = r.nextID
	r.items = append(r.items, *it)
	return nil
}

func (r *menuMemory) UpdatePrice(_ context.Context, id int64, price float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Price = price
			return nil
		}
	}
	return ErrNotFound
}

func (r *menuMemory) DeleteItem(_ context.Context, id int64) (domain.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items {
		if it.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return it, nil
		}
	}
	return domain.MenuItem{}, ErrNotFound
}

func (r *menuMemory) SeedItems(_ context.Context, items []domain.MenuItem) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) > 0 {
		return 0, nil
	}
	for _, it := range items {
		if err := r.addLocked(&it); err != nil {
			r.items = nil
			return 0, err
		}
	}
	return len(items), nil
}
