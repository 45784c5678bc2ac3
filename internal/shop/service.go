// Package shop manages the stored menu and the per-account shop profile that
// is stamped on every bill.
package shop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"pos-billing/internal/auth"
	"pos-billing/internal/catalog"
	"pos-billing/internal/common/config"
	"pos-billing/internal/common/logger"
	"pos-billing/internal/domain"
	"pos-billing/internal/repository"
)

var (
	ErrValidation = errors.New("invalid shop data")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
)

const defaultCategory = "Main"

// column widths of shop_settings
var settingsLimits = []struct {
	field string
	max   int
	get   func(domain.ShopSettings) string
}{
	{"company_name", 150, func(s domain.ShopSettings) string { return s.CompanyName }},
	{"shop_name", 150, func(s domain.ShopSettings) string { return s.ShopName }},
	{"address", 300, func(s domain.ShopSettings) string { return s.Address }},
	{"mobile", 20, func(s domain.ShopSettings) string { return s.Mobile }},
	{"mobile2", 20, func(s domain.ShopSettings) string { return s.Mobile2 }},
}

type Service struct {
	menu     repository.Menu
	settings repository.Settings
	defaults domain.ShopSettings
	owner    string
	log      *logger.Logger
}

type Option func(*Service)

// WithOwner names the account whose settings apply when a request carries no
// user, i.e. when auth is disabled.
func WithOwner(username string) Option { return func(s *Service) { s.owner = username } }

func WithLogger(l *logger.Logger) Option { return func(s *Service) { s.log = l } }

func NewService(menu repository.Menu, settings repository.Settings, defaults config.Shop, opts ...Option) *Service {
	s := &Service{
		menu:     menu,
		settings: settings,
		defaults: FromConfig(defaults),
		log:      logger.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func FromConfig(c config.Shop) domain.ShopSettings {
	return domain.ShopSettings{
		CompanyName: c.CompanyName,
		ShopName:    c.ShopName,
		Address:     c.Address,
		Mobile:      c.Mobile,
		Mobile2:     c.Mobile2,
	}
}

// SeedMenu stores cfg as the menu when nothing is stored yet.
func (s *Service) SeedMenu(ctx context.Context, cfg catalog.Config) error {
	if _, err := catalog.New(cfg); err != nil {
		return err
	}
	n, err := s.menu.SeedItems(ctx, cfg.MenuItems())
	if err != nil {
		return fmt.Errorf("failed to seed menu: %w", err)
	}
	if n > 0 {
		s.log.Info("menu_seeded", map[string]any{"items": n})
	}
	return nil
}

func (s *Service) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	return s.menu.ListItems(ctx)
}

// AddItem stores a new plain item, or a new option when it.Picker is set. The
// resulting menu must still form a valid catalog.
func (s *Service) AddItem(ctx context.Context, it domain.MenuItem) (domain.MenuItem, error) {
	it.ID = 0
	it.Name = strings.TrimSpace(it.Name)
	it.Category = strings.TrimSpace(it.Category)
	it.Picker = strings.TrimSpace(it.Picker)
	if it.Name == "" {
		return domain.MenuItem{}, fmt.Errorf("%w: item name is required", ErrValidation)
	}
	if it.Price < 0 || math.IsNaN(it.Price) || math.IsInf(it.Price, 0) {
		return domain.MenuItem{}, fmt.Errorf("%w: price must be a non-negative number", ErrValidation)
	}

	existing, err := s.menu.ListItems(ctx)
	if err != nil {
		return domain.MenuItem{}, err
	}
	if it.Picker != "" {
		for _, e := range existing {
			if e.Picker != it.Picker {
				continue
			}
			if it.Category == "" {
				it.Category = e.Category
			} else if it.Category != e.Category {
				return domain.MenuItem{}, fmt.Errorf("%w: picker %q belongs to %q", ErrValidation, it.Picker, e.Category)
			}
			break
		}
		if it.Category == "" {
			return domain.MenuItem{}, fmt.Errorf("%w: a new picker needs the parent item as category", ErrValidation)
		}
		it.Key = catalog.VariantKey(it.Picker, it.Name)
	} else {
		it.Key = catalog.Slug(it.Name)
		if it.Key == "" {
			return domain.MenuItem{}, fmt.Errorf("%w: item name %q has no letters or digits", ErrValidation, it.Name)
		}
		if it.Category == "" {
			it.Category = defaultCategory
		}
	}
	for _, e := range existing {
		if e.Key == it.Key {
			return domain.MenuItem{}, fmt.Errorf("%w: item %q", ErrConflict, it.Name)
		}
	}
	if _, err := catalog.New(catalog.FromMenu(append(existing, it))); err != nil {
		return domain.MenuItem{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.menu.AddItem(ctx, &it); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.MenuItem{}, fmt.Errorf("%w: item %q", ErrConflict, it.Name)
		}
		return domain.MenuItem{}, err
	}
	s.log.Info("menu_item_added", map[string]any{"id": it.ID, "key": it.Key, "price": it.Price})
	return it, nil
}

// UpdatePrices applies every price in prices after checking all of them.
func (s *Service) UpdatePrices(ctx context.Context, prices map[int64]float64) error {
	if len(prices) == 0 {
		return fmt.Errorf("%w: no prices given", ErrValidation)
	}
	for id, p := range prices {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: price for item %d must be a non-negative number", ErrValidation, id)
		}
	}
	for id, p := range prices {
		err := s.menu.UpdatePrice(ctx, id, p)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: menu item %d", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
	}
	s.log.Info("menu_prices_updated", map[string]any{"count": len(prices)})
	return nil
}

func (s *Service) DeleteItem(ctx context.Context, id int64) (domain.MenuItem, error) {
	it, err := s.menu.DeleteItem(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.MenuItem{}, fmt.Errorf("%w: menu item %d", ErrNotFound, id)
	}
	if err != nil {
		return domain.MenuItem{}, err
	}
	s.log.Info("menu_item_deleted", map[string]any{"id": id, "key": it.Key})
	return it, nil
}

// Profile returns the shop settings for the user in ctx. Without a user, or
// when that user has none stored, the oldest stored profile is used, then the
// configured defaults.
func (s *Service) Profile(ctx context.Context) (domain.ShopSettings, error) {
	if user := s.user(ctx); user != "" {
		st, err := s.settings.GetSettings(ctx, user)
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return domain.ShopSettings{}, err
		}
	}
	st, err := s.settings.FirstSettings(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return s.defaults, nil
	}
	return st, err
}

// SaveSettings stores st as the profile of the user in ctx.
func (s *Service) SaveSettings(ctx context.Context, st domain.ShopSettings) (domain.ShopSettings, error) {
	user := s.user(ctx)
	if user == "" {
		return domain.ShopSettings{}, fmt.Errorf("%w: no account to store settings for", ErrValidation)
	}
	st = trimSettings(st)
	for _, l := range settingsLimits {
		if utf8.RuneCountInString(l.get(st)) > l.max {
			return domain.ShopSettings{}, fmt.Errorf("%w: %s is longer than %d characters", ErrValidation, l.field, l.max)
		}
	}
	err := s.settings.SaveSettings(ctx, user, st)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ShopSettings{}, fmt.Errorf("%w: account %s", ErrNotFound, user)
	}
	if err != nil {
		return domain.ShopSettings{}, err
	}
	s.log.Info("shop_settings_saved", map[string]any{"username": user})
	return st, nil
}

// InitSettings gives username the default profile unless it already has one.
// It fits auth.Service.OnSignup.
func (s *Service) InitSettings(ctx context.Context, username string) error {
	_, err := s.settings.GetSettings(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err := s.settings.SaveSettings(ctx, username, s.defaults); err != nil {
		return fmt.Errorf("failed to create default settings: %w", err)
	}
	s.log.Info("shop_settings_initialised", map[string]any{"username": username})
	return nil
}

func (s *Service) user(ctx context.Context) string {
	if u := auth.UserFromContext(ctx); u != "" {
		return u
	}
	return s.owner
}

func trimSettings(st domain.ShopSettings) domain.ShopSettings {
	st.CompanyName = strings.TrimSpace(st.CompanyName)
	st.ShopName = strings.TrimSpace(st.ShopName)
	st.Address = strings.TrimSpace(st.Address)
	st.Mobile = strings.TrimSpace(st.Mobile)
	st.Mobile2 = strings.TrimSpace(st.Mobile2)
	return st
}
