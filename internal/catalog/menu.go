package catalog

import (
	"strings"
	"unicode"

	"pos-billing/internal/domain"
)

// VariantKey is the stored key of option name in picker pickerID.
func VariantKey(pickerID, name string) string { return pickerID + ":" + name }

// Slug turns an item name into a stable id: "Cotton Candy" -> "cotton-candy".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// MenuItems flattens the config into storable rows: plain items first, then
// every picker option with the parent item name as its category.
func (c Config) MenuItems() []domain.MenuItem {
	out := make([]domain.MenuItem, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, domain.MenuItem{Key: it.ID, Name: it.Name, Price: it.Price, Category: it.Category})
	}
	for _, p := range c.Pickers {
		for _, o := range p.Options {
			out = append(out, domain.MenuItem{
				Key:      VariantKey(p.ID, o.Name),
				Name:     o.Name,
				Price:    o.Price,
				Category: p.Item,
				Picker:   p.ID,
			})
		}
	}
	return out
}

// FromMenu rebuilds a config from stored rows. Pickers keep the order in
// which their first option appears.
func FromMenu(rows []domain.MenuItem) Config {
	var (
		cfg   Config
		index = make(map[string]int)
	)
	for _, r := range rows {
		if r.Picker == "" {
			cfg.Items = append(cfg.Items, Item{ID: r.Key, Name: r.Name, Price: r.Price, Category: r.Category})
			continue
		}
		i, ok := index[r.Picker]
		if !ok {
			i = len(cfg.Pickers)
			index[r.Picker] = i
			cfg.Pickers = append(cfg.Pickers, Picker{ID: r.Picker, Item: r.Category})
		}
		cfg.Pickers[i].Options = append(cfg.Pickers[i].Options, Variant{Name: r.Name, Price: r.Price})
	}
	return cfg
}
