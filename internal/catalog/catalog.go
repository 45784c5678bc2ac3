// Package catalog holds the menu offered at the counter: plain items and the
// variant groups (pickers) that force a sub-choice before a quantity is taken.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

type Item struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name" json:"name"`
	Price    float64 `yaml:"price" json:"price"`
	Category string  `yaml:"category" json:"category"`
}

type Variant struct {
	Name  string  `yaml:"name" json:"name"`
	Price float64 `yaml:"price" json:"price"`
}

// Picker is a variant group attached to a parent item by name.
type Picker struct {
	ID      string    `yaml:"id" json:"id"`
	Item    string    `yaml:"item" json:"item"`
	Options []Variant `yaml:"options" json:"options"`
}

func (p Picker) Option(name string) (Variant, bool) {
	for _, o := range p.Options {
		if o.Name == name {
			return o, true
		}
	}
	return Variant{}, false
}

type Config struct {
	Items   []Item   `yaml:"items" json:"items"`
	Pickers []Picker `yaml:"pickers" json:"pickers"`
}

type Catalog struct {
	items    []Item
	byID     map[string]int
	pickers  []Picker
	pickerID map[string]int
	byParent map[string]int
}

func New(cfg Config) (*Catalog, error) {
	c := &Catalog{
		items:    append([]Item(nil), cfg.Items...),
		byID:     make(map[string]int, len(cfg.Items)),
		pickers:  append([]Picker(nil), cfg.Pickers...),
		pickerID: make(map[string]int, len(cfg.Pickers)),
		byParent: make(map[string]int, len(cfg.Pickers)),
	}
	for i, it := range c.items {
		if strings.TrimSpace(it.ID) == "" || strings.TrimSpace(it.Name) == "" {
			return nil, fmt.Errorf("%w: item #%d needs id and name", ErrInvalidCatalog, i+1)
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("%w: item %q has negative price", ErrInvalidCatalog, it.ID)
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %q", ErrInvalidCatalog, it.ID)
		}
		c.byID[it.ID] = i
	}
	for i, p := range c.pickers {
		if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Item) == "" {
			return nil, fmt.Errorf("%w: picker #%d needs id and item", ErrInvalidCatalog, i+1)
		}
		if _, dup := c.pickerID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate picker id %q", ErrInvalidCatalog, p.ID)
		}
		if _, dup := c.byParent[p.Item]; dup {
			return nil, fmt.Errorf("%w: item %q has more than one picker", ErrInvalidCatalog, p.Item)
		}
		for _, o := range p.Options {
			if strings.TrimSpace(o.Name) == "" {
				return nil, fmt.Errorf("%w: picker %q has an unnamed option", ErrInvalidCatalog, p.ID)
			}
			if o.Price < 0 {
				return nil, fmt.Errorf("%w: option %q in %q has negative price", ErrInvalidCatalog, o.Name, p.ID)
			}
		}
		c.pickerID[p.ID] = i
		c.byParent[p.Item] = i
	}
	return c, nil
}

// Default builds the catalog from DefaultConfig. It panics only if the
// built-in table is broken.
func Default() *Catalog {
	c, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Items() []Item { return append([]Item(nil), c.items...) }

func (c *Catalog) Pickers() []Picker { return append([]Picker(nil), c.pickers...) }

func (c *Catalog) Item(id string) (Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

func (c *Catalog) Picker(id string) (Picker, bool) {
	i, ok := c.pickerID[id]
	if !ok {
		return Picker{}, false
	}
	return c.pickers[i], true
}

// PickerFor reports the variant group an item name requires, if any.
func (c *Catalog) PickerFor(itemName string) (Picker, bool) {
	i, ok := c.byParent[itemName]
	if !ok {
		return Picker{}, false
	}
	return c.pickers[i], true
}
