// Package cart keeps the bill being built at the counter: the pending menu
// selection, the ordered line items and the running totals.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pos-billing/internal/catalog"
	"pos-billing/internal/common/logger"
	"pos-billing/internal/domain"
)

// Selection is the menu item waiting for a quantity.
type Selection struct {
	ID    string
	Name  string
	Price float64
}

// LineItem is one row of the bill. Total is Price times Quantity.
type LineItem struct {
	Name     string
	Price    float64
	Quantity int
	Total    float64
}

// Summary holds the derived totals. Balance may go negative when advance and
// discount exceed the grand total; BalanceDue is what gets shown and sent.
type Summary struct {
	GrandTotal float64
	Advance    float64
	Discount   float64
	Balance    float64
}

// BalanceDue is Balance clamped at zero.
func (s Summary) BalanceDue() float64 {
	if s.Balance < 0 {
		return 0
	}
	return s.Balance
}

// State tracks what input the manager expects next.
type State int

const (
	StateIdle State = iota
	StateAwaitingQuantity
	StateAwaitingVariant
)

func (s State) String() string {
	switch s {
	case StateAwaitingQuantity:
		return "awaiting_quantity"
	case StateAwaitingVariant:
		return "awaiting_variant"
	default:
		return "idle"
	}
}

// Manager owns one cart. All methods are safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	catalog   *catalog.Catalog
	view      View
	submitter Submitter
	symbol    string
	log       *logger.Logger

	items       []LineItem
	pending     *Selection
	state       State
	chosen      map[string]string // pickerID -> option; "" is the placeholder
	advanceRaw  string
	discountRaw string
}

// Option configures a Manager.
type Option func(*Manager)

func WithCurrency(symbol string) Option { return func(m *Manager) { m.symbol = symbol } }

func WithLogger(l *logger.Logger) Option { return func(m *Manager) { m.log = l } }

// NewManager returns an empty cart over cat. A nil view is replaced by NopView.
func NewManager(cat *catalog.Catalog, view View, submitter Submitter, opts ...Option) *Manager {
	if view == nil {
		view = NopView{}
	}
	m := &Manager{
		catalog:   cat,
		view:      view,
		submitter: submitter,
		symbol:    "₹",
		log:       logger.Nop(),
		chosen:    make(map[string]string),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// SelectMenuItem handles a tap on a menu item. Items that own a variant picker
// open the picker; anything else becomes the pending selection and opens the
// quantity prompt.
func (m *Manager) SelectMenuItem(id, name string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.view.HideVariantPickers()
	if p, ok := m.catalog.PickerFor(name); ok {
		m.pending = nil
		m.state = StateAwaitingVariant
		m.view.ShowVariantPicker(p.ID)
		m.view.CloseQuantityPrompt()
		m.log.Debug("variant_picker_opened", map[string]any{"item": name, "picker": p.ID})
		return
	}

	m.pending = &Selection{ID: id, Name: name, Price: price}
	m.state = StateAwaitingQuantity
	m.view.OpenQuantityPrompt(name)
	m.log.Debug("item_selected", map[string]any{"id": id, "item": name, "price": price})
}

// ChooseVariant sets the option currently held by a picker.
func (m *Manager) ChooseVariant(pickerID, option string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chosen[pickerID] = option
}

// ResolveVariant turns the option chosen in pickerID into a pending selection
// named "<parentName> (<option>)". It is a no-op while the picker still shows
// its placeholder.
func (m *Manager) ResolveVariant(pickerID, parentName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	option := m.chosen[pickerID]
	if option == "" {
		return nil
	}
	p, ok := m.catalog.Picker(pickerID)
	if !ok {
		err := wrapInvalid(ErrUnknownPicker, "%q", pickerID)
		m.view.ReportError(err)
		return err
	}
	v, ok := p.Option(option)
	if !ok {
		m.chosen[pickerID] = ""
		err := wrapInvalid(ErrUnknownVariant, "%q in %q", option, pickerID)
		m.view.ReportError(err)
		return err
	}

	m.pending = &Selection{
		ID:    pickerID + "-" + v.Name,
		Name:  parentName + " (" + v.Name + ")",
		Price: v.Price,
	}
	m.state = StateAwaitingQuantity
	m.view.OpenQuantityPrompt(m.pending.Name)
	m.chosen[pickerID] = ""
	m.log.Debug("variant_resolved", map[string]any{"picker": pickerID, "item": m.pending.Name, "price": v.Price})
	return nil
}

// ConfirmQuantity adds the pending selection with the parsed quantity. A line
// with the same name is merged, as long as the merged quantity stays within
// MaxQuantity.
func (m *Manager) ConfirmQuantity(raw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		m.view.ReportError(ErrNoSelection)
		return ErrNoSelection
	}
	qty, err := ParseQuantity(raw)
	if err != nil {
		m.view.ReportError(err)
		m.log.Debug("quantity_rejected", map[string]any{"input": raw})
		return err
	}

	sel := *m.pending
	added := false
	for i := range m.items {
		if m.items[i].Name == sel.Name {
			if qty > MaxQuantity-m.items[i].Quantity {
				err := wrapInvalid(ErrInvalidQuantity, "%s would exceed %d", sel.Name, MaxQuantity)
				m.view.ReportError(err)
				return err
			}
			m.items[i].Quantity += qty
			m.items[i].Total = float64(m.items[i].Quantity) * m.items[i].Price
			added = true
			break
		}
	}
	if !added {
		m.items = append(m.items, LineItem{
			Name:     sel.Name,
			Price:    sel.Price,
			Quantity: qty,
			Total:    sel.Price * float64(qty),
		})
	}

	m.renderLocked()
	m.view.CloseQuantityPrompt()
	m.view.HideVariantPickers()
	m.pending = nil
	m.state = StateIdle
	m.log.Info("line_item_added", map[string]any{"item": sel.Name, "quantity": qty})
	return nil
}

// RemoveLineItem drops the row at index; an index outside the cart is ignored.
func (m *Manager) RemoveLineItem(index int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index >= 0 && index < len(m.items) {
		name := m.items[index].Name
		m.items = append(m.items[:index], m.items[index+1:]...)
		m.log.Info("line_item_removed", map[string]any{"item": name, "index": index})
	}
	m.renderLocked()
}

// SetAdvance stores the raw advance text and re-renders. Unparseable text counts as 0.
func (m *Manager) SetAdvance(raw string) Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceRaw = raw
	return m.renderLocked()
}

// SetDiscount is SetAdvance for the discount field.
func (m *Manager) SetDiscount(raw string) Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discountRaw = raw
	return m.renderLocked()
}

// ResetCart empties the cart and the adjustments and hides the last bill link.
func (m *Manager) ResetCart() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil
	m.advanceRaw = ""
	m.discountRaw = ""
	m.view.ClearAdjustments()
	m.renderLocked()
	m.view.HideBillLink()
	m.log.Info("cart_reset", nil)
}

// RecomputeAndRender pushes the current board to the view.
func (m *Manager) RecomputeAndRender() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renderLocked()
}

// SubmitBill sends the current cart to the billing endpoint. The cart is
// left untouched whatever the outcome. The request runs without the lock so
// the counter stays usable while it is in flight.
func (m *Manager) SubmitBill(ctx context.Context, location, date string) (domain.BillResponse, error) {
	m.mu.Lock()
	if len(m.items) == 0 {
		m.view.ReportError(ErrEmptyCart)
		m.mu.Unlock()
		return domain.BillResponse{}, ErrEmptyCart
	}
	if m.submitter == nil {
		e := newSubmitFailed(errors.New("no billing endpoint configured"))
		m.view.ReportError(e)
		m.mu.Unlock()
		return domain.BillResponse{}, e
	}
	req := m.requestLocked(location, date)
	m.mu.Unlock()

	m.log.Info("bill_submitting", map[string]any{"items": len(req.Items), "grand_total": req.GrandTotal, "location": location})
	resp, err := m.submitter.Submit(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		e := newSubmitFailed(err)
		m.view.ReportError(e)
		m.log.Error("bill_submit_failed", err, nil)
		return resp, e
	}
	if !resp.OK() {
		e := newSubmitFailed(fmt.Errorf("billing endpoint answered status %q: %s", resp.Status, resp.Message))
		m.view.ReportError(e)
		m.log.Error("bill_submit_failed", e, map[string]any{"status": resp.Status})
		return resp, e
	}
	m.view.ShowBillLink(resp.ViewURL)
	m.log.Info("bill_submitted", map[string]any{"bill_number": resp.BillNumber, "view_url": resp.ViewURL})
	return resp, nil
}

// Items returns a copy of the line items in insertion order.
func (m *Manager) Items() []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LineItem(nil), m.items...)
}

func (m *Manager) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summaryLocked()
}

// Pending reports the selection awaiting a quantity, if any.
func (m *Manager) Pending() (Selection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return Selection{}, false
	}
	return *m.pending, true
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Catalog() *catalog.Catalog { return m.catalog }

func (m *Manager) summaryLocked() Summary {
	var s Summary
	for _, it := range m.items {
		s.GrandTotal += it.Total
	}
	s.Advance = ParseAmount(m.advanceRaw)
	s.Discount = ParseAmount(m.discountRaw)
	s.Balance = s.GrandTotal - s.Advance - s.Discount
	return s
}

func (m *Manager) renderLocked() Summary {
	s := m.summaryLocked()
	b := Board{
		Rows:       make([]Row, 0, len(m.items)),
		Summary:    s,
		GrandTotal: FormatAmount(m.symbol, s.GrandTotal),
		Deductions: FormatAmount(m.symbol, s.Advance+s.Discount),
		BalanceDue: FormatAmount(m.symbol, s.BalanceDue()),
	}
	for i, it := range m.items {
		b.Rows = append(b.Rows, Row{
			Index:    i,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    FormatAmount(m.symbol, it.Price),
			Total:    FormatAmount(m.symbol, it.Total),
		})
	}
	m.view.Render(b)
	return s
}

func (m *Manager) requestLocked(location, date string) domain.BillRequest {
	s := m.summaryLocked()
	balance := s.BalanceDue()
	req := domain.BillRequest{
		Items:          make([]domain.BillItem, 0, len(m.items)),
		GrandTotal:     s.GrandTotal,
		AdvanceAmount:  s.Advance,
		DiscountAmount: s.Discount,
		BalanceAmount:  &balance,
		Location:       location,
		Date:           date,
	}
	for _, it := range m.items {
		req.Items = append(req.Items, domain.BillItem{
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			Total:    it.Total,
		})
	}
	return req
}
