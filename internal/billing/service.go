// Package billing turns submitted carts into stored bills and serves them back.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pos-billing/internal/common/config"
	"pos-billing/internal/common/logger"
	"pos-billing/internal/domain"
	"pos-billing/internal/repository"
	"pos-billing/internal/storage"
)

var (
	ErrValidation = errors.New("invalid bill")
	ErrNotFound   = errors.New("bill not found")
)

const (
	numberAttempts = 5
	publishTimeout = 5 * time.Second
)

type ReceiptArchive interface {
	PutReceipt(ctx context.Context, key string, body []byte) (string, error)
}

type EventPublisher interface {
	PublishBillGenerated(ctx context.Context, ev domain.BillGenerated) error
}

// ShopProfile supplies the shop details copied onto each bill.
type ShopProfile interface {
	Profile(ctx context.Context) (domain.ShopSettings, error)
}

type Service struct {
	bills     repository.Bills
	shop      config.Shop
	symbol    string
	archive   ReceiptArchive
	publisher EventPublisher
	profile   ShopProfile
	now       func() time.Time
	log       *logger.Logger
}

type Option func(*Service)

func WithArchive(a ReceiptArchive) Option { return func(s *Service) { s.archive = a } }

func WithPublisher(p EventPublisher) Option { return func(s *Service) { s.publisher = p } }

func WithProfile(p ShopProfile) Option { return func(s *Service) { s.profile = p } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithLogger(l *logger.Logger) Option { return func(s *Service) { s.log = l } }

func NewService(bills repository.Bills, shop config.Shop, symbol string, opts ...Option) *Service {
	s := &Service{
		bills:  bills,
		shop:   shop,
		symbol: symbol,
		now:    time.Now,
		log:    logger.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// BillNumber formats the number of a bill generated at t.
func BillNumber(t time.Time) string { return "BILL-" + t.Format("20060102150405") }

// ParseBillDate accepts dd/mm/yyyy or yyyy-mm-dd and keeps now's time of day.
// Anything else yields now.
func ParseBillDate(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}
	for _, layout := range []string{"02/01/2006", "2006-01-02"} {
		d, err := time.ParseInLocation(layout, raw, now.Location())
		if err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), now.Hour(), now.Minute(), now.Second(), 0, now.Location())
		}
	}
	return now
}

func Validate(req domain.BillRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	for i, it := range req.Items {
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("%w: item %d has no name", ErrValidation, i+1)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %q has quantity %d", ErrValidation, it.Name, it.Quantity)
		}
		if it.Price < 0 || it.Total < 0 {
			return fmt.Errorf("%w: item %q has a negative price", ErrValidation, it.Name)
		}
	}
	if req.GrandTotal < 0 || req.AdvanceAmount < 0 || req.DiscountAmount < 0 {
		return fmt.Errorf("%w: amounts must not be negative", ErrValidation)
	}
	if req.BalanceAmount != nil && *req.BalanceAmount < 0 {
		return fmt.Errorf("%w: balance must not be negative", ErrValidation)
	}
	return nil
}

// Generate stores the bill described by req. Archiving the receipt and
// publishing the event happen afterwards and only log on failure.
func (s *Service) Generate(ctx context.Context, req domain.BillRequest) (domain.Bill, error) {
	if err := Validate(req); err != nil {
		return domain.Bill{}, err
	}

	now := s.now()
	balance := req.GrandTotal - req.AdvanceAmount - req.DiscountAmount
	if req.BalanceAmount != nil {
		balance = *req.BalanceAmount
	}

	shop := s.snapshot(ctx)
	b := domain.Bill{
		Date:           ParseBillDate(req.Date, now),
		CompanyName:    shop.CompanyName,
		ShopName:       shop.ShopName,
		Location:       strings.TrimSpace(req.Location),
		ShopAddress:    shop.Address,
		ShopMobile:     shop.Mobile,
		ShopMobile2:    shop.Mobile2,
		GrandTotal:     req.GrandTotal,
		AdvanceAmount:  req.AdvanceAmount,
		DiscountAmount: req.DiscountAmount,
		BalanceAmount:  balance,
		Items:          make([]domain.BillLine, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		b.Items = append(b.Items, domain.BillLine{
			ItemName:   it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.Price,
			TotalPrice: it.Total,
		})
	}

	// Numbers have one-second resolution; a clash moves to the next second.
	var err error
	for i := 0; i < numberAttempts; i++ {
		b.Number = BillNumber(now.Add(time.Duration(i) * time.Second))
		err = s.bills.CreateBillTx(ctx, &b)
		if !errors.Is(err, repository.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return domain.Bill{}, fmt.Errorf("failed to store bill: %w", err)
	}
	s.log.Info("bill_generated", map[string]any{"bill_number": b.Number, "grand_total": b.GrandTotal, "items": len(b.Items)})

	s.archiveReceipt(ctx, &b)
	s.publish(ctx, b)
	return b, nil
}

// snapshot returns the stored shop profile, or the configured one when no
// profile source is set or it fails.
func (s *Service) snapshot(ctx context.Context) domain.ShopSettings {
	fallback := domain.ShopSettings{
		CompanyName: s.shop.CompanyName,
		ShopName:    s.shop.ShopName,
		Address:     s.shop.Address,
		Mobile:      s.shop.Mobile,
		Mobile2:     s.shop.Mobile2,
	}
	if s.profile == nil {
		return fallback
	}
	p, err := s.profile.Profile(ctx)
	if err != nil {
		s.log.Warn("shop_profile_unavailable", err, nil)
		return fallback
	}
	return p
}

func (s *Service) archiveReceipt(ctx context.Context, b *domain.Bill) {
	if s.archive == nil {
		return
	}
	key := storage.ReceiptKey(b.Number)
	url, err := s.archive.PutReceipt(ctx, key, []byte(RenderReceipt(*b, s.symbol)))
	if err != nil {
		s.log.Warn("receipt_archive_failed", err, map[string]any{"bill_number": b.Number})
		return
	}
	if err := s.bills.SetReceiptURL(ctx, b.Number, url); err != nil {
		s.log.Warn("receipt_url_update_failed", err, map[string]any{"bill_number": b.Number})
		return
	}
	b.ReceiptURL = url
}

func (s *Service) publish(ctx context.Context, b domain.Bill) {
	if s.publisher == nil {
		return
	}
	ev := domain.BillGenerated{
		Event:      domain.EventBillGenerated,
		BillNumber: b.Number,
		Date:       b.Date,
		Location:   b.Location,
		GrandTotal: b.GrandTotal,
		Balance:    b.BalanceAmount,
		ReceiptURL: b.ReceiptURL,
		Items:      make([]domain.BillItem, 0, len(b.Items)),
	}
	for _, l := range b.Items {
		ev.Items = append(ev.Items, domain.BillItem{Name: l.ItemName, Price: l.UnitPrice, Quantity: l.Quantity, Total: l.TotalPrice})
	}
	// The bill is already stored, so a client hanging up must not abort the
	// event halfway through the broker confirm.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishBillGenerated(pctx, ev); err != nil {
		s.log.Warn("bill_event_publish_failed", err, map[string]any{"bill_number": b.Number})
		return
	}
	s.log.Debug("bill_event_published", map[string]any{"bill_number": b.Number})
}

func (s *Service) Get(ctx context.Context, number string) (domain.Bill, error) {
	b, err := s.bills.GetBill(ctx, number)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Bill{}, fmt.Errorf("%w: %s", ErrNotFound, number)
	}
	return b, err
}

func (s *Service) History(ctx context.Context) ([]domain.Bill, error) {
	return s.bills.ListBills(ctx)
}

func (s *Service) Delete(ctx context.Context, number string) error {
	err := s.bills.DeleteBill(ctx, number)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, number)
	}
	if err == nil {
		s.log.Info("bill_deleted", map[string]any{"bill_number": number})
	}
	return err
}

func (s *Service) ClearHistory(ctx context.Context) (int64, error) {
	n, err := s.bills.ClearBills(ctx)
	if err == nil {
		s.log.Info("history_cleared", map[string]any{"deleted": n})
	}
	return n, err
}

func (s *Service) Symbol() string { return s.symbol }
