package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-billing/internal/common/config"
	"pos-billing/internal/domain"
	"pos-billing/internal/repository"
)

var fixedNow = time.Date(2024, 3, 5, 14, 30, 15, 0, time.UTC)

var testShop = config.Shop{CompanyName: "ICEBERG", ShopName: "Sri Krishna Bakery", Address: "Main Road", Mobile: "9876543210"}

type fakeArchive struct {
	keys  []string
	body  []byte
	err   error
	onPut func()
}

func (a *fakeArchive) PutReceipt(_ context.Context, key string, body []byte) (string, error) {
	if a.onPut != nil {
		a.onPut()
	}
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, key)
	a.body = body
	return "https://cdn.example.com/" + key, nil
}

type fakePublisher struct {
	events      []domain.BillGenerated
	err         error
	ctxErr      error
	hasDeadline bool
}

func (p *fakePublisher) PublishBillGenerated(ctx context.Context, ev domain.BillGenerated) error {
	p.ctxErr = ctx.Err()
	_, p.hasDeadline = ctx.Deadline()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func newTestService(opts ...Option) (*Service, repository.Bills) {
	bills := repository.NewBillsMemory()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(bills, testShop, "₹", opts...), bills
}

func TestBillNumber(t *testing.T) {
	assert.Equal(t, "BILL-20240305143015", BillNumber(fixedNow))
}

func TestParseBillDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"25/12/2023", time.Date(2023, 12, 25, 14, 30, 15, 0, time.UTC)},
		{"2023-12-25", time.Date(2023, 12, 25, 14, 30, 15, 0, time.UTC)},
		{" 01/02/2024 ", time.Date(2024, 2, 1, 14, 30, 15, 0, time.UTC)},
		{"", fixedNow},
		{"yesterday", fixedNow},
		{"31/02/2024", fixedNow},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParseBillDate(tt.raw, fixedNow)), "got %v", ParseBillDate(tt.raw, fixedNow))
		})
	}
}

func TestValidate(t *testing.T) {
	neg := -1.0
	tests := []struct {
		name string
		req  domain.BillRequest
	}{
		{"no items", domain.BillRequest{}},
		{"blank name", domain.BillRequest{Items: []domain.BillItem{{Name: " ", Price: 1, Quantity: 1, Total: 1}}}},
		{"zero quantity", domain.BillRequest{Items: []domain.BillItem{{Name: "Tea", Price: 1, Quantity: 0}}}},
		{"negative price", domain.BillRequest{Items: []domain.BillItem{{Name: "Tea", Price: -1, Quantity: 1}}}},
		{"negative advance", domain.BillRequest{Items: []domain.BillItem{{Name: "Tea", Price: 1, Quantity: 1, Total: 1}}, AdvanceAmount: -5}},
		{"negative balance", domain.BillRequest{Items: []domain.BillItem{{Name: "Tea", Price: 1, Quantity: 1, Total: 1}}, BalanceAmount: &neg}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(tt.req), ErrValidation)
		})
	}
	assert.NoError(t, Validate(sampleRequest()))
}

func TestGenerateStoresBill(t *testing.T) {
	s, bills := newTestService()

	b, err := s.Generate(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "BILL-20240305143015", b.Number)
	assert.True(t, time.Date(2024, 3, 5, 14, 30, 15, 0, time.UTC).Equal(b.Date))
	assert.Equal(t, "ICEBERG", b.CompanyName)
	assert.Equal(t, "Hall A", b.Location)
	assert.Equal(t, 40.0, b.BalanceAmount)

	stored, err := bills.GetBill(context.Background(), b.Number)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, domain.BillLine{ID: stored.Items[0].ID, BillID: b.ID, ItemName: "Tea", Quantity: 2, UnitPrice: 20, TotalPrice: 40}, stored.Items[0])
}

func TestGenerateDerivesBalanceWhenOmitted(t *testing.T) {
	s, _ := newTestService()
	req := sampleRequest()
	req.BalanceAmount = nil
	req.AdvanceAmount = 10
	req.DiscountAmount = 5

	b, err := s.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 25.0, b.BalanceAmount)
}

func TestGenerateMovesPastClashingNumber(t *testing.T) {
	s, _ := newTestService()

	first, err := s.Generate(context.Background(), sampleRequest())
	require.NoError(t, err)
	second, err := s.Generate(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "BILL-20240305143015", first.Number)
	assert.Equal(t, "BILL-20240305143016", second.Number)
}

func TestGenerateRejectsInvalid(t *testing.T) {
	s, bills := newTestService()
	_, err := s.Generate(context.Background(), domain.BillRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	list, _ := bills.ListBills(context.Background())
	assert.Empty(t, list)
}

func TestGenerateArchivesAndPublishes(t *testing.T) {
	arch := &fakeArchive{}
	pub := &fakePublisher{}
	s, bills := newTestService(WithArchive(arch), WithPublisher(pub))

	b, err := s.Generate(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"receipts/BILL-20240305143015.txt"}, arch.keys)
	assert.Contains(t, string(arch.body), "Tea")
	assert.Equal(t, "https://cdn.example.com/receipts/BILL-20240305143015.txt", b.ReceiptURL)

	stored, _ := bills.GetBill(context.Background(), b.Number)
	assert.Equal(t, b.ReceiptURL, stored.ReceiptURL)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, domain.EventBillGenerated, ev.Event)
	assert.Equal(t, b.Number, ev.BillNumber)
	assert.Equal(t, b.ReceiptURL, ev.ReceiptURL)
	assert.Equal(t, []domain.BillItem{{Name: "Tea", Price: 20, Quantity: 2, Total: 40}}, ev.Items)
}

func TestGenerateSurvivesSideEffectFailures(t *testing.T) {
	s, _ := newTestService(
		WithArchive(&fakeArchive{err: errors.New("bucket down")}),
		WithPublisher(&fakePublisher{err: errors.New("broker down")}),
	)

	b, err := s.Generate(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Empty(t, b.ReceiptURL)
}

func TestGeneratePublishesAfterClientCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pub := &fakePublisher{}
	s, _ := newTestService(WithArchive(&fakeArchive{onPut: cancel}), WithPublisher(pub))

	_, err := s.Generate(ctx, sampleRequest())
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.NoError(t, pub.ctxErr)
	assert.True(t, pub.hasDeadline)
}

type fakeProfile struct {
	shop domain.ShopSettings
	err  error
}

func (p fakeProfile) Profile(context.Context) (domain.ShopSettings, error) { return p.shop, p.err }

func TestGenerateUsesStoredProfile(t *testing.T) {
	stored := domain.ShopSettings{CompanyName: "ICEBERG", ShopName: "Counter 2", Address: "Temple Street", Mobile: "9000000001", Mobile2: "9000000002"}
	s, _ := newTestService(WithProfile(fakeProfile{shop: stored}))

	b, err := s.Generate(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "Counter 2", b.ShopName)
	assert.Equal(t, "Temple Street", b.ShopAddress)
	assert.Equal(t, "9000000002", b.ShopMobile2)
}

func TestGenerateFallsBackToConfiguredShop(t *testing.T) {
	s, _ := newTestService(WithProfile(fakeProfile{err: errors.New("db down")}))

	b, err := s.Generate(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, testShop.ShopName, b.ShopName)
	assert.Equal(t, testShop.Address, b.ShopAddress)
}

func TestGetDeleteClear(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService()
	b, err := s.Generate(ctx, sampleRequest())
	require.NoError(t, err)

	got, err := s.Get(ctx, b.Number)
	require.NoError(t, err)
	assert.Equal(t, b.Number, got.Number)

	_, err = s.Get(ctx, "BILL-missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, b.Number))
	assert.ErrorIs(t, s.Delete(ctx, b.Number), ErrNotFound)

	_, err = s.Generate(ctx, sampleRequest())
	require.NoError(t, err)
	n, err := s.ClearHistory(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	list, err := s.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRenderReceipt(t *testing.T) {
	b := domain.Bill{
		Number:         "BILL-1",
		Date:           fixedNow,
		CompanyName:    "ICEBERG",
		ShopName:       "Sri Krishna Bakery",
		ShopMobile:     "9876543210",
		ShopMobile2:    "9123456780",
		Location:       "Hall A",
		GrandTotal:     60,
		AdvanceAmount:  10,
		BalanceAmount:  50,
		Items:          []domain.BillLine{{ItemName: "Ice Cream (Vanilla)", Quantity: 2, UnitPrice: 30, TotalPrice: 60}},
		DiscountAmount: 0,
	}
	out := RenderReceipt(b, "₹")

	assert.Contains(t, out, "ICEBERG")
	assert.Contains(t, out, "Ph: 9876543210 / 9123456780")
	assert.Contains(t, out, "Bill No: BILL-1")
	assert.Contains(t, out, "05/03/2024 14:30")
	assert.Contains(t, out, "Ice Cream (Vanilla)")
	assert.Contains(t, out, "₹60.00")
	assert.Contains(t, out, "Advance")
	assert.NotContains(t, out, "Discount")
	assert.Contains(t, out, "₹50.00")
}
