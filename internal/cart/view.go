package cart

import (
	"context"

	"pos-billing/internal/domain"
)

// View is the presentation side of the cart. The Manager calls it while
// holding its lock, so implementations must not call back into the Manager.
type View interface {
	// ShowVariantPicker reveals one picker; the Manager hides the others first.
	ShowVariantPicker(pickerID string)
	HideVariantPickers()
	OpenQuantityPrompt(itemName string)
	CloseQuantityPrompt()
	Render(b Board)
	// ClearAdjustments blanks the advance and discount inputs.
	ClearAdjustments()
	ShowBillLink(viewURL string)
	HideBillLink()
	ReportError(err error)
}

// Submitter delivers a finished bill to the billing endpoint.
type Submitter interface {
	Submit(ctx context.Context, req domain.BillRequest) (domain.BillResponse, error)
}

type Row struct {
	Index    int
	Name     string
	Quantity int
	Price    string
	Total    string
}

// Board is everything a view needs to draw the bill.
type Board struct {
	Rows       []Row
	Summary    Summary
	GrandTotal string
	Deductions string
	BalanceDue string
}

// NopView ignores every call. Handy for headless use of the Manager.
type NopView struct{}

func (NopView) ShowVariantPicker(string)  {}
func (NopView) HideVariantPickers()       {}
func (NopView) OpenQuantityPrompt(string) {}
func (NopView) CloseQuantityPrompt()      {}
func (NopView) Render(Board)              {}
func (NopView) ClearAdjustments()         {}
func (NopView) ShowBillLink(string)       {}
func (NopView) HideBillLink()             {}
func (NopView) ReportError(error)         {}
