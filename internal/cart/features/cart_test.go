package features

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"pos-billing/internal/cart"
	"pos-billing/internal/catalog"
	"pos-billing/internal/domain"
)

type pickerView struct {
	cart.NopView
	visible string
}

func (v *pickerView) ShowVariantPicker(id string) { v.visible = id }
func (v *pickerView) HideVariantPickers()         { v.visible = "" }

type countingSubmitter struct{ calls int }

func (s *countingSubmitter) Submit(context.Context, domain.BillRequest) (domain.BillResponse, error) {
	s.calls++
	return domain.BillResponse{Status: domain.StatusSuccess, ViewURL: "/view_bill/BILL-1"}, nil
}

type cartTestContext struct {
	manager   *cart.Manager
	view      *pickerView
	submitter *countingSubmitter
	err       error
}

func (c *cartTestContext) reset() {
	c.view = &pickerView{}
	c.submitter = &countingSubmitter{}
	c.manager = cart.NewManager(catalog.Default(), c.view, c.submitter)
	c.err = nil
}

func (c *cartTestContext) anEmptyCart() error {
	c.reset()
	return nil
}

func (c *cartTestContext) iAddAtWithQuantity(name string, price float64, qty string) error {
	c.manager.SelectMenuItem(name, name, price)
	c.err = c.manager.ConfirmQuantity(qty)
	return nil
}

func (c *cartTestContext) iPickTheMenuItem(name string) error {
	for _, it := range c.manager.Catalog().Items() {
		if it.Name == name {
			c.manager.SelectMenuItem(it.ID, it.Name, it.Price)
			return nil
		}
	}
	return fmt.Errorf("no menu item named %q", name)
}

func (c *cartTestContext) thePickerIsShown(id string) error {
	if c.view.visible != id {
		return fmt.Errorf("expected picker %q visible, got %q", id, c.view.visible)
	}
	return nil
}

func (c *cartTestContext) iChooseInPicker(option, pickerID string) error {
	p, ok := c.manager.Catalog().Picker(pickerID)
	if !ok {
		return fmt.Errorf("unknown picker %q", pickerID)
	}
	c.manager.ChooseVariant(pickerID, option)
	return c.manager.ResolveVariant(pickerID, p.Item)
}

func (c *cartTestContext) iConfirmQuantity(qty string) error {
	c.err = c.manager.ConfirmQuantity(qty)
	return nil
}

func (c *cartTestContext) iSetTheDiscountTo(raw string) error {
	c.manager.SetDiscount(raw)
	return nil
}

func (c *cartTestContext) iSetTheAdvanceTo(raw string) error {
	c.manager.SetAdvance(raw)
	return nil
}

func (c *cartTestContext) iRemoveRow(index int) error {
	c.manager.RemoveLineItem(index)
	return nil
}

func (c *cartTestContext) iSubmitTheBillFor(location string) error {
	_, c.err = c.manager.SubmitBill(context.Background(), location, "")
	return nil
}

func (c *cartTestContext) find(name string) (cart.LineItem, error) {
	for _, it := range c.manager.Items() {
		if it.Name == name {
			return it, nil
		}
	}
	return cart.LineItem{}, fmt.Errorf("no line item %q", name)
}

func (c *cartTestContext) theLineTotalOfIs(name string, want float64) error {
	it, err := c.find(name)
	if err != nil {
		return err
	}
	if it.Total != want {
		return fmt.Errorf("expected line total %.2f, got %.2f", want, it.Total)
	}
	return nil
}

func (c *cartTestContext) hasQuantity(name string, want int) error {
	it, err := c.find(name)
	if err != nil {
		return err
	}
	if it.Quantity != want {
		return fmt.Errorf("expected quantity %d, got %d", want, it.Quantity)
	}
	return nil
}

func (c *cartTestContext) theGrandTotalIs(want float64) error {
	if got := c.manager.Summary().GrandTotal; got != want {
		return fmt.Errorf("expected grand total %.2f, got %.2f", want, got)
	}
	return nil
}

func (c *cartTestContext) theBalanceDueIs(want float64) error {
	if got := c.manager.Summary().BalanceDue(); got != want {
		return fmt.Errorf("expected balance due %.2f, got %.2f", want, got)
	}
	return nil
}

func (c *cartTestContext) theCartIsEmpty() error {
	if n := len(c.manager.Items()); n != 0 {
		return fmt.Errorf("expected empty cart, got %d items", n)
	}
	return nil
}

func (c *cartTestContext) theQuantityIsRejected() error {
	if !errors.Is(c.err, cart.ErrInvalidQuantity) {
		return fmt.Errorf("expected invalid quantity error, got %v", c.err)
	}
	return nil
}

func (c *cartTestContext) theSubmissionFailsWithStatus(status string) error {
	var cartErr *cart.Error
	if !errors.As(c.err, &cartErr) {
		return fmt.Errorf("expected cart error, got %v", c.err)
	}
	if cartErr.Code.String() != status {
		return fmt.Errorf("expected status %s, got %s", status, cartErr.Code)
	}
	return nil
}

func (c *cartTestContext) noRequestWasSent() error {
	if c.submitter.calls != 0 {
		return fmt.Errorf("expected no request, got %d", c.submitter.calls)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^I add "([^"]*)" at (\d+(?:\.\d+)?) with quantity "([^"]*)"$`, tc.iAddAtWithQuantity)
	ctx.Step(`^I pick the menu item "([^"]*)"$`, tc.iPickTheMenuItem)
	ctx.Step(`^I choose "([^"]*)" in picker "([^"]*)"$`, tc.iChooseInPicker)
	ctx.Step(`^I confirm quantity "([^"]*)"$`, tc.iConfirmQuantity)
	ctx.Step(`^I set the discount to "([^"]*)"$`, tc.iSetTheDiscountTo)
	ctx.Step(`^I set the advance to "([^"]*)"$`, tc.iSetTheAdvanceTo)
	ctx.Step(`^I remove row (-?\d+)$`, tc.iRemoveRow)
	ctx.Step(`^I submit the bill for "([^"]*)"$`, tc.iSubmitTheBillFor)

	ctx.Step(`^the picker "([^"]*)" is shown$`, tc.thePickerIsShown)
	ctx.Step(`^the line total of "([^"]*)" is (\d+(?:\.\d+)?)$`, tc.theLineTotalOfIs)
	ctx.Step(`^"([^"]*)" has quantity (\d+)$`, tc.hasQuantity)
	ctx.Step(`^the grand total is (\d+(?:\.\d+)?)$`, tc.theGrandTotalIs)
	ctx.Step(`^the balance due is (\d+(?:\.\d+)?)$`, tc.theBalanceDueIs)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the quantity is rejected$`, tc.theQuantityIsRejected)
	ctx.Step(`^the submission fails with status "([^"]*)"$`, tc.theSubmissionFailsWithStatus)
	ctx.Step(`^no request was sent$`, tc.noRequestWasSent)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
