package terminal

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"pos-billing/internal/cart"
	"pos-billing/internal/catalog"
)

// TextView draws the cart on a line terminal. Submissions finish on their
// own goroutine, so every write is serialised.
type TextView struct {
	mu      sync.Mutex
	out     io.Writer
	catalog *catalog.Catalog
	baseURL string

	picker string
	prompt string
	link   string
}

func NewTextView(out io.Writer, cat *catalog.Catalog, baseURL string) *TextView {
	return &TextView{out: out, catalog: cat, baseURL: strings.TrimRight(baseURL, "/")}
}

func (v *TextView) Printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}

func (v *TextView) ShowVariantPicker(pickerID string) {
	p, ok := v.catalog.Picker(pickerID)
	if !ok {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.picker = pickerID
	fmt.Fprintf(v.out, "Choose %s: variant %s <option>\n", p.Item, p.ID)
	tw := tabwriter.NewWriter(v.out, 0, 0, 2, ' ', 0)
	for _, o := range p.Options {
		fmt.Fprintf(tw, "  %s\t%.2f\n", o.Name, o.Price)
	}
	_ = tw.Flush()
}

func (v *TextView) HideVariantPickers() {
	v.mu.Lock()
	v.picker = ""
	v.mu.Unlock()
}

func (v *TextView) OpenQuantityPrompt(itemName string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.prompt = itemName
	fmt.Fprintf(v.out, "Quantity for %s? (qty <n>)\n", itemName)
}

func (v *TextView) CloseQuantityPrompt() {
	v.mu.Lock()
	v.prompt = ""
	v.mu.Unlock()
}

func (v *TextView) Render(b cart.Board) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(b.Rows) == 0 {
		fmt.Fprintln(v.out, "Bill is empty.")
	} else {
		tw := tabwriter.NewWriter(v.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tItem\tQty\tPrice\tTotal")
		for _, r := range b.Rows {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", r.Index+1, r.Name, r.Quantity, r.Price, r.Total)
		}
		_ = tw.Flush()
	}
	fmt.Fprintf(v.out, "Grand total: %s  Advance+discount: %s  Balance due: %s\n", b.GrandTotal, b.Deductions, b.BalanceDue)
}

func (v *TextView) ClearAdjustments() {
	v.Printf("Advance and discount cleared.\n")
}

func (v *TextView) ShowBillLink(viewURL string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if strings.HasPrefix(viewURL, "/") {
		viewURL = v.baseURL + viewURL
	}
	v.link = viewURL
	fmt.Fprintf(v.out, "Bill generated: %s\n", viewURL)
}

func (v *TextView) HideBillLink() {
	v.mu.Lock()
	v.link = ""
	v.mu.Unlock()
}

// ReportError shows the operator message; causes go to the log instead.
func (v *TextView) ReportError(err error) {
	msg := err.Error()
	var ce *cart.Error
	if errors.As(err, &ce) {
		msg = ce.Message
	}
	v.Printf("! %s\n", msg)
}

// Link is the last bill link shown, or "" after a reset.
func (v *TextView) Link() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.link
}

// Prompt is the item waiting for a quantity, if any.
func (v *TextView) Prompt() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.prompt
}

// Picker is the variant group currently shown, if any.
func (v *TextView) Picker() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.picker
}
