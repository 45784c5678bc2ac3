package billing

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"pos-billing/internal/domain"
)

// RenderReceipt lays a bill out as fixed-width text, the form archived to
// object storage and served by /view_bill?format=text.
func RenderReceipt(b domain.Bill, symbol string) string {
	var sb strings.Builder
	money := func(v float64) string { return fmt.Sprintf("%s%.2f", symbol, v) }

	for _, line := range []string{b.CompanyName, b.ShopName, b.ShopAddress} {
		if line != "" {
			sb.WriteString(line + "\n")
		}
	}
	phones := b.ShopMobile
	if b.ShopMobile2 != "" {
		phones += " / " + b.ShopMobile2
	}
	if phones != "" {
		sb.WriteString("Ph: " + phones + "\n")
	}
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	fmt.Fprintf(&sb, "Bill No: %s\n", b.Number)
	fmt.Fprintf(&sb, "Date:    %s\n", b.Date.Format("02/01/2006 15:04"))
	if b.Location != "" {
		fmt.Fprintf(&sb, "Location: %s\n", b.Location)
	}
	sb.WriteString(strings.Repeat("-", 40) + "\n")

	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tItem\tQty\tRate\tAmount\t")
	for i, it := range b.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t\n", i+1, it.ItemName, it.Quantity, money(it.UnitPrice), money(it.TotalPrice))
	}
	_ = tw.Flush()

	sb.WriteString(strings.Repeat("-", 40) + "\n")
	tw = tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Grand Total\t%s\t\n", money(b.GrandTotal))
	if b.AdvanceAmount != 0 {
		fmt.Fprintf(tw, "Advance\t%s\t\n", money(b.AdvanceAmount))
	}
	if b.DiscountAmount != 0 {
		fmt.Fprintf(tw, "Discount\t%s\t\n", money(b.DiscountAmount))
	}
	fmt.Fprintf(tw, "Balance\t%s\t\n", money(b.BalanceAmount))
	_ = tw.Flush()
	return sb.String()
}
