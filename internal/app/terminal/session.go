package terminal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"pos-billing/internal/cart"
)

const helpText = `Commands:
  menu                          list items and variant groups
  pick <item-id>                select a menu item
  variant <picker-id> <option>  choose a variant for the open picker
  qty <n>                       confirm quantity for the selected item
  rm <row>                      remove a row (1-based)
  advance <amount>              set the advance paid
  discount <amount>             set the discount
  show                          redraw the bill
  reset                         start a new bill
  submit [location] [date]      generate the bill (date dd/mm/yyyy or yyyy-mm-dd)
  help                          this text
  quit                          leave
`

// Session maps terminal commands onto one cart.
type Session struct {
	m        *cart.Manager
	view     *TextView
	location string
	wg       sync.WaitGroup
}

func NewSession(m *cart.Manager, view *TextView, defaultLocation string) *Session {
	return &Session{m: m, view: view, location: defaultLocation}
}

// Exec runs one command line and reports whether the operator asked to quit.
func (s *Session) Exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch cmd {
	case "menu":
		s.printMenu()
	case "pick":
		if len(args) != 1 {
			s.view.Printf("usage: pick <item-id>\n")
			return false
		}
		it, ok := s.m.Catalog().Item(args[0])
		if !ok {
			s.view.Printf("! unknown item %q, see menu\n", args[0])
			return false
		}
		s.m.SelectMenuItem(it.ID, it.Name, it.Price)
	case "variant":
		if len(args) < 2 {
			s.view.Printf("usage: variant <picker-id> <option>\n")
			return false
		}
		pickerID := args[0]
		option := strings.Join(args[1:], " ")
		var parent string
		if p, ok := s.m.Catalog().Picker(pickerID); ok {
			parent = p.Item
		}
		s.m.ChooseVariant(pickerID, option)
		_ = s.m.ResolveVariant(pickerID, parent)
	case "qty":
		_ = s.m.ConfirmQuantity(rest)
	case "rm", "remove":
		n, err := strconv.Atoi(rest)
		if err != nil {
			s.view.Printf("usage: rm <row>\n")
			return false
		}
		s.m.RemoveLineItem(n - 1)
	case "advance":
		s.m.SetAdvance(rest)
	case "discount":
		s.m.SetDiscount(rest)
	case "show":
		s.m.RecomputeAndRender()
	case "reset":
		s.m.ResetCart()
	case "submit":
		location, date := splitSubmitArgs(args)
		if location == "" {
			location = s.location
		}
		s.submit(ctx, location, date)
	case "help", "?":
		s.view.Printf("%s", helpText)
	case "quit", "exit":
		return true
	default:
		s.view.Printf("! unknown command %q, type help\n", cmd)
	}
	return false
}

func (s *Session) submit(ctx context.Context, location, date string) {
	if len(s.m.Items()) == 0 {
		_, _ = s.m.SubmitBill(ctx, location, date)
		return
	}
	s.view.Printf("Submitting bill...\n")
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, _ = s.m.SubmitBill(ctx, location, date)
	}()
}

// Wait blocks until in-flight submissions finish.
func (s *Session) Wait() { s.wg.Wait() }

func (s *Session) printMenu() {
	cat := s.m.Catalog()
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, it := range cat.Items() {
		price := strconv.FormatFloat(it.Price, 'f', 2, 64)
		if p, ok := cat.PickerFor(it.Name); ok {
			price = "variants: " + p.ID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Name, price)
	}
	_ = tw.Flush()
	s.view.Printf("%s", b.String())
}

// splitSubmitArgs treats a trailing date-looking argument as the bill date
// and the rest as the location.
func splitSubmitArgs(args []string) (location, date string) {
	if n := len(args); n > 0 && isDate(args[n-1]) {
		date = args[n-1]
		args = args[:n-1]
	}
	return strings.Join(args, " "), date
}

func isDate(s string) bool {
	for _, layout := range []string{"02/01/2006", "2006-01-02"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
