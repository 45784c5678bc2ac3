package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"pos-billing/internal/billing"
	"pos-billing/internal/cart"
	"pos-billing/internal/catalog"
	"pos-billing/internal/common/config"
	"pos-billing/internal/common/logger"
)

const menuTimeout = 10 * time.Second

// Run drives a cart from in until quit, EOF or ctx cancellation.
func Run(ctx context.Context, cfg config.App, in io.Reader, out io.Writer, lg *logger.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := billing.NewClient(cfg.Terminal.Endpoint,
		billing.WithToken(cfg.Terminal.Token),
		billing.WithClientLogger(lg.Named("billing-client")),
	)
	cat, err := loadCatalog(ctx, client, cfg.Menu, lg)
	if err != nil {
		return err
	}
	view := NewTextView(out, cat, cfg.Terminal.Endpoint)
	m := cart.NewManager(cat, view, client,
		cart.WithCurrency(cfg.CurrencySymbol),
		cart.WithLogger(lg.Named("cart")),
	)
	s := NewSession(m, view, cfg.Terminal.Location)
	defer s.Wait()

	view.Printf("%s POS, billing endpoint %s. Type help for commands.\n", cfg.Shop.ShopName, cfg.Terminal.Endpoint)

	lines, scanErr := readLines(ctx, in)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				return nil
			}
			if s.Exec(ctx, line) {
				return nil
			}
		}
	}
}

// loadCatalog prefers the menu stored by the billing service and falls back
// to the configured one when the service is unreachable or its menu is
// unusable.
func loadCatalog(ctx context.Context, client *billing.Client, fallback catalog.Config, lg *logger.Logger) (*catalog.Catalog, error) {
	fctx, cancel := context.WithTimeout(ctx, menuTimeout)
	defer cancel()

	items, err := client.Menu(fctx)
	if err == nil && len(items) > 0 {
		cat, cerr := catalog.New(catalog.FromMenu(items))
		if cerr == nil {
			lg.Info("menu_loaded", map[string]any{"source": "service", "items": len(items)})
			return cat, nil
		}
		err = cerr
	}
	if err != nil {
		lg.Warn("menu_fetch_failed", err, map[string]any{"fallback": "config"})
	}
	return catalog.New(fallback)
}

// readLines scans in on its own goroutine. lines is closed on EOF, on a read
// error or once ctx is done; the scan error is then available on errc.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()
	return lines, errc
}
