package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"pos-billing/internal/domain"
)

// BillPublisher fans bill.generated events out on the bills exchange.
type BillPublisher struct{ c *Client }

func NewBillPublisher(c *Client) *BillPublisher { return &BillPublisher{c: c} }

func (p *BillPublisher) PublishBillGenerated(ctx context.Context, ev domain.BillGenerated) error {
	if ev.Event == "" {
		ev.Event = domain.EventBillGenerated
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.c.PublishPersistent(ctx, BillsExchange, "", ev.BillNumber, body)
}
