package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	amqp "github.com/rabbitmq/amqp091-go"

	"pos-billing/internal/common/config"
	"pos-billing/internal/common/logger"
	"pos-billing/internal/common/mq"
	"pos-billing/internal/domain"
)

var (
	ErrRequeue = errors.New("requeue")     // nack(requeue=true)
	ErrDLQ     = errors.New("dead_letter") // nack(requeue=false)
)

type Subscriber struct {
	out    io.Writer
	symbol string
	log    *logger.Logger
}

func NewSubscriber(out io.Writer, symbol string, log *logger.Logger) *Subscriber {
	return &Subscriber{out: out, symbol: symbol, log: log}
}

// Process handles one bill.generated message body.
func (s *Subscriber) Process(body []byte) error {
	var ev domain.BillGenerated
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrDLQ, err)
	}
	if ev.BillNumber == "" || (ev.Event != "" && ev.Event != domain.EventBillGenerated) {
		return fmt.Errorf("%w: not a bill.generated event", ErrDLQ)
	}

	_, err := fmt.Fprintf(s.out, "Bill %s generated at %s for %s: %d item(s), total %s%.2f, balance %s%.2f\n",
		ev.BillNumber, ev.Date.Format("02/01/2006 15:04"), orDash(ev.Location), len(ev.Items),
		s.symbol, ev.GrandTotal, s.symbol, ev.Balance)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequeue, err)
	}
	s.log.Info("notification_sent", map[string]any{"bill_number": ev.BillNumber, "receipt_url": ev.ReceiptURL})
	return nil
}

func (s *Subscriber) handle(d amqp.Delivery) {
	err := s.Process(d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrDLQ):
		s.log.Warn("message_dead_lettered", err, map[string]any{"message_id": d.MessageId})
		_ = d.Nack(false, false)
	default:
		s.log.Warn("message_requeued", err, map[string]any{"message_id": d.MessageId})
		_ = d.Nack(false, true)
	}
}

func Run(ctx context.Context, cfg config.App, lg *logger.Logger) error {
	if err := cfg.ValidateSubscriber(); err != nil {
		return err
	}
	c, err := mq.Dial(cfg.Rabbit)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.DeclareAll(); err != nil {
		return fmt.Errorf("failed to declare rabbitmq topology: %w", err)
	}

	const consumer = "notification-subscriber"
	msgs, err := c.Consume(mq.NotificationsQueue, consumer, 10)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", mq.NotificationsQueue, err)
	}
	closed := c.NotifyClose()
	s := NewSubscriber(os.Stdout, cfg.CurrencySymbol, lg)
	lg.Info("consuming", map[string]any{"queue": mq.NotificationsQueue})

	for {
		select {
		case <-ctx.Done():
			lg.Info("graceful_shutdown", nil)
			return nil
		case e := <-closed:
			if e != nil {
				return fmt.Errorf("amqp channel closed: %s", e.Reason)
			}
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			s.handle(d)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
