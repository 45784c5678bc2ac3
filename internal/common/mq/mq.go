package mq

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"pos-billing/internal/common/config"
)

const (
	BillsExchange      = "bills_fanout"
	DeadLetterExchange = "bills_dlx"
	NotificationsQueue = "bills.notifications"
	DeadLetterQueue    = "bills.dlq"
	deadLetterKey      = "dlq"
)

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	acks <-chan amqp.Confirmation
	mu   sync.Mutex // publishes wait for their own confirm
}

// URL builds the AMQP URI. An empty or "/" vhost maps to the broker default.
func URL(c config.MQ) string {
	vhost := c.VHost
	if vhost == "/" {
		vhost = ""
	}
	u := url.URL{
		Scheme:  "amqp",
		User:    url.UserPassword(c.User, c.Pass),
		Host:    net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:    "/" + vhost,
		RawPath: "/" + url.PathEscape(vhost),
	}
	return u.String()
}

func Dial(c config.MQ) (*Client, error) {
	conn, err := amqp.Dial(URL(c))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return &Client{conn: conn, ch: ch, acks: acks}, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Client) Ping() error {
	if c == nil || c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// NotifyClose reports channel closures so consumers can stop cleanly.
func (c *Client) NotifyClose() <-chan *amqp.Error {
	return c.ch.NotifyClose(make(chan *amqp.Error, 1))
}

func (c *Client) DeclareAll() error {
	if c == nil || c.ch == nil {
		return fmt.Errorf("nil channel")
	}
	if err := c.ch.ExchangeDeclare(BillsExchange, "fanout", true, false, false, false, nil); err != nil {
		return err
	}
	if err := c.ch.ExchangeDeclare(DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	_, err := c.ch.QueueDeclare(NotificationsQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    DeadLetterExchange,
		"x-dead-letter-routing-key": deadLetterKey,
	})
	if err != nil {
		return err
	}
	if _, err = c.ch.QueueDeclare(DeadLetterQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := c.ch.QueueBind(NotificationsQueue, "", BillsExchange, false, nil); err != nil {
		return err
	}
	return c.ch.QueueBind(DeadLetterQueue, deadLetterKey, DeadLetterExchange, false, nil)
}

// PublishPersistent publishes body as a persistent JSON message and waits for
// the broker's confirm or ctx.
func (c *Client) PublishPersistent(ctx context.Context, exchange, key, correlationID string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tag := c.ch.GetNextPublishSeqNo()
	err := c.ch.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		MessageId:     uuid.NewString(),
		CorrelationId: correlationID,
		Timestamp:     time.Now().UTC(),
		ContentType:   "application/json",
		Body:          body,
	})
	if err != nil {
		return err
	}
	return awaitConfirm(ctx, c.acks, tag)
}

// awaitConfirm reads confirms until the one for tag arrives. Confirms for
// earlier tags belong to publishes whose caller gave up waiting and are
// dropped.
func awaitConfirm(ctx context.Context, acks <-chan amqp.Confirmation, tag uint64) error {
	for {
		select {
		case conf, ok := <-acks:
			if !ok {
				return errors.New("confirm channel closed")
			}
			if conf.DeliveryTag < tag {
				continue
			}
			if !conf.Ack {
				return fmt.Errorf("publish NACK from broker (tag %d)", conf.DeliveryTag)
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	if err := c.ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	return c.ch.Consume(queue, consumer, false, false, false, false, nil)
}
