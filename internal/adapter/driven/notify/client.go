package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/domain/repository"
	"github.com/bettergovph/transparency-dashboard/internal/logger"
	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Client publishes run and index messages to a durable direct exchange.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	routingKey   string
}

func NewClient(url, exchangeName, routingKey string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		routingKey:   routingKey,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange: %w", err)
	}
	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// NotifyRunCompleted publishes the gaa.aggregates.completed message.
func (c *Client) NotifyRunCompleted(ctx context.Context, summary *entity.RunSummary) error {
	msg := NewRunCompletedMessage(summary)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	routingKey := c.routingKey
	if routingKey == "" {
		routingKey = EventRunCompleted
	}
	if err := c.publish(ctx, routingKey, body); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("run_id", msg.RunID).
		Str("exchange", c.exchangeName).
		Str("routing_key", routingKey).
		Msg("published run completed message")
	return nil
}

// PublishIndexBatch publishes one batch of documents, routed by index name.
func (c *Client) PublishIndexBatch(ctx context.Context, index string, batch []map[string]string) error {
	msg := NewIndexBatchMessage(index, batch)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, index, body); err != nil {
		return fmt.Errorf("publish index batch: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("batch_id", msg.BatchID).
		Str("index", index).
		Int("documents", len(batch)).
		Msg("published index batch")
	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Provider dials AMQP notifiers.
type Provider struct{}

// NewNotifierProvider cria um novo NotifierProvider.
func NewNotifierProvider() repository.NotifierProvider {
	return &Provider{}
}

func (p *Provider) Open(ctx context.Context, url, exchange, routingKey string) (repository.Notifier, error) {
	return NewClient(url, exchange, routingKey)
}
