package amqp

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "github.com/deciofranchini-oss/objetivo/internal/log"
)

// Client wraps a RabbitMQ connection with the ledger's topology: one
// direct exchange, durable queues bound with their own name as routing
// key.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	logger       *applog.Logger
}

func NewClient(url, exchangeName string, logger *applog.Logger, queues ...string) (*Client, error) {
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
		logger:       logger.WithComponent(applog.ComponentAMQP),
	}

	if err := client.setup(queues); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queues: %w", err)
	}

	return client, nil
}

func (c *Client) setup(queues []string) error {
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

	for _, queue := range queues {
		_, err = c.channel.QueueDeclare(
			queue, // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}

		// routing key equals queue name on a direct exchange
		err = c.channel.QueueBind(queue, queue, c.exchangeName, false, nil)
		if err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	return nil
}

func (c *Client) publish(ctx context.Context, queue string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		queue,          // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	return nil
}

// PublishDocumentExtract queues a document for analysis.
func (c *Client) PublishDocumentExtract(ctx context.Context, queue string, msg *DocumentExtractMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, queue, body); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "Published document extract message",
		applog.FieldDocumentID, msg.DocumentID,
		"file_name", msg.FileName,
		"queue", queue)
	return nil
}

// PublishBackupSync queues a transaction for backup.
func (c *Client) PublishBackupSync(ctx context.Context, queue string, msg *BackupSyncMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, queue, body); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "Published backup sync message",
		applog.FieldTxID, msg.TransactionID,
		"queue", queue)
	return nil
}

// ConsumeDocumentExtract delivers extract requests to handler until ctx
// is cancelled. A handler error requeues the delivery; a body that does
// not unmarshal is dropped.
func (c *Client) ConsumeDocumentExtract(ctx context.Context, queue string, handler func(*DocumentExtractMessage) error) error {
	return c.consume(ctx, queue, func(body []byte) (any, error) {
		return DocumentExtractMessageFromJSON(body)
	}, func(msg any) error {
		return handler(msg.(*DocumentExtractMessage))
	})
}

// ConsumeBackupSync delivers backup requests to handler until ctx is
// cancelled.
func (c *Client) ConsumeBackupSync(ctx context.Context, queue string, handler func(*BackupSyncMessage) error) error {
	return c.consume(ctx, queue, func(body []byte) (any, error) {
		return BackupSyncMessageFromJSON(body)
	}, func(msg any) error {
		return handler(msg.(*BackupSyncMessage))
	})
}

func (c *Client) consume(ctx context.Context, queue string, decode func([]byte) (any, error), handle func(any) error) error {
	msgs, err := c.channel.Consume(
		queue, // queue
		"",    // consumer
		false, // auto-ack (we want manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming", "queue", queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			msg, err := decode(delivery.Body)
			if err != nil {
				c.logger.ErrorContext(ctx, "Failed to unmarshal message", "error", err, "queue", queue)
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			if err := handle(msg); err != nil {
				c.logger.ErrorContext(ctx, "Failed to handle message", "error", err, "queue", queue)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
		}
	}
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
