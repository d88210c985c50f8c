package share

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/rongwang/expense-tracker/internal/report"
	"github.com/rongwang/expense-tracker/internal/session"
)

// publisher is the part of *amqp091.Channel the sharer uses
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPSharer publishes each report as a persistent message on an exchange
type AMQPSharer struct {
	conn       *amqp091.Connection
	channel    publisher
	exchange   string
	routingKey string
	clock      session.Clock
	logger     *slog.Logger
}

// NewAMQPSharer dials url and declares a durable topic exchange. Message
// timestamps come from clock; nil clock or logger use the system defaults.
func NewAMQPSharer(url, exchange, routingKey string, clock session.Clock, logger *slog.Logger) (*AMQPSharer, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return newAMQPSharer(conn, channel, exchange, routingKey, clock, logger), nil
}

func newAMQPSharer(conn *amqp091.Connection, ch publisher, exchange, routingKey string, clock session.Clock, logger *slog.Logger) *AMQPSharer {
	if clock == nil {
		clock = session.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPSharer{
		conn:       conn,
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
		clock:      clock,
		logger:     logger.With("component", "share"),
	}
}

// Publishing builds the message for exp. The body is the rendered file.
func Publishing(exp *report.Export, now time.Time) amqp091.Publishing {
	return amqp091.Publishing{
		ContentType:  exp.ContentType,
		DeliveryMode: amqp091.Persistent,
		MessageId:    exp.ReportID,
		Timestamp:    now,
		Headers: amqp091.Table{
			"filename": exp.Filename,
		},
		Body: exp.Data,
	}
}

func (s *AMQPSharer) Share(ctx context.Context, exp *report.Export) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.channel.PublishWithContext(
		ctx,
		s.exchange,   // exchange
		s.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		Publishing(exp, s.clock.Now()),
	)
	if err != nil {
		return fmt.Errorf("publish report: %w", err)
	}

	s.logger.InfoContext(ctx, "Published report",
		"report_id", exp.ReportID,
		"filename", exp.Filename,
		"bytes", len(exp.Data),
		"exchange", s.exchange)

	return nil
}

func (s *AMQPSharer) Close() error {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
