package rabbitmq

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"
)

// ErrClosed is returned when the manager's connection has been closed.
var ErrClosed = errors.New("rabbitmq: connection closed")

// Manager owns a single AMQP connection and declares the report topology.
type Manager struct {
	conn   *amqp.Connection
	logger *slog.Logger
	mu     sync.RWMutex
}

func NewManager(url string, logger *slog.Logger) (*Manager, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return &Manager{
		conn:   conn,
		logger: logger,
	}, nil
}

// Channel opens a new channel on the managed connection.
func (m *Manager) Channel() (*amqp.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.conn == nil {
		return nil, ErrClosed
	}
	return m.conn.Channel()
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	return err
}

// DeclareReportTopology ensures the direct exchange exists and, when queue is
// set, binds a durable queue to it under routingKey.
func (m *Manager) DeclareReportTopology(exchange, queue, routingKey string) error {
	ch, err := m.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if queue == "" {
		return nil
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(
		queue,
		routingKey,
		exchange,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue, err)
	}

	m.logger.Info("report topology declared",
		slog.String("exchange", exchange),
		slog.String("queue", queue),
		slog.String("routing_key", routingKey),
	)
	return nil
}
