package services

import (
	"context"
	"encoding/json"

	"github.com/streadway/amqp"

	"github.com/CyberwizD/push-relay/internal/models"
)

// ChannelOpener opens AMQP channels. *rabbitmq.Manager satisfies it.
type ChannelOpener interface {
	Channel() (*amqp.Channel, error)
}

// Publisher publishes delivery reports to an AMQP exchange.
type Publisher struct {
	opener     ChannelOpener
	exchange   string
	routingKey string
}

func NewPublisher(opener ChannelOpener, exchange, routingKey string) *Publisher {
	return &Publisher{
		opener:     opener,
		exchange:   exchange,
		routingKey: routingKey,
	}
}

// Report publishes report as JSON.
func (p *Publisher) Report(_ context.Context, report *models.DeliveryReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return err
	}

	ch, err := p.opener.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	return ch.Publish(
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   report.RequestID,
			Timestamp:   report.CreatedAt,
			Body:        body,
		})
}
