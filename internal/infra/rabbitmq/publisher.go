package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/entity"
)

const RiskRoutingKey = "risk.detected"

type Publisher struct {
	channel  *amqp.Channel
	exchange string
}

// NewPublisher opens a channel on conn and declares exchange as a durable
// topic exchange.
func NewPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{channel: ch, exchange: exchange}, nil
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}

// RiskPublisher announces high-risk analyses on the exchange.
type RiskPublisher struct {
	pub        *Publisher
	routingKey string
}

func NewRiskPublisher(pub *Publisher) *RiskPublisher {
	return &RiskPublisher{pub: pub, routingKey: RiskRoutingKey}
}

func (rp *RiskPublisher) NotifyRisk(ctx context.Context, event entity.RiskEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal risk event: %w", err)
	}
	return rp.pub.channel.PublishWithContext(ctx,
		rp.pub.exchange,
		rp.routingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			MessageId:    event.SessionID,
		},
	)
}
