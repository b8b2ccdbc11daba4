package events

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booking-service/pkg/circuit_breaker"
	"github.com/Astemirdum/booking-service/pkg/rabbitmq"
	"github.com/Astemirdum/booking-service/reservation/internal/model"
)

const (
	BrokerNone  = "none"
	BrokerKafka = "kafka"
	BrokerAMQP  = "amqp"
)

type Publisher interface {
	Publish(ctx context.Context, event model.ReservationEvent) error
	Close() error
}

func NewNop() Publisher { return nopPublisher{} }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, model.ReservationEvent) error { return nil }
func (nopPublisher) Close() error                                          { return nil }

// NewKafka writes each event as a JSON message to topic.
func NewKafka(producer sarama.SyncProducer, topic string) Publisher {
	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
	}
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func (p *kafkaPublisher) Publish(_ context.Context, event model.ReservationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Date + " " + event.Time),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err = p.producer.SendMessage(msg); err != nil {
		return errors.Wrap(err, "kafka send")
	}
	return nil
}

func (p *kafkaPublisher) Close() error { return p.producer.Close() }

type amqpSender interface {
	Publish(ctx context.Context, body []byte) error
	Close() error
}

var _ amqpSender = (*rabbitmq.Publisher)(nil)

func NewAMQP(sender amqpSender) Publisher {
	return &amqpPublisher{sender: sender}
}

type amqpPublisher struct {
	sender amqpSender
}

func (p *amqpPublisher) Publish(ctx context.Context, event model.ReservationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return errors.Wrap(p.sender.Publish(ctx, data), "amqp publish")
}

func (p *amqpPublisher) Close() error { return p.sender.Close() }

// WithBreaker guards next with cb. Rejected and failed publishes are logged
// and swallowed: the reservation they describe is already committed.
func WithBreaker(next Publisher, cb circuit_breaker.CircuitBreaker, log *zap.Logger) Publisher {
	return &breakerPublisher{
		next: next,
		cb:   cb,
		log:  log.Named("events"),
	}
}

type breakerPublisher struct {
	next Publisher
	cb   circuit_breaker.CircuitBreaker
	log  *zap.Logger
}

func (p *breakerPublisher) Publish(ctx context.Context, event model.ReservationEvent) error {
	err := p.cb.Call(func() error {
		return p.next.Publish(ctx, event)
	})
	if err != nil {
		p.log.Warn("publish reservation event",
			zap.String("type", string(event.Type)),
			zap.Int64("id", event.ReservationID),
			zap.Stringer("breaker", p.cb.State()),
			zap.Error(err))
	}
	return nil
}

func (p *breakerPublisher) Close() error { return p.next.Close() }
