package events

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/lucas-podkowa/library-service/pkg/breaker"
	"github.com/lucas-podkowa/library-service/pkg/kafka"
)

// Publisher ships loan events to kafka. Delivery is best effort: the
// circuit breaker sheds publishes while the broker is down and a failed
// publish is only logged, never returned to the loan flow.
type Publisher struct {
	producer sarama.SyncProducer
	cb       breaker.Breaker
	log      *zap.Logger
}

func NewPublisher(producer sarama.SyncProducer, log *zap.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		cb:       breaker.New(10, 30*time.Second, 0.5, 3),
		log:      log.Named("events"),
	}
}

func (p *Publisher) PublishLoanEvent(event kafka.LoanEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("marshal loan event", zap.Error(err))
		return
	}
	err = p.cb.Call(func() error {
		msg := &sarama.ProducerMessage{
			Topic: kafka.LoanEventsTopic,
			Key:   sarama.StringEncoder(event.LoanUID),
			Value: sarama.ByteEncoder(data),
		}
		_, _, err := p.producer.SendMessage(msg)
		return err
	})
	if err != nil {
		p.log.Warn("publish loan event",
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}
