package service

import (
	"encoding/json"

	"github.com/IBM/sarama"

	"github.com/bookhub/bookhub-service/pkg/kafka"
)

// Publisher emits book change events. Publishing is best-effort: a broker
// failure never fails the originating request.
type Publisher interface {
	Publish(v any) error
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(producer sarama.SyncProducer) Publisher {
	return &kafkaPublisher{
		producer: producer,
		topic:    kafka.BookEventsTopic,
	}
}

func (p *kafkaPublisher) Publish(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{Topic: p.topic, Value: sarama.StringEncoder(data)}
	_, _, err = p.producer.SendMessage(msg)
	return err
}

type nopPublisher struct{}

// NewNopPublisher is used when no brokers are configured.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(any) error { return nil }
