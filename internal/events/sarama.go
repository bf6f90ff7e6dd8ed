package events

import (
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

type SaramaProducer struct {
	producer sarama.SyncProducer
	logger   zerolog.Logger
}

func NewSaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // required by SyncProducer
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second
	saramaConfig.ClientID = "tinybar"
	return saramaConfig
}

func NewSaramaProducer(brokers []string, logger zerolog.Logger) (*SaramaProducer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	producer, err := sarama.NewSyncProducer(brokers, NewSaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}
	logger.Info().Strs("brokers", brokers).Msg("sarama producer created")
	return NewSaramaProducerFrom(producer, logger), nil
}

func NewSaramaProducerFrom(producer sarama.SyncProducer, logger zerolog.Logger) *SaramaProducer {
	return &SaramaProducer{producer: producer, logger: logger}
}

// WriteMessage keys each message by quote id so every event of one quote
// lands on the same partition.
func (s *SaramaProducer) WriteMessage(topic string, msg []byte) error {
	if s.producer == nil {
		return fmt.Errorf("sarama producer is not initialized")
	}

	pm := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
	}
	if ev, err := Decode(msg); err == nil && ev.Quote.ID != "" {
		pm.Key = sarama.StringEncoder(ev.Quote.ID)
	}

	partition, offset, err := s.producer.SendMessage(pm)
	if err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Msg("failed to send message")
		return err
	}
	s.logger.Debug().Str("topic", topic).Int32("partition", partition).Int64("offset", offset).Msg("message sent")
	return nil
}

func (s *SaramaProducer) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
