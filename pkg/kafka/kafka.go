package kafka

import (
	"github.com/IBM/sarama"
)

const ReservationTopic = "reservation-events"

type Config struct {
	Addrs    []string `envconfig:"KAFKA_ADDRS"`
	Topic    string   `envconfig:"KAFKA_TOPIC" default:"reservation-events"`
	ClientID string   `envconfig:"KAFKA_CLIENT_ID" default:"reservation"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	return sarama.NewSyncProducer(cfg.Addrs, producerConfig(cfg))
}

// producerConfig requires acks from all in-sync replicas.
func producerConfig(cfg Config) *sarama.Config {
	defaultCfg := sarama.NewConfig()
	if cfg.ClientID != "" {
		defaultCfg.ClientID = cfg.ClientID
	}
	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Retry.Max = 3
	defaultCfg.Producer.Partitioner = sarama.NewHashPartitioner

	return defaultCfg
}

// TopicOrDefault falls back to ReservationTopic when none is configured.
func (cfg Config) TopicOrDefault() string {
	if cfg.Topic == "" {
		return ReservationTopic
	}
	return cfg.Topic
}
