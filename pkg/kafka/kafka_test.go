package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"
)

func TestProducerConfig(t *testing.T) {
	t.Parallel()
	c := producerConfig(Config{ClientID: "booking"})
	require.NoError(t, c.Validate())
	require.Equal(t, "booking", c.ClientID)
	require.Equal(t, sarama.WaitForAll, c.Producer.RequiredAcks)
	require.True(t, c.Producer.Return.Successes)
}

func TestConfig_TopicOrDefault(t *testing.T) {
	t.Parallel()
	require.Equal(t, ReservationTopic, Config{}.TopicOrDefault())
	require.Equal(t, "audit", Config{Topic: "audit"}.TopicOrDefault())
}
