package queue

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// ConsumerConfig — настройки консьюмера.
// Группа из одного участника + ручной коммит оффсетов дают семантику
// prefetch=1: следующее сообщение начинается только после исхода текущего.
type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	StartOffset string

	ProcessTimeout time.Duration // лимит на одну попытку применения job
	RetryInitial   time.Duration // стартовый backoff повтора
	RetryMax       time.Duration // потолок backoff
	MaxAttempts    int           // попыток на сообщение до отправки в DLQ
	DLQTopic       string        // топик «мёртвых» сообщений, по умолчанию <topic>.dlq
}

func (c *ConsumerConfig) readerConfig() kafka.ReaderConfig {
	rc := kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.GroupID,
		Topic:          c.Topic,
		CommitInterval: 0, // только ручной коммит
	}

	switch c.StartOffset {
	case "first":
		rc.StartOffset = kafka.FirstOffset
	default:
		rc.StartOffset = kafka.LastOffset
	}

	return rc
}

func (c *ConsumerConfig) dlqTopic() string {
	if c.DLQTopic != "" {
		return c.DLQTopic
	}
	return c.Topic + ".dlq"
}
