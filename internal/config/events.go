package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/assessment-engine/internal/events"
)

// EventConfig holds configuration for event publishing
type EventConfig struct {
	Enabled           bool   `env:"EVENTS_ENABLED" envDefault:"true"`
	Publisher         string `env:"EVENTS_PUBLISHER" envDefault:"kafka"` // kafka, channel or mock
	KafkaBrokers      string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	SelectionLogTopic string `env:"SELECTION_LOG_TOPIC" envDefault:"engine.selection"`
	GradingTopic      string `env:"GRADING_TOPIC" envDefault:"engine.grading"`
}

func loadEventConfig() EventConfig {
	return EventConfig{
		Enabled:           getEnvBool("EVENTS_ENABLED", true),
		Publisher:         getEnv("EVENTS_PUBLISHER", "kafka"),
		KafkaBrokers:      getEnv("KAFKA_BROKERS", "localhost:9092"),
		SelectionLogTopic: getEnv("SELECTION_LOG_TOPIC", "engine.selection"),
		GradingTopic:      getEnv("GRADING_TOPIC", "engine.grading"),
	}
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	parts := strings.Split(c.KafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func (c *EventConfig) Topics() events.Topics {
	return events.Topics{Selection: c.SelectionLogTopic, Grading: c.GradingTopic}
}

// CreateEventPublisher creates an event publisher based on configuration
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	switch c.Publisher {
	case "kafka":
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"selection_topic", c.SelectionLogTopic,
			"grading_topic", c.GradingTopic)

		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			Topics:       c.Topics(),
			Logger:       logger,
		})
	case "channel":
		logger.Info("Using in-process channel event publisher")
		publisher, _ := events.NewChannelEventPublisher(c.Topics(), logger)
		return publisher, nil
	case "mock":
		logger.Info("Using mock event publisher")
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}
