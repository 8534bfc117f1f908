package dispatch

import (
	"errors"
	"strings"
	"time"

	"github.com/conclave-run/taskcore/internal/config"
)

const (
	defaultTopic        = "taskcore.staged-tasks"
	defaultWriteTimeout = 10 * time.Second
	defaultBatchSize    = 1
)

// ErrBrokersEmpty is returned when no Kafka broker addresses are configured.
var ErrBrokersEmpty = errors.New("dispatch: kafka brokers cannot be empty")

// Config holds the Kafka producer configuration for dispatching StagedTasks.
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
	BatchSize    int
}

// LoadConfig loads Kafka dispatcher configuration from environment
// variables, falling back to sane single-broker defaults for local
// development.
func LoadConfig() *Config {
	return &Config{
		Brokers:      config.ParseCommaSeparatedList(config.GetEnvStr("DISPATCH_KAFKA_BROKERS", "localhost:9092")),
		Topic:        config.GetEnvStr("DISPATCH_KAFKA_TOPIC", defaultTopic),
		WriteTimeout: config.GetEnvDuration("DISPATCH_KAFKA_WRITE_TIMEOUT", defaultWriteTimeout),
		BatchSize:    config.GetEnvInt("DISPATCH_KAFKA_BATCH_SIZE", defaultBatchSize),
	}
}

// Validate checks that the dispatcher configuration is usable.
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 || strings.TrimSpace(c.Brokers[0]) == "" {
		return ErrBrokersEmpty
	}

	return nil
}
