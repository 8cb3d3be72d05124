package queue

import "time"

const (
	// DefaultWorkerName is the name of a worker created without WithName.
	DefaultWorkerName = "system"

	// DefaultQueueSize is the job capacity of a worker created without WithQueueSize.
	DefaultQueueSize = 64
)

// Config holds the configuration for a Worker.
// Designed for environment-based configuration using popular env parsing libraries.
type Config struct {
	Name            string        `env:"WORKQUEUE_NAME" envDefault:"system"`
	QueueSize       int           `env:"WORKQUEUE_SIZE" envDefault:"64"`
	ShutdownTimeout time.Duration `env:"WORKQUEUE_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// DefaultConfig returns sensible defaults for production use.
func DefaultConfig() Config {
	return Config{
		Name:            DefaultWorkerName,
		QueueSize:       DefaultQueueSize,
		ShutdownTimeout: 5 * time.Second,
	}
}
