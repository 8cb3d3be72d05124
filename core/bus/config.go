package bus

import "github.com/dmitrymomot/chanbus/core/queue"

// Config holds bus configuration loaded from the environment.
// The default worker reads BUS_WORKQUEUE_NAME, BUS_WORKQUEUE_SIZE and
// BUS_WORKQUEUE_SHUTDOWN_TIMEOUT.
type Config struct {
	Worker queue.Config `envPrefix:"BUS_"`
}

// DefaultConfig returns the default bus configuration.
func DefaultConfig() Config {
	return Config{Worker: queue.DefaultConfig()}
}
