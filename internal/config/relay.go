package config

import "time"

// Relay tunes the outbox poller. Every tick locks at most BatchSize unsent
// messages and gives the broker ProduceTimeout to acknowledge them.
type Relay struct {
	BatchSize      int           `env:"RELAY_BATCH_SIZE" envDefault:"100"`
	Interval       time.Duration `env:"RELAY_INTERVAL" envDefault:"1s"`
	ProduceTimeout time.Duration `env:"RELAY_PRODUCE_TIMEOUT" envDefault:"10s"`
}
