package demo

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mode selects the pop operation consumers use.
type Mode string

const (
	ModeWait    Mode = "wait"    // WaitAndPop
	ModePoll    Mode = "poll"    // TryPop with a short sleep between misses
	ModeTimed   Mode = "timed"   // TryWaitAndPop with Config.Timeout
	ModeContext Mode = "context" // WaitAndPopContext
)

// Modes lists every supported Mode.
var Modes = []Mode{ModeWait, ModePoll, ModeTimed, ModeContext}

// ParseMode converts s, case-insensitively, to a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

const (
	defaultProducers = 2
	defaultConsumers = 3
	defaultItems     = 50
	defaultTimeout   = 100 * time.Millisecond

	pollInterval = time.Millisecond
)

// Config describes one producer/consumer run.
type Config struct {
	Producers int
	Consumers int
	Items     int // per producer
	Mode      Mode
	Timeout   time.Duration // bounded wait used by ModeTimed
	Dedup     bool
}

// DefaultConfig returns the two-producer, three-consumer scenario.
func DefaultConfig() Config {
	return Config{
		Producers: defaultProducers,
		Consumers: defaultConsumers,
		Items:     defaultItems,
		Mode:      ModeWait,
		Timeout:   defaultTimeout,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.Producers < 1 {
		errs = append(errs, fmt.Errorf("producers must be at least 1, got %d", c.Producers))
	}
	if c.Consumers < 1 {
		errs = append(errs, fmt.Errorf("consumers must be at least 1, got %d", c.Consumers))
	}
	if c.Items < 0 {
		errs = append(errs, fmt.Errorf("items must not be negative, got %d", c.Items))
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		errs = append(errs, err)
	}
	if c.Mode == ModeTimed && c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive in %s mode", ModeTimed))
	}
	return errors.Join(errs...)
}
