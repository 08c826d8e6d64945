package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spikeekips/itimer/signaler"
	"gopkg.in/yaml.v3"
)

const (
	kindThreading = "threading"
	kindSystem    = "system"
	kindPeriodic  = "periodic"
	kindTest      = "test"
)

type timersConfig struct {
	Timers []timerConfig `yaml:"timers"`
}

type timerConfig struct {
	AutoReset    *bool         `yaml:"auto_reset"`
	Kind         string        `yaml:"kind"`
	Interval     time.Duration `yaml:"interval"`
	RequireStart bool          `yaml:"require_start"`
}

func defaultTimersConfig(interval time.Duration) timersConfig {
	return timersConfig{
		Timers: []timerConfig{
			{Kind: kindThreading, Interval: interval},
			{Kind: kindSystem, Interval: interval},
			{Kind: kindPeriodic, Interval: interval},
			{Kind: kindTest},
		},
	}
}

func loadTimersConfig(f string, interval time.Duration) (timersConfig, error) {
	if len(f) < 1 {
		return defaultTimersConfig(interval), nil
	}

	b, err := os.ReadFile(filepath.Clean(f))
	if err != nil {
		return timersConfig{}, errors.Wrap(err, "failed to read config")
	}

	return parseTimersConfig(b, interval)
}

func parseTimersConfig(b []byte, interval time.Duration) (timersConfig, error) {
	var c timersConfig

	if err := yaml.Unmarshal(b, &c); err != nil {
		return timersConfig{}, errors.Wrap(err, "failed to parse config")
	}

	if len(c.Timers) < 1 {
		return timersConfig{}, errors.Errorf("empty timers")
	}

	for i := range c.Timers {
		if err := c.Timers[i].isValid(interval); err != nil {
			return timersConfig{}, errors.WithMessagef(err, "%dth timer", i)
		}
	}

	return c, nil
}

func (c *timerConfig) isValid(interval time.Duration) error {
	switch c.Kind {
	case kindThreading, kindSystem, kindPeriodic:
		if c.Interval == 0 {
			c.Interval = interval
		}
	case kindTest:
	default:
		return errors.Errorf("unknown kind, %q", c.Kind)
	}

	return signaler.ValidateInterval(c.Interval)
}

func (c timerConfig) autoReset() bool {
	if c.AutoReset == nil {
		return true
	}

	return *c.AutoReset
}
