// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads and validates the producer node configuration.
package config

import (
	"bytes"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/dpos/clock"
	"github.com/vechain/dpos/schedule"
	"github.com/vechain/dpos/thor"
)

// ErrCPUEffort is returned when the cpu effort percent is out of [1, 100].
var ErrCPUEffort = errors.New("cpu-effort-percent must be in [1, 100]")

const (
	DefaultCPUEffortPercent = 80
	DefaultAdminAddr        = "localhost:2113"
	DefaultVerbosity        = 3
)

// Producer is a schedule entry.
type Producer struct {
	Name thor.Name `yaml:"name"`
	Key  string    `yaml:"key"`
}

// Schedule is the producer schedule to run with.
type Schedule struct {
	Version   uint32     `yaml:"version"`
	Producers []Producer `yaml:"producers"`
}

// Config is the node configuration.
type Config struct {
	CPUEffortPercent uint32      `yaml:"cpu-effort-percent"`
	Producers        []thor.Name `yaml:"producers"`
	Schedule         Schedule    `yaml:"schedule"`
	DataDir          string      `yaml:"data-dir"`
	AdminAddr        string      `yaml:"admin-addr"`
	NTPServer        string      `yaml:"ntp-server"`
	Verbosity        int         `yaml:"verbosity"`
	JSONLogs         bool        `yaml:"json-logs"`
	Metrics          bool        `yaml:"metrics"`
}

// Default returns the configuration used for omitted fields.
func Default() *Config {
	return &Config{
		CPUEffortPercent: DefaultCPUEffortPercent,
		AdminAddr:        DefaultAdminAddr,
		NTPServer:        clock.DefaultNTPServer,
		Verbosity:        DefaultVerbosity,
	}
}

// Parse decodes yaml over the defaults. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return cfg, nil
}

// Validate checks the configuration. It's called once at startup so the
// timing calculations never see an invalid value.
func (c *Config) Validate() error {
	if c.CPUEffortPercent < 1 || c.CPUEffortPercent > 100 {
		return errors.WithMessagef(ErrCPUEffort, "got %d", c.CPUEffortPercent)
	}
	if err := c.BuildSchedule().Validate(); err != nil {
		return err
	}

	// a producer may appear more than once, but never twice in a row, the last entry being followed by the first
	if n := len(c.Schedule.Producers); n > 1 {
		for i, p := range c.Schedule.Producers {
			next := (i + 1) % n
			if p.Name == c.Schedule.Producers[next].Name {
				return errors.Errorf("producer %v repeated at adjacent schedule positions %d and %d", p.Name, i, next)
			}
		}
	}

	local := thor.NewNames()
	for _, name := range c.Producers {
		if name.IsEmpty() {
			return errors.New("empty local producer name")
		}
		if local.Has(name) {
			return errors.Errorf("duplicate local producer %v", name)
		}
		local.Add(name)
	}
	return nil
}

// CPUEffort returns the time budget of one block.
func (c *Config) CPUEffort() time.Duration {
	return thor.BlockInterval * time.Duration(c.CPUEffortPercent) / 100
}

// BuildSchedule creates the schedule described by the configuration.
func (c *Config) BuildSchedule() *schedule.Schedule {
	auths := make([]thor.ProducerAuthority, 0, len(c.Schedule.Producers))
	for _, p := range c.Schedule.Producers {
		auths = append(auths, thor.ProducerAuthority{Name: p.Name, SigningKey: p.Key})
	}
	return schedule.New(c.Schedule.Version, auths)
}

// LocalProducers returns the producers whose keys are held by this node.
func (c *Config) LocalProducers() thor.Names {
	return thor.NewNames(c.Producers...)
}

// Marshal encodes the configuration as yaml.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
