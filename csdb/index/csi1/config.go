package csi1

import (
	"errors"
	"time"

	"github.com/corvusdb/corvus/toml"
)

// DefaultQueryTimeQuota is the wall-clock budget applied to query sessions
// constructed without an explicit quota.
const DefaultQueryTimeQuota = 10 * time.Second

// Config holds the tunable settings of the index.
type Config struct {
	// QueryTimeQuota bounds how long one query session may run before
	// Checkpoint signals cancellation. Applied when a session is created
	// with a non-positive quota.
	QueryTimeQuota toml.Duration `toml:"query-time-quota"`

	// QueryLogEnabled emits a debug log line per planned predicate group.
	QueryLogEnabled bool `toml:"query-log-enabled"`
}

// NewConfig returns a new Config with default values.
func NewConfig() Config {
	return Config{
		QueryTimeQuota: toml.Duration(DefaultQueryTimeQuota),
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.QueryTimeQuota < 0 {
		return errors.New("query-time-quota must be non-negative")
	}
	return nil
}
