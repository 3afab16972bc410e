package metarpc

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults for the knobs Config loads from the environment, chosen small
// enough for a single-process deployment and overridable via OptionFn or
// environment variable.
const (
	DefaultListenAddress      = ":4560"
	DefaultConnectionCapacity = 1000
	DefaultConnectionTTL      = time.Hour
	DefaultStatementCapacity  = 10000
	DefaultStatementTTL       = 10 * time.Minute
	DefaultResponseTimeout    = 180 * time.Second
)

// Config is the Server Runtime's environment-derived configuration,
// favoring a tiny functional-options surface over a heavyweight config
// framework: loaded with plain os.Getenv reads rather than a
// struct-tag-driven config library — see DESIGN.md for why no such
// library was pulled in.
type Config struct {
	ListenAddress      string
	EngineDSN          string
	MaxHeaderBytes     int
	ResponseTimeout    time.Duration
	ConnectionCapacity int
	ConnectionTTL      time.Duration
	StatementCapacity  int
	StatementTTL       time.Duration
}

// LoadConfig reads Config from environment variables, applying the package
// defaults for anything unset:
//
//	METARPC_LISTEN_ADDRESS
//	METARPC_ENGINE_DSN
//	METARPC_MAX_HEADER_BYTES
//	METARPC_RESPONSE_TIMEOUT      (Go duration syntax, e.g. "180s")
//	METARPC_CONNECTION_CAPACITY
//	METARPC_CONNECTION_TTL
//	METARPC_STATEMENT_CAPACITY
//	METARPC_STATEMENT_TTL
func LoadConfig() (Config, error) {
	cfg := Config{
		ListenAddress:      DefaultListenAddress,
		MaxHeaderBytes:     DefaultMaxHeaderBytes,
		ResponseTimeout:    DefaultResponseTimeout,
		ConnectionCapacity: DefaultConnectionCapacity,
		ConnectionTTL:      DefaultConnectionTTL,
		StatementCapacity:  DefaultStatementCapacity,
		StatementTTL:       DefaultStatementTTL,
	}

	if v := os.Getenv("METARPC_LISTEN_ADDRESS"); v != "" {
		cfg.ListenAddress = v
	}
	cfg.EngineDSN = os.Getenv("METARPC_ENGINE_DSN")

	if err := overrideInt(&cfg.MaxHeaderBytes, "METARPC_MAX_HEADER_BYTES"); err != nil {
		return Config{}, err
	}
	if err := overrideDuration(&cfg.ResponseTimeout, "METARPC_RESPONSE_TIMEOUT"); err != nil {
		return Config{}, err
	}
	if err := overrideInt(&cfg.ConnectionCapacity, "METARPC_CONNECTION_CAPACITY"); err != nil {
		return Config{}, err
	}
	if err := overrideDuration(&cfg.ConnectionTTL, "METARPC_CONNECTION_TTL"); err != nil {
		return Config{}, err
	}
	if err := overrideInt(&cfg.StatementCapacity, "METARPC_STATEMENT_CAPACITY"); err != nil {
		return Config{}, err
	}
	if err := overrideDuration(&cfg.StatementTTL, "METARPC_STATEMENT_TTL"); err != nil {
		return Config{}, err
	}

	if cfg.EngineDSN == "" {
		return Config{}, fmt.Errorf("metarpc: METARPC_ENGINE_DSN must be set")
	}
	return cfg, nil
}

func overrideInt(dst *int, envVar string) error {
	v := os.Getenv(envVar)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("metarpc: invalid %s %q: %w", envVar, v, err)
	}
	*dst = n
	return nil
}

func overrideDuration(dst *time.Duration, envVar string) error {
	v := os.Getenv(envVar)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("metarpc: invalid %s %q: %w", envVar, v, err)
	}
	*dst = d
	return nil
}
