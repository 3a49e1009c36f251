package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type (
	// Config holds the whole process configuration.
	Config struct {
		Service   Service
		Store     Store
		Publisher Publisher
	}

	// Addr is used to store IP address and an open port of the remote server.
	Addr struct {
		Host string
		Port uint64
	}
)

// New reads the configuration from the environment and validates it.
func New() (*Config, error) {
	c := &Config{
		Service: Service{
			AppID:              os.Getenv("APP_ID"),
			LogLevel:           os.Getenv("LOG_LEVEL"),
			PortREST:           uint32(uintEnv("PORT_REST")),
			TerminationTimeout: durationEnv("TERMINATION_TIMEOUT"),
			DebugLogLines:      int(uintEnv("DEBUG_LOG_LINES")),
		},
		Store: Store{
			Type:        os.Getenv("STORE_TYPE"),
			Dir:         os.Getenv("STORE_DIR"),
			Addr:        Addr{Host: os.Getenv("STORE_HOST"), Port: uintEnv("STORE_PORT")},
			Password:    os.Getenv("STORE_PASSWORD"),
			MaxIdle:     uint32(uintEnv("STORE_MAX_IDLE")),
			IdleTimeout: durationEnv("STORE_IDLE_TIMEOUT"),
		},
		Publisher: Publisher{
			Addr:          Addr{Host: os.Getenv("PUB_HOST"), Port: uintEnv("PUB_PORT")},
			CfgPatchTopic: os.Getenv("PUB_CFG_PATCH_TOPIC"),
			RetryTimeout:  durationEnv("RETRY_TIMEOUT"),
			RetryAttempts: uint32(uintEnv("RETRY_ATTEMPTS")),
		},
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if err := c.Service.validate(); err != nil {
		return fmt.Errorf("service: %s", err)
	}
	if err := c.Store.validate(); err != nil {
		return fmt.Errorf("store: %s", err)
	}
	if c.Publisher.Enabled() {
		if err := c.Publisher.validate(); err != nil {
			return fmt.Errorf("publisher: %s", err)
		}
	}
	return nil
}

func uintEnv(key string) uint64 {
	v, err := strconv.ParseUint(os.Getenv(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func durationEnv(key string) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return 0
	}
	return d
}
