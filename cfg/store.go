package cfg

import (
	"fmt"
	"time"
)

// Store types.
const (
	StoreDir   = "dir"
	StoreRedis = "redis"
)

// Store holds store configuration.
type Store struct {
	Type        string
	Dir         string
	Addr        Addr
	Password    string
	MaxIdle     uint32
	IdleTimeout time.Duration
}

func (s Store) validate() error {
	switch s.Type {
	case StoreDir:
		if s.Dir == "" {
			return fmt.Errorf("store dir env var is missing")
		}
	case StoreRedis:
		if s.Addr.Host == "" {
			return fmt.Errorf("store host env var is missing")
		}
		if s.Addr.Port == 0 {
			return fmt.Errorf("store port env var is missing")
		}
		if s.Password == "" {
			return fmt.Errorf("store password env var is missing")
		}
	case "":
		return fmt.Errorf("store type env var is missing")
	default:
		return fmt.Errorf("store type %q is unknown", s.Type)
	}
	return nil
}
