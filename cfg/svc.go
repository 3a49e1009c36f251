package cfg

import (
	"fmt"
	"time"
)

// Service holds basic service configuration.
type Service struct {
	AppID              string
	LogLevel           string
	PortREST           uint32
	TerminationTimeout time.Duration
	DebugLogLines      int
}

func (s Service) validate() error {
	if s.AppID == "" {
		return fmt.Errorf("app id env var is missing")
	}
	if s.LogLevel == "" {
		return fmt.Errorf("log level env var is missing")
	}
	if s.PortREST == 0 {
		return fmt.Errorf("rest port env var is missing")
	}
	if s.TerminationTimeout == 0 {
		return fmt.Errorf("termination timeout env var is missing")
	}
	return nil
}
