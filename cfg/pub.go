package cfg

import (
	"fmt"
	"time"
)

// Publisher holds publisher's configuration.
type Publisher struct {
	Addr          Addr
	CfgPatchTopic string
	RetryTimeout  time.Duration
	RetryAttempts uint32
}

// Enabled reports whether a publisher host was configured at all.
func (p Publisher) Enabled() bool {
	return p.Addr.Host != ""
}

func (p Publisher) validate() error {
	if p.Addr.Host == "" {
		return fmt.Errorf("publisher host env var is missing")
	}
	if p.Addr.Port == 0 {
		return fmt.Errorf("publisher port env var is missing")
	}
	if p.CfgPatchTopic == "" {
		return fmt.Errorf("publisher cfg patch topic env var is missing")
	}
	if p.RetryTimeout == 0 {
		return fmt.Errorf("retry timeout env var is missing")
	}
	if p.RetryAttempts == 0 {
		return fmt.Errorf("retry attempts env var is missing")
	}
	return nil
}
