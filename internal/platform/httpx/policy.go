package httpx

import "time"

// CallPolicy is the explicit timeout/retry/rate policy of one external capability.
type CallPolicy struct {
	Timeout        time.Duration `yaml:"timeout"`
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	RatePerSecond  float64       `yaml:"rate_per_second"`
}

const defaultBackoff = 200 * time.Millisecond

func (p CallPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p CallPolicy) backoff() time.Duration {
	if p.InitialBackoff <= 0 {
		return defaultBackoff
	}
	return p.InitialBackoff
}

// Merge fills zero fields of p from def.
func (p CallPolicy) Merge(def CallPolicy) CallPolicy {
	if p.Timeout == 0 {
		p.Timeout = def.Timeout
	}
	if p.MaxAttempts == 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.InitialBackoff == 0 {
		p.InitialBackoff = def.InitialBackoff
	}
	if p.RatePerSecond == 0 {
		p.RatePerSecond = def.RatePerSecond
	}
	return p
}
