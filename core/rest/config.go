package rest

import "time"

// RetryConfig holds the retry policy for API requests.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts for one logical request.
	MaxAttempts int `mapstructure:"max_attempts" default:"3"`
	// InitialDelaySeconds is the backoff delay before the first retry.
	InitialDelaySeconds float64 `mapstructure:"initial_delay_seconds" default:"1"`
	// BackoffMultiplier grows the delay after every retried attempt.
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier" default:"2"`
	// MaxDelaySeconds caps the backoff delay.
	MaxDelaySeconds float64 `mapstructure:"max_delay_seconds" default:"60"`
}

// InitialDelay returns the initial backoff delay as a duration.
func (c RetryConfig) InitialDelay() time.Duration {
	return time.Duration(c.InitialDelaySeconds * float64(time.Second))
}

// MaxDelay returns the backoff delay cap as a duration.
func (c RetryConfig) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelaySeconds * float64(time.Second))
}
