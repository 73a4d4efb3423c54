package config

import "fmt"

// DispatchConfig tunes the two dispatch policies and the role mapping.
type DispatchConfig struct {
	// BatchSize caps how many units one batch dispatch call may drain.
	BatchSize int `json:"batch_size"`
	// BatchDelaySeconds is the per-unit processing delay of batch dispatch.
	BatchDelaySeconds float64 `json:"batch_delay_seconds"`
	// SingleDelaySeconds is the per-unit processing delay of single dispatch.
	SingleDelaySeconds float64 `json:"single_delay_seconds"`
	// ManagerRole is the caller role granted the batch policy.
	ManagerRole string `json:"manager_role"`
}

// SetDefaults applies the standard policy parameters.
func (c *DispatchConfig) SetDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = 3
	}
	if c.BatchDelaySeconds == 0 {
		c.BatchDelaySeconds = 0.5
	}
	if c.SingleDelaySeconds == 0 {
		c.SingleDelaySeconds = 2.5
	}
	if c.ManagerRole == "" {
		c.ManagerRole = "SALES_MANAGER"
	}
}

// Validate checks for nonsensical parameters.
func (c DispatchConfig) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	if c.BatchDelaySeconds < 0 || c.SingleDelaySeconds < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}

// ReceivingConfig tunes the capacity check.
type ReceivingConfig struct {
	// EnforceForManager also applies the capacity check on the privileged
	// batch-dispatch receive path. Off by default: trusted high-volume
	// operators bypass the limit.
	EnforceForManager bool `json:"enforce_for_manager"`
}
