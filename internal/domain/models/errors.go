package models

// ConfigError reports missing or contradictory series configuration, such
// as merging zero series. Data gaps are never errors: they are NaN values
// propagated through the calculators.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "config: " + e.Reason }

// NewConfigError creates a ConfigError.
func NewConfigError(reason string) *ConfigError { return &ConfigError{Reason: reason} }
