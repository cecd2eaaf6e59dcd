package sim

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every ConfigError via errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ConfigError reports an invalid experiment or zone configuration.
// Configuration errors are fatal for the whole run: zones share configuration,
// so they surface before any trial executes.
type ConfigError struct {
	Zone   string // zone id, empty when the error is not zone-specific
	Field  string // offending field, e.g. "cohesion[C]"
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Zone == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("zone %s: %s: %s", e.Zone, e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrConfiguration) match any ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErrorf(zone, field, format string, args ...any) error {
	return &ConfigError{Zone: zone, Field: field, Reason: fmt.Sprintf(format, args...)}
}
