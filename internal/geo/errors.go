package geo

import "fmt"

// ConfigurationError reports an input that makes grid construction impossible:
// misordered bounds, a non-positive hex size, a negative zoom, or a tile span
// too small to dimension a grid.
type ConfigurationError struct {
	Field  string // which input, e.g. "bounds.west" or "zoom"
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// DomainError reports a coordinate outside the range the Mercator projection
// is defined for.
type DomainError struct {
	Field  string // e.g. "lat" or "features[3].lat (Lübeck)"
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain error: %s=%g: %s", e.Field, e.Value, e.Reason)
}

func configErr(field string, value any, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Reason: fmt.Sprintf(format, args...)}
}
