// Package uid generates identifiers: UUIDs for correlation and snowflake
// numbers for entity primary keys.
package uid

// StringID generates opaque string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates positive, roughly time-ordered int64 identifiers.
type NumberID interface {
	Generate() int64
}
