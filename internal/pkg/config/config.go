// Package config exposes typed, read-only access to service configuration.
//
// Keys are dotted paths (for example "database.max_conns"). Missing keys
// return the zero value of the requested type.
package config

import (
	"io"
	"time"
)

// TimeConfig reads integer values scaled to a duration unit, or Go duration strings.
type TimeConfig interface {
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetHour(key string) time.Duration
	GetDay(key string) time.Duration

	// GetDuration parses values such as "150ms" or "15m".
	GetDuration(key string) time.Duration
}

// SignedIntConfig reads signed integers.
type SignedIntConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
}

// UnsignedIntConfig reads unsigned integers.
type UnsignedIntConfig interface {
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetUint32(key string) uint32
	GetUint64(key string) uint64
}

// FloatConfig reads floating-point numbers.
type FloatConfig interface {
	GetFloat32(key string) float32
	GetFloat64(key string) float64
}

// Config is the configuration surface injected into modules.
type Config interface {
	io.Closer
	TimeConfig
	SignedIntConfig
	UnsignedIntConfig
	FloatConfig

	GetBool(key string) bool
	GetString(key string) string

	// GetBinary decodes a base64 value.
	GetBinary(key string) []byte

	// GetArray splits "a,b,c" into trimmed, non-empty elements. YAML lists
	// are accepted as well.
	GetArray(key string) []string

	// GetMap parses "k1:v1,k2:v2".
	GetMap(key string) map[string]string
}
