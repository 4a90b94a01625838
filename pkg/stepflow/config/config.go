// Package config extracts typed values from map-shaped configuration.
//
// Config wraps a map[string]any, as produced by YAML or JSON decoding,
// behind accessors that fall back to a caller-supplied default when a
// key is missing or its value has the wrong type. Nested maps are
// reachable through Sub, so a whole traversal policy can live under one
// section of a larger application config.
package config

import (
	"time"
)

// Config is a read-only view over decoded configuration data.
// The zero value behaves like an empty config.
type Config struct {
	data map[string]any
}

// New wraps data. A nil map yields an empty config.
func New(data map[string]any) Config {
	return Config{data: data}
}

func (c Config) lookup(key string) (any, bool) {
	v, ok := c.data[key]
	return v, ok
}

// Has reports whether key is present.
func (c Config) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// Sub returns the nested config under key. A missing key or a value
// that is not a map yields an empty config.
func (c Config) Sub(key string) Config {
	v, ok := c.lookup(key)
	if !ok {
		return Config{}
	}
	switch m := v.(type) {
	case map[string]any:
		return New(m)
	case Config:
		return m
	}
	return Config{}
}

// String returns the string under key, or def.
func (c Config) String(key, def string) string {
	if v, ok := c.lookup(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool under key, or def.
func (c Config) Bool(key string, def bool) bool {
	if v, ok := c.lookup(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the integer under key, or def. JSON decodes numbers as
// float64, so whole floats convert; fractional values fall back to def.
func (c Config) Int(key string, def int) int {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	return def
}

// Float returns the float64 under key, or def.
func (c Config) Float(key string, def float64) float64 {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

// Duration returns the duration under key, or def. Strings go through
// time.ParseDuration; bare numbers are taken as seconds.
func (c Config) Duration(key string, def time.Duration) time.Duration {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	switch d := v.(type) {
	case string:
		if parsed, err := time.ParseDuration(d); err == nil {
			return parsed
		}
	case time.Duration:
		return d
	case int:
		return time.Duration(d) * time.Second
	case int64:
		return time.Duration(d) * time.Second
	case float64:
		return time.Duration(d * float64(time.Second))
	}
	return def
}

// StringSlice returns the string slice under key, or def. A []any is
// accepted only when every element is a string.
func (c Config) StringSlice(key string, def []string) []string {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return def
			}
			out = append(out, str)
		}
		return out
	}
	return def
}

// Any returns the raw value under key, or def.
func (c Config) Any(key string, def any) any {
	if v, ok := c.lookup(key); ok {
		return v
	}
	return def
}

// Raw exposes the underlying map. Callers must not modify it.
func (c Config) Raw() map[string]any {
	return c.data
}
