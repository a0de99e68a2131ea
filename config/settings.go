package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Settings is an immutable view over loaded configuration values.
// It is safe for concurrent reads.
//
// Values keep the type they were decoded with: strings from the
// environment, or YAML scalars and lists from a config file. The typed
// accessors convert on read and fall back to the supplied default when a
// key is absent or does not convert.
type Settings struct {
	values map[string]any
}

// New returns settings over values. Keys are upper-cased.
func New(values map[string]any) *Settings {
	s := &Settings{values: make(map[string]any, len(values))}
	for k, v := range values {
		s.values[strings.ToUpper(k)] = v
	}
	return s
}

// Has reports whether key was explicitly configured. Defaults never count.
func (s *Settings) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s.values[key]
	return ok
}

// Keys returns the configured keys in sorted order.
func (s *Settings) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bool reports whether key is truthy: a YAML boolean, a non-zero number,
// or one of true/1/yes/on in any case.
func (s *Settings) Bool(key string) bool {
	v, ok := s.lookup(key)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t != 0
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "on":
			return true
		}
	}
	return false
}

// String returns key as a string.
func (s *Settings) String(key, def string) string {
	v, ok := s.lookup(key)
	if !ok || v == nil {
		return def
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Int returns key as an int.
func (s *Settings) Int(key string, def int) int {
	n, err := s.intValue(key)
	if err != nil || n == nil {
		return def
	}
	return *n
}

// Float returns key as a float64.
func (s *Settings) Float(key string, def float64) float64 {
	f, err := s.floatValue(key)
	if err != nil || f == nil {
		return def
	}
	return *f
}

// Duration returns key as a duration. Strings are Go durations ("1.5s")
// or bare numbers of seconds; numbers are seconds.
func (s *Settings) Duration(key string, def time.Duration) time.Duration {
	d, err := s.durationValue(key)
	if err != nil || d == nil {
		return def
	}
	return *d
}

// Strings returns key as a list. YAML sequences are used directly; strings
// are split on commas. Blank items are dropped.
func (s *Settings) Strings(key string) []string {
	v, ok := s.lookup(key)
	if !ok {
		return nil
	}

	var raw []string
	switch t := v.(type) {
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			raw = append(raw, fmt.Sprint(item))
		}
	case string:
		raw = strings.Split(t, ",")
	default:
		raw = []string{fmt.Sprint(t)}
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks that typed keys convert and that CACHE_TTL is positive.
func (s *Settings) Validate() error {
	var errs []error
	for _, key := range durationKeys {
		d, err := s.durationValue(key)
		switch {
		case err != nil:
			errs = append(errs, err)
		case d != nil && *d == 0 && slices.Contains(positiveDurationKeys, key):
			errs = append(errs, fmt.Errorf("%w: %s must be positive", ErrInvalidDuration, key))
		}
	}
	for _, key := range intKeys {
		if _, err := s.intValue(key); err != nil {
			errs = append(errs, err)
		}
	}
	for _, key := range floatKeys {
		if _, err := s.floatValue(key); err != nil {
			errs = append(errs, err)
		}
	}
	if driver := s.String(KeyDatabaseDriver, DefaultDatabaseDriver); driver != "postgres" && driver != "mysql" {
		errs = append(errs, fmt.Errorf("%w: %s must be postgres or mysql, got %q", ErrInvalidValue, KeyDatabaseDriver, driver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, errors.Join(errs...))
	}
	return nil
}

func (s *Settings) lookup(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

func (s *Settings) intValue(key string) (*int, error) {
	v, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case float64:
		n = int(t)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil, invalid(key, v)
		}
		n = parsed
	default:
		return nil, invalid(key, v)
	}
	return &n, nil
}

func (s *Settings) floatValue(key string) (*float64, error) {
	v, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}
	var f float64
	switch t := v.(type) {
	case int:
		f = float64(t)
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, invalid(key, v)
		}
		f = parsed
	default:
		return nil, invalid(key, v)
	}
	return &f, nil
}

func (s *Settings) durationValue(key string) (*time.Duration, error) {
	v, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}
	var d time.Duration
	switch t := v.(type) {
	case int:
		d = time.Duration(t) * time.Second
	case float64:
		d = time.Duration(t * float64(time.Second))
	case string:
		t = strings.TrimSpace(t)
		if parsed, err := time.ParseDuration(t); err == nil {
			d = parsed
		} else if secs, err := strconv.ParseFloat(t, 64); err == nil {
			d = time.Duration(secs * float64(time.Second))
		} else {
			return nil, fmt.Errorf("%w: %s: %q", ErrInvalidDuration, key, t)
		}
	default:
		return nil, invalid(key, v)
	}
	if d < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative", ErrInvalidDuration, key)
	}
	return &d, nil
}

func invalid(key string, v any) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, v)
}
