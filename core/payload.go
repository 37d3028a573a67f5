package core

import (
	"fmt"
	"maps"
	"math"
	"strconv"
)

// Payload is the structured key/value content of a Message. Values are
// expected to be strings, numbers, booleans or Addresses. Getters return an
// error wrapping ErrMalformedPayload when a key is missing or mistyped, so
// handlers can drop the message without panicking.
type Payload map[string]any

// Clone returns a shallow copy of the payload. Values are scalars, so a
// shallow copy is sufficient to keep sent messages immutable.
func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	return maps.Clone(p)
}

// Has reports whether key is present.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the string value stored under key.
func (p Payload) String(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", missing(key)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case Address:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return "", mistyped(key, "string", v)
	}
}

// StringOr returns the string under key, or def if absent or mistyped.
func (p Payload) StringOr(key, def string) string {
	s, err := p.String(key)
	if err != nil || s == "" {
		return def
	}
	return s
}

// Address returns the actor address stored under key.
func (p Payload) Address(key string) (Address, error) {
	s, err := p.String(key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("%w: key %q is empty", ErrMalformedPayload, key)
	}
	return Address(s), nil
}

// AddressOr returns the address under key, or def if absent.
func (p Payload) AddressOr(key string, def Address) Address {
	a, err := p.Address(key)
	if err != nil {
		return def
	}
	return a
}

// Float returns the numeric value stored under key. Numeric strings are
// accepted so text-encoded amounts ("250.00") parse as well. NaN and
// infinities are rejected.
func (p Payload) Float(key string) (float64, error) {
	f, err := p.number(key)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: key %q must be finite, got %v", ErrMalformedPayload, key, f)
	}
	return f, nil
}

func (p Payload) number(key string) (float64, error) {
	v, ok := p[key]
	if !ok {
		return 0, missing(key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, mistyped(key, "number", v)
		}
		return f, nil
	default:
		return 0, mistyped(key, "number", v)
	}
}

// PositiveFloat is Float restricted to strictly positive values.
func (p Payload) PositiveFloat(key string) (float64, error) {
	f, err := p.Float(key)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, fmt.Errorf("%w: key %q must be positive, got %v", ErrMalformedPayload, key, f)
	}
	return f, nil
}

// Int returns the integer value stored under key.
func (p Payload) Int(key string) (int, error) {
	v, ok := p[key]
	if !ok {
		return 0, missing(key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, mistyped(key, "integer", v)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, mistyped(key, "integer", v)
		}
		return i, nil
	default:
		return 0, mistyped(key, "integer", v)
	}
}

func missing(key string) error {
	return fmt.Errorf("%w: key %q missing", ErrMalformedPayload, key)
}

func mistyped(key, want string, got any) error {
	return fmt.Errorf("%w: key %q want %s, got %T", ErrMalformedPayload, key, want, got)
}
