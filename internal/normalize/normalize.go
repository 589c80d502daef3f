// Package normalize converts provider values into storage-safe primitives.
// Every function is total: missing, NaN and infinite inputs become nil.
package normalize

import (
	"math"
	"time"
)

// int64 bounds expressed as float64. maxInt64 rounds up to 2^63, so the
// comparison against it must be strict.
const (
	minInt64 = float64(math.MinInt64)
	maxInt64 = float64(math.MaxInt64)
)

// ToSafeInt truncates v toward zero. NaN, infinities and values outside the
// int64 range yield nil.
func ToSafeInt(v float64) *int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	t := math.Trunc(v)
	if t < minInt64 || t >= maxInt64 {
		return nil
	}
	out := int64(t)
	return &out
}

// ToSafeIntPtr is ToSafeInt for optional values.
func ToSafeIntPtr(v *float64) *int64 {
	if v == nil {
		return nil
	}
	return ToSafeInt(*v)
}

// ToMillis converts a duration to whole milliseconds, truncating toward zero.
func ToMillis(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	ms := d.Milliseconds()
	return &ms
}

// SecondsToMillis converts fractional seconds, the provider's native lap and
// sector representation, to whole milliseconds. The value is snapped to the
// microsecond first so 90.123 does not truncate to 90122.
func SecondsToMillis(s *float64) *int64 {
	if s == nil {
		return nil
	}
	return ToSafeInt(math.Round(*s*1e6) / 1e3)
}

// Between returns to-from in milliseconds, or nil when either end is missing.
func Between(from, to *time.Time) *int64 {
	if from == nil || to == nil || from.IsZero() || to.IsZero() {
		return nil
	}
	d := to.Sub(*from)
	return ToMillis(&d)
}

// Round1 rounds v to one decimal place. Non-finite input yields nil.
func Round1(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	out := math.Round(v*10) / 10
	return &out
}
