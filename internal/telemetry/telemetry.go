// Package telemetry reduces a lap's car sensor stream to summary metrics.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/mkoziy/paddock/internal/normalize"
)

// FullThrottle is the throttle percentage treated as flat out.
const FullThrottle = 99.0

// ErrNoSamples is returned when a lap has no usable telemetry.
var ErrNoSamples = errors.New("no telemetry samples")

// Sample is one sensor reading within a lap.
type Sample struct {
	Time     time.Time
	Speed    float64
	Throttle float64
	Brake    bool
}

// Summary holds the per-lap telemetry metrics. All fields are nil when
// telemetry is unavailable.
type Summary struct {
	TopSpeed        *int64
	FullThrottlePct *float64
	BrakeCount      *int64
}

// Empty reports whether no metric was computed.
func (s Summary) Empty() bool {
	return s.TopSpeed == nil && s.FullThrottlePct == nil && s.BrakeCount == nil
}

// Fetch loads the samples of one lap.
type Fetch func(ctx context.Context) ([]Sample, error)

// Aggregate computes the summary of an ordered sample series.
func Aggregate(samples []Sample) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, ErrNoSamples
	}

	speeds := make([]float64, len(samples))
	var flatOut, applications int64
	// Only a released-to-engaged transition counts; a lap that opens on the
	// brakes carries that application over from the previous lap.
	braking := samples[0].Brake
	for i, s := range samples {
		if math.IsNaN(s.Speed) || math.IsInf(s.Speed, 0) || math.IsNaN(s.Throttle) || math.IsInf(s.Throttle, 0) {
			return Summary{}, fmt.Errorf("non-finite sample at %d", i)
		}
		speeds[i] = s.Speed
		if s.Throttle >= FullThrottle {
			flatOut++
		}
		if s.Brake && !braking {
			applications++
		}
		braking = s.Brake
	}

	top := normalize.ToSafeInt(floats.Max(speeds))
	pct := normalize.Round1(float64(flatOut) / float64(len(samples)) * 100)
	if top == nil || pct == nil {
		return Summary{}, errors.New("summary out of range")
	}
	return Summary{TopSpeed: top, FullThrottlePct: pct, BrakeCount: &applications}, nil
}

// Summarize fetches and aggregates one lap. Any failure, including a panic in
// the fetch, yields an empty Summary and the cause.
func Summarize(ctx context.Context, fetch Fetch) (sum Summary, err error) {
	if fetch == nil {
		return Summary{}, ErrNoSamples
	}
	defer func() {
		if r := recover(); r != nil {
			sum, err = Summary{}, fmt.Errorf("telemetry panic: %v", r)
		}
	}()

	samples, err := fetch(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch samples: %w", err)
	}
	return Aggregate(samples)
}
