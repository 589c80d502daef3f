package openf1

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mkoziy/paddock/internal/provider"
	"github.com/mkoziy/paddock/internal/telemetry"
)

// carTelemetry serves per-lap samples out of one /car_data download per
// driver. A failed download is remembered so later laps fail fast.
type carTelemetry struct {
	client     *Client
	sessionKey int

	mu       sync.Mutex
	byDriver map[int][]telemetry.Sample
	failed   map[int]error
}

func newCarTelemetry(client *Client, sessionKey int) *carTelemetry {
	return &carTelemetry{
		client:     client,
		sessionKey: sessionKey,
		byDriver:   make(map[int][]telemetry.Sample),
		failed:     make(map[int]error),
	}
}

// LapTelemetry returns the samples recorded in [start, start+lap time).
func (t *carTelemetry) LapTelemetry(ctx context.Context, lap provider.Lap) ([]telemetry.Sample, error) {
	if lap.Start == nil || lap.LapTime == nil {
		return nil, telemetry.ErrNoSamples
	}
	samples, err := t.driverSamples(ctx, lap.DriverNo)
	if err != nil {
		return nil, err
	}

	start := *lap.Start
	end := start.Add(seconds(*lap.LapTime))
	lo := sort.Search(len(samples), func(i int) bool { return !samples[i].Time.Before(start) })
	hi := sort.Search(len(samples), func(i int) bool { return !samples[i].Time.Before(end) })
	if lo >= hi {
		return nil, telemetry.ErrNoSamples
	}
	return samples[lo:hi], nil
}

func (t *carTelemetry) driverSamples(ctx context.Context, driverNo int) ([]telemetry.Sample, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if samples, ok := t.byDriver[driverNo]; ok {
		return samples, nil
	}
	if err, ok := t.failed[driverNo]; ok {
		return nil, err
	}

	data, err := t.client.CarData(ctx, t.sessionKey, driverNo)
	if err != nil {
		err = fmt.Errorf("car data for #%d: %w", driverNo, err)
		// A cancelled lap says nothing about the stream itself.
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			t.failed[driverNo] = err
		}
		return nil, err
	}
	samples := make([]telemetry.Sample, 0, len(data))
	for _, d := range data {
		if d.Date.IsZero() {
			continue
		}
		samples = append(samples, telemetry.Sample{
			Time:     d.Date.Time,
			Speed:    d.Speed,
			Throttle: d.Throttle,
			Brake:    d.Brake > 0,
		})
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Time.Before(samples[j].Time) })
	t.byDriver[driverNo] = samples
	return samples, nil
}
