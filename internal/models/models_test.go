package models

import (
	"testing"
	"time"
)

func TestSessionTypeValid(t *testing.T) {
	for _, st := range SessionTypes {
		if !st.Valid() {
			t.Fatalf("expected %s to be valid", st)
		}
	}
	for _, st := range []SessionType{"", "FP4", "r", "Race"} {
		if st.Valid() {
			t.Fatalf("expected %q to be invalid", st)
		}
	}
}

func TestNormalizeCompound(t *testing.T) {
	cases := map[string]*Compound{
		"soft":          ptr(CompoundSoft),
		" Intermediate": ptr(CompoundIntermediate),
		"WET":           ptr(CompoundWet),
		"":              nil,
		"unknown":       nil,
		"nan":           nil,
	}
	for raw, want := range cases {
		got := NormalizeCompound(raw)
		switch {
		case want == nil && got != nil:
			t.Fatalf("%q: expected nil, got %s", raw, *got)
		case want != nil && (got == nil || *got != *want):
			t.Fatalf("%q: expected %s, got %v", raw, *want, got)
		}
	}
}

func TestEventValidate(t *testing.T) {
	valid := &Event{SeasonYear: 2024, RoundNumber: 12, Name: "British Grand Prix"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid event, got error: %v", err)
	}

	for _, e := range []*Event{
		{RoundNumber: 1, Name: "x"},
		{SeasonYear: 2024, Name: "x"},
		{SeasonYear: 2024, RoundNumber: 1},
	} {
		if err := e.Validate(); err == nil {
			t.Fatalf("expected error for %+v", e)
		}
	}
}

func TestDriverValidate(t *testing.T) {
	if err := (&Driver{Code: "VER", SeasonYear: 2024}).Validate(); err != nil {
		t.Fatalf("expected valid driver, got error: %v", err)
	}
	if err := (&Driver{Code: "VERS", SeasonYear: 2024}).Validate(); err == nil {
		t.Fatalf("expected error for four letter code")
	}
	if err := (&Driver{SeasonYear: 2024}).Validate(); err == nil {
		t.Fatalf("expected error for empty code")
	}
	if err := (&Driver{Code: "HAM"}).Validate(); err == nil {
		t.Fatalf("expected error for missing season")
	}
}

func TestLapHasTelemetry(t *testing.T) {
	l := &Lap{}
	if l.HasTelemetry() {
		t.Fatalf("expected no telemetry on empty lap")
	}
	brakes := int64(0)
	l.BrakeCount = &brakes
	if !l.HasTelemetry() {
		t.Fatalf("expected telemetry once brake count is set")
	}
}

func TestImportRunFinished(t *testing.T) {
	r := &ImportRun{Status: RunRunning}
	if r.Finished() {
		t.Fatalf("expected running run to be unfinished")
	}
	end := time.Now()
	r.Status, r.EndTime = RunPartial, &end
	if !r.Finished() {
		t.Fatalf("expected partial run with end time to be finished")
	}
}

func ptr[T any](v T) *T {
	return &v
}
