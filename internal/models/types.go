package models

import "strings"

// SessionType is the internal session code stored in sessions.type.
type SessionType string

const (
	SessionFP1 SessionType = "FP1"
	SessionFP2 SessionType = "FP2"
	SessionFP3 SessionType = "FP3"
	SessionQ   SessionType = "Q"
	SessionSQ  SessionType = "SQ"
	SessionS   SessionType = "S"
	SessionR   SessionType = "R"
)

// SessionTypes lists every valid session code.
var SessionTypes = []SessionType{SessionFP1, SessionFP2, SessionFP3, SessionQ, SessionSQ, SessionS, SessionR}

// Valid reports whether t belongs to the closed session vocabulary.
func (t SessionType) Valid() bool {
	for _, st := range SessionTypes {
		if t == st {
			return true
		}
	}
	return false
}

// Compound is a tyre compound as reported by timing, e.g. SOFT or INTERMEDIATE.
type Compound string

const (
	CompoundSoft         Compound = "SOFT"
	CompoundMedium       Compound = "MEDIUM"
	CompoundHard         Compound = "HARD"
	CompoundIntermediate Compound = "INTERMEDIATE"
	CompoundWet          Compound = "WET"
)

// NormalizeCompound upper-cases a compound name. Empty and "UNKNOWN" map to nil.
func NormalizeCompound(raw string) *Compound {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if c == "" || c == "UNKNOWN" || c == "NAN" {
		return nil
	}
	out := Compound(c)
	return &out
}

// RunStatus is the outcome recorded on an import run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
)

// RunScope tells whether an import run covered one session or a season.
type RunScope string

const (
	ScopeSession RunScope = "session"
	ScopeSeason  RunScope = "season"
)
