package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ImportRun tracks one invocation of the importer and its outcome.
type ImportRun struct {
	bun.BaseModel `bun:"table:import_runs,alias:ir"`

	ID             int64      `bun:"id,pk,autoincrement" json:"id"`
	RunID          string     `bun:"run_id,unique,notnull" json:"run_id"`
	Scope          RunScope   `bun:"scope,notnull" json:"scope"`
	Year           int        `bun:"year,notnull" json:"year"`
	EventName      *string    `bun:"event_name" json:"event_name,omitempty"`
	SessionType    *string    `bun:"session_type" json:"session_type,omitempty"`
	StartTime      time.Time  `bun:"start_time,notnull" json:"start_time"`
	EndTime        *time.Time `bun:"end_time" json:"end_time,omitempty"`
	Status         RunStatus  `bun:"status,notnull" json:"status"`
	SessionsOK     int        `bun:"sessions_ok,notnull,default:0" json:"sessions_ok"`
	SessionsFailed int        `bun:"sessions_failed,notnull,default:0" json:"sessions_failed"`
	LapsInserted   int        `bun:"laps_inserted,notnull,default:0" json:"laps_inserted"`
	LapsSkipped    int        `bun:"laps_skipped,notnull,default:0" json:"laps_skipped"`
	ErrorLog       *string    `bun:"error_log" json:"error_log,omitempty"`
	ConfigSnapshot *string    `bun:"config_snapshot" json:"config_snapshot,omitempty"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Finished reports whether the run reached a terminal status.
func (r *ImportRun) Finished() bool {
	return r.Status != RunRunning && r.EndTime != nil
}
