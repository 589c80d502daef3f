package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mkoziy/paddock/internal/models"
	"github.com/mkoziy/paddock/internal/repositories"
)

// sessionDetail is a session plus the number of laps stored for it.
type sessionDetail struct {
	*models.Session
	LapCount int `json:"lap_count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.NewSelect().ColumnExpr("1").Scan(r.Context(), new(int)); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"api": "online", "database": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"api": "online"})
}

func (s *Server) handleSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := repositories.ListSeasons(r.Context(), s.db)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seasons)
}

// season resolves the {year} path value and writes 400/404 itself.
func (s *Server) season(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, ok := pathInt(r, "year")
	if !ok {
		writeError(w, http.StatusBadRequest, "year must be a positive integer")
		return 0, false
	}
	exists, err := repositories.SeasonExists(r.Context(), s.db, int(year))
	if err != nil {
		writeFailure(w, r, err)
		return 0, false
	}
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("season %d not found", year))
		return 0, false
	}
	return int(year), true
}

func (s *Server) handleSeasonEvents(w http.ResponseWriter, r *http.Request) {
	year, ok := s.season(w, r)
	if !ok {
		return
	}
	events, err := repositories.ListEvents(r.Context(), s.db, year)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleSeasonDrivers(w http.ResponseWriter, r *http.Request) {
	year, ok := s.season(w, r)
	if !ok {
		return
	}
	drivers, err := repositories.ListSeasonDrivers(r.Context(), s.db, year)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, drivers)
}

// handleFindSession resolves a session by its natural key so clients can
// learn the id used by the /sessions routes.
func (s *Server) handleFindSession(w http.ResponseWriter, r *http.Request) {
	year, ok := s.season(w, r)
	if !ok {
		return
	}
	round, ok := pathInt(r, "round")
	if !ok {
		writeError(w, http.StatusBadRequest, "round must be a positive integer")
		return
	}
	typ := models.SessionType(strings.ToUpper(r.PathValue("type")))
	if !typ.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown session type %q", r.PathValue("type")))
		return
	}

	session, err := repositories.FindSession(r.Context(), s.db, year, int(round), typ)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	laps, err := repositories.CountSessionLaps(r.Context(), s.db, session.ID)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionDetail{Session: session, LapCount: laps})
}

// session resolves the {id} path value and writes 400/404 itself.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := pathInt(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "session id must be a positive integer")
		return 0, false
	}
	if _, err := repositories.GetSession(r.Context(), s.db, id); err != nil {
		writeFailure(w, r, err)
		return 0, false
	}
	return id, true
}

func (s *Server) handleSessionDrivers(w http.ResponseWriter, r *http.Request) {
	id, ok := s.session(w, r)
	if !ok {
		return
	}
	drivers, err := repositories.ListSessionDrivers(r.Context(), s.db, id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, drivers)
}

func (s *Server) handleSessionLaps(w http.ResponseWriter, r *http.Request) {
	id, ok := s.session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := repositories.LapFilter{
		Driver:   strings.TrimSpace(q.Get("driver")),
		Compound: strings.TrimSpace(q.Get("compound")),
	}
	var err error
	if filter.LapMin, err = queryInt(r, "lap_min"); err != nil {
		writeError(w, http.StatusBadRequest, "lap_min must be an integer")
		return
	}
	if filter.LapMax, err = queryInt(r, "lap_max"); err != nil {
		writeError(w, http.StatusBadRequest, "lap_max must be an integer")
		return
	}

	laps, err := repositories.ListSessionLaps(r.Context(), s.db, id, filter)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, laps)
}

func (s *Server) handleImportRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil || (limit != nil && *limit <= 0) {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	n := defaultRunsLimit
	if limit != nil {
		n = *limit
	}
	runs, err := repositories.ListImportRuns(r.Context(), s.db, n)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}
