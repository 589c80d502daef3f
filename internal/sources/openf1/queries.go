package openf1

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Query builds OpenF1 filter strings such as
// "session_key=9158&driver_number=1&date>=2023-09-16T13:03:35Z".
type Query struct {
	terms []string
}

// NewQuery creates an empty filter.
func NewQuery() *Query {
	return &Query{terms: make([]string, 0)}
}

// Eq adds field=value.
func (q *Query) Eq(field string, value any) *Query {
	return q.add(field, "=", value)
}

// Gte adds field>=value.
func (q *Query) Gte(field string, value any) *Query {
	return q.add(field, ">=", value)
}

// Lt adds field<value.
func (q *Query) Lt(field string, value any) *Query {
	return q.add(field, "<", value)
}

func (q *Query) add(field, op string, value any) *Query {
	if field == "" {
		return q
	}
	q.terms = append(q.terms, field+op+url.QueryEscape(formatValue(value)))
	return q
}

// Encode constructs the query string.
func (q *Query) Encode() string {
	return strings.Join(q.terms, "&")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// Predefined filters.
func QueryYear(year int) *Query {
	return NewQuery().Eq("year", year)
}

func QueryMeeting(meetingKey int) *Query {
	return NewQuery().Eq("meeting_key", meetingKey)
}

func QuerySession(sessionKey int) *Query {
	return NewQuery().Eq("session_key", sessionKey)
}

func QueryDriverSession(sessionKey, driverNumber int) *Query {
	return QuerySession(sessionKey).Eq("driver_number", driverNumber)
}
