package importer

import (
	"errors"
	"fmt"

	"github.com/mkoziy/paddock/internal/provider"
)

// SessionError reports a failed session import. The transaction of the
// session has been rolled back when it is returned.
type SessionError struct {
	Year  int
	Event string
	Type  string
	Err   error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("import %d %s %s: %v", e.Year, e.Event, e.Type, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the provider had no data for the session.
func (e *SessionError) NotFound() bool {
	return errors.Is(e.Err, provider.ErrSessionNotFound)
}
