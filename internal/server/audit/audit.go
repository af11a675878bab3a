// Package audit records session lifecycle events. Invalidated clients stay
// in the user record; the audit trail keeps when and how they got there.
package audit

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

type Action string

const (
	ActionSignUp  Action = "signup"
	ActionSignIn  Action = "signin"
	ActionSignOut Action = "signout"
	ActionRenew   Action = "renew"
)

type Event struct {
	Action   Action    `json:"action"`
	Username string    `json:"username"`
	ClientID string    `json:"clientId,omitempty"`
	At       time.Time `json:"at"`
}

func NewEvent(action Action, username, clientID string) Event {
	return Event{Action: action, Username: username, ClientID: clientID, At: time.Now().UTC()}
}

// Sink stores events. A failing sink never fails the operation that
// produced the event; callers log and move on.
type Sink interface {
	Record(ctx context.Context, e Event) error
}

type NopSink struct{}

func (NopSink) Record(context.Context, Event) error { return nil }

// LogSink writes events to the structured log.
type LogSink struct {
	logger logging.Logger
}

func NewLogSink(logger logging.Logger) *LogSink {
	return &LogSink{logger: logger.With("module", "audit")}
}

func (s *LogSink) Record(ctx context.Context, e Event) error {
	s.logger.Info(ctx, "session event", "action", string(e.Action), "username", e.Username, "client_id", e.ClientID, "at", e.At)
	return nil
}
