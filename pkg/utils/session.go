package utils

import (
	"context"
	"time"
)

// Session is the lifetime of one client connection. It ends when the
// connection is closed by either side, carrying the reason.
type Session struct {
	context   context.Context
	cancel    context.CancelCauseFunc
	startTime time.Time
}

func NewSession(ctx context.Context) Session {
	ctx, cancel := context.WithCancelCause(ctx)
	return Session{
		context:   ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

func (s *Session) Started() time.Time {
	return s.startTime
}

func (s *Session) Ctx() context.Context {
	return s.context
}

func (s *Session) Done() <-chan struct{} {
	return s.context.Done()
}

func (s *Session) IsDone() bool {
	return s.context.Err() != nil
}

// Err is the reason the session ended, or nil while it is still running.
func (s *Session) Err() error {
	if s.context.Err() == nil {
		return nil
	}
	return context.Cause(s.context)
}

// End finishes the session. Only the first reason is kept.
func (s *Session) End(reason error) {
	s.cancel(reason)
}
