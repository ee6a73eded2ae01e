// Package emit delivers gesture actions to the host.
package emit

import (
	"errors"
	"log"

	"trackpad.dev/action"
)

// Sink receives actions in the order they were produced. Emit is called
// from a single goroutine.
type Sink interface {
	Emit(a action.Action) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(a action.Action) error

func (f SinkFunc) Emit(a action.Action) error {
	return f(a)
}

// Logger is a dry run sink that logs every action.
type Logger struct {
	Log *log.Logger
}

func (l *Logger) Emit(a action.Action) error {
	lg := l.Log
	if lg == nil {
		lg = log.Default()
	}
	lg.Printf("emit: %v", a)
	return nil
}

// Multi sends every action to all sinks, even when one of them fails.
type Multi []Sink

func (m Multi) Emit(a action.Action) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder collects actions in memory.
type Recorder struct {
	Actions []action.Action
}

func (r *Recorder) Emit(a action.Action) error {
	r.Actions = append(r.Actions, a)
	return nil
}
