package emit

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"trackpad.dev/action"
)

func TestMulti(t *testing.T) {
	var a, b Recorder
	errFull := errors.New("full")
	failing := SinkFunc(func(action.Action) error { return errFull })
	m := Multi{&a, failing, &b}
	err := m.Emit(action.ClickN(action.Left, 1))
	if !errors.Is(err, errFull) {
		t.Errorf("got %v, want the failing sink's error", err)
	}
	if len(a.Actions) != 1 || len(b.Actions) != 1 {
		t.Errorf("fan out reached %d and %d sinks", len(a.Actions), len(b.Actions))
	}
	if err := (Multi{&a}).Emit(action.MoveBy(1, 1)); err != nil {
		t.Errorf("healthy sinks: %v", err)
	}
}

func TestLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	l := &Logger{Log: log.New(buf, "", 0)}
	if err := l.Emit(action.ScrollBy(1, 0)); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); !strings.Contains(got, "scroll(1,0)") {
		t.Errorf("logged %q", got)
	}
}
