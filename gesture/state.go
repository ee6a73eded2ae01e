package gesture

import (
	"errors"
	"time"
)

// ErrCorruptedState is returned when a State fails validation. The
// caller must replace it with a fresh NewState before dispatching
// again.
var ErrCorruptedState = errors.New("gesture: corrupted state")

// stateCheck is the validation token stored in every State made by
// NewState.
const stateCheck = 0x5a1e_c0de

// Commit is the interpretation a two-finger session has locked in.
type Commit int

const (
	CommitNone Commit = iota
	CommitTap
	CommitScroll
	CommitZoom
)

func (c Commit) String() string {
	switch c {
	case CommitTap:
		return "tap"
	case CommitScroll:
		return "scroll"
	case CommitZoom:
		return "zoom"
	}
	return "none"
}

type point struct {
	X, Y int
}

type dragLock struct {
	active    bool
	holdStart time.Time
	holdPos   point
	// delegate is the index of the finger driving the pointer while
	// locked, or -1.
	delegate int
	last     point
}

type oneSession struct {
	dragging bool
	dragSent bool
	lock     dragLock
}

type twoSession struct {
	active    bool
	start     time.Time
	startPos  [2]point
	startDist float64
	scrollX   int
	scrollY   int
	committed Commit
}

type threeSession struct {
	pressed   bool
	start     time.Time
	slots     [3]int
	startPos  [3]point
	triggered bool
}

// State is the gesture session store. It is owned by a single
// goroutine and passed to the Engine for every frame.
type State struct {
	check   uint32
	updated time.Time

	sensitivity float64
	// fingers is the last observed finger count.
	fingers int

	// Pointer accumulator carrying sub-threshold movement.
	accX, accY float64

	tap struct {
		pending  bool
		deadline time.Time
	}

	one   oneSession
	two   twoSession
	three threeSession

	// Cooldowns span sessions.
	lastZoom  time.Time
	lastSwipe time.Time
}

// NewState returns a valid, idle State.
func NewState(sensitivity float64) *State {
	st := &State{
		check:       stateCheck,
		sensitivity: sensitivity,
	}
	st.one.lock.delegate = -1
	return st
}

// Valid reports whether the validation token is intact.
func (st *State) Valid() bool {
	return st != nil && st.check == stateCheck
}

// SetSensitivity changes the movement scale for subsequent frames.
func (st *State) SetSensitivity(s float64) {
	st.sensitivity = s
}

// Deadline returns the time a pending click is due, if any.
func (st *State) Deadline() (time.Time, bool) {
	return st.tap.deadline, st.tap.pending
}

// Updated returns the time of the last dispatch.
func (st *State) Updated() time.Time {
	return st.updated
}

// Fingers returns the last observed finger count.
func (st *State) Fingers() int {
	return st.fingers
}

// Dragging reports whether the left button is held by a drag.
func (st *State) Dragging() bool {
	return st.one.dragging
}

// Committed returns the interpretation of the live two-finger session.
func (st *State) Committed() Commit {
	return st.two.committed
}

// Triggered reports whether the live three-finger session has fired.
func (st *State) Triggered() bool {
	return st.three.triggered
}

func (st *State) resetAccumulator() {
	st.accX, st.accY = 0, 0
}
