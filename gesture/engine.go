// Package gesture turns decoded trackpad frames into pointer, button,
// scroll and keyboard actions.
//
// The engine keeps one session per finger count. A change in finger
// count resets every session that does not match the new count before
// the frame is handled, and a session that has committed to an
// interpretation keeps it until reset.
package gesture

import (
	"math"
	"time"

	"trackpad.dev/action"
	"trackpad.dev/touch"
)

// Engine is stateless apart from its configuration; all session state
// lives in the State passed to each call.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Dispatch handles one frame. Frames must be delivered in arrival order
// with non-decreasing timestamps.
func (e *Engine) Dispatch(st *State, now time.Time, f touch.Frame) ([]action.Action, error) {
	if !st.Valid() {
		return nil, ErrCorruptedState
	}
	st.updated = now
	out := e.expire(st, now, nil)

	// Hardware click gestures take priority over movement.
	if f.Tap() || f.TwoFingerTap() {
		if f.Tap() {
			out = e.tap(st, now, out)
		} else {
			if st.two.active {
				st.two.committed = CommitTap
			}
			out = append(out, action.ClickN(action.Right, 1))
		}
		return e.transition(st, now, f.Count, out), nil
	}

	out = e.transition(st, now, f.Count, out)
	switch {
	case f.Count == 1:
		out = e.one(st, now, f, out)
	case f.Count == 2 && st.one.lock.active:
		out = e.lockedDrag(st, f, out)
	case f.Count == 2:
		out = e.two(st, now, f, out)
	case f.Count == 3:
		out = e.three(st, now, f, out)
	}
	return out, nil
}

// Expire delivers a pending click whose merge window has passed.
func (e *Engine) Expire(st *State, now time.Time) ([]action.Action, error) {
	if !st.Valid() {
		return nil, ErrCorruptedState
	}
	return e.expire(st, now, nil), nil
}

func (e *Engine) expire(st *State, now time.Time, out []action.Action) []action.Action {
	if st.tap.pending && !now.Before(st.tap.deadline) {
		st.tap.pending = false
		out = append(out, action.ClickN(action.Left, 1))
	}
	return out
}

// Reset ends every session and drops a pending click, releasing a held
// drag. Cooldowns are kept.
func (e *Engine) Reset(st *State) ([]action.Action, error) {
	if !st.Valid() {
		return nil, ErrCorruptedState
	}
	out := e.resetOne(st, nil)
	st.two = twoSession{}
	st.three = threeSession{}
	st.tap.pending = false
	st.fingers = 0
	st.resetAccumulator()
	return out, nil
}

// transition resets the sessions that do not match the new finger
// count.
func (e *Engine) transition(st *State, now time.Time, n int, out []action.Action) []action.Action {
	prev := st.fingers
	if n == prev {
		return out
	}
	st.fingers = n
	st.resetAccumulator()
	locked := st.one.lock.active && (n == 1 || n == 2)
	if n != 1 && !locked {
		out = e.resetOne(st, out)
	}
	if locked && n == 1 {
		st.one.lock.delegate = -1
	}
	if n != 2 {
		st.two = twoSession{}
	}
	if n != 3 {
		out = e.endThree(st, now, n < 3, out)
	}
	return out
}

func (e *Engine) resetOne(st *State, out []action.Action) []action.Action {
	if st.one.dragging {
		out = append(out, action.Release(action.Left))
	}
	st.one = oneSession{}
	st.one.lock.delegate = -1
	return out
}

func (e *Engine) tap(st *State, now time.Time, out []action.Action) []action.Action {
	if e.cfg.TapWindow <= 0 {
		return append(out, action.ClickN(action.Left, 1))
	}
	if st.tap.pending {
		// Second tap inside the window supersedes the pending click.
		st.tap.pending = false
		return append(out, action.ClickN(action.Left, 2))
	}
	st.tap.pending = true
	st.tap.deadline = now.Add(e.cfg.TapWindow)
	return out
}

// move accumulates a relative delta and emits the whole units once
// either axis crosses the movement threshold.
func (e *Engine) move(st *State, dx, dy int, out []action.Action) []action.Action {
	st.accX += float64(dx) * st.sensitivity
	st.accY += float64(dy) * st.sensitivity
	th := e.cfg.MoveThreshold
	if math.Abs(st.accX) < th && math.Abs(st.accY) < th {
		return out
	}
	ix, iy := int(st.accX), int(st.accY)
	if ix == 0 && iy == 0 {
		return out
	}
	st.accX -= float64(ix)
	st.accY -= float64(iy)
	return append(out, action.MoveBy(ix, iy))
}

// activeFingers returns the indices of up to n active fingers.
func activeFingers(f touch.Frame, n int) []int {
	idx := make([]int, 0, n)
	for i, fg := range f.Fingers {
		if len(idx) == n {
			break
		}
		if fg.Active() {
			idx = append(idx, i)
		}
	}
	return idx
}

func pos(f touch.Frame, i int) point {
	return point{X: f.Fingers[i].X, Y: f.Fingers[i].Y}
}

func dist(a, b point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
