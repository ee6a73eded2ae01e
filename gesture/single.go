package gesture

import (
	"time"

	"trackpad.dev/action"
	"trackpad.dev/touch"
)

func (e *Engine) one(st *State, now time.Time, f touch.Frame, out []action.Action) []action.Action {
	s := &st.one
	if f.Hold() && !s.dragSent {
		s.dragging = true
		s.dragSent = true
		out = append(out, action.Press(action.Left))
	}
	if e.cfg.DragLock {
		out = e.armDragLock(st, now, f, out)
	}
	return e.move(st, f.DX, f.DY, out)
}

// armDragLock locks a drag once a single finger has stayed within the
// tolerance for the hold time.
func (e *Engine) armDragLock(st *State, now time.Time, f touch.Frame, out []action.Action) []action.Action {
	s := &st.one
	if s.lock.active {
		return out
	}
	idx := activeFingers(f, 1)
	if len(idx) == 0 {
		return out
	}
	p := pos(f, idx[0])
	l := &s.lock
	if l.holdStart.IsZero() || dist(p, l.holdPos) > float64(e.cfg.DragLockTolerance) {
		l.holdStart = now
		l.holdPos = p
		return out
	}
	if now.Sub(l.holdStart) < e.cfg.DragLockHold {
		return out
	}
	l.active = true
	l.delegate = -1
	if !s.dragSent {
		s.dragging = true
		s.dragSent = true
		out = append(out, action.Press(action.Left))
	}
	return out
}

// lockedDrag moves the pointer by the motion of the finger that is not
// holding the lock.
func (e *Engine) lockedDrag(st *State, f touch.Frame, out []action.Action) []action.Action {
	l := &st.one.lock
	idx := activeFingers(f, 2)
	if len(idx) < 2 {
		return out
	}
	if l.delegate < 0 || !f.Fingers[l.delegate].Active() {
		// The delegate is the finger farthest from the anchor.
		d := idx[0]
		if dist(pos(f, idx[1]), l.holdPos) > dist(pos(f, idx[0]), l.holdPos) {
			d = idx[1]
		}
		l.delegate = d
		l.last = pos(f, d)
		return out
	}
	p := pos(f, l.delegate)
	dx, dy := p.X-l.last.X, p.Y-l.last.Y
	l.last = p
	return e.move(st, dx, dy, out)
}
