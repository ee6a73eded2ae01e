package gesture

import (
	"math"
	"time"

	"trackpad.dev/action"
	"trackpad.dev/touch"
)

func (e *Engine) three(st *State, now time.Time, f touch.Frame, out []action.Action) []action.Action {
	s := &st.three
	if !s.pressed {
		idx := activeFingers(f, 3)
		if len(idx) < 3 {
			return out
		}
		// A single sample can't tell a tap from a swipe.
		*s = threeSession{pressed: true, start: now}
		for i, slot := range idx {
			s.slots[i] = slot
			s.startPos[i] = pos(f, slot)
		}
		return out
	}
	if s.triggered || now.Sub(s.start) < e.cfg.SettleDelay {
		return out
	}
	var dx, dy float64
	for i, slot := range s.slots {
		if !f.Fingers[slot].Active() {
			return out
		}
		p := pos(f, slot)
		dx += float64(p.X - s.startPos[i].X)
		dy += float64(p.Y - s.startPos[i].Y)
	}
	dx /= float64(len(s.startPos))
	dy /= float64(len(s.startPos))

	th := e.cfg.SwipeThreshold
	var sc action.Shortcut
	switch p := e.cfg.Policy; {
	case math.Abs(dy) >= math.Abs(dx) && dy <= -th:
		sc = p.Expose
	case math.Abs(dy) >= math.Abs(dx) && dy >= th:
		sc = p.ShowDesktop
	case math.Abs(dx) > math.Abs(dy) && dx <= -th:
		sc = p.DesktopNext
	case math.Abs(dx) > math.Abs(dy) && dx >= th:
		sc = p.DesktopPrev
	default:
		return out
	}
	if e.swipeCooling(st, now) {
		return out
	}
	s.triggered = true
	st.lastSwipe = now
	return append(out, action.Keys(sc))
}

func (e *Engine) swipeCooling(st *State, now time.Time) bool {
	return !st.lastSwipe.IsZero() && now.Sub(st.lastSwipe) < e.cfg.SwipeCooldown
}

// endThree ends the three-finger session. When lifting, a session that
// ends quickly without swiping is a middle click, unless a swipe just
// fired.
func (e *Engine) endThree(st *State, now time.Time, lift bool, out []action.Action) []action.Action {
	s := st.three
	st.three = threeSession{}
	if !lift || !s.pressed || s.triggered {
		return out
	}
	if now.Sub(s.start) > e.cfg.ThreeTapWindow || e.swipeCooling(st, now) {
		return out
	}
	return append(out, action.ClickN(action.Middle, 1))
}
