package gesture

import (
	"math"
	"time"

	"trackpad.dev/action"
	"trackpad.dev/touch"
)

func (e *Engine) two(st *State, now time.Time, f touch.Frame, out []action.Action) []action.Action {
	s := &st.two
	idx := activeFingers(f, 2)
	if len(idx) < 2 {
		return out
	}
	d := f.Distance(idx[0], idx[1])
	if !s.active {
		*s = twoSession{
			active:    true,
			start:     now,
			startPos:  [2]point{pos(f, idx[0]), pos(f, idx[1])},
			startDist: d,
		}
	}
	if s.committed == CommitNone {
		if act, ok := e.pinch(st, now, d, f); ok {
			s.committed = CommitZoom
			st.lastZoom = now
			return append(out, act)
		}
	}
	if f.Scroll() && (s.committed == CommitNone || s.committed == CommitScroll) {
		s.committed = CommitScroll
		out = e.scroll(st, f.DX, f.DY, out)
	}
	return out
}

// pinch reports a zoom action when the finger distance has changed by
// the zoom threshold without the fingers panning.
func (e *Engine) pinch(st *State, now time.Time, d float64, f touch.Frame) (action.Action, bool) {
	delta := d - st.two.startDist
	if math.Abs(delta) < e.cfg.ZoomThreshold {
		return action.Action{}, false
	}
	if abs(f.DX) > e.cfg.ZoomPanTolerance || abs(f.DY) > e.cfg.ZoomPanTolerance {
		return action.Action{}, false
	}
	if !st.lastZoom.IsZero() && now.Sub(st.lastZoom) < e.cfg.ZoomCooldown {
		return action.Action{}, false
	}
	if delta > 0 {
		return action.Keys(e.cfg.Policy.ZoomIn), true
	}
	return action.Keys(e.cfg.Policy.ZoomOut), true
}

// scroll accumulates the scroll delta and emits one step per axis each
// time the threshold is crossed.
func (e *Engine) scroll(st *State, dx, dy int, out []action.Action) []action.Action {
	s := &st.two
	s.scrollX += dx
	s.scrollY += dy
	th := e.cfg.ScrollThreshold
	var v, h int
	if abs(s.scrollY) >= th {
		// Fingers moving up scroll up.
		v = -sign(s.scrollY)
		s.scrollY = 0
	}
	if abs(s.scrollX) >= th {
		h = sign(s.scrollX)
		s.scrollX = 0
	}
	if v == 0 && h == 0 {
		return out
	}
	if e.cfg.NaturalScroll {
		v, h = -v, -h
	}
	return append(out, action.ScrollBy(v, h))
}
