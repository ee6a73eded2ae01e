package gesture

import (
	"errors"
	"testing"
	"time"

	"trackpad.dev/action"
	"trackpad.dev/touch"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

// frame returns a frame with a finger at each of the given positions.
func frame(pts ...[2]int) touch.Frame {
	f := touch.Frame{Count: len(pts)}
	for i, p := range pts {
		f.Fingers[i] = touch.Finger{X: p[0], Y: p[1], Strength: 100, Area: 10}
	}
	return f
}

type step struct {
	ms int
	f  touch.Frame
}

func run(t *testing.T, e *Engine, st *State, steps []step) []action.Action {
	t.Helper()
	var all []action.Action
	for i, s := range steps {
		out, err := e.Dispatch(st, at(s.ms), s.f)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		all = append(all, out...)
	}
	return all
}

func count(acts []action.Action, want action.Action) int {
	n := 0
	for _, a := range acts {
		if a == want {
			n++
		}
	}
	return n
}

func TestAccumulator(t *testing.T) {
	cfg := DefaultConfig()
	e := New(cfg)
	st := NewState(0.5)
	var steps []step
	for i := 0; i < 9; i++ {
		f := frame([2]int{100, 100})
		f.DX = 1
		f.DY = -1
		steps = append(steps, step{i * 10, f})
	}
	acts := run(t, e, st, steps)
	sumX, sumY := 0, 0
	for _, a := range acts {
		if a.Kind != action.Move {
			t.Fatalf("unexpected action %v", a)
		}
		if a.DX != 1 || a.DY != -1 {
			t.Errorf("move %v, want single units", a)
		}
		sumX += a.DX
		sumY += a.DY
	}
	// 9 * 0.5 = 4.5; the remainder stays in the accumulator.
	if sumX != 4 || sumY != -4 {
		t.Errorf("moved (%d,%d), want (4,-4)", sumX, sumY)
	}
}

func TestSubThresholdMovement(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MoveThreshold = 5
	e := New(cfg)
	st := NewState(1)
	f := frame([2]int{100, 100})
	f.DX = 2
	acts := run(t, e, st, []step{{0, f}, {10, f}})
	if len(acts) != 0 {
		t.Fatalf("got %v below threshold", acts)
	}
	acts = run(t, e, st, []step{{20, f}})
	if len(acts) != 1 || acts[0] != action.MoveBy(6, 0) {
		t.Fatalf("got %v, want move(6,0)", acts)
	}
	// A finger count change drops the accumulated remainder.
	f.DX = 4
	acts = run(t, e, st, []step{{30, f}, {40, touch.Frame{}}, {50, f}})
	if len(acts) != 0 {
		t.Errorf("got %v after lift, want nothing", acts)
	}
}

func TestTap(t *testing.T) {
	e := New(DefaultConfig())
	tap := touch.Frame{GestureA: touch.SingleTap}

	st := NewState(1)
	acts := run(t, e, st, []step{{0, tap}})
	if len(acts) != 0 {
		t.Fatalf("tap emitted %v before the window", acts)
	}
	if d, ok := st.Deadline(); !ok || !d.Equal(at(250)) {
		t.Fatalf("deadline %v %v, want %v", d, ok, at(250))
	}
	out, err := e.Expire(st, at(100))
	if err != nil || len(out) != 0 {
		t.Fatalf("early expire: %v %v", out, err)
	}
	out, err = e.Expire(st, at(250))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0] != action.ClickN(action.Left, 1) {
		t.Fatalf("expire: %v, want one single click", out)
	}
	if _, ok := st.Deadline(); ok {
		t.Error("click still pending after expiry")
	}
}

func TestDoubleTap(t *testing.T) {
	e := New(DefaultConfig())
	tap := touch.Frame{GestureA: touch.SingleTap}
	st := NewState(1)
	acts := run(t, e, st, []step{{0, tap}, {120, tap}})
	if got := count(acts, action.ClickN(action.Left, 2)); got != 1 {
		t.Errorf("%d double clicks, want 1", got)
	}
	out, _ := e.Expire(st, at(1000))
	acts = append(acts, out...)
	if got := count(acts, action.ClickN(action.Left, 1)); got != 0 {
		t.Errorf("%d single clicks, want 0", got)
	}
}

func TestTapWithoutWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TapWindow = 0
	e := New(cfg)
	st := NewState(1)
	acts := run(t, e, st, []step{{0, touch.Frame{GestureA: touch.SingleTap}}})
	if len(acts) != 1 || acts[0] != action.ClickN(action.Left, 1) {
		t.Fatalf("got %v, want immediate click", acts)
	}
}

func TestLateTapFlushesPending(t *testing.T) {
	e := New(DefaultConfig())
	tap := touch.Frame{GestureA: touch.SingleTap}
	st := NewState(1)
	acts := run(t, e, st, []step{{0, tap}, {400, tap}})
	if len(acts) != 1 || acts[0] != action.ClickN(action.Left, 1) {
		t.Fatalf("got %v, want the first click delivered", acts)
	}
	if _, ok := st.Deadline(); !ok {
		t.Error("second tap not pending")
	}
}

func TestDrag(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	hold := frame([2]int{100, 100})
	hold.GestureA = touch.PressAndHold
	steps := []step{{0, hold}}
	for i := 1; i <= 3; i++ {
		f := hold
		f.DX = 5
		steps = append(steps, step{i * 10, f})
	}
	steps = append(steps, step{50, touch.Frame{}})
	acts := run(t, e, st, steps)
	want := []action.Action{
		action.Press(action.Left),
		action.MoveBy(5, 0),
		action.MoveBy(5, 0),
		action.MoveBy(5, 0),
		action.Release(action.Left),
	}
	if len(acts) != len(want) {
		t.Fatalf("got %v, want %v", acts, want)
	}
	for i := range want {
		if acts[i] != want[i] {
			t.Errorf("action %d: %v, want %v", i, acts[i], want[i])
		}
	}
	if st.Dragging() {
		t.Error("still dragging after lift")
	}
}

func TestResetReleasesDrag(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	hold := frame([2]int{100, 100})
	hold.GestureA = touch.PressAndHold
	run(t, e, st, []step{{0, hold}})
	out, err := e.Reset(st)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0] != action.Release(action.Left) {
		t.Fatalf("reset: %v, want release", out)
	}
	if st.Fingers() != 0 || st.Dragging() {
		t.Error("reset left session state")
	}
}

func TestPinchZoom(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	var steps []step
	for i, x := range []int{200, 200, 200, 260} {
		steps = append(steps, step{i * 10, frame([2]int{100, 100}, [2]int{x, 100})})
	}
	acts := run(t, e, st, steps)
	zoomIn := action.Keys(Policies["gnome"].ZoomIn)
	if len(acts) != 1 || acts[0] != zoomIn {
		t.Fatalf("got %v, want one %v", acts, zoomIn)
	}
	if st.Committed() != CommitZoom {
		t.Fatalf("committed %v, want zoom", st.Committed())
	}
	// A committed zoom ignores scroll flags and further pinching.
	for i := 0; i < 5; i++ {
		f := frame([2]int{100, 100}, [2]int{400, 100})
		f.GestureB = touch.Scroll
		f.DY = 100
		steps = []step{{100 + i*10, f}}
		if acts := run(t, e, st, steps); len(acts) != 0 {
			t.Fatalf("frame %d after zoom: %v", i, acts)
		}
	}
}

func TestPinchOut(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	acts := run(t, e, st, []step{
		{0, frame([2]int{100, 100}, [2]int{300, 100})},
		{10, frame([2]int{100, 100}, [2]int{200, 100})},
	})
	if len(acts) != 1 || acts[0] != action.Keys(Policies["gnome"].ZoomOut) {
		t.Fatalf("got %v, want zoom out", acts)
	}
}

func TestPinchWhilePanning(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	f := frame([2]int{100, 100}, [2]int{260, 100})
	f.DX = 10
	acts := run(t, e, st, []step{
		{0, frame([2]int{100, 100}, [2]int{200, 100})},
		{10, f},
	})
	if len(acts) != 0 {
		t.Fatalf("got %v, want no zoom while panning", acts)
	}
}

func TestZoomCooldown(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	pinch := []step{
		{0, frame([2]int{100, 100}, [2]int{200, 100})},
		{10, frame([2]int{100, 100}, [2]int{260, 100})},
		{20, touch.Frame{}},
		{30, frame([2]int{100, 100}, [2]int{200, 100})},
		{40, frame([2]int{100, 100}, [2]int{260, 100})},
	}
	acts := run(t, e, st, pinch)
	if len(acts) != 1 {
		t.Fatalf("got %v, want one zoom inside the cooldown", acts)
	}
}

func TestScroll(t *testing.T) {
	tests := []struct {
		natural bool
		dx, dy  int
		want    action.Action
	}{
		{false, 0, -50, action.ScrollBy(1, 0)},
		{false, 0, 50, action.ScrollBy(-1, 0)},
		{false, 45, 0, action.ScrollBy(0, 1)},
		{true, 0, -50, action.ScrollBy(-1, 0)},
		{true, -45, 0, action.ScrollBy(0, 1)},
	}
	for _, test := range tests {
		cfg := DefaultConfig()
		cfg.NaturalScroll = test.natural
		e := New(cfg)
		st := NewState(1)
		f := frame([2]int{100, 100}, [2]int{200, 100})
		f.GestureB = touch.Scroll
		f.DX, f.DY = test.dx, test.dy
		acts := run(t, e, st, []step{{0, f}})
		if len(acts) != 1 || acts[0] != test.want {
			t.Errorf("natural=%v delta (%d,%d): got %v, want %v", test.natural, test.dx, test.dy, acts, test.want)
		}
		if st.Committed() != CommitScroll {
			t.Errorf("committed %v, want scroll", st.Committed())
		}
	}
}

func TestScrollAccumulates(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	var steps []step
	for i := 0; i < 4; i++ {
		f := frame([2]int{100, 100}, [2]int{200, 100})
		f.GestureB = touch.Scroll
		f.DY = -15
		steps = append(steps, step{i * 10, f})
	}
	acts := run(t, e, st, steps)
	// 60 units crosses the threshold of 40 once.
	if len(acts) != 1 || acts[0] != action.ScrollBy(1, 0) {
		t.Fatalf("got %v, want one step", acts)
	}
}

func TestTwoFingerTap(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	f := frame([2]int{100, 100}, [2]int{200, 100})
	acts := run(t, e, st, []step{
		{0, f},
		{10, touch.Frame{GestureB: touch.TwoFingerTap}},
	})
	if len(acts) != 1 || acts[0] != action.ClickN(action.Right, 1) {
		t.Fatalf("got %v, want right click", acts)
	}
}

func TestHardwareTapBeatsMovement(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	tap := frame([2]int{100, 100})
	tap.GestureA = touch.SingleTap
	tap.DX, tap.DY = 30, -20
	acts := run(t, e, st, []step{{0, frame([2]int{100, 100})}, {10, tap}})
	for _, a := range acts {
		if a.Kind == action.Move {
			t.Fatalf("tap frame moved the pointer: %v", acts)
		}
	}
	out, err := e.Expire(st, at(300))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0] != action.ClickN(action.Left, 1) {
		t.Fatalf("expire: %v, want one single click", out)
	}

	st = NewState(1)
	rtap := frame([2]int{100, 100}, [2]int{200, 100})
	rtap.GestureB = touch.TwoFingerTap | touch.Scroll
	rtap.DX, rtap.DY = 10, 60
	acts = run(t, e, st, []step{{0, frame([2]int{100, 100}, [2]int{200, 100})}, {10, rtap}})
	if len(acts) != 1 || acts[0] != action.ClickN(action.Right, 1) {
		t.Fatalf("got %v, want only a right click", acts)
	}
}

func TestScrollRefusesPinch(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	f := frame([2]int{100, 100}, [2]int{200, 100})
	f.GestureB = touch.Scroll
	f.DY = -50
	acts := run(t, e, st, []step{{0, f}})
	if len(acts) != 1 || st.Committed() != CommitScroll {
		t.Fatalf("got %v committed %v, want one scroll step", acts, st.Committed())
	}
	// The fingers spread well past the zoom threshold without panning.
	acts = run(t, e, st, []step{
		{10, frame([2]int{100, 100}, [2]int{300, 100})},
		{20, frame([2]int{100, 100}, [2]int{400, 100})},
	})
	for _, a := range acts {
		if a.Kind == action.Combo {
			t.Fatalf("scroll session zoomed: %v", acts)
		}
	}
	if st.Committed() != CommitScroll {
		t.Errorf("committed %v, want scroll", st.Committed())
	}
}

func TestSwipe(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	three := func(y int) touch.Frame {
		return frame([2]int{100, y}, [2]int{200, y}, [2]int{300, y})
	}
	acts := run(t, e, st, []step{
		{0, three(500)},
		{100, three(560)},
	})
	show := action.Keys(Policies["gnome"].ShowDesktop)
	if len(acts) != 1 || acts[0] != show {
		t.Fatalf("got %v, want %v", acts, show)
	}
	if !st.Triggered() {
		t.Error("session not triggered")
	}
	// Continued motion and lift stay quiet.
	acts = run(t, e, st, []step{
		{110, three(600)},
		{120, touch.Frame{}},
	})
	if len(acts) != 0 {
		t.Fatalf("got %v after trigger", acts)
	}
	// A second swipe inside the cooldown is suppressed.
	acts = run(t, e, st, []step{
		{200, three(500)},
		{300, three(560)},
	})
	if len(acts) != 0 {
		t.Fatalf("got %v inside cooldown", acts)
	}
	acts = run(t, e, st, []step{
		{700, touch.Frame{}},
		{800, three(500)},
		{900, three(560)},
	})
	if len(acts) != 1 || acts[0] != show {
		t.Fatalf("got %v after cooldown, want %v", acts, show)
	}
}

func TestSwipeDirections(t *testing.T) {
	p := Policies["gnome"]
	tests := []struct {
		dx, dy int
		want   action.Shortcut
	}{
		{0, -60, p.Expose},
		{0, 60, p.ShowDesktop},
		{-60, 10, p.DesktopNext},
		{60, -10, p.DesktopPrev},
	}
	for _, test := range tests {
		e := New(DefaultConfig())
		st := NewState(1)
		f0 := frame([2]int{100, 500}, [2]int{200, 500}, [2]int{300, 500})
		f1 := frame(
			[2]int{100 + test.dx, 500 + test.dy},
			[2]int{200 + test.dx, 500 + test.dy},
			[2]int{300 + test.dx, 500 + test.dy},
		)
		acts := run(t, e, st, []step{{0, f0}, {100, f1}})
		if len(acts) != 1 || acts[0] != action.Keys(test.want) {
			t.Errorf("delta (%d,%d): got %v, want %v", test.dx, test.dy, acts, test.want)
		}
	}
}

func TestSwipeSettle(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	acts := run(t, e, st, []step{
		{0, frame([2]int{100, 500}, [2]int{200, 500}, [2]int{300, 500})},
		{30, frame([2]int{100, 600}, [2]int{200, 600}, [2]int{300, 600})},
	})
	if len(acts) != 0 || st.Triggered() {
		t.Fatalf("got %v before settling", acts)
	}
}

func TestSwipeSparseSlots(t *testing.T) {
	// The sensor may report three fingers in any three of its slots.
	three := func(y int) touch.Frame {
		f := touch.Frame{Count: 3}
		for i, slot := range []int{0, 1, 3} {
			f.Fingers[slot] = touch.Finger{X: 100 * (i + 1), Y: y, Strength: 100, Area: 10}
		}
		return f
	}
	if err := three(500).Validate(touch.Bounds{MaxX: 3000, MaxY: 3000}); err != nil {
		t.Fatal(err)
	}
	e := New(DefaultConfig())
	st := NewState(1)
	acts := run(t, e, st, []step{
		{0, three(500)},
		{100, three(560)},
		{200, three(600)},
	})
	show := action.Keys(Policies["gnome"].ShowDesktop)
	if len(acts) != 1 || acts[0] != show {
		t.Fatalf("got %v, want %v", acts, show)
	}
	if !st.Triggered() {
		t.Error("session not triggered")
	}
}

func TestMiddleClickAfterSwipe(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	three := func(y int) touch.Frame {
		return frame([2]int{100, y}, [2]int{200, y}, [2]int{300, y})
	}
	acts := run(t, e, st, []step{
		{0, three(500)},
		{100, three(560)},
		{120, touch.Frame{}},
	})
	if len(acts) != 1 {
		t.Fatalf("got %v, want one swipe", acts)
	}
	// A quick tap still inside the swipe cooldown is not a click.
	acts = run(t, e, st, []step{
		{200, three(500)},
		{250, three(500)},
		{300, touch.Frame{}},
	})
	if len(acts) != 0 {
		t.Fatalf("got %v inside the swipe cooldown", acts)
	}
	// The same tap after the cooldown is.
	acts = run(t, e, st, []step{
		{700, three(500)},
		{750, three(500)},
		{800, touch.Frame{}},
	})
	if len(acts) != 1 || acts[0] != action.ClickN(action.Middle, 1) {
		t.Fatalf("got %v after the cooldown, want middle click", acts)
	}
}

func TestMiddleClick(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	f := frame([2]int{100, 500}, [2]int{200, 500}, [2]int{300, 500})
	acts := run(t, e, st, []step{{0, f}, {50, f}, {100, touch.Frame{}}})
	if len(acts) != 1 || acts[0] != action.ClickN(action.Middle, 1) {
		t.Fatalf("got %v, want middle click", acts)
	}
	// Held too long.
	st = NewState(1)
	acts = run(t, e, st, []step{{0, f}, {400, touch.Frame{}}})
	if len(acts) != 0 {
		t.Fatalf("got %v after a long press", acts)
	}
}

func TestFourFingersReset(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	three := frame([2]int{100, 500}, [2]int{200, 500}, [2]int{300, 500})
	four := frame([2]int{100, 500}, [2]int{200, 500}, [2]int{300, 500}, [2]int{400, 500})
	four.DX = 50
	acts := run(t, e, st, []step{{0, three}, {20, four}, {40, four}, {60, touch.Frame{}}})
	if len(acts) != 0 {
		t.Fatalf("got %v, want nothing for four fingers", acts)
	}
}

func TestDragLock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DragLock = true
	e := New(cfg)
	st := NewState(1)
	anchor := [2]int{100, 100}
	acts := run(t, e, st, []step{
		{0, frame(anchor)},
		{500, frame(anchor)},
		{510, frame(anchor, [2]int{300, 300})},
		{520, frame(anchor, [2]int{310, 300})},
		{530, touch.Frame{}},
	})
	want := []action.Action{
		action.Press(action.Left),
		action.MoveBy(10, 0),
		action.Release(action.Left),
	}
	if len(acts) != len(want) {
		t.Fatalf("got %v, want %v", acts, want)
	}
	for i := range want {
		if acts[i] != want[i] {
			t.Errorf("action %d: %v, want %v", i, acts[i], want[i])
		}
	}
}

func TestCorruptedState(t *testing.T) {
	e := New(DefaultConfig())
	st := NewState(1)
	run(t, e, st, []step{{0, frame([2]int{100, 100})}})
	st.check = 0
	f := frame([2]int{100, 100}, [2]int{200, 100})
	if _, err := e.Dispatch(st, at(10), f); !errors.Is(err, ErrCorruptedState) {
		t.Fatalf("dispatch: %v, want ErrCorruptedState", err)
	}
	if st.Fingers() != 1 || !st.Updated().Equal(at(0)) {
		t.Error("corrupted state was modified")
	}
	if _, err := e.Expire(st, at(20)); !errors.Is(err, ErrCorruptedState) {
		t.Errorf("expire: %v, want ErrCorruptedState", err)
	}
	if _, err := e.Reset(st); !errors.Is(err, ErrCorruptedState) {
		t.Errorf("reset: %v, want ErrCorruptedState", err)
	}
	var nilState *State
	if _, err := e.Dispatch(nilState, at(30), f); !errors.Is(err, ErrCorruptedState) {
		t.Errorf("nil state: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	bad := DefaultConfig()
	bad.ScrollThreshold = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero scroll threshold accepted")
	}
	if _, err := PolicyByName("amiga"); err == nil {
		t.Error("unknown policy accepted")
	}
	if p, err := PolicyByName("macos"); err != nil || p.Name != "macos" {
		t.Errorf("macos policy: %v %v", p, err)
	}
}
