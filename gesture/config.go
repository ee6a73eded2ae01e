package gesture

import (
	"fmt"
	"sort"
	"time"

	"trackpad.dev/action"
)

// Config holds the gesture tuning. Distances are in sensor units after
// the coordinate transform.
type Config struct {
	// Sensitivity scales relative movement before accumulation.
	Sensitivity float64
	// MoveThreshold is the accumulated distance on either axis before
	// a move is emitted.
	MoveThreshold float64
	// TapWindow is the double tap merge window. Zero disables double
	// taps and emits single clicks immediately.
	TapWindow time.Duration

	ScrollThreshold int
	NaturalScroll   bool

	ZoomThreshold    float64
	ZoomPanTolerance int
	ZoomCooldown     time.Duration

	SwipeThreshold float64
	SettleDelay    time.Duration
	SwipeCooldown  time.Duration
	ThreeTapWindow time.Duration

	DragLock          bool
	DragLockHold      time.Duration
	DragLockTolerance int

	Policy Policy
}

func DefaultConfig() Config {
	return Config{
		Sensitivity:       1.0,
		MoveThreshold:     1.0,
		TapWindow:         250 * time.Millisecond,
		ScrollThreshold:   40,
		ZoomThreshold:     50,
		ZoomPanTolerance:  3,
		ZoomCooldown:      300 * time.Millisecond,
		SwipeThreshold:    30,
		SettleDelay:       60 * time.Millisecond,
		SwipeCooldown:     500 * time.Millisecond,
		ThreeTapWindow:    250 * time.Millisecond,
		DragLockHold:      400 * time.Millisecond,
		DragLockTolerance: 8,
		Policy:            Policies["gnome"],
	}
}

func (c Config) Validate() error {
	switch {
	case c.Sensitivity <= 0:
		return fmt.Errorf("gesture: sensitivity %v must be positive", c.Sensitivity)
	case c.MoveThreshold <= 0:
		return fmt.Errorf("gesture: move threshold %v must be positive", c.MoveThreshold)
	case c.ScrollThreshold <= 0:
		return fmt.Errorf("gesture: scroll threshold %d must be positive", c.ScrollThreshold)
	case c.ZoomThreshold <= 0:
		return fmt.Errorf("gesture: zoom threshold %v must be positive", c.ZoomThreshold)
	case c.SwipeThreshold <= 0:
		return fmt.Errorf("gesture: swipe threshold %v must be positive", c.SwipeThreshold)
	case c.TapWindow < 0 || c.ZoomCooldown < 0 || c.SettleDelay < 0 || c.SwipeCooldown < 0 || c.ThreeTapWindow < 0:
		return fmt.Errorf("gesture: negative duration")
	case c.Policy.Name == "":
		return fmt.Errorf("gesture: missing policy")
	}
	return nil
}

// Policy selects the keyboard shortcuts bound to zoom and swipe
// gestures.
type Policy struct {
	Name    string
	ZoomIn  action.Shortcut
	ZoomOut action.Shortcut
	// Expose is bound to an upward swipe.
	Expose action.Shortcut
	// ShowDesktop is bound to a downward swipe. Bind it to the same
	// shortcut as DesktopNext or DesktopPrev to keep the vertical axis
	// on desktop switching.
	ShowDesktop action.Shortcut
	// DesktopNext and DesktopPrev are bound to left and right swipes.
	DesktopNext action.Shortcut
	DesktopPrev action.Shortcut
}

// Targets are the shortcut names accepted by Policy.Bind.
var Targets = []string{"zoom_in", "zoom_out", "expose", "show_desktop", "desktop_next", "desktop_prev"}

// Bind replaces the shortcut of the named target.
func (p *Policy) Bind(target string, sc action.Shortcut) error {
	switch target {
	case "zoom_in":
		p.ZoomIn = sc
	case "zoom_out":
		p.ZoomOut = sc
	case "expose":
		p.Expose = sc
	case "show_desktop":
		p.ShowDesktop = sc
	case "desktop_next":
		p.DesktopNext = sc
	case "desktop_prev":
		p.DesktopPrev = sc
	default:
		return fmt.Errorf("gesture: unknown shortcut target %q (have %v)", target, Targets)
	}
	return nil
}

var Policies = map[string]Policy{
	"gnome": {
		Name:        "gnome",
		ZoomIn:      action.Shortcut{Mods: action.Ctrl, Key: action.KeyEqual},
		ZoomOut:     action.Shortcut{Mods: action.Ctrl, Key: action.KeyMinus},
		Expose:      action.Shortcut{Mods: action.Meta, Key: action.KeyS},
		ShowDesktop: action.Shortcut{Mods: action.Ctrl | action.Alt, Key: action.KeyD},
		DesktopNext: action.Shortcut{Mods: action.Ctrl | action.Alt, Key: action.KeyRight},
		DesktopPrev: action.Shortcut{Mods: action.Ctrl | action.Alt, Key: action.KeyLeft},
	},
	"macos": {
		Name:        "macos",
		ZoomIn:      action.Shortcut{Mods: action.Meta, Key: action.KeyEqual},
		ZoomOut:     action.Shortcut{Mods: action.Meta, Key: action.KeyMinus},
		Expose:      action.Shortcut{Mods: action.Ctrl, Key: action.KeyUp},
		ShowDesktop: action.Shortcut{Key: action.KeyF11},
		DesktopNext: action.Shortcut{Mods: action.Ctrl, Key: action.KeyRight},
		DesktopPrev: action.Shortcut{Mods: action.Ctrl, Key: action.KeyLeft},
	},
	"windows": {
		Name:        "windows",
		ZoomIn:      action.Shortcut{Mods: action.Ctrl, Key: action.KeyEqual},
		ZoomOut:     action.Shortcut{Mods: action.Ctrl, Key: action.KeyMinus},
		Expose:      action.Shortcut{Mods: action.Meta, Key: action.KeyTab},
		ShowDesktop: action.Shortcut{Mods: action.Meta, Key: action.KeyD},
		DesktopNext: action.Shortcut{Mods: action.Ctrl | action.Meta, Key: action.KeyRight},
		DesktopPrev: action.Shortcut{Mods: action.Ctrl | action.Meta, Key: action.KeyLeft},
	},
}

// PolicyByName returns the named policy.
func PolicyByName(name string) (Policy, error) {
	p, ok := Policies[name]
	if !ok {
		var names []string
		for n := range Policies {
			names = append(names, n)
		}
		sort.Strings(names)
		return Policy{}, fmt.Errorf("gesture: unknown policy %q (have %v)", name, names)
	}
	return p, nil
}
