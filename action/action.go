// Package action defines the semantic pointer and keyboard actions
// produced by the gesture engine.
package action

import (
	"fmt"
	"strings"
)

type Kind int

const (
	Move Kind = iota
	ButtonDown
	ButtonUp
	// Click is a press and release, repeated Count times.
	Click
	Scroll
	// Combo presses the modifiers and key, then releases them in
	// reverse order.
	Combo
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case ButtonDown:
		return "down"
	case ButtonUp:
		return "up"
	case Click:
		return "click"
	case Scroll:
		return "scroll"
	case Combo:
		return "combo"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Button int

const (
	Left Button = iota
	Right
	Middle
)

func (b Button) String() string {
	switch b {
	case Left:
		return "left"
	case Right:
		return "right"
	case Middle:
		return "middle"
	}
	return fmt.Sprintf("button(%d)", int(b))
}

// Action is a single output action. Only the fields relevant to Kind
// are set.
type Action struct {
	Kind   Kind
	DX, DY int
	Button Button
	Count  int
	// Vertical and horizontal scroll steps.
	V, H  int
	Combo Shortcut
}

func (a Action) String() string {
	switch a.Kind {
	case Move:
		return fmt.Sprintf("move(%d,%d)", a.DX, a.DY)
	case ButtonDown, ButtonUp:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Button)
	case Click:
		return fmt.Sprintf("click(%s,%d)", a.Button, a.Count)
	case Scroll:
		return fmt.Sprintf("scroll(%d,%d)", a.V, a.H)
	case Combo:
		return fmt.Sprintf("combo(%s)", a.Combo)
	}
	return a.Kind.String()
}

func MoveBy(dx, dy int) Action {
	return Action{Kind: Move, DX: dx, DY: dy}
}

func Press(b Button) Action {
	return Action{Kind: ButtonDown, Button: b}
}

func Release(b Button) Action {
	return Action{Kind: ButtonUp, Button: b}
}

func ClickN(b Button, n int) Action {
	return Action{Kind: Click, Button: b, Count: n}
}

func ScrollBy(v, h int) Action {
	return Action{Kind: Scroll, V: v, H: h}
}

func Keys(s Shortcut) Action {
	return Action{Kind: Combo, Combo: s}
}

// Shortcut is a key pressed with a set of modifiers.
type Shortcut struct {
	Mods Mod
	Key  Key
}

func (s Shortcut) String() string {
	var parts []string
	for _, m := range modNames {
		if s.Mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	parts = append(parts, s.Key.String())
	return strings.Join(parts, "+")
}

// Modifiers returns the key codes of the modifiers in press order.
func (s Shortcut) Modifiers() []Key {
	var keys []Key
	for _, m := range modNames {
		if s.Mods&m.mod != 0 {
			keys = append(keys, m.key)
		}
	}
	return keys
}

// ParseShortcut parses strings like "ctrl+alt+left".
func ParseShortcut(s string) (Shortcut, error) {
	var sc Shortcut
	parts := strings.Split(strings.ToLower(s), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i < len(parts)-1 {
			m, ok := modByName(p)
			if !ok {
				return Shortcut{}, fmt.Errorf("action: unknown modifier %q in %q", p, s)
			}
			sc.Mods |= m
			continue
		}
		k, ok := keyByName[p]
		if !ok {
			return Shortcut{}, fmt.Errorf("action: unknown key %q in %q", p, s)
		}
		sc.Key = k
	}
	return sc, nil
}
