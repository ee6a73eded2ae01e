package action

import "fmt"

// Key is a key code from the Linux input event codes.
type Key uint16

const (
	KeyTab       Key = 15
	KeyS         Key = 31
	KeyD         Key = 32
	KeyMinus     Key = 12
	KeyEqual     Key = 13
	KeyLeftCtrl  Key = 29
	KeyLeftShift Key = 42
	KeyLeftAlt   Key = 56
	KeyF3        Key = 61
	KeyF11       Key = 87
	KeyHome      Key = 102
	KeyUp        Key = 103
	KeyPageUp    Key = 104
	KeyLeft      Key = 105
	KeyRight     Key = 106
	KeyEnd       Key = 107
	KeyDown      Key = 108
	KeyPageDown  Key = 109
	KeyLeftMeta  Key = 125
)

var keyByName = map[string]Key{
	"tab":      KeyTab,
	"s":        KeyS,
	"d":        KeyD,
	"minus":    KeyMinus,
	"-":        KeyMinus,
	"equal":    KeyEqual,
	"=":        KeyEqual,
	"plus":     KeyEqual,
	"f3":       KeyF3,
	"f11":      KeyF11,
	"home":     KeyHome,
	"up":       KeyUp,
	"pageup":   KeyPageUp,
	"left":     KeyLeft,
	"right":    KeyRight,
	"end":      KeyEnd,
	"down":     KeyDown,
	"pagedown": KeyPageDown,
}

func (k Key) String() string {
	switch k {
	case KeyEqual:
		return "equal"
	case KeyMinus:
		return "minus"
	}
	for name, v := range keyByName {
		// Single character aliases are only used for parsing.
		if v == k && (len(name) > 1 || k == KeyD || k == KeyS) {
			return name
		}
	}
	return fmt.Sprintf("key(%d)", int(k))
}

// AllKeys returns every key code a shortcut may contain.
func AllKeys() []Key {
	keys := []Key{KeyLeftCtrl, KeyLeftShift, KeyLeftAlt, KeyLeftMeta}
	seen := make(map[Key]bool)
	for _, k := range keyByName {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// Mod is a set of modifier keys.
type Mod uint8

const (
	Ctrl Mod = 0b1 << iota
	Shift
	Alt
	Meta
)

var modNames = []struct {
	mod  Mod
	name string
	key  Key
}{
	{Ctrl, "ctrl", KeyLeftCtrl},
	{Shift, "shift", KeyLeftShift},
	{Alt, "alt", KeyLeftAlt},
	{Meta, "meta", KeyLeftMeta},
}

func modByName(name string) (Mod, bool) {
	switch name {
	case "super", "cmd", "win":
		return Meta, true
	case "control":
		return Ctrl, true
	}
	for _, m := range modNames {
		if m.name == name {
			return m.mod, true
		}
	}
	return 0, false
}
