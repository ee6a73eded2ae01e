// Package uinput emits actions through a Linux virtual input device.
package uinput

import (
	"fmt"

	"trackpad.dev/action"
)

// Input event types and codes from input-event-codes.h.
const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02

	synReport = 0

	relX      = 0x0
	relY      = 0x1
	relHWheel = 0x6
	relWheel  = 0x8

	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
)

// Event is an input event without its timestamp.
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

func (e Event) String() string {
	return fmt.Sprintf("%d/%#x=%d", e.Type, e.Code, e.Value)
}

var syn = Event{Type: evSyn, Code: synReport}

func buttonCode(b action.Button) uint16 {
	switch b {
	case action.Right:
		return btnRight
	case action.Middle:
		return btnMiddle
	}
	return btnLeft
}

func key(code uint16, down bool) Event {
	v := int32(0)
	if down {
		v = 1
	}
	return Event{Type: evKey, Code: code, Value: v}
}

// Encode appends the events for a to evs. Every group of events is
// terminated by a sync report, and clicks are expanded into press and
// release pairs.
func Encode(evs []Event, a action.Action) []Event {
	switch a.Kind {
	case action.Move:
		if a.DX == 0 && a.DY == 0 {
			return evs
		}
		if a.DX != 0 {
			evs = append(evs, Event{Type: evRel, Code: relX, Value: int32(a.DX)})
		}
		if a.DY != 0 {
			evs = append(evs, Event{Type: evRel, Code: relY, Value: int32(a.DY)})
		}
		evs = append(evs, syn)
	case action.ButtonDown, action.ButtonUp:
		evs = append(evs, key(buttonCode(a.Button), a.Kind == action.ButtonDown), syn)
	case action.Click:
		c := buttonCode(a.Button)
		for i := 0; i < a.Count; i++ {
			evs = append(evs, key(c, true), syn, key(c, false), syn)
		}
	case action.Scroll:
		if a.V == 0 && a.H == 0 {
			return evs
		}
		if a.V != 0 {
			evs = append(evs, Event{Type: evRel, Code: relWheel, Value: int32(a.V)})
		}
		if a.H != 0 {
			evs = append(evs, Event{Type: evRel, Code: relHWheel, Value: int32(a.H)})
		}
		evs = append(evs, syn)
	case action.Combo:
		mods := a.Combo.Modifiers()
		for _, m := range mods {
			evs = append(evs, key(uint16(m), true))
		}
		evs = append(evs, key(uint16(a.Combo.Key), true), syn, key(uint16(a.Combo.Key), false))
		for i := len(mods) - 1; i >= 0; i-- {
			evs = append(evs, key(uint16(mods[i]), false))
		}
		evs = append(evs, syn)
	}
	return evs
}

// keyBits lists every key code the device may emit.
func keyBits() []uint16 {
	codes := []uint16{btnLeft, btnRight, btnMiddle}
	for _, k := range action.AllKeys() {
		codes = append(codes, uint16(k))
	}
	return codes
}
