package iqs5xx

import (
	"encoding/binary"
	"fmt"
)

// Settings is the register configuration written at start and replayed
// after a reset.
type Settings struct {
	// ReportRate is the active mode report interval in milliseconds.
	ReportRate uint16

	SystemConfig0 byte
	SystemConfig1 byte
	XYConfig      byte

	ResolutionX uint16
	ResolutionY uint16

	SingleGestures byte
	MultiGestures  byte
	// Timings in milliseconds, distances in sensor units.
	TapTime         uint16
	TapDistance     uint16
	HoldTime        uint16
	ScrollDistance  uint16
	ScrollAngle     byte
	ZoomDistance    uint16
	ZoomConsecutive uint16
}

// DefaultSettings enables event mode with all gestures the engine
// consumes.
var DefaultSettings = Settings{
	ReportRate:      10,
	SystemConfig0:   SetupComplete | Watchdog | ReATI | ALPReATI,
	SystemConfig1:   EventMode | GestureEvent | TPEvent | ReATIEvent,
	ResolutionX:     2048,
	ResolutionY:     1792,
	SingleGestures:  EnableTap | EnablePressAndHold,
	MultiGestures:   EnableTwoFingerTap | EnableScroll | EnableZoom,
	TapTime:         150,
	TapDistance:     25,
	HoldTime:        300,
	ScrollDistance:  50,
	ScrollAngle:     0x32,
	ZoomDistance:    50,
	ZoomConsecutive: 25,
}

// group is a run of consecutive registers written in a single
// communication window.
type group struct {
	reg  uint16
	size int
	enc  func(s *Settings, b []byte)
	dec  func(s *Settings, b []byte)
}

var bo = binary.BigEndian

var groups = []group{
	{
		reg:  regReportRateActive,
		size: 2,
		enc:  func(s *Settings, b []byte) { bo.PutUint16(b, s.ReportRate) },
		dec:  func(s *Settings, b []byte) { s.ReportRate = bo.Uint16(b) },
	},
	{
		reg:  regSystemConfig0,
		size: 2,
		enc: func(s *Settings, b []byte) {
			b[0], b[1] = s.SystemConfig0, s.SystemConfig1
		},
		dec: func(s *Settings, b []byte) {
			s.SystemConfig0, s.SystemConfig1 = b[0], b[1]
		},
	},
	{
		reg:  regXYConfig0,
		size: 1,
		enc:  func(s *Settings, b []byte) { b[0] = s.XYConfig },
		dec:  func(s *Settings, b []byte) { s.XYConfig = b[0] },
	},
	{
		reg:  regXResolution,
		size: 4,
		enc: func(s *Settings, b []byte) {
			bo.PutUint16(b[0:], s.ResolutionX)
			bo.PutUint16(b[regYResolution-regXResolution:], s.ResolutionY)
		},
		dec: func(s *Settings, b []byte) {
			s.ResolutionX = bo.Uint16(b[0:])
			s.ResolutionY = bo.Uint16(b[regYResolution-regXResolution:])
		},
	},
	{
		reg:  regSingleFingerGestures,
		size: 8,
		enc: func(s *Settings, b []byte) {
			b[0] = s.SingleGestures
			b[regMultiFingerGestures-regSingleFingerGestures] = s.MultiGestures
			bo.PutUint16(b[regTapTime-regSingleFingerGestures:], s.TapTime)
			bo.PutUint16(b[regTapDistance-regSingleFingerGestures:], s.TapDistance)
			bo.PutUint16(b[regHoldTime-regSingleFingerGestures:], s.HoldTime)
		},
		dec: func(s *Settings, b []byte) {
			s.SingleGestures = b[0]
			s.MultiGestures = b[regMultiFingerGestures-regSingleFingerGestures]
			s.TapTime = bo.Uint16(b[regTapTime-regSingleFingerGestures:])
			s.TapDistance = bo.Uint16(b[regTapDistance-regSingleFingerGestures:])
			s.HoldTime = bo.Uint16(b[regHoldTime-regSingleFingerGestures:])
		},
	},
	{
		reg:  regScrollInitialDistance,
		size: 7,
		enc: func(s *Settings, b []byte) {
			bo.PutUint16(b[0:], s.ScrollDistance)
			b[regScrollAngle-regScrollInitialDistance] = s.ScrollAngle
			bo.PutUint16(b[regZoomInitialDistance-regScrollInitialDistance:], s.ZoomDistance)
			bo.PutUint16(b[regZoomConsecutive-regScrollInitialDistance:], s.ZoomConsecutive)
		},
		dec: func(s *Settings, b []byte) {
			s.ScrollDistance = bo.Uint16(b[0:])
			s.ScrollAngle = b[regScrollAngle-regScrollInitialDistance]
			s.ZoomDistance = bo.Uint16(b[regZoomInitialDistance-regScrollInitialDistance:])
			s.ZoomConsecutive = bo.Uint16(b[regZoomConsecutive-regScrollInitialDistance:])
		},
	},
}

// Configure writes s one register group at a time, each in its own
// communication window opened by the ready line.
func (d *Device) Configure(s Settings) error {
	var buf [8]byte
	for _, g := range groups {
		if err := d.WaitReady(); err != nil {
			return fmt.Errorf("iqs5xx: configure %#04x: %w", g.reg, err)
		}
		b := buf[:g.size]
		g.enc(&s, b)
		err := d.WriteRegs(g.reg, b...)
		if eerr := d.EndWindow(); err == nil {
			err = eerr
		}
		if err != nil {
			return fmt.Errorf("iqs5xx: configure: %w", err)
		}
	}
	return nil
}

// ReadSettings reads back the configuration written by Configure.
func (d *Device) ReadSettings() (Settings, error) {
	var (
		s   Settings
		buf [8]byte
	)
	for _, g := range groups {
		if err := d.WaitReady(); err != nil {
			return Settings{}, fmt.Errorf("iqs5xx: settings %#04x: %w", g.reg, err)
		}
		b := buf[:g.size]
		err := d.ReadRegs(g.reg, b)
		if eerr := d.EndWindow(); err == nil {
			err = eerr
		}
		if err != nil {
			return Settings{}, fmt.Errorf("iqs5xx: settings: %w", err)
		}
		g.dec(&s, b)
	}
	return s, nil
}
