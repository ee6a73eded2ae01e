// Package iqs5xx implements a driver for the Azoteq IQS5xx family of
// capacitive trackpad controllers (IQS525, IQS550, IQS572).
//
// Datasheet: https://www.azoteq.com/images/stories/pdf/iqs5xx-b000_trackpad_datasheet.pdf
package iqs5xx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"trackpad.dev/touch"
)

var (
	// ErrBusTimeout is returned when the bus lock could not be acquired
	// in time.
	ErrBusTimeout = errors.New("bus busy")
	// ErrBusFault wraps transaction level failures.
	ErrBusFault = errors.New("bus fault")
	// ErrDeviceNotReady is returned when the ready line did not assert
	// in time.
	ErrDeviceNotReady = errors.New("device not ready")
	// ErrMalformedFrame is returned for short frame buffers.
	ErrMalformedFrame = errors.New("malformed frame")
)

// BusFrequency is the recommended bus speed.
const BusFrequency = 400 * physic.KiloHertz

type Opts struct {
	Addr      uint16
	Transform touch.Transform
	// LockTimeout bounds the wait for the bus lock.
	LockTimeout time.Duration
	// ReadyTimeout bounds the wait for the ready line.
	ReadyTimeout time.Duration
	// ResetPulse is the width of the hardware reset pulse.
	ResetPulse time.Duration
}

var DefaultOpts = Opts{
	Addr:         DefaultAddr,
	LockTimeout:  50 * time.Millisecond,
	ReadyTimeout: 200 * time.Millisecond,
	ResetPulse:   10 * time.Millisecond,
}

// Device is a handle to an IQS5xx. All register access goes through
// an exclusive lock with a bounded wait.
type Device struct {
	dev   i2c.Dev
	ready gpio.PinIn
	rst   gpio.PinOut
	opts  Opts
	lock  chan struct{}

	// xfMu guards opts.Transform, which may change while frames are
	// read.
	xfMu sync.Mutex

	frame [FrameSize]byte
	// Register address plus the largest register group.
	scratch [2 + 8]byte
}

// New returns a Device on bus. The ready and reset pins are optional;
// without a ready pin, readiness is probed over the bus and without a
// reset pin, resets are issued in software.
func New(bus i2c.Bus, ready gpio.PinIn, rst gpio.PinOut, o *Opts) *Device {
	opts := DefaultOpts
	if o != nil {
		opts = *o
		if opts.Addr == 0 {
			opts.Addr = DefaultAddr
		}
		if opts.LockTimeout <= 0 {
			opts.LockTimeout = DefaultOpts.LockTimeout
		}
		if opts.ReadyTimeout <= 0 {
			opts.ReadyTimeout = DefaultOpts.ReadyTimeout
		}
		if opts.ResetPulse <= 0 {
			opts.ResetPulse = DefaultOpts.ResetPulse
		}
	}
	d := &Device{
		dev:   i2c.Dev{Bus: bus, Addr: opts.Addr},
		ready: ready,
		rst:   rst,
		opts:  opts,
		lock:  make(chan struct{}, 1),
	}
	d.lock <- struct{}{}
	return d
}

func (d *Device) String() string {
	return fmt.Sprintf("IQS5xx{%s}", &d.dev)
}

// SetTransform replaces the coordinate transform applied to frames. It
// is safe to call while another goroutine reads frames.
func (d *Device) SetTransform(xf touch.Transform) {
	d.xfMu.Lock()
	d.opts.Transform = xf
	d.xfMu.Unlock()
}

func (d *Device) transform() touch.Transform {
	d.xfMu.Lock()
	defer d.xfMu.Unlock()
	return d.opts.Transform
}

func (d *Device) acquire() error {
	select {
	case <-d.lock:
		return nil
	default:
	}
	t := time.NewTimer(d.opts.LockTimeout)
	defer t.Stop()
	select {
	case <-d.lock:
		return nil
	case <-t.C:
		return ErrBusTimeout
	}
}

func (d *Device) release() {
	d.lock <- struct{}{}
}

// ReadRegs reads len(buf) bytes starting at register reg.
func (d *Device) ReadRegs(reg uint16, buf []byte) error {
	if err := d.acquire(); err != nil {
		return fmt.Errorf("iqs5xx: read %#04x: %w", reg, err)
	}
	defer d.release()
	var addr [2]byte
	binary.BigEndian.PutUint16(addr[:], reg)
	if err := d.dev.Tx(addr[:], buf); err != nil {
		return fmt.Errorf("iqs5xx: read %#04x: %w: %w", reg, ErrBusFault, err)
	}
	return nil
}

// WriteRegs writes data starting at register reg.
func (d *Device) WriteRegs(reg uint16, data ...byte) error {
	if err := d.acquire(); err != nil {
		return fmt.Errorf("iqs5xx: write %#04x: %w", reg, err)
	}
	defer d.release()
	var w []byte
	if len(data) <= len(d.scratch)-2 {
		w = d.scratch[:2+len(data)]
	} else {
		w = make([]byte, 2+len(data))
	}
	binary.BigEndian.PutUint16(w, reg)
	copy(w[2:], data)
	if err := d.dev.Tx(w, nil); err != nil {
		return fmt.Errorf("iqs5xx: write %#04x: %w: %w", reg, ErrBusFault, err)
	}
	return nil
}

// EndWindow closes the current communication window.
func (d *Device) EndWindow() error {
	return d.WriteRegs(regEndWindow, 0x00)
}

// ReadFrame reads and decodes one frame. The communication window is
// closed whether or not the read succeeded, so a failed read never
// leaves the device stuck in a transaction.
func (d *Device) ReadFrame() (touch.Frame, error) {
	err := d.ReadRegs(regGestureEvents0, d.frame[:])
	if eerr := d.EndWindow(); err == nil {
		err = eerr
	}
	if err != nil {
		return touch.Frame{}, err
	}
	return Parse(d.frame[:], d.transform())
}

// ProductNumber identifies the connected part.
func (d *Device) ProductNumber() (int, error) {
	var buf [2]byte
	err := d.ReadRegs(regProductNumber, buf[:])
	if eerr := d.EndWindow(); err == nil {
		err = eerr
	}
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint16(buf[:])), nil
}

// Reset resets the device and waits for it to become ready.
func (d *Device) Reset() error {
	if d.rst != nil {
		if err := d.rst.Out(gpio.Low); err != nil {
			return fmt.Errorf("iqs5xx: reset: %w", err)
		}
		time.Sleep(d.opts.ResetPulse)
		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("iqs5xx: reset: %w", err)
		}
	} else {
		if err := d.WaitReady(); err != nil {
			return fmt.Errorf("iqs5xx: reset: %w", err)
		}
		// The device resets without acknowledging the write.
		_ = d.WriteRegs(regSystemControl1, softReset)
		time.Sleep(d.opts.ResetPulse)
	}
	if err := d.WaitReady(); err != nil {
		return fmt.Errorf("iqs5xx: reset: %w", err)
	}
	return nil
}

// WaitReady polls the ready line until it asserts or the ready timeout
// expires.
func (d *Device) WaitReady() error {
	const pollInterval = time.Millisecond
	deadline := time.Now().Add(d.opts.ReadyTimeout)
	for {
		if d.isReady() {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrDeviceNotReady
		}
		time.Sleep(pollInterval)
	}
}

func (d *Device) isReady() bool {
	if d.ready != nil {
		return d.ready.Read() == gpio.High
	}
	// Without a ready line, a successful read is the only sign of life.
	var buf [2]byte
	return d.ReadRegs(regProductNumber, buf[:]) == nil
}

// AckReset acknowledges a device reported reset.
func (d *Device) AckReset() error {
	err := d.WriteRegs(regSystemControl0, ackReset)
	if eerr := d.EndWindow(); err == nil {
		err = eerr
	}
	return err
}
