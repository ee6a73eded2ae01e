package iqs5xx

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Interrupt watches the ready line, which the device raises whenever a
// new frame is available.
type Interrupt struct {
	pin     gpio.PinIn
	enabled atomic.Bool
}

func NewInterrupt(pin gpio.PinIn) *Interrupt {
	return &Interrupt{pin: pin}
}

// Enable arms rising edge detection.
func (i *Interrupt) Enable() error {
	if err := i.pin.In(gpio.PullNoChange, gpio.RisingEdge); err != nil {
		return fmt.Errorf("iqs5xx: interrupt: %w", err)
	}
	i.enabled.Store(true)
	return nil
}

// Disable masks the interrupt. Edges seen while disabled are
// discarded.
func (i *Interrupt) Disable() error {
	i.enabled.Store(false)
	if err := i.pin.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return fmt.Errorf("iqs5xx: interrupt: %w", err)
	}
	return nil
}

// Enabled reports whether the interrupt is armed.
func (i *Interrupt) Enabled() bool {
	return i.enabled.Load()
}

// Asserted reports whether the ready line is high.
func (i *Interrupt) Asserted() bool {
	return i.pin.Read() == gpio.High
}

// Run calls handler for every rising edge while enabled, until ctx is
// done. The handler runs on the watching goroutine and must not block.
func (i *Interrupt) Run(ctx context.Context, handler func()) {
	// Bound the edge wait so cancellation is noticed.
	const pollTimeout = 100 * time.Millisecond
	for ctx.Err() == nil {
		if !i.Enabled() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollTimeout):
			}
			continue
		}
		if i.pin.WaitForEdge(pollTimeout) && i.Enabled() {
			handler()
		}
	}
}
