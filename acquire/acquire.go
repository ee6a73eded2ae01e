// Package acquire schedules frame reads from the sensor and feeds them
// to the gesture engine, recovering from bus faults along the way.
//
// The interrupt side only ever performs a non-blocking send on a
// single-slot channel. All bus I/O, gesture dispatch and emission
// happen on the goroutine running Scheduler.Run, in arrival order.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"trackpad.dev/action"
	"trackpad.dev/driver/iqs5xx"
	"trackpad.dev/emit"
	"trackpad.dev/gesture"
	"trackpad.dev/touch"
)

// ErrDeviceFailed is returned by Run once the consecutive error count
// exceeds the hard cap. The device is left with its interrupt disabled.
var ErrDeviceFailed = errors.New("acquire: device failed")

// Device is the sensor as seen by the scheduler. It is implemented by
// *iqs5xx.Device.
type Device interface {
	ReadFrame() (touch.Frame, error)
	Reset() error
	Configure(s iqs5xx.Settings) error
	ReadSettings() (iqs5xx.Settings, error)
	AckReset() error
}

// Line is the ready/interrupt line. It is implemented by
// *iqs5xx.Interrupt.
type Line interface {
	Enable() error
	Disable() error
	Asserted() bool
}

type Opts struct {
	Ladder Ladder
	// QualityLimit is the number of consecutive data quality failures
	// that trigger a settings revalidation. Zero disables revalidation.
	QualityLimit int
	Bounds       touch.Bounds
	// Settings is the last known good configuration, replayed after
	// resets.
	Settings iqs5xx.Settings
	// StatsInterval is the period of the statistics log line. Zero
	// disables it.
	StatsInterval time.Duration
	// Dump logs every valid frame instead of dispatching gestures.
	Dump bool
	Log  *log.Logger
}

// Stats are running counters of the scheduler.
type Stats struct {
	Frames     uint64
	Drops      uint64
	Malformed  uint64
	Errors     uint64
	Coalesced  uint64
	Recoveries uint64
	Resets     uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("frames %d drops %d malformed %d errors %d coalesced %d recoveries %d resets %d",
		s.Frames, s.Drops, s.Malformed, s.Errors, s.Coalesced, s.Recoveries, s.Resets)
}

// Session is the device health record owned by the worker.
type Session struct {
	// errors is the consecutive error count.
	errors   int
	firstErr time.Time
	lastErr  time.Time
	lastGood iqs5xx.Settings
	quality  int
	failed   bool
}

type Scheduler struct {
	dev  Device
	line Line
	sink emit.Sink
	opts Opts
	log  *log.Logger

	work     chan struct{}
	updates  chan gesture.Config
	inFlight atomic.Bool

	engine *gesture.Engine
	st     *gesture.State
	sess   Session

	mu        sync.Mutex
	stats     Stats
	coalesced atomic.Uint64

	now   func() time.Time
	sleep func(time.Duration)
}

func New(dev Device, line Line, sink emit.Sink, cfg gesture.Config, o *Opts) *Scheduler {
	opts := Opts{
		Ladder:   DefaultLadder,
		Settings: iqs5xx.DefaultSettings,
	}
	if o != nil {
		opts = *o
	}
	lg := opts.Log
	if lg == nil {
		lg = log.Default()
	}
	return &Scheduler{
		dev:     dev,
		line:    line,
		sink:    sink,
		opts:    opts,
		log:     lg,
		work:    make(chan struct{}, 1),
		updates: make(chan gesture.Config, 1),
		engine:  gesture.New(cfg),
		st:      gesture.NewState(cfg.Sensitivity),
		sess:    Session{lastGood: opts.Settings},
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Interrupt schedules a frame read. It never blocks and is safe to call
// from the interrupt goroutine. Interrupts arriving while a read is
// scheduled or in progress are coalesced.
func (s *Scheduler) Interrupt() {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.coalesced.Add(1)
		return
	}
	select {
	case s.work <- struct{}{}:
	default:
	}
}

// Update replaces the gesture configuration. Only the newest pending
// update is applied.
func (s *Scheduler) Update(cfg gesture.Config) {
	for {
		select {
		case s.updates <- cfg:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}

func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Coalesced = s.coalesced.Load()
	return st
}

func (s *Scheduler) count(f func(st *Stats)) {
	s.mu.Lock()
	f(&s.stats)
	s.mu.Unlock()
}

// Run is the worker loop. It returns nil when ctx is cancelled and
// ErrDeviceFailed when recovery has given up.
func (s *Scheduler) Run(ctx context.Context) error {
	tap := time.NewTimer(0)
	tap.Stop()
	defer tap.Stop()
	retry := time.NewTimer(0)
	retry.Stop()
	defer retry.Stop()
	var statsC <-chan time.Time
	if iv := s.opts.StatsInterval; iv > 0 {
		t := time.NewTicker(iv)
		defer t.Stop()
		statsC = t.C
	}
	if s.line.Asserted() {
		s.Interrupt()
	}
	for {
		var (
			cycled bool
			again  bool
			err    error
		)
		select {
		case <-ctx.Done():
			return nil
		case <-s.work:
			cycled = true
			again, err = s.cycle()
		case <-retry.C:
			cycled = true
			again, err = s.cycle()
		case <-tap.C:
			s.expire()
		case cfg := <-s.updates:
			s.apply(cfg)
		case <-statsC:
			s.log.Printf("acquire: %v", s.Stats())
		}
		if err != nil {
			return err
		}
		if cycled {
			if again {
				retry.Reset(s.opts.Ladder.RetryInterval)
			} else {
				retry.Stop()
			}
		}
		if d, ok := s.st.Deadline(); ok {
			tap.Reset(d.Sub(s.now()))
		} else {
			tap.Stop()
		}
	}
}

// cycle performs one activation: read, validate, dispatch. It reports
// whether a retry should be scheduled.
func (s *Scheduler) cycle() (bool, error) {
	f, err := s.dev.ReadFrame()
	if err != nil {
		s.inFlight.Store(false)
		if errors.Is(err, iqs5xx.ErrMalformedFrame) {
			s.count(func(st *Stats) { st.Malformed++ })
			return false, nil
		}
		return s.fail(err)
	}
	s.sess.errors = 0
	s.handle(f)
	s.inFlight.Store(false)
	// The line stays asserted while the device has another frame.
	if s.line.Asserted() {
		s.Interrupt()
	}
	return false, nil
}

func (s *Scheduler) handle(f touch.Frame) {
	if f.DeviceReset() {
		s.deviceReset()
		return
	}
	if err := f.Validate(s.opts.Bounds); err != nil {
		s.count(func(st *Stats) { st.Drops++ })
		s.sess.quality++
		if lim := s.opts.QualityLimit; lim > 0 && s.sess.quality >= lim {
			s.log.Printf("acquire: %d bad frames: %v", s.sess.quality, err)
			s.revalidate()
			s.sess.quality = 0
		}
		return
	}
	s.sess.quality = 0
	s.count(func(st *Stats) { st.Frames++ })
	if s.opts.Dump {
		s.log.Printf("acquire: frame %+v", f)
		return
	}
	acts, err := s.engine.Dispatch(s.st, s.now(), f)
	if errors.Is(err, gesture.ErrCorruptedState) {
		s.log.Printf("acquire: %v, starting over", err)
		s.replaceState()
		acts, err = s.engine.Dispatch(s.st, s.now(), f)
	}
	if err != nil {
		s.log.Printf("acquire: dispatch: %v", err)
		return
	}
	s.emit(acts)
}

func (s *Scheduler) emit(acts []action.Action) {
	for _, a := range acts {
		if err := s.sink.Emit(a); err != nil {
			s.log.Printf("acquire: emit %v: %v", a, err)
		}
	}
}

func (s *Scheduler) expire() {
	acts, err := s.engine.Expire(s.st, s.now())
	if err != nil {
		s.log.Printf("acquire: expire: %v", err)
		s.replaceState()
		return
	}
	s.emit(acts)
}

func (s *Scheduler) apply(cfg gesture.Config) {
	acts, _ := s.engine.Reset(s.st)
	s.emit(acts)
	s.engine = gesture.New(cfg)
	s.st.SetSensitivity(cfg.Sensitivity)
	s.log.Printf("acquire: gesture config updated (policy %s)", cfg.Policy.Name)
}

// resetGestures ends all sessions, replacing the state if it no longer
// validates.
func (s *Scheduler) resetGestures() {
	acts, err := s.engine.Reset(s.st)
	if err != nil {
		s.replaceState()
		return
	}
	s.emit(acts)
}

// replaceState starts over with an idle State. The discarded state may
// have held the left button down, so it is released unconditionally.
func (s *Scheduler) replaceState() {
	s.st = gesture.NewState(s.engine.Config().Sensitivity)
	s.emit([]action.Action{action.Release(action.Left)})
}

// deviceReset handles a reset reported by the device itself.
func (s *Scheduler) deviceReset() {
	s.count(func(st *Stats) { st.Resets++ })
	s.log.Printf("acquire: device reset, reconfiguring")
	if err := s.dev.AckReset(); err != nil {
		s.log.Printf("acquire: ack reset: %v", err)
	}
	if err := s.dev.Configure(s.sess.lastGood); err != nil {
		s.log.Printf("acquire: configure: %v", err)
	}
	s.resetGestures()
}

// revalidate reads back the device settings and rewrites the last
// known good configuration if they differ or cannot be read.
func (s *Scheduler) revalidate() {
	got, err := s.dev.ReadSettings()
	if err == nil && got == s.sess.lastGood {
		return
	}
	if err != nil {
		s.log.Printf("acquire: read settings: %v", err)
	} else {
		s.log.Printf("acquire: settings drifted, rewriting")
	}
	if err := s.dev.Configure(s.sess.lastGood); err != nil {
		s.log.Printf("acquire: configure: %v", err)
	}
}

// Errors returns the consecutive error count.
func (s *Scheduler) Errors() int {
	return s.sess.errors
}

// Failed reports whether the scheduler has given up on the device.
func (s *Scheduler) Failed() bool {
	return s.sess.failed
}
