package acquire

import (
	"fmt"
	"time"
)

// Ladder configures the escalating recovery from consecutive read
// errors. A zero threshold disables its stage; when several stages
// match, only the highest runs.
type Ladder struct {
	// Minor pauses for MinorPause.
	Minor int
	// Moderate masks the interrupt for ModeratePause.
	Moderate int
	// Severe resets and reconfigures the device.
	Severe int
	// HardCap is the error count beyond which the device is given up.
	HardCap int

	MinorPause    time.Duration
	ModeratePause time.Duration
	// RetryInterval is the delay before re-reading after a failed
	// cycle, so recovery progresses without interrupts.
	RetryInterval time.Duration
}

var DefaultLadder = Ladder{
	Minor:         1,
	Moderate:      3,
	Severe:        6,
	HardCap:       20,
	MinorPause:    2 * time.Millisecond,
	ModeratePause: 20 * time.Millisecond,
	RetryInterval: 10 * time.Millisecond,
}

func (l Ladder) Validate() error {
	if l.Minor < 0 || l.Moderate < 0 || l.Severe < 0 || l.HardCap < 0 {
		return fmt.Errorf("acquire: negative ladder threshold")
	}
	if l.MinorPause < 0 || l.ModeratePause < 0 || l.RetryInterval < 0 {
		return fmt.Errorf("acquire: negative ladder duration")
	}
	if l.HardCap > 0 && l.Severe > l.HardCap {
		return fmt.Errorf("acquire: severe threshold %d above hard cap %d", l.Severe, l.HardCap)
	}
	return nil
}

// stage is a recovery step.
type stage int

const (
	stageNone stage = iota
	stageMinor
	stageModerate
	stageSevere
	stageFail
)

func (s stage) String() string {
	switch s {
	case stageMinor:
		return "pause"
	case stageModerate:
		return "mask interrupt"
	case stageSevere:
		return "reinit"
	case stageFail:
		return "give up"
	}
	return "none"
}

// stage returns the highest stage matching n consecutive errors.
func (l Ladder) stage(n int) stage {
	switch {
	case l.HardCap > 0 && n > l.HardCap:
		return stageFail
	case l.Severe > 0 && n >= l.Severe:
		return stageSevere
	case l.Moderate > 0 && n >= l.Moderate:
		return stageModerate
	case l.Minor > 0 && n >= l.Minor:
		return stageMinor
	}
	return stageNone
}

// fail records a read error and runs the matching recovery stage. Steps
// inside a stage are best effort; the interrupt is re-enabled after a
// moderate or severe stage regardless of their outcome.
func (s *Scheduler) fail(err error) (bool, error) {
	ss := &s.sess
	now := s.now()
	if ss.errors == 0 {
		ss.firstErr = now
	}
	ss.errors++
	ss.lastErr = now
	s.count(func(st *Stats) { st.Errors++ })

	l := s.opts.Ladder
	stg := l.stage(ss.errors)
	if stg > stageMinor {
		s.log.Printf("acquire: %d errors since %s: %v: %s", ss.errors, ss.firstErr.Format(time.StampMilli), err, stg)
	}
	switch stg {
	case stageMinor:
		s.sleep(l.MinorPause)
	case stageModerate:
		if err := s.line.Disable(); err != nil {
			s.log.Printf("acquire: disable interrupt: %v", err)
		}
		s.sleep(l.ModeratePause)
		s.enable()
	case stageSevere:
		s.reinit()
	case stageFail:
		if err := s.line.Disable(); err != nil {
			s.log.Printf("acquire: disable interrupt: %v", err)
		}
		ss.failed = true
		s.resetGestures()
		return false, fmt.Errorf("%w after %d errors: %w", ErrDeviceFailed, ss.errors, err)
	}
	return true, nil
}

func (s *Scheduler) enable() {
	if err := s.line.Enable(); err != nil {
		s.log.Printf("acquire: enable interrupt: %v", err)
	}
}

// reinit resets and reconfigures the device. The error counter is
// cleared only when both steps succeed.
func (s *Scheduler) reinit() {
	if err := s.line.Disable(); err != nil {
		s.log.Printf("acquire: disable interrupt: %v", err)
	}
	err := s.dev.Reset()
	if err != nil {
		err = fmt.Errorf("reset: %w", err)
	} else if err = s.dev.Configure(s.sess.lastGood); err != nil {
		err = fmt.Errorf("configure: %w", err)
	}
	s.enable()
	s.resetGestures()
	if err != nil {
		s.log.Printf("acquire: reinit: %v", err)
		return
	}
	s.sess.errors = 0
	s.sess.quality = 0
	s.count(func(st *Stats) { st.Recoveries++ })
}
