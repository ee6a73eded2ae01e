// Package config loads the daemon configuration from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	"trackpad.dev/acquire"
	"trackpad.dev/action"
	"trackpad.dev/driver/iqs5xx"
	"trackpad.dev/gesture"
	"trackpad.dev/touch"
)

type Config struct {
	Device    Device    `toml:"device"`
	Transform Transform `toml:"transform"`
	Gesture   Gesture   `toml:"gesture"`
	Recovery  Recovery  `toml:"recovery"`
	Output    Output    `toml:"output"`
}

// Device options take effect on restart only.
type Device struct {
	// Bus is the I²C bus name; empty selects the first bus.
	Bus          string        `toml:"bus"`
	Address      uint16        `toml:"address"`
	ReadyPin     string        `toml:"ready_pin"`
	ResetPin     string        `toml:"reset_pin"`
	LockTimeout  time.Duration `toml:"lock_timeout"`
	ReadyTimeout time.Duration `toml:"ready_timeout"`
	ResetPulse   time.Duration `toml:"reset_pulse"`
	ResolutionX  uint16        `toml:"resolution_x"`
	ResolutionY  uint16        `toml:"resolution_y"`
	// ReportRate is the active report interval in milliseconds.
	ReportRate uint16 `toml:"report_rate"`
}

// Transform is reapplied when the file is reloaded.
type Transform struct {
	Rotation int  `toml:"rotation"`
	InvertX  bool `toml:"invert_x"`
	InvertY  bool `toml:"invert_y"`
}

type Gesture struct {
	Sensitivity       float64       `toml:"sensitivity"`
	MoveThreshold     float64       `toml:"move_threshold"`
	TapWindow         time.Duration `toml:"tap_window"`
	ScrollThreshold   int           `toml:"scroll_threshold"`
	NaturalScroll     bool          `toml:"natural_scroll"`
	ZoomThreshold     float64       `toml:"zoom_threshold"`
	ZoomPanTolerance  int           `toml:"zoom_pan_tolerance"`
	ZoomCooldown      time.Duration `toml:"zoom_cooldown"`
	SwipeThreshold    float64       `toml:"swipe_threshold"`
	SettleDelay       time.Duration `toml:"settle_delay"`
	SwipeCooldown     time.Duration `toml:"swipe_cooldown"`
	ThreeTapWindow    time.Duration `toml:"three_tap_window"`
	DragLock          bool          `toml:"drag_lock"`
	DragLockHold      time.Duration `toml:"drag_lock_hold"`
	DragLockTolerance int           `toml:"drag_lock_tolerance"`
	Policy            string        `toml:"policy"`
	// Shortcuts override policy shortcuts by target name, for example
	// expose = "super+tab".
	Shortcuts map[string]string `toml:"shortcuts,omitempty"`
}

type Recovery struct {
	Minor         int           `toml:"minor"`
	Moderate      int           `toml:"moderate"`
	Severe        int           `toml:"severe"`
	HardCap       int           `toml:"hard_cap"`
	MinorPause    time.Duration `toml:"minor_pause"`
	ModeratePause time.Duration `toml:"moderate_pause"`
	RetryInterval time.Duration `toml:"retry_interval"`
	QualityLimit  int           `toml:"quality_limit"`
	StatsInterval time.Duration `toml:"stats_interval"`
}

// Sink names.
const (
	SinkUinput = "uinput"
	SinkSerial = "serial"
	SinkLog    = "log"
)

type Output struct {
	Sink string `toml:"sink"`
	// Device is the uinput node or serial port.
	Device string `toml:"device"`
	Baud   int    `toml:"baud"`
	// Name is the virtual input device name.
	Name string `toml:"name"`
}

func Default() *Config {
	g := gesture.DefaultConfig()
	l := acquire.DefaultLadder
	o := iqs5xx.DefaultOpts
	s := iqs5xx.DefaultSettings
	return &Config{
		Device: Device{
			Address:      o.Addr,
			ReadyPin:     "GPIO17",
			ResetPin:     "GPIO27",
			LockTimeout:  o.LockTimeout,
			ReadyTimeout: o.ReadyTimeout,
			ResetPulse:   o.ResetPulse,
			ResolutionX:  s.ResolutionX,
			ResolutionY:  s.ResolutionY,
			ReportRate:   s.ReportRate,
		},
		Gesture: Gesture{
			Sensitivity:       g.Sensitivity,
			MoveThreshold:     g.MoveThreshold,
			TapWindow:         g.TapWindow,
			ScrollThreshold:   g.ScrollThreshold,
			NaturalScroll:     g.NaturalScroll,
			ZoomThreshold:     g.ZoomThreshold,
			ZoomPanTolerance:  g.ZoomPanTolerance,
			ZoomCooldown:      g.ZoomCooldown,
			SwipeThreshold:    g.SwipeThreshold,
			SettleDelay:       g.SettleDelay,
			SwipeCooldown:     g.SwipeCooldown,
			ThreeTapWindow:    g.ThreeTapWindow,
			DragLock:          g.DragLock,
			DragLockHold:      g.DragLockHold,
			DragLockTolerance: g.DragLockTolerance,
			Policy:            g.Policy.Name,
		},
		Recovery: Recovery{
			Minor:         l.Minor,
			Moderate:      l.Moderate,
			Severe:        l.Severe,
			HardCap:       l.HardCap,
			MinorPause:    l.MinorPause,
			ModeratePause: l.ModeratePause,
			RetryInterval: l.RetryInterval,
			QualityLimit:  5,
			StatsInterval: time.Minute,
		},
		Output: Output{
			Sink: SinkUinput,
			Name: "trackpad",
		},
	}
}

// Load reads the file at path over the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("config: %s: unknown key %q", path, keys[0].String())
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path, creating its directory.
func Save(path string, c *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("config: %w", err)
	}
	return f.Close()
}

func (c *Config) Validate() error {
	if c.Device.Address == 0 || c.Device.Address > 0x7f {
		return fmt.Errorf("invalid device address %#x", c.Device.Address)
	}
	if c.Device.ReadyPin == "" {
		return fmt.Errorf("missing ready pin")
	}
	if !touch.Rotation(c.Transform.Rotation).Valid() {
		return fmt.Errorf("invalid rotation %d", c.Transform.Rotation)
	}
	g, err := c.GestureConfig()
	if err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return err
	}
	if err := c.Ladder().Validate(); err != nil {
		return err
	}
	if c.Recovery.QualityLimit < 0 {
		return fmt.Errorf("negative quality limit")
	}
	switch c.Output.Sink {
	case SinkUinput, SinkSerial, SinkLog:
	default:
		return fmt.Errorf("unknown sink %q", c.Output.Sink)
	}
	return nil
}

func (c *Config) GestureConfig() (gesture.Config, error) {
	p, err := gesture.PolicyByName(c.Gesture.Policy)
	if err != nil {
		return gesture.Config{}, err
	}
	g := c.Gesture
	targets := make([]string, 0, len(g.Shortcuts))
	for t := range g.Shortcuts {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	for _, t := range targets {
		sc, err := action.ParseShortcut(g.Shortcuts[t])
		if err != nil {
			return gesture.Config{}, fmt.Errorf("shortcut %s: %w", t, err)
		}
		if err := p.Bind(t, sc); err != nil {
			return gesture.Config{}, err
		}
	}
	return gesture.Config{
		Sensitivity:       g.Sensitivity,
		MoveThreshold:     g.MoveThreshold,
		TapWindow:         g.TapWindow,
		ScrollThreshold:   g.ScrollThreshold,
		NaturalScroll:     g.NaturalScroll,
		ZoomThreshold:     g.ZoomThreshold,
		ZoomPanTolerance:  g.ZoomPanTolerance,
		ZoomCooldown:      g.ZoomCooldown,
		SwipeThreshold:    g.SwipeThreshold,
		SettleDelay:       g.SettleDelay,
		SwipeCooldown:     g.SwipeCooldown,
		ThreeTapWindow:    g.ThreeTapWindow,
		DragLock:          g.DragLock,
		DragLockHold:      g.DragLockHold,
		DragLockTolerance: g.DragLockTolerance,
		Policy:            p,
	}, nil
}

func (c *Config) Transformation() touch.Transform {
	return touch.Transform{
		Rotation: touch.Rotation(c.Transform.Rotation),
		InvertX:  c.Transform.InvertX,
		InvertY:  c.Transform.InvertY,
	}
}

func (c *Config) DeviceOpts() *iqs5xx.Opts {
	d := c.Device
	return &iqs5xx.Opts{
		Addr:         d.Address,
		Transform:    c.Transformation(),
		LockTimeout:  d.LockTimeout,
		ReadyTimeout: d.ReadyTimeout,
		ResetPulse:   d.ResetPulse,
	}
}

// Settings returns the register configuration. The axis switch bit is
// left to the host side transform.
func (c *Config) Settings() iqs5xx.Settings {
	s := iqs5xx.DefaultSettings
	s.ResolutionX = c.Device.ResolutionX
	s.ResolutionY = c.Device.ResolutionY
	s.ReportRate = c.Device.ReportRate
	return s
}

func (c *Config) Bounds() touch.Bounds {
	return touch.Bounds{MaxX: int(c.Device.ResolutionX), MaxY: int(c.Device.ResolutionY)}
}

func (c *Config) Ladder() acquire.Ladder {
	r := c.Recovery
	return acquire.Ladder{
		Minor:         r.Minor,
		Moderate:      r.Moderate,
		Severe:        r.Severe,
		HardCap:       r.HardCap,
		MinorPause:    r.MinorPause,
		ModeratePause: r.ModeratePause,
		RetryInterval: r.RetryInterval,
	}
}
