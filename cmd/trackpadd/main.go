// Command trackpadd turns an IQS5xx trackpad into a pointer and gesture
// keyboard for the host.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"trackpad.dev/acquire"
	"trackpad.dev/config"
)

// Version is set by the Go linker with -ldflags='-X main.Version=...'.
var Version string

const defaultConfig = "/etc/trackpad.toml"

var (
	configPath  = flag.String("config", defaultConfig, "configuration file")
	sinkFlag    = flag.String("sink", "", "override the output sink (uinput, serial, log)")
	dump        = flag.Bool("dump", false, "log frames instead of emitting gestures")
	verbose     = flag.Bool("v", false, "log every emitted action")
	writeConfig = flag.Bool("write-config", false, "write the default configuration to -config and exit")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "trackpadd: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	if *writeConfig {
		return config.Save(*configPath, config.Default())
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *sinkFlag != "" {
		cfg.Output.Sink = *sinkFlag
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	gcfg, err := cfg.GestureConfig()
	if err != nil {
		return err
	}
	if Version != "" {
		log.Printf("trackpadd %s", Version)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := openTrackpad(cfg)
	if err != nil {
		return err
	}
	defer tp.Close()
	sink, closeSink, err := openSink(cfg.Output)
	if err != nil {
		return err
	}
	defer closeSink()
	sink = mirror(sink, *verbose)

	sched := acquire.New(tp.dev, tp.irq, sink, gcfg, &acquire.Opts{
		Ladder:        cfg.Ladder(),
		QualityLimit:  cfg.Recovery.QualityLimit,
		Bounds:        cfg.Bounds(),
		Settings:      cfg.Settings(),
		StatsInterval: cfg.Recovery.StatsInterval,
		Dump:          *dump,
	})
	if err := tp.irq.Enable(); err != nil {
		return fmt.Errorf("interrupt: %w", err)
	}
	go tp.irq.Run(ctx, sched.Interrupt)
	if _, err := os.Stat(*configPath); err == nil {
		go func() {
			err := config.Watch(ctx, *configPath, func(c *config.Config) {
				g, err := c.GestureConfig()
				if err != nil {
					log.Printf("trackpadd: %v", err)
					return
				}
				sched.Update(g)
				tp.dev.SetTransform(c.Transformation())
			})
			if err != nil {
				log.Printf("trackpadd: %v", err)
			}
		}()
	}
	log.Printf("trackpadd: %s ready, sink %s", tp.dev, cfg.Output.Sink)
	if err := sched.Run(ctx); err != nil {
		return err
	}
	log.Printf("trackpadd: %v", sched.Stats())
	return nil
}

// loadConfig loads path, falling back to the defaults when the default
// file does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && path == defaultConfig {
		log.Printf("trackpadd: %s not found, using defaults", path)
		return config.Default(), nil
	}
	return cfg, err
}
