package main

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"trackpad.dev/config"
	"trackpad.dev/driver/iqs5xx"
)

type trackpad struct {
	bus i2c.BusCloser
	dev *iqs5xx.Device
	irq *iqs5xx.Interrupt
}

var products = map[int]string{
	iqs5xx.IQS525: "IQS525",
	iqs5xx.IQS550: "IQS550",
	iqs5xx.IQS572: "IQS572",
}

func openTrackpad(cfg *config.Config) (*trackpad, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(cfg.Device.Bus)
	if err != nil {
		return nil, fmt.Errorf("i2c: %w", err)
	}
	tp, err := setupTrackpad(bus, cfg)
	if err != nil {
		bus.Close()
		return nil, err
	}
	return tp, nil
}

func setupTrackpad(bus i2c.BusCloser, cfg *config.Config) (*trackpad, error) {
	if err := bus.SetSpeed(iqs5xx.BusFrequency); err != nil {
		log.Printf("trackpadd: bus speed: %v", err)
	}
	ready := gpioreg.ByName(cfg.Device.ReadyPin)
	if ready == nil {
		return nil, fmt.Errorf("unknown ready pin %q", cfg.Device.ReadyPin)
	}
	if err := ready.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("ready pin: %w", err)
	}
	var rst gpio.PinOut
	if name := cfg.Device.ResetPin; name != "" {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("unknown reset pin %q", name)
		}
		rst = p
	}
	dev := iqs5xx.New(bus, ready, rst, cfg.DeviceOpts())
	if err := dev.Reset(); err != nil {
		return nil, fmt.Errorf("%s: reset: %w", dev, err)
	}
	pn, err := dev.ProductNumber()
	if err != nil {
		return nil, fmt.Errorf("%s: product number: %w", dev, err)
	}
	name, ok := products[pn]
	if !ok {
		return nil, fmt.Errorf("%s: unsupported product %d", dev, pn)
	}
	log.Printf("trackpadd: found %s", name)
	if err := dev.Configure(cfg.Settings()); err != nil {
		return nil, fmt.Errorf("%s: configure: %w", dev, err)
	}
	return &trackpad{
		bus: bus,
		dev: dev,
		irq: iqs5xx.NewInterrupt(ready),
	}, nil
}

func (t *trackpad) Close() error {
	if err := t.irq.Disable(); err != nil {
		log.Printf("trackpadd: %v", err)
	}
	return t.bus.Close()
}
