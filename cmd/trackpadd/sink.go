package main

import (
	"fmt"

	"trackpad.dev/config"
	"trackpad.dev/emit"
	"trackpad.dev/emit/serialhid"
	"trackpad.dev/emit/uinput"
)

func openSink(o config.Output) (emit.Sink, func() error, error) {
	nop := func() error { return nil }
	switch o.Sink {
	case config.SinkUinput:
		path := o.Device
		if path == "" {
			path = uinput.DefaultPath
		}
		d, err := uinput.Open(path, o.Name)
		if err != nil {
			return nil, nil, err
		}
		return d, d.Close, nil
	case config.SinkSerial:
		p, err := serialhid.Open(o.Device, o.Baud)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case config.SinkLog:
		return new(emit.Logger), nop, nil
	}
	return nil, nil, fmt.Errorf("unknown sink %q", o.Sink)
}

// mirror additionally logs every action sent to s when verbose.
func mirror(s emit.Sink, verbose bool) emit.Sink {
	if _, ok := s.(*emit.Logger); ok || !verbose {
		return s
	}
	return emit.Multi{s, new(emit.Logger)}
}
