//go:build !linux

package uinput

import (
	"errors"

	"trackpad.dev/action"
)

const DefaultPath = "/dev/uinput"

type Device struct{}

func Open(path, name string) (*Device, error) {
	return nil, errors.ErrUnsupported
}

func (d *Device) Emit(a action.Action) error {
	return errors.ErrUnsupported
}

func (d *Device) Close() error {
	return nil
}
