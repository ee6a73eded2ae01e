//go:build linux

package uinput

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
	"trackpad.dev/action"
)

// ioctl requests from uinput.h.
const (
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetRelBit  = 0x40045566

	busVirtual  = 0x06
	maxNameSize = 80
	absSize     = 64
)

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type userDev struct {
	Name       [maxNameSize]byte
	ID         inputID
	EffectsMax uint32
	Absmax     [absSize]int32
	Absmin     [absSize]int32
	Absfuzz    [absSize]int32
	Absflat    [absSize]int32
}

const timevalSize = int(unsafe.Sizeof(unix.Timeval{}))

// Device is a virtual pointer and keyboard.
type Device struct {
	f   *os.File
	evs []Event
	buf []byte
}

const DefaultPath = "/dev/uinput"

// Open creates a virtual input device through the uinput node at path.
func Open(path, name string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("uinput: %w", err)
	}
	if err := setup(f, name); err != nil {
		f.Close()
		return nil, fmt.Errorf("uinput: %s: %w", path, err)
	}
	return &Device{f: f}, nil
}

func setup(f *os.File, name string) error {
	fd := int(f.Fd())
	for _, ev := range []int{evKey, evRel, evSyn} {
		if err := unix.IoctlSetInt(fd, uiSetEvBit, ev); err != nil {
			return fmt.Errorf("set event bit %d: %w", ev, err)
		}
	}
	for _, rel := range []int{relX, relY, relWheel, relHWheel} {
		if err := unix.IoctlSetInt(fd, uiSetRelBit, rel); err != nil {
			return fmt.Errorf("set rel bit %d: %w", rel, err)
		}
	}
	for _, k := range keyBits() {
		if err := unix.IoctlSetInt(fd, uiSetKeyBit, int(k)); err != nil {
			return fmt.Errorf("set key bit %d: %w", k, err)
		}
	}
	dev := userDev{
		ID: inputID{Bustype: busVirtual, Vendor: 0x1d6b, Product: 0x5ad0, Version: 1},
	}
	copy(dev.Name[:maxNameSize-1], name)
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, dev); err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write device: %w", err)
	}
	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		return fmt.Errorf("create device: %w", err)
	}
	return nil
}

func (d *Device) Emit(a action.Action) error {
	d.evs = Encode(d.evs[:0], a)
	if len(d.evs) == 0 {
		return nil
	}
	d.buf = d.buf[:0]
	for _, e := range d.evs {
		// The kernel stamps events written with a zero time.
		d.buf = append(d.buf, make([]byte, timevalSize)...)
		d.buf = binary.NativeEndian.AppendUint16(d.buf, e.Type)
		d.buf = binary.NativeEndian.AppendUint16(d.buf, e.Code)
		d.buf = binary.NativeEndian.AppendUint32(d.buf, uint32(e.Value))
	}
	if _, err := d.f.Write(d.buf); err != nil {
		return fmt.Errorf("uinput: %v: %w", a, err)
	}
	return nil
}

func (d *Device) Close() error {
	fd := int(d.f.Fd())
	err := unix.IoctlSetInt(fd, uiDevDestroy, 0)
	if cerr := d.f.Close(); err == nil {
		err = cerr
	}
	return err
}
