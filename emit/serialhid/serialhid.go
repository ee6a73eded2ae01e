// Package serialhid sends actions over a serial link to a USB HID
// bridge. Each action is one tagged CBOR record; the bridge turns the
// records into HID reports.
package serialhid

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"runtime"

	"github.com/fxamacker/cbor/v2"
	"github.com/tarm/serial"
	"trackpad.dev/action"
)

// tagAction marks an action record.
const tagAction = 0x7470

const DefaultBaud = 115200

type record struct {
	Kind   int `cbor:"1,keyasint"`
	DX     int `cbor:"2,keyasint,omitempty"`
	DY     int `cbor:"3,keyasint,omitempty"`
	Button int `cbor:"4,keyasint,omitempty"`
	Count  int `cbor:"5,keyasint,omitempty"`
	V      int `cbor:"6,keyasint,omitempty"`
	H      int `cbor:"7,keyasint,omitempty"`
	Mods   int `cbor:"8,keyasint,omitempty"`
	Key    int `cbor:"9,keyasint,omitempty"`
}

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	tags := cbor.NewTagSet()
	if err := tags.Add(cbor.TagOptions{DecTag: cbor.DecTagRequired, EncTag: cbor.EncTagRequired}, reflect.TypeOf(record{}), tagAction); err != nil {
		panic(err)
	}
	em, err := cbor.CoreDetEncOptions().EncModeWithTags(tags)
	if err != nil {
		panic(err)
	}
	encMode = em
	dm, err := cbor.DecOptions{}.DecModeWithTags(tags)
	if err != nil {
		panic(err)
	}
	decMode = dm
}

func toRecord(a action.Action) record {
	return record{
		Kind:   int(a.Kind),
		DX:     a.DX,
		DY:     a.DY,
		Button: int(a.Button),
		Count:  a.Count,
		V:      a.V,
		H:      a.H,
		Mods:   int(a.Combo.Mods),
		Key:    int(a.Combo.Key),
	}
}

func (r record) action() action.Action {
	return action.Action{
		Kind:   action.Kind(r.Kind),
		DX:     r.DX,
		DY:     r.DY,
		Button: action.Button(r.Button),
		Count:  r.Count,
		V:      r.V,
		H:      r.H,
		Combo: action.Shortcut{
			Mods: action.Mod(r.Mods),
			Key:  action.Key(r.Key),
		},
	}
}

// Marshal encodes a single action record.
func Marshal(a action.Action) ([]byte, error) {
	return encMode.Marshal(toRecord(a))
}

// Writer is a sink writing action records to w.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Emit(a action.Action) error {
	b, err := Marshal(a)
	if err != nil {
		return fmt.Errorf("serialhid: %v: %w", a, err)
	}
	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("serialhid: %w", err)
	}
	return nil
}

// Reader decodes a stream of action records.
type Reader struct {
	dec *cbor.Decoder
}

func NewReader(r io.Reader) *Reader {
	return &Reader{dec: decMode.NewDecoder(r)}
}

func (r *Reader) Read() (action.Action, error) {
	var rec record
	if err := r.dec.Decode(&rec); err != nil {
		return action.Action{}, err
	}
	return rec.action(), nil
}

// Port is a Writer over an open serial port.
type Port struct {
	*Writer
	port io.ReadWriteCloser
}

// Open opens the serial device dev, or the first usable default device
// when dev is empty.
func Open(dev string, baud int) (*Port, error) {
	if baud == 0 {
		baud = DefaultBaud
	}
	var devices []string
	if dev != "" {
		devices = append(devices, dev)
	} else {
		switch runtime.GOOS {
		case "windows":
			devices = append(devices, "COM3")
		case "linux":
			devices = append(devices, "/dev/ttyACM0", "/dev/ttyUSB0")
		}
	}
	if len(devices) == 0 {
		return nil, errors.New("serialhid: no device specified")
	}
	var firstErr error
	for _, dev := range devices {
		s, err := serial.OpenPort(&serial.Config{Name: dev, Baud: baud})
		if err == nil {
			return &Port{Writer: NewWriter(s), port: s}, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("serialhid: %w", firstErr)
}

func (p *Port) Close() error {
	return p.port.Close()
}
