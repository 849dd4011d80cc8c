package pointer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestControllerInitEnablesEmulator(t *testing.T) {
	emu := NewEmulator(0)
	c := NewController(emu, ControllerConfig{Logger: quietLogger()})
	if err := c.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if !emu.Reporting() {
		t.Fatalf("emulator reporting disabled after Init")
	}
	if c.DataAvailable() {
		t.Fatalf("bring-up replies left in the output queue")
	}
}

func TestControllerDeliversQueuedPackets(t *testing.T) {
	emu := NewEmulator(0)
	c := NewController(emu, ControllerConfig{Logger: quietLogger()})
	if err := c.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if !emu.Move(3, -2, Buttons{Left: true}) {
		t.Fatalf("Move() rejected")
	}

	var d Decoder
	var got []Packet
	for c.DataAvailable() {
		b, ok := c.TryReadByte()
		if !ok {
			t.Fatalf("TryReadByte() = false while data available")
		}
		if p, ok := d.Feed(b); ok {
			got = append(got, p)
		}
	}
	if len(got) != 1 {
		t.Fatalf("got %d packets, want 1", len(got))
	}
	if got[0].DX != 3 || got[0].DY != -2 || !got[0].Buttons.Left {
		t.Fatalf("packet = %+v", got[0])
	}
}

func TestEmulatorSplitsLargeMotion(t *testing.T) {
	emu := NewEmulator(0)
	c := NewController(emu, ControllerConfig{Logger: quietLogger()})
	if err := c.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	emu.Move(600, 0, Buttons{})

	var d Decoder
	total := 0
	packets := 0
	for {
		b, ok := c.TryReadByte()
		if !ok {
			break
		}
		if p, ok := d.Feed(b); ok {
			if p.Overflow() {
				t.Fatalf("split packet overflowed: %+v", p)
			}
			total += p.DX
			packets++
		}
	}
	if total != 600 || packets != 3 {
		t.Fatalf("total dx = %d over %d packets, want 600 over 3", total, packets)
	}
}

func TestEmulatorIgnoresMotionBeforeInit(t *testing.T) {
	emu := NewEmulator(0)
	if emu.Move(1, 1, Buttons{}) {
		t.Fatalf("Move() accepted before reporting was enabled")
	}
}

type stuckPort struct {
	status byte
}

func (p *stuckPort) Status() byte        { return p.status }
func (p *stuckPort) ReadData() byte      { return 0 }
func (p *stuckPort) WriteCommand(_ byte) {}
func (p *stuckPort) WriteData(_ byte)    {}

func TestControllerWaitsAreBounded(t *testing.T) {
	tests := []struct {
		name   string
		status byte
	}{
		{"input never drains", StatusInputFull},
		{"output never fills", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(&stuckPort{status: tt.status}, ControllerConfig{SpinBudget: 10, Logger: quietLogger()})
			err := c.Init()
			if !errors.Is(err, ErrDeviceTimeout) {
				t.Fatalf("Init() error = %v, want ErrDeviceTimeout", err)
			}
		})
	}
}

func TestControllerSkipsKeyboardBytes(t *testing.T) {
	c := NewController(&stuckPort{status: StatusOutputFull}, ControllerConfig{Logger: quietLogger()})
	if _, ok := c.TryReadByte(); ok {
		t.Fatalf("TryReadByte() returned a keyboard byte")
	}
}

func TestStreamSourceServe(t *testing.T) {
	s := NewStreamSource(bytes.NewReader([]byte{0x08, 0x01, 0x02}), 16)
	if err := s.Serve(context.Background()); err != nil {
		t.Fatalf("Serve() error: %v", err)
	}
	var got []byte
	for s.DataAvailable() {
		b, _ := s.TryReadByte()
		got = append(got, b)
	}
	if !bytes.Equal(got, []byte{0x08, 0x01, 0x02}) {
		t.Fatalf("read %v, want [8 1 2]", got)
	}
	if _, ok := s.TryReadByte(); ok {
		t.Fatalf("TryReadByte() on empty source returned a byte")
	}
}
