package pointer

import "sync"

// AuxResend is the aux device reply to a command it does not understand.
const AuxResend byte = 0xFE

// DefaultEmulatorQueue is the default output queue size in bytes.
const DefaultEmulatorQueue = 3 * 1024

type outByte struct {
	b   byte
	aux bool
}

// Emulator is a software controller with a pointer attached. Hosts that get
// pointer input from somewhere other than a PS/2 port push relative motion
// into it, and the desktop reads it back through a Controller exactly as it
// would read real hardware.
type Emulator struct {
	mu        sync.Mutex
	queue     []outByte
	limit     int
	enabled   bool
	reporting bool
	toAux     bool
	buttons   Buttons
	dropped   int
}

// NewEmulator returns an emulator whose output queue holds up to limit bytes.
func NewEmulator(limit int) *Emulator {
	if limit < PacketSize {
		limit = DefaultEmulatorQueue
	}
	return &Emulator{limit: limit}
}

// Status implements Port.
func (e *Emulator) Status() byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return 0
	}
	st := StatusOutputFull
	if e.queue[0].aux {
		st |= StatusAuxData
	}
	return st
}

// ReadData implements Port. It returns 0 when nothing is queued.
func (e *Emulator) ReadData() byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return 0
	}
	b := e.queue[0].b
	e.queue = e.queue[1:]
	return b
}

// WriteCommand implements Port.
func (e *Emulator) WriteCommand(cmd byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch cmd {
	case CmdEnableAux:
		e.enabled = true
	case CmdDisableAux:
		e.enabled = false
	case CmdWriteAux:
		e.toAux = true
	}
}

// WriteData implements Port. Only bytes routed to the aux device are
// interpreted.
func (e *Emulator) WriteData(b byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.toAux {
		return
	}
	e.toAux = false
	switch b {
	case AuxReset:
		e.reporting = false
		e.buttons = Buttons{}
		e.push(AuxAck, AuxSelfTestPass, 0x00)
	case AuxSetDefaults:
		e.push(AuxAck)
	case AuxEnableReport:
		e.reporting = true
		e.push(AuxAck)
	case AuxDisableReport:
		e.reporting = false
		e.push(AuxAck)
	default:
		e.push(AuxResend)
	}
}

// Move queues relative motion with the given buttons held. Positive dy is
// upward, as on the wire. Deltas larger than one packet can carry are split
// into several packets. It reports false when reporting is off or the queue
// is full.
func (e *Emulator) Move(dx, dy int, b Buttons) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.enabled || !e.reporting {
		return false
	}
	e.buttons = b
	for {
		cx := clampDelta(dx)
		cy := clampDelta(dy)
		if len(e.queue)+PacketSize > e.limit {
			e.dropped++
			return false
		}
		pkt := Encode(cx, cy, b)
		e.push(pkt[:]...)
		dx -= cx
		dy -= cy
		if dx == 0 && dy == 0 {
			return true
		}
	}
}

// SetButtons queues a zero-motion packet when the button state changes.
func (e *Emulator) SetButtons(b Buttons) bool {
	e.mu.Lock()
	same := e.buttons == b
	e.mu.Unlock()
	if same {
		return true
	}
	return e.Move(0, 0, b)
}

// Buttons returns the last button state sent.
func (e *Emulator) Buttons() Buttons {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buttons
}

// Dropped returns how many motion requests were dropped on a full queue.
func (e *Emulator) Dropped() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// Reporting reports whether the device has data reporting enabled.
func (e *Emulator) Reporting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled && e.reporting
}

func (e *Emulator) push(bs ...byte) {
	for _, b := range bs {
		e.queue = append(e.queue, outByte{b: b, aux: true})
	}
}

func clampDelta(v int) int {
	if v > 255 {
		return 255
	}
	if v < -255 {
		return -255
	}
	return v
}
