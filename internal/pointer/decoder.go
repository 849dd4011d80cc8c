package pointer

// Flags byte layout of a standard 3-byte PS/2 pointer packet.
const (
	FlagLeft      byte = 0x01
	FlagRight     byte = 0x02
	FlagMiddle    byte = 0x04
	FlagSync      byte = 0x08
	FlagXNegative byte = 0x10
	FlagYNegative byte = 0x20
	FlagXOverflow byte = 0x40
	FlagYOverflow byte = 0x80
)

// PacketSize is the number of bytes in one pointer packet.
const PacketSize = 3

// Buttons holds the state of the three pointer buttons.
type Buttons struct {
	Left   bool
	Right  bool
	Middle bool
}

// Any reports whether at least one button is held.
func (b Buttons) Any() bool {
	return b.Left || b.Right || b.Middle
}

func (b Buttons) flags() byte {
	var f byte
	if b.Left {
		f |= FlagLeft
	}
	if b.Right {
		f |= FlagRight
	}
	if b.Middle {
		f |= FlagMiddle
	}
	return f
}

func buttonsFromFlags(f byte) Buttons {
	return Buttons{
		Left:   f&FlagLeft != 0,
		Right:  f&FlagRight != 0,
		Middle: f&FlagMiddle != 0,
	}
}

// Packet is one decoded pointer packet. DX and DY are device-relative: a
// positive DY means the device moved up.
type Packet struct {
	Buttons   Buttons
	DX        int
	DY        int
	XOverflow bool
	YOverflow bool
}

// Overflow reports whether either movement delta is untrustworthy.
func (p Packet) Overflow() bool {
	return p.XOverflow || p.YOverflow
}

// Decoder reassembles a byte stream into packets.
type Decoder struct {
	buf [PacketSize]byte
	n   int
}

// Feed accepts one byte from the device. It returns a packet once the third
// byte of a synced packet arrives. A first byte without the sync bit is
// dropped and the decoder keeps waiting for a packet start.
func (d *Decoder) Feed(b byte) (Packet, bool) {
	if d.n == 0 && b&FlagSync == 0 {
		return Packet{}, false
	}
	d.buf[d.n] = b
	d.n++
	if d.n < PacketSize {
		return Packet{}, false
	}
	d.n = 0
	return decode(d.buf), true
}

// Pending returns how many bytes of a partial packet are buffered.
func (d *Decoder) Pending() int {
	return d.n
}

// Reset drops any partial packet.
func (d *Decoder) Reset() {
	d.n = 0
}

func decode(buf [PacketSize]byte) Packet {
	flags := buf[0]
	dx := int(buf[1])
	dy := int(buf[2])
	if flags&FlagXNegative != 0 {
		dx -= 256
	}
	if flags&FlagYNegative != 0 {
		dy -= 256
	}
	return Packet{
		Buttons:   buttonsFromFlags(flags),
		DX:        dx,
		DY:        dy,
		XOverflow: flags&FlagXOverflow != 0,
		YOverflow: flags&FlagYOverflow != 0,
	}
}

// Encode builds the wire form of a packet. Deltas outside [-256, 255] are
// reported with the overflow bit and a saturated magnitude.
func Encode(dx, dy int, b Buttons) [PacketSize]byte {
	flags := FlagSync | b.flags()
	xb, xneg, xover := encodeAxis(dx)
	yb, yneg, yover := encodeAxis(dy)
	if xneg {
		flags |= FlagXNegative
	}
	if yneg {
		flags |= FlagYNegative
	}
	if xover {
		flags |= FlagXOverflow
	}
	if yover {
		flags |= FlagYOverflow
	}
	return [PacketSize]byte{flags, xb, yb}
}

func encodeAxis(v int) (mag byte, negative, overflow bool) {
	switch {
	case v > 255:
		return 0xFF, false, true
	case v < -256:
		return 0x00, true, true
	case v < 0:
		return byte(v + 256), true, false
	default:
		return byte(v), false, false
	}
}
