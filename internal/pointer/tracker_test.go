package pointer

import "testing"

func TestTrackerStartsCentered(t *testing.T) {
	tr := NewTracker()
	s := tr.Sample()
	if s.X != 512 || s.Y != 384 {
		t.Fatalf("initial position = (%d, %d), want (512, 384)", s.X, s.Y)
	}
}

func TestTrackerInvertsYAndClamps(t *testing.T) {
	tests := []struct {
		name         string
		startX       int
		startY       int
		packet       Packet
		wantX, wantY int
	}{
		{"move right and up", 100, 100, Packet{DX: 10, DY: 5}, 110, 95},
		{"clamp left", 3, 100, Packet{DX: -10}, 0, 100},
		{"clamp top", 100, 2, Packet{DY: 50}, 100, 0},
		{"clamp right", 1020, 100, Packet{DX: 100}, 1023, 100},
		{"clamp bottom", 100, 760, Packet{DY: -100}, 100, 767},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			tr.Warp(tt.startX, tt.startY)
			s := tr.Apply(tt.packet)
			if s.X != tt.wantX || s.Y != tt.wantY {
				t.Errorf("Apply(%+v) = (%d, %d), want (%d, %d)", tt.packet, s.X, s.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestTrackerOverflowKeepsPositionButTakesButtons(t *testing.T) {
	tr := NewTracker()
	tr.Warp(200, 200)
	s := tr.Apply(Packet{DX: 40, DY: 40, XOverflow: true, Buttons: Buttons{Left: true}})
	if s.X != 200 || s.Y != 200 {
		t.Fatalf("position moved on overflow: (%d, %d)", s.X, s.Y)
	}
	if !s.Buttons.Left || !s.XOverflow {
		t.Fatalf("sample = %+v, want left held and x overflow", s)
	}
}

func TestTrackerSetBoundsReclamps(t *testing.T) {
	tr := NewTracker()
	tr.Warp(1000, 700)
	tr.SetBounds(640, 480)
	s := tr.Sample()
	if s.X != 639 || s.Y != 479 {
		t.Fatalf("after SetBounds position = (%d, %d), want (639, 479)", s.X, s.Y)
	}
	if x, y := tr.Bounds(); x != 640 || y != 480 {
		t.Fatalf("Bounds() = (%d, %d), want (640, 480)", x, y)
	}
}
