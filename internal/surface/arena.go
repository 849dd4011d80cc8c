package surface

import (
	"errors"
	"fmt"
)

// ErrArenaFull is returned when no slot can hold a requested surface.
var ErrArenaFull = errors.New("surface arena exhausted")

// Arena hands out surfaces from a fixed number of equally sized slots.
// Freed slots go back on a free list and are reused; a slot's backing store
// is allocated the first time it is handed out and never grown.
type Arena struct {
	slotPixels int
	backing    [][]uint32
	free       []int
	inUse      []bool
}

// NewArena returns an arena of slots slots holding slotPixels pixels each.
func NewArena(slots, slotPixels int) *Arena {
	if slots < 0 {
		slots = 0
	}
	a := &Arena{
		slotPixels: slotPixels,
		backing:    make([][]uint32, slots),
		free:       make([]int, 0, slots),
		inUse:      make([]bool, slots),
	}
	for i := slots - 1; i >= 0; i-- {
		a.free = append(a.free, i)
	}
	return a
}

// SlotPixels returns the per-slot pixel capacity.
func (a *Arena) SlotPixels() int { return a.slotPixels }

// Slots returns the total slot count.
func (a *Arena) Slots() int { return len(a.backing) }

// Available returns how many slots are free.
func (a *Arena) Available() int { return len(a.free) }

// Alloc returns a zeroed w x h surface from a free slot.
func (a *Arena) Alloc(w, h int) (*Surface, error) {
	if w < 0 || h < 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", w, h)
	}
	if w*h > a.slotPixels {
		return nil, fmt.Errorf("%dx%d exceeds slot capacity of %d pixels: %w", w, h, a.slotPixels, ErrArenaFull)
	}
	if len(a.free) == 0 {
		return nil, fmt.Errorf("all %d slots in use: %w", len(a.backing), ErrArenaFull)
	}
	slot := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	if a.backing[slot] == nil {
		a.backing[slot] = make([]uint32, a.slotPixels)
	}
	a.inUse[slot] = true

	pix := a.backing[slot][:w*h]
	for i := range pix {
		pix[i] = 0
	}
	return &Surface{width: w, height: h, pix: pix, slot: slot}, nil
}

// Free returns the surface's slot to the free list. The surface must not be
// used afterwards. Freeing a standalone or already freed surface is a no-op.
func (a *Arena) Free(s *Surface) {
	if s == nil || s.slot < 0 || s.slot >= len(a.inUse) || !a.inUse[s.slot] {
		return
	}
	a.inUse[s.slot] = false
	a.free = append(a.free, s.slot)
	s.slot = -1
	s.width, s.height = 0, 0
	s.pix = nil
}
