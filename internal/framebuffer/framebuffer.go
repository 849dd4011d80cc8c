package framebuffer

import (
	"encoding/binary"
	"fmt"
	"image"

	"github.com/1broseidon/deskwm/internal/geom"
)

// BytesPerPixel is the size of one packed 0xRRGGBB pixel.
const BytesPerPixel = 4

// Framebuffer is a linear pixel buffer whose rows are Pitch bytes apart.
// Pitch may be larger than Width*BytesPerPixel; the padding is never drawn.
type Framebuffer struct {
	Width  int
	Height int
	Pitch  int
	pix    []uint32
}

// New allocates a framebuffer. A pitch of 0 means tightly packed rows.
func New(width, height, pitch int) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid framebuffer size %dx%d", width, height)
	}
	if pitch == 0 {
		pitch = width * BytesPerPixel
	}
	if pitch < width*BytesPerPixel || pitch%BytesPerPixel != 0 {
		return nil, fmt.Errorf("invalid pitch %d for width %d", pitch, width)
	}
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pitch:  pitch,
		pix:    make([]uint32, height*(pitch/BytesPerPixel)),
	}, nil
}

// Stride returns the row length in pixels.
func (f *Framebuffer) Stride() int {
	return f.Pitch / BytesPerPixel
}

// Bounds returns the visible area.
func (f *Framebuffer) Bounds() geom.Rect {
	return geom.XYWH(0, 0, f.Width, f.Height)
}

// Set writes one pixel. Writes outside the visible area are dropped.
func (f *Framebuffer) Set(x, y int, c uint32) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	f.pix[y*f.Stride()+x] = c
}

// At reads one pixel.
func (f *Framebuffer) At(x, y int) uint32 {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0
	}
	return f.pix[y*f.Stride()+x]
}

// Row returns the visible pixels of row y.
func (f *Framebuffer) Row(y int) []uint32 {
	if y < 0 || y >= f.Height {
		return nil
	}
	off := y * f.Stride()
	return f.pix[off : off+f.Width]
}

// Clear fills the visible area with c.
func (f *Framebuffer) Clear(c uint32) {
	for y := 0; y < f.Height; y++ {
		row := f.Row(y)
		for i := range row {
			row[i] = c
		}
	}
}

// FillRect fills r, clipped to the visible area.
func (f *Framebuffer) FillRect(r geom.Rect, c uint32) {
	r = r.Intersect(f.Bounds())
	for y := r.Y; y < r.Bottom(); y++ {
		row := f.Row(y)[r.X:r.Right()]
		for i := range row {
			row[i] = c
		}
	}
}

// Blit copies src (w pixels per row) into the framebuffer at (x, y), clipped
// to clip and the visible area.
func (f *Framebuffer) Blit(x, y int, src []uint32, w, h int, clip geom.Rect) {
	if w <= 0 || h <= 0 {
		return
	}
	dst := geom.XYWH(x, y, w, h).Intersect(clip).Intersect(f.Bounds())
	for row := dst.Y; row < dst.Bottom(); row++ {
		sy := row - y
		sx := dst.X - x
		copy(f.Row(row)[dst.X:dst.Right()], src[sy*w+sx:sy*w+sx+dst.Width])
	}
}

// Bytes encodes rows [y0, y1) as little-endian XRGB8888 including the pitch
// padding, ready to be written at offset y0*Pitch of a device.
func (f *Framebuffer) Bytes(y0, y1 int) []byte {
	y0 = geom.Clamp(y0, 0, f.Height)
	y1 = geom.Clamp(y1, y0, f.Height)
	stride := f.Stride()
	out := make([]byte, (y1-y0)*f.Pitch)
	for i, p := range f.pix[y0*stride : y1*stride] {
		binary.LittleEndian.PutUint32(out[i*BytesPerPixel:], p)
	}
	return out
}

// Image converts the visible area to an RGBA image.
func (f *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		row := f.Row(y)
		o := y * img.Stride
		for x, p := range row {
			img.Pix[o+x*4+0] = uint8(p >> 16)
			img.Pix[o+x*4+1] = uint8(p >> 8)
			img.Pix[o+x*4+2] = uint8(p)
			img.Pix[o+x*4+3] = 0xFF
		}
	}
	return img
}
