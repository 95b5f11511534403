// Package render is the sprite drawing boundary. Sprites are submitted as
// four vertices of (x, y, packed color, u, v) against a named texture.
package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	VertexSize = 2 + 1 + 2
	SpriteSize = 4 * VertexSize
)

// Offsets into a sprite's vertex slice.
const (
	X1 = iota
	Y1
	C1
	U1
	V1
	X2
	Y2
	C2
	U2
	V2
	X3
	Y3
	C3
	U3
	V3
	X4
	Y4
	C4
	U4
	V4
)

// BBox is an axis-aligned box; Min and Max need not be ordered.
type BBox struct {
	Min, Max mgl64.Vec3
}

// Normalized returns the box with Min <= Max on every axis.
func (b BBox) Normalized() BBox {
	out := b
	for i := 0; i < 3; i++ {
		if out.Min[i] > out.Max[i] {
			out.Min[i], out.Max[i] = out.Max[i], out.Min[i]
		}
	}
	return out
}

// Backend draws sprites. InFrustum is asked before Draw so off-screen
// sprites are never submitted.
type Backend interface {
	Draw(texture string, vertices []float32)
	InFrustum(box BBox) bool
}

// Flusher is implemented by backends that present a frame.
type Flusher interface {
	Flush() error
}

// TextDrawer is implemented by backends that can draw HUD text in screen
// cells.
type TextDrawer interface {
	DrawText(x, y int, text string)
}

// Color is RGBA in [0, 1].
type Color struct {
	R, G, B, A float32
}

var White = Color{1, 1, 1, 1}

// Pack encodes the color as the float bits of ABGR bytes, the layout sprite
// vertices carry. The lowest alpha bit is dropped to keep the value a
// non-NaN float.
func (c Color) Pack() float32 {
	bits := uint32(255*c.A)<<24 | uint32(255*c.B)<<16 | uint32(255*c.G)<<8 | uint32(255*c.R)
	return math.Float32frombits(bits & 0xfeffffff)
}

// UnpackColor reverses Pack, up to the dropped alpha bit.
func UnpackColor(f float32) Color {
	bits := math.Float32bits(f)
	return Color{
		R: float32(bits&0xff) / 255,
		G: float32(bits>>8&0xff) / 255,
		B: float32(bits>>16&0xff) / 255,
		A: float32(bits>>24&0xff) / 255,
	}
}
