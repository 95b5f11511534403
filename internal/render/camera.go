package render

import "github.com/go-gl/mathgl/mgl64"

// Camera is an orthographic view centered on Position. Width and Height
// are the viewport size in world units at zoom 1.
type Camera struct {
	Position mgl64.Vec3
	Width    float64
	Height   float64
	Zoom     float64
}

func NewCamera(width, height float64) *Camera {
	return &Camera{Width: width, Height: height, Zoom: 1}
}

// View returns the visible rectangle on the XY plane.
func (c *Camera) View() (min, max mgl64.Vec2) {
	half := mgl64.Vec2{c.Width * c.Zoom / 2, c.Height * c.Zoom / 2}
	center := c.Position.Vec2()
	return center.Sub(half), center.Add(half)
}

// InFrustum reports whether box overlaps the view. Depth is not culled.
func (c *Camera) InFrustum(box BBox) bool {
	b := box.Normalized()
	lo, hi := c.View()
	return b.Max.X() >= lo.X() && b.Min.X() <= hi.X() &&
		b.Max.Y() >= lo.Y() && b.Min.Y() <= hi.Y()
}

// Clamp keeps a camera target inside a level of the given size.
func (c *Camera) Clamp(target, levelSize mgl64.Vec2) mgl64.Vec2 {
	halfW, halfH := c.Width*c.Zoom/2, c.Height*c.Zoom/2
	x := max(min(target.X(), levelSize.X()-halfW), halfW)
	y := max(min(target.Y(), levelSize.Y()-halfH), halfH)
	return mgl64.Vec2{x, y}
}
