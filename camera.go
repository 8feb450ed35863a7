package layoutview

// Camera maps a world-space window onto a pixel viewport with an
// orthographic projection. World y grows upward, screen y grows downward;
// the view matrix flips once so backends never have to.
type Camera struct {
	// Center is the world-space point at the middle of the viewport.
	Center Point

	// Width and Height are the world-space extents of the visible window.
	Width, Height float64

	// ViewportWidth and ViewportHeight are the pixel dimensions of the
	// output surface.
	ViewportWidth, ViewportHeight int
}

// NewCamera creates a camera showing the given world window in a viewport.
func NewCamera(viewportW, viewportH int) *Camera {
	return &Camera{
		Width:          float64(viewportW),
		Height:         float64(viewportH),
		ViewportWidth:  viewportW,
		ViewportHeight: viewportH,
	}
}

// FitBounds frames the given world-space rectangle, preserving the viewport
// aspect ratio by growing the window along the slack axis.
func (c *Camera) FitBounds(bounds Rect) {
	if bounds.IsEmpty() || c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return
	}

	viewAspect := float64(c.ViewportWidth) / float64(c.ViewportHeight)
	worldW, worldH := bounds.Width(), bounds.Height()
	if worldW == 0 {
		worldW = 1
	}
	if worldH == 0 {
		worldH = 1
	}

	if viewAspect > worldW/worldH {
		c.Height = worldH
		c.Width = worldH * viewAspect
	} else {
		c.Width = worldW
		c.Height = worldW / viewAspect
	}
	c.Center = bounds.Center()
}

// Pan shifts the world window by a screen-space pixel delta.
func (c *Camera) Pan(dxPixels, dyPixels float64) {
	c.Center.X -= dxPixels * c.Width / float64(c.ViewportWidth)
	c.Center.Y += dyPixels * c.Height / float64(c.ViewportHeight)
}

// Zoom scales the world window about a fixed screen-space point.
// Factors above 1 zoom in.
func (c *Camera) Zoom(factor float64, at Point) {
	if factor <= 0 {
		return
	}
	anchor := c.Unproject(at)
	c.Width /= factor
	c.Height /= factor
	// Keep the world point under the cursor stationary.
	moved := c.Unproject(at)
	c.Center.X += anchor.X - moved.X
	c.Center.Y += anchor.Y - moved.Y
}

// ViewMatrix returns the world-to-screen transform.
func (c *Camera) ViewMatrix() Matrix {
	sx := float64(c.ViewportWidth) / c.Width
	sy := float64(c.ViewportHeight) / c.Height
	// Translate center to origin, scale to pixels, flip y, move origin to
	// the viewport center.
	view := Translate(float64(c.ViewportWidth)/2, float64(c.ViewportHeight)/2)
	view = view.Multiply(Scale(sx, -sy))
	view = view.Multiply(Translate(-c.Center.X, -c.Center.Y))
	return view
}

// Unproject maps a screen-space pixel position back to world coordinates.
// Used for picking and zoom anchoring.
func (c *Camera) Unproject(screen Point) Point {
	return c.ViewMatrix().Invert().TransformPoint(screen)
}

// VisibleBounds returns the world-space rectangle currently in view.
func (c *Camera) VisibleBounds() Rect {
	halfW, halfH := c.Width/2, c.Height/2
	return Rect{
		MinX: c.Center.X - halfW,
		MinY: c.Center.Y - halfH,
		MaxX: c.Center.X + halfW,
		MaxY: c.Center.Y + halfH,
	}
}
