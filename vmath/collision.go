package vmath

// Box is an axis-aligned rectangle given by center and half extents
type Box struct {
	X, Y  float64
	HalfW  float64
	HalfH  float64
}

// BoxAt builds a box centered on (x, y)
func BoxAt(x, y, halfW, halfH float64) Box {
	return Box{X: x, Y: y, HalfW: halfW, HalfH: halfH}
}

// Overlaps reports whether two boxes intersect, touching edges do not count
func (b Box) Overlaps(o Box) bool {
	return b.X-b.HalfW < o.X+o.HalfW &&
		o.X-o.HalfW < b.X+b.HalfW &&
		b.Y-b.HalfH < o.Y+o.HalfH &&
		o.Y-o.HalfH < b.Y+b.HalfH
}
