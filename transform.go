package gopublisher

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Transform is a 2D affine map: x' = a*x + b*y + c, y' = d*x + e*y + f.
// Page space has y growing downwards.
type Transform struct {
	m f64.Aff3
}

const transformEpsilon = 1e-9

// IdentityTransform returns the identity map.
func IdentityTransform() Transform {
	return Transform{m: f64.Aff3{1, 0, 0, 0, 1, 0}}
}

// FlipTransform mirrors across the vertical axis (h) and/or the horizontal axis (v).
func FlipTransform(h, v bool) Transform {
	sx, sy := 1.0, 1.0
	if h {
		sx = -1
	}
	if v {
		sy = -1
	}
	return Transform{m: f64.Aff3{sx, 0, 0, 0, sy, 0}}
}

// RotationTransform rotates counter-clockwise as seen on the page.
func RotationTransform(rad float64) Transform {
	c, s := math.Cos(rad), math.Sin(rad)
	return Transform{m: f64.Aff3{c, s, 0, -s, c, 0}}
}

// TranslationTransform moves by (dx, dy).
func TranslationTransform(dx, dy float64) Transform {
	return Transform{m: f64.Aff3{1, 0, dx, 0, 1, dy}}
}

// Mul returns t*o: the map that applies o first, then t.
func (t Transform) Mul(o Transform) Transform {
	a, b := t.m, o.m
	return Transform{m: f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}}
}

// TransformWithOrigin applies t about (ox, oy) rather than about (0, 0).
func TransformWithOrigin(t Transform, ox, oy float64) Transform {
	return TranslationTransform(ox, oy).Mul(t).Mul(TranslationTransform(-ox, -oy))
}

// Apply maps a point.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t.m[0]*x + t.m[1]*y + t.m[2], t.m[3]*x + t.m[4]*y + t.m[5]
}

// Matrix returns the underlying coefficients.
func (t Transform) Matrix() f64.Aff3 { return t.m }

// IsIdentity reports whether t leaves every point in place.
func (t Transform) IsIdentity() bool {
	id := IdentityTransform()
	for i := range t.m {
		if math.Abs(t.m[i]-id.m[i]) > transformEpsilon {
			return false
		}
	}
	return true
}

// Flips reports whether the linear part mirrors the plane.
func (t Transform) Flips() bool {
	return t.m[0]*t.m[4]-t.m[1]*t.m[3] < 0
}

// Rotation extracts the counter-clockwise rotation in radians. Mirrored maps
// are unmirrored horizontally first. A map that collapses both axes has no
// meaningful rotation and yields 0.
func (t Transform) Rotation() float64 {
	m := t.m
	if t.Flips() {
		m = t.Mul(FlipTransform(true, false)).m
	}
	sx := math.Hypot(m[0], m[3])
	sy := math.Hypot(m[1], m[4])
	switch {
	case sx > transformEpsilon:
		return math.Atan2(-m[3], m[0])
	case sy > transformEpsilon:
		return math.Atan2(m[1], m[4])
	}
	return 0
}

// ApproxEqual compares two transforms coefficient by coefficient.
func (t Transform) ApproxEqual(o Transform, eps float64) bool {
	for i := range t.m {
		if math.Abs(t.m[i]-o.m[i]) > eps {
			return false
		}
	}
	return true
}
