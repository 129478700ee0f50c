package gopublisher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTransforms() []Transform {
	return []Transform{
		IdentityTransform(),
		FlipTransform(true, false),
		FlipTransform(false, true),
		FlipTransform(true, true),
		RotationTransform(math.Pi / 6),
		RotationTransform(-2.1),
		TranslationTransform(3, -4.5),
		TransformWithOrigin(RotationTransform(1.2), 2, 3),
		TransformWithOrigin(FlipTransform(true, false), -1, 7),
	}
}

func TestTransformAssociative(t *testing.T) {
	ts := sampleTransforms()
	for _, a := range ts {
		for _, b := range ts {
			for _, c := range ts {
				left := a.Mul(b).Mul(c)
				right := a.Mul(b.Mul(c))
				assert.True(t, left.ApproxEqual(right, 1e-9), "(A*B)*C != A*(B*C)")
			}
		}
	}
}

func TestFlipTwiceIsIdentity(t *testing.T) {
	for _, h := range []bool{false, true} {
		for _, v := range []bool{false, true} {
			f := FlipTransform(h, v)
			assert.True(t, f.Mul(f).IsIdentity(), "flip(%v,%v) squared", h, v)
		}
	}
}

func TestMulAppliesRightOperandFirst(t *testing.T) {
	// translate then flip: (1,0) -> (2,0) -> (-2,0)
	m := FlipTransform(true, false).Mul(TranslationTransform(1, 0))
	x, y := m.Apply(1, 0)
	assert.InDelta(t, -2, x, 1e-12)
	assert.InDelta(t, 0, y, 1e-12)
}

func TestTransformWithOrigin(t *testing.T) {
	m := TransformWithOrigin(RotationTransform(math.Pi), 1, 1)
	x, y := m.Apply(2, 1)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 1, y, 1e-9)
	cx, cy := m.Apply(1, 1)
	assert.InDelta(t, 1, cx, 1e-9)
	assert.InDelta(t, 1, cy, 1e-9)
}

func TestRotationExtraction(t *testing.T) {
	for _, r := range []float64{0, 0.3, 1.2, -0.7, 2.5} {
		assert.InDelta(t, r, RotationTransform(r).Rotation(), 1e-9)
	}
	// mirrored maps report the rotation of their unmirrored part
	m := RotationTransform(0.4).Mul(FlipTransform(true, false))
	assert.InDelta(t, 0.4, m.Rotation(), 1e-9)
}

func TestRotationOfDegenerateTransform(t *testing.T) {
	var zero Transform
	assert.Equal(t, 0.0, zero.Rotation())
}

func TestCoordinateNormalizes(t *testing.T) {
	c := NewCoordinate(10, 20, -5, -30)
	assert.Equal(t, Coordinate{Xs: -5, Ys: -30, Xe: 10, Ye: 20}, c)
	assert.Equal(t, int64(15), c.Width())
	assert.Equal(t, int64(50), c.Height())
}

func TestCoordinateToPage(t *testing.T) {
	c := NewCoordinate(-emuPerInch/2, -emuPerInch, emuPerInch/2, 0)
	r := c.ToPage(8.5, 11)
	assert.InDelta(t, 3.75, r.X, 1e-12)
	assert.InDelta(t, 4.5, r.Y, 1e-12)
	assert.InDelta(t, 1, r.Width, 1e-12)
	assert.InDelta(t, 1, r.Height, 1e-12)
}
