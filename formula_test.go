package gopublisher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluatorFor(calcs []Calculation, defaults []int32, adjust map[int]int32) *formulaEvaluator {
	cs := &CustomShape{
		Calculations:  calcs,
		DefaultAdjust: defaults,
		CoordWidth:    21600,
		CoordHeight:   10800,
	}
	return newFormulaEvaluator(cs, adjust, 2, 1)
}

func TestFormulaSelfReferenceResolvesToZero(t *testing.T) {
	e := evaluatorFor([]Calculation{
		{Flags: flagSpecial1 | opSum, Arg1: formulaRef(0), Arg2: 5},
	}, nil, nil)
	assert.Equal(t, 5.0, e.Calculate(0))
}

func TestFormulaMutualCycleTerminates(t *testing.T) {
	e := evaluatorFor([]Calculation{
		{Flags: flagSpecial1 | opSum, Arg1: formulaRef(1), Arg2: 5},
		{Flags: flagSpecial1 | opSum, Arg1: formulaRef(0), Arg2: 7},
	}, nil, nil)
	assert.Equal(t, 12.0, e.Calculate(0))
	assert.Equal(t, 12.0, e.Calculate(1))
}

func TestFormulaSharedReferenceIsNotACycle(t *testing.T) {
	e := evaluatorFor([]Calculation{
		{Flags: opSum, Arg1: 100},
		{Flags: flagSpecial1 | flagSpecial2 | opSum, Arg1: formulaRef(0), Arg2: formulaRef(0)},
	}, nil, nil)
	assert.Equal(t, 200.0, e.Calculate(1))
}

func TestFormulaAdjustValues(t *testing.T) {
	calcs := []Calculation{adjusted(0), adjusted(1), adjusted(5)}
	e := evaluatorFor(calcs, []int32{3600, 42}, map[int]int32{1: 7})
	assert.Equal(t, 3600.0, e.Calculate(0), "catalog default")
	assert.Equal(t, 7.0, e.Calculate(1), "instance override")
	assert.Equal(t, 0.0, e.Calculate(2), "no default")
}

func TestFormulaGeometrySpecials(t *testing.T) {
	e := evaluatorFor([]Calculation{
		{Flags: flagSpecial1 | opSum, Arg1: specialGeoRight},
		{Flags: flagSpecial1 | opSum, Arg1: specialGeoBottom},
		{Flags: flagSpecial1 | opSum, Arg1: specialGeoLeft},
		{Flags: flagSpecial1 | opSum, Arg1: specialAspect},
		{Flags: flagSpecial1 | opSum, Arg1: specialAspect + 1},
	}, nil, nil)
	assert.Equal(t, 21600.0, e.Calculate(0))
	assert.Equal(t, 10800.0, e.Calculate(1))
	assert.Equal(t, 0.0, e.Calculate(2))
	assert.Equal(t, 2.0, e.Calculate(3))
	assert.Equal(t, 0.0, e.Calculate(4))
}

func TestFormulaOperators(t *testing.T) {
	const w, h = 21600, 21600
	assert.Equal(t, 6.0, applyFormula(opSum, 3, 5, 2, w, h))
	assert.Equal(t, 15.0, applyFormula(opProduct, 3, 10, 2, w, h))
	assert.Equal(t, 30.0, applyFormula(opProduct, 3, 10, 0, w, h), "zero divisor")
	assert.Equal(t, 4.0, applyFormula(opMid, 3, 5, 0, w, h))
	assert.Equal(t, 3.0, applyFormula(opAbs, -3, 0, 0, w, h))
	assert.Equal(t, 3.0, applyFormula(opMin, 3, 5, 0, w, h))
	assert.Equal(t, 5.0, applyFormula(opMax, 3, 5, 0, w, h))
	assert.Equal(t, 5.0, applyFormula(opIf, 1, 5, 9, w, h))
	assert.Equal(t, 9.0, applyFormula(opIf, 0, 5, 9, w, h))
	assert.Equal(t, 5.0, applyFormula(opMod, 3, 4, 0, w, h))
	assert.InDelta(t, 90*65536, applyFormula(opAtan2, 0, 1, 0, w, h), 1e-6)
	assert.InDelta(t, 10, applyFormula(opSin, 10, 90*65536, 0, w, h), 1e-9)
	assert.InDelta(t, -10, applyFormula(opCos, 10, 180*65536, 0, w, h), 1e-9)
	assert.Equal(t, 4.0, applyFormula(opSqrt, 16, 0, 0, w, h))
	assert.InDelta(t, 0, applyFormula(opEllipse, 10, 10, 50, w, h), 1e-9)
	assert.Equal(t, 4.0, applyFormula(opSqrtDiff, 3, 0, 5, w, h))
	assert.Equal(t, 0.0, applyFormula(0x7F, 3, 5, 2, w, h), "unknown operator")
}

func TestFormulaOutOfRangeIndex(t *testing.T) {
	e := evaluatorFor(nil, nil, nil)
	assert.Equal(t, 0.0, e.Calculate(3))
	assert.Equal(t, 0.0, e.Coordinate(calc(9)))
	assert.Equal(t, -250.0, e.Coordinate(-250))
}

func TestRectanglePath(t *testing.T) {
	p := buildShapePath(geometryFor(ShapeRectangle), nil, PageRect{X: 1, Y: 2, Width: 4, Height: 2})
	require.Len(t, p.Elements, 5)
	want := []Point{{1, 2}, {5, 2}, {5, 4}, {1, 4}}
	for i, w := range want {
		el := p.Elements[i]
		if i == 0 {
			assert.Equal(t, byte('M'), el.Action)
		} else {
			assert.Equal(t, byte('L'), el.Action)
		}
		assert.InDelta(t, w.X, el.X, 1e-9)
		assert.InDelta(t, w.Y, el.Y, 1e-9)
	}
	assert.Equal(t, byte('Z'), p.Elements[4].Action)
	assert.False(t, p.NoFill)
}

func TestUnknownShapeTypeDrawsAsRectangle(t *testing.T) {
	assert.Same(t, rectangleShape, geometryFor(ShapeType(999)))
	_, ok := LookupCustomShape(ShapeType(999))
	assert.False(t, ok)
}

func TestEllipseEmitsTwoHalfArcs(t *testing.T) {
	p := buildShapePath(geometryFor(ShapeEllipse), nil, PageRect{X: 0, Y: 0, Width: 2, Height: 1})
	require.Len(t, p.Elements, 4)
	assert.Equal(t, byte('M'), p.Elements[0].Action)
	assert.InDelta(t, 2, p.Elements[0].X, 1e-9)
	assert.InDelta(t, 0.5, p.Elements[0].Y, 1e-9)
	assert.Equal(t, byte('A'), p.Elements[1].Action)
	assert.InDelta(t, 0, p.Elements[1].X, 1e-9)
	assert.InDelta(t, 1, p.Elements[1].RX, 1e-9)
	assert.InDelta(t, 0.5, p.Elements[1].RY, 1e-9)
	assert.Equal(t, byte('A'), p.Elements[2].Action)
	assert.InDelta(t, 2, p.Elements[2].X, 1e-9)
	assert.Equal(t, byte('Z'), p.Elements[3].Action)
}

func TestRoundRectangleQuadrants(t *testing.T) {
	p := buildShapePath(geometryFor(ShapeRoundRectangle), nil, PageRect{Width: 6, Height: 6})
	arcs := 0
	for _, el := range p.Elements {
		if el.Action == 'A' {
			arcs++
			assert.InDelta(t, 1, el.RX, 1e-9)
		}
	}
	assert.Equal(t, 8, arcs)
}

func TestTriangleApexFollowsAdjustValue(t *testing.T) {
	rect := PageRect{Width: 2, Height: 2}
	p := buildShapePath(geometryFor(ShapeIsoscelesTriangle), nil, rect)
	assert.InDelta(t, 1, p.Elements[0].X, 1e-9)
	p = buildShapePath(geometryFor(ShapeIsoscelesTriangle), map[int]int32{0: 0}, rect)
	assert.InDelta(t, 0, p.Elements[0].X, 1e-9)
}

func TestLineIsOpen(t *testing.T) {
	p := buildShapePath(geometryFor(ShapeLine), nil, PageRect{Width: 1, Height: 1})
	require.Len(t, p.Elements, 2)
	assert.True(t, p.NoFill)
	assert.Equal(t, byte('L'), p.Elements[1].Action)
}

func TestEveryCatalogShapeBuilds(t *testing.T) {
	for st, cs := range customShapes {
		p := buildShapePath(cs, nil, PageRect{Width: 3, Height: 2})
		assert.NotEmpty(t, p.Elements, st.String())
		assert.Equal(t, byte('M'), p.Elements[0].Action, st.String())
	}
}
