package gopublisher

import (
	"math"

	"github.com/bits-and-blooms/bitset"
)

// formulaEvaluator resolves calculated vertex coordinates of one shape
// instance. Formula tables are not guaranteed to be acyclic, so evaluation
// tracks the formulas currently being resolved and answers 0 on re-entry.
type formulaEvaluator struct {
	shape     *CustomShape
	adjust    map[int]int32
	aspect    float64
	resolving *bitset.BitSet
}

func newFormulaEvaluator(cs *CustomShape, adjust map[int]int32, width, height float64) *formulaEvaluator {
	aspect := 1.0
	if height != 0 {
		aspect = width / height
	}
	return &formulaEvaluator{
		shape:     cs,
		adjust:    adjust,
		aspect:    aspect,
		resolving: bitset.New(uint(len(cs.Calculations))),
	}
}

// Calculate evaluates formula i. This is the top-level entry point: the
// in-progress set is cleared first.
func (e *formulaEvaluator) Calculate(i int) float64 {
	e.resolving.ClearAll()
	return e.calculate(i)
}

// Coordinate resolves a vertex coordinate, literal or calculated.
func (e *formulaEvaluator) Coordinate(v int64) float64 {
	if isCalculated(v) {
		return e.Calculate(int(v & 0xFFFF))
	}
	return float64(v)
}

func (e *formulaEvaluator) adjustValue(i int) float64 {
	if v, ok := e.adjust[i]; ok {
		return float64(v)
	}
	if i >= 0 && i < len(e.shape.DefaultAdjust) {
		return float64(e.shape.DefaultAdjust[i])
	}
	return 0
}

func (e *formulaEvaluator) special(code int32) float64 {
	switch {
	case code >= specialAdjust && code <= specialAdjustMax:
		return e.adjustValue(int(code - specialAdjust))
	case code == specialGeoLeft, code == specialGeoTop:
		return 0
	case code == specialGeoRight:
		return float64(e.shape.CoordWidth)
	case code == specialGeoBottom:
		return float64(e.shape.CoordHeight)
	case code == specialAspect:
		return e.aspect
	case code&0xFF00 == specialFormula:
		return e.calculate(int(code & 0xFF))
	}
	return 0
}

func (e *formulaEvaluator) arg(value int32, flags, bit uint16) float64 {
	if flags&bit != 0 {
		return e.special(value)
	}
	return float64(value)
}

func (e *formulaEvaluator) calculate(i int) float64 {
	if i < 0 || i >= len(e.shape.Calculations) {
		return 0
	}
	if e.resolving.Test(uint(i)) {
		return 0
	}
	e.resolving.Set(uint(i))
	defer e.resolving.Clear(uint(i))

	c := e.shape.Calculations[i]
	a := e.arg(c.Arg1, c.Flags, flagSpecial1)
	b := e.arg(c.Arg2, c.Flags, flagSpecial2)
	d := e.arg(c.Arg3, c.Flags, flagSpecial3)
	return applyFormula(c.Flags&0xFF, a, b, d, float64(e.shape.CoordWidth), float64(e.shape.CoordHeight))
}

// angles inside formulas are 16.16 fixed-point degrees
func fixedDegToRad(v float64) float64 { return degToRad(v / 65536) }

func applyFormula(op uint16, a, b, c, w, h float64) float64 {
	switch op {
	case opSum:
		return a + b - c
	case opProduct:
		if c == 0 {
			return a * b
		}
		return a * b / c
	case opMid:
		return (a + b) / 2
	case opAbs:
		return math.Abs(a)
	case opMin:
		return math.Min(a, b)
	case opMax:
		return math.Max(a, b)
	case opIf:
		if a > 0 {
			return b
		}
		return c
	case opMod:
		return math.Sqrt(a*a + b*b + c*c)
	case opAtan2:
		return radToDeg(math.Atan2(b, a)) * 65536
	case opSin:
		return a * math.Sin(fixedDegToRad(b))
	case opCos:
		return a * math.Cos(fixedDegToRad(b))
	case opCosAtan2:
		return a * math.Cos(math.Atan2(c, b))
	case opSinAtan2:
		return a * math.Sin(math.Atan2(c, b))
	case opSqrt:
		return math.Sqrt(math.Abs(a))
	case opSumAngle:
		return a + b*65536 - c*65536
	case opEllipse:
		if b == 0 {
			return 0
		}
		r := a / b
		return c * math.Sqrt(math.Max(0, 1-r*r))
	case opTan:
		return a * math.Tan(fixedDegToRad(b))
	case opSqrtDiff:
		return math.Sqrt(math.Max(0, c*c-a*a))
	case opRotateX:
		t := fixedDegToRad(c)
		return math.Cos(t)*(a-w/2) - math.Sin(t)*(b-h/2) + w/2
	case opRotateY:
		t := fixedDegToRad(c)
		return math.Sin(t)*(a-w/2) + math.Cos(t)*(b-h/2) + h/2
	}
	return 0
}
