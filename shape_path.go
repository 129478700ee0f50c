package gopublisher

import "math"

// Segment commands of a template's draw-command stream.
const (
	segLineTo              = 0x0000
	segCurveTo             = 0x2000
	segMoveTo              = 0x4000
	segCloseSubpath        = 0x6001
	segEndSubpath          = 0x8000
	segAngleEllipseTo      = 0xA100
	segAngleEllipse        = 0xA200
	segArcTo               = 0xA300
	segArc                 = 0xA400
	segClockwiseArcTo      = 0xA500
	segClockwiseArc        = 0xA600
	segEllipticalQuadrantX = 0xA700
	segEllipticalQuadrantY = 0xA800
	segQuadraticBezier     = 0xA900
	segNoFill              = 0xAA00
	segNoStroke            = 0xAB00
)

// shapePath is a shape's outline in page inches, before the shape transform.
type shapePath struct {
	Elements []PathElement
	NoFill   bool
	NoStroke bool
}

type pathBuilder struct {
	eval     *formulaEvaluator
	cs       *CustomShape
	rect     PageRect
	sx, sy   float64
	vertices []Vertex
	next     int
	out      shapePath
	cur      Point
	hasCur   bool
}

// buildShapePath lays the template cs out inside rect.
func buildShapePath(cs *CustomShape, adjust map[int]int32, rect PageRect) shapePath {
	b := &pathBuilder{
		eval:     newFormulaEvaluator(cs, adjust, rect.Width, rect.Height),
		cs:       cs,
		rect:     rect,
		vertices: cs.Vertices,
	}
	if cs.CoordWidth != 0 {
		b.sx = rect.Width / float64(cs.CoordWidth)
	}
	if cs.CoordHeight != 0 {
		b.sy = rect.Height / float64(cs.CoordHeight)
	}
	b.out.NoFill = cs.Open
	if len(cs.Segments) == 0 {
		b.polygon()
	} else {
		b.segments()
	}
	return b.out
}

// raw returns the next vertex resolved in template units.
func (b *pathBuilder) raw() (float64, float64, bool) {
	if b.next >= len(b.vertices) {
		return 0, 0, false
	}
	v := b.vertices[b.next]
	b.next++
	return b.eval.Coordinate(v.X), b.eval.Coordinate(v.Y), true
}

// point returns the next vertex mapped into page inches.
func (b *pathBuilder) point() (Point, bool) {
	x, y, ok := b.raw()
	if !ok {
		return Point{}, false
	}
	return Point{X: b.rect.X + x*b.sx, Y: b.rect.Y + y*b.sy}, true
}

func (b *pathBuilder) moveTo(p Point) {
	b.out.Elements = append(b.out.Elements, PathElement{Action: 'M', X: p.X, Y: p.Y})
	b.cur, b.hasCur = p, true
}

func (b *pathBuilder) lineTo(p Point) {
	if !b.hasCur {
		b.moveTo(p)
		return
	}
	b.out.Elements = append(b.out.Elements, PathElement{Action: 'L', X: p.X, Y: p.Y})
	b.cur = p
}

func (b *pathBuilder) curveTo(c1, c2, p Point) {
	if !b.hasCur {
		b.moveTo(c1)
	}
	b.out.Elements = append(b.out.Elements, PathElement{Action: 'C', X1: c1.X, Y1: c1.Y, X2: c2.X, Y2: c2.Y, X: p.X, Y: p.Y})
	b.cur = p
}

func (b *pathBuilder) closePath() {
	if b.hasCur {
		b.out.Elements = append(b.out.Elements, PathElement{Action: 'Z'})
	}
	b.hasCur = false
}

func (b *pathBuilder) polygon() {
	first := true
	for {
		p, ok := b.point()
		if !ok {
			break
		}
		if first {
			b.moveTo(p)
			first = false
			continue
		}
		b.lineTo(p)
	}
	b.closePath()
}

func (b *pathBuilder) segments() {
	for _, seg := range b.cs.Segments {
		switch {
		case seg == segCloseSubpath:
			b.closePath()
		case seg == segEndSubpath:
			b.hasCur = false
		case seg == segNoFill:
			b.out.NoFill = true
		case seg == segNoStroke:
			b.out.NoStroke = true
		case seg&0xE000 == segMoveTo:
			if p, ok := b.point(); ok {
				b.moveTo(p)
			}
		case seg&0xE000 == segLineTo:
			for i := 0; i < segmentCount(seg&0x1FFF); i++ {
				if p, ok := b.point(); ok {
					b.lineTo(p)
				}
			}
		case seg&0xE000 == segCurveTo:
			for i := 0; i < segmentCount(seg&0x1FFF); i++ {
				c1, ok1 := b.point()
				c2, ok2 := b.point()
				p, ok3 := b.point()
				if ok1 && ok2 && ok3 {
					b.curveTo(c1, c2, p)
				}
			}
		default:
			b.special(seg&0xFF00, segmentCount(seg&0x00FF))
		}
	}
}

func segmentCount(n uint16) int {
	if n == 0 {
		return 1
	}
	return int(n)
}

func (b *pathBuilder) special(cmd uint16, n int) {
	for i := 0; i < n; i++ {
		switch cmd {
		case segAngleEllipseTo, segAngleEllipse:
			b.angleEllipse(cmd == segAngleEllipse)
		case segArcTo, segArc:
			b.arc(cmd == segArc, false)
		case segClockwiseArcTo, segClockwiseArc:
			b.arc(cmd == segClockwiseArc, true)
		case segEllipticalQuadrantX, segEllipticalQuadrantY:
			xFirst := cmd == segEllipticalQuadrantX
			if i%2 == 1 {
				xFirst = !xFirst
			}
			b.quadrant(xFirst)
		case segQuadraticBezier:
			q, ok1 := b.point()
			p, ok2 := b.point()
			if ok1 && ok2 {
				c1 := Point{X: b.cur.X + 2.0/3*(q.X-b.cur.X), Y: b.cur.Y + 2.0/3*(q.Y-b.cur.Y)}
				c2 := Point{X: p.X + 2.0/3*(q.X-p.X), Y: p.Y + 2.0/3*(q.Y-p.Y)}
				b.curveTo(c1, c2, p)
			}
		default:
			return
		}
	}
}

// ellipseAngle reads an angle vertex coordinate. Small values are plain
// degrees, larger ones 16.16 fixed-point degrees.
func ellipseAngle(v float64) float64 {
	if math.Abs(v) > 0xFFFF {
		return degToRad(v / 65536)
	}
	return degToRad(v)
}

func (b *pathBuilder) angleEllipse(move bool) {
	cx, cy, ok1 := b.raw()
	rx, ry, ok2 := b.raw()
	a1, a2, ok3 := b.raw()
	if !ok1 || !ok2 || !ok3 {
		return
	}
	center := Point{X: b.rect.X + cx*b.sx, Y: b.rect.Y + cy*b.sy}
	b.ellipticalArc(center, math.Abs(rx*b.sx), math.Abs(ry*b.sy), ellipseAngle(a1), ellipseAngle(a2), move)
}

func (b *pathBuilder) arc(move, clockwise bool) {
	p1, ok1 := b.point()
	p2, ok2 := b.point()
	ps, ok3 := b.point()
	pe, ok4 := b.point()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return
	}
	center := Point{X: (p1.X + p2.X) / 2, Y: (p1.Y + p2.Y) / 2}
	rx, ry := math.Abs(p2.X-p1.X)/2, math.Abs(p2.Y-p1.Y)/2
	start := pointAngle(center, rx, ry, ps)
	end := pointAngle(center, rx, ry, pe)
	if clockwise {
		for end <= start {
			end += 2 * math.Pi
		}
	} else {
		for end >= start {
			end -= 2 * math.Pi
		}
	}
	b.ellipticalArc(center, rx, ry, start, end, move)
}

func pointAngle(c Point, rx, ry float64, p Point) float64 {
	dx, dy := p.X-c.X, p.Y-c.Y
	if rx != 0 {
		dx /= rx
	}
	if ry != 0 {
		dy /= ry
	}
	return math.Atan2(dy, dx)
}

func (b *pathBuilder) quadrant(xFirst bool) {
	q, ok := b.point()
	if !ok {
		return
	}
	p := b.cur
	if !b.hasCur {
		b.moveTo(q)
		return
	}
	var center Point
	if xFirst {
		center = Point{X: p.X, Y: q.Y}
	} else {
		center = Point{X: q.X, Y: p.Y}
	}
	rx, ry := math.Abs(q.X-p.X), math.Abs(q.Y-p.Y)
	if rx == 0 || ry == 0 {
		b.lineTo(q)
		return
	}
	start := pointAngle(center, rx, ry, p)
	end := pointAngle(center, rx, ry, q)
	if end-start > math.Pi {
		end -= 2 * math.Pi
	} else if start-end > math.Pi {
		end += 2 * math.Pi
	}
	b.ellipticalArc(center, rx, ry, start, end, false)
}

// ellipticalArc draws from angle start to angle end around c. The sweep is
// always split into two half-angle arcs.
func (b *pathBuilder) ellipticalArc(c Point, rx, ry, start, end float64, move bool) {
	if end-start > 2*math.Pi {
		end = start + 2*math.Pi
	} else if start-end > 2*math.Pi {
		end = start - 2*math.Pi
	}
	at := func(a float64) Point {
		return Point{X: c.X + rx*math.Cos(a), Y: c.Y + ry*math.Sin(a)}
	}
	s := at(start)
	if move || !b.hasCur {
		b.moveTo(s)
	} else {
		b.lineTo(s)
	}
	if rx == 0 || ry == 0 {
		b.lineTo(at(end))
		return
	}
	sweep := end > start
	mid := (start + end) / 2
	for _, p := range []Point{at(mid), at(end)} {
		b.out.Elements = append(b.out.Elements, PathElement{
			Action: 'A', X: p.X, Y: p.Y, RX: rx, RY: ry, Sweep: sweep,
		})
	}
	b.cur = at(end)
}
