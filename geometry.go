package gopublisher

import "math"

// Coordinate is a shape's bounding box in EMU, relative to the page center.
type Coordinate struct {
	Xs, Ys, Xe, Ye int64
}

// NewCoordinate builds a normalized box: Xs <= Xe and Ys <= Ye.
func NewCoordinate(xs, ys, xe, ye int64) Coordinate {
	if xs > xe {
		xs, xe = xe, xs
	}
	if ys > ye {
		ys, ye = ye, ys
	}
	return Coordinate{Xs: xs, Ys: ys, Xe: xe, Ye: ye}
}

// Width returns the box width in EMU.
func (c Coordinate) Width() int64 { return c.Xe - c.Xs }

// Height returns the box height in EMU.
func (c Coordinate) Height() int64 { return c.Ye - c.Ys }

// Translate shifts the box by (dx, dy) EMU.
func (c Coordinate) Translate(dx, dy int64) Coordinate {
	return Coordinate{Xs: c.Xs + dx, Ys: c.Ys + dy, Xe: c.Xe + dx, Ye: c.Ye + dy}
}

// PageRect is a rectangle in inches measured from the page's top-left corner.
type PageRect struct {
	X, Y, Width, Height float64
}

// ToPage converts to page inches. pageWidth and pageHeight are in inches.
func (c Coordinate) ToPage(pageWidth, pageHeight float64) PageRect {
	return PageRect{
		X:      EMUToInch(c.Xs) + pageWidth/2,
		Y:      EMUToInch(c.Ys) + pageHeight/2,
		Width:  EMUToInch(c.Width()),
		Height: EMUToInch(c.Height()),
	}
}

// Center returns the middle of the rectangle.
func (r PageRect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Point is a position in page inches.
type Point struct {
	X, Y float64
}

// mapRect maps a point of the rectangle `from` onto the rectangle `to`.
// Used to place group children defined in a group's own coordinate space.
func mapRect(from, to Coordinate, x, y int64) (int64, int64) {
	fw, fh := float64(from.Width()), float64(from.Height())
	nx, ny := to.Xs, to.Ys
	if fw != 0 {
		nx = clampEMU(float64(nx) + math.Trunc(float64(x-from.Xs)*float64(to.Width())/fw))
	}
	if fh != 0 {
		ny = clampEMU(float64(ny) + math.Trunc(float64(y-from.Ys)*float64(to.Height())/fh))
	}
	return nx, ny
}
