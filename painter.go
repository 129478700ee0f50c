package gopublisher

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Painter receives the drawing operations of a decoded document. Calls are
// strictly nested: every Start/Open is matched by its End/Close.
// Coordinates are inches from the top-left corner of the current page.
type Painter interface {
	StartDocument(props PropertyList)
	EndDocument()
	StartPage(props PropertyList)
	EndPage()
	StartLayer(props PropertyList)
	EndLayer()
	SetStyle(props PropertyList)
	DrawRectangle(props PropertyList)
	DrawEllipse(props PropertyList)
	DrawPolygon(props PropertyList)
	DrawPath(props PropertyList)
	DrawGraphicObject(props PropertyList)
	StartTextObject(props PropertyList)
	EndTextObject()
	OpenParagraph(props PropertyList)
	CloseParagraph()
	OpenSpan(props PropertyList)
	CloseSpan()
	InsertText(text string)
	InsertLineBreak()
}

// Unit qualifies a numeric property.
type Unit int

const (
	UnitGeneric Unit = iota
	UnitInch
	UnitPoint
	UnitPercent
)

// Property is one typed value of a PropertyList.
type Property struct {
	Num      float64
	Str      string
	Unit     Unit
	IsString bool
}

// String formats the value with its unit suffix, e.g. "1.5in" or "50%".
func (p Property) String() string {
	if p.IsString {
		return p.Str
	}
	n := formatNumber(p.Num)
	switch p.Unit {
	case UnitInch:
		return n + "in"
	case UnitPoint:
		return n + "pt"
	case UnitPercent:
		return formatNumber(p.Num*100) + "%"
	}
	return n
}

func formatNumber(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PropertyList is a flat, string-keyed property dictionary. Geometry and
// binary payloads travel in dedicated fields.
type PropertyList struct {
	props  map[string]Property
	path   []PathElement
	points []Point
	binary []byte
}

// NewPropertyList returns an empty list.
func NewPropertyList() PropertyList {
	return PropertyList{props: make(map[string]Property)}
}

func (l *PropertyList) ensure() {
	if l.props == nil {
		l.props = make(map[string]Property)
	}
}

// Insert sets a string property.
func (l *PropertyList) Insert(key, value string) {
	l.ensure()
	l.props[key] = Property{Str: value, IsString: true}
}

// InsertDouble sets a numeric property with a unit.
func (l *PropertyList) InsertDouble(key string, value float64, unit Unit) {
	l.ensure()
	l.props[key] = Property{Num: value, Unit: unit}
}

// InsertInt sets a unitless integer property.
func (l *PropertyList) InsertInt(key string, value int) {
	l.InsertDouble(key, float64(value), UnitGeneric)
}

// InsertBool sets a "true"/"false" property.
func (l *PropertyList) InsertBool(key string, value bool) {
	l.Insert(key, strconv.FormatBool(value))
}

// Get returns a property.
func (l PropertyList) Get(key string) (Property, bool) {
	p, ok := l.props[key]
	return p, ok
}

// GetString returns the formatted value of key or "".
func (l PropertyList) GetString(key string) string {
	if p, ok := l.props[key]; ok {
		return p.String()
	}
	return ""
}

// Has reports whether key is set.
func (l PropertyList) Has(key string) bool {
	_, ok := l.props[key]
	return ok
}

// Keys returns the property names in sorted order.
func (l PropertyList) Keys() []string {
	keys := make([]string, 0, len(l.props))
	for k := range l.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keyed properties.
func (l PropertyList) Len() int { return len(l.props) }

// Merge copies every property of o into l.
func (l *PropertyList) Merge(o PropertyList) {
	l.ensure()
	for k, v := range o.props {
		l.props[k] = v
	}
}

// SetPath attaches an outline ("svg:d").
func (l *PropertyList) SetPath(p []PathElement) { l.path = p }

// Path returns the attached outline.
func (l PropertyList) Path() []PathElement { return l.path }

// SetPoints attaches a point list ("svg:points").
func (l *PropertyList) SetPoints(p []Point) { l.points = p }

// Points returns the attached point list.
func (l PropertyList) Points() []Point { return l.points }

// SetBinary attaches binary data ("office:binary-data").
func (l *PropertyList) SetBinary(b []byte) { l.binary = b }

// Binary returns the attached binary data.
func (l PropertyList) Binary() []byte { return l.binary }

// String renders the keyed properties as "key=value" pairs.
func (l PropertyList) String() string {
	var parts []string
	for _, k := range l.Keys() {
		parts = append(parts, k+"="+l.props[k].String())
	}
	return strings.Join(parts, " ")
}

// PathElement is one command of an outline: 'M', 'L', 'C', 'A' or 'Z'.
type PathElement struct {
	Action   byte
	X, Y     float64
	X1, Y1   float64
	X2, Y2   float64
	RX, RY   float64
	Rotate   float64 // arc x-axis rotation in degrees
	LargeArc bool
	Sweep    bool
}

// transformed maps the element through t. t may rotate, mirror and
// translate but is not expected to scale.
func (e PathElement) transformed(t Transform) PathElement {
	e.X, e.Y = t.Apply(e.X, e.Y)
	switch e.Action {
	case 'C':
		e.X1, e.Y1 = t.Apply(e.X1, e.Y1)
		e.X2, e.Y2 = t.Apply(e.X2, e.Y2)
	case 'A':
		if t.Flips() {
			e.Rotate = -e.Rotate
			e.Sweep = !e.Sweep
		}
		e.Rotate -= radToDeg(t.Rotation())
	}
	return e
}

func transformPath(path []PathElement, t Transform) []PathElement {
	if t.IsIdentity() {
		return path
	}
	out := make([]PathElement, len(path))
	for i, e := range path {
		out[i] = e.transformed(t)
	}
	return out
}

// PathData renders elements in SVG path syntax.
func PathData(path []PathElement) string {
	var b strings.Builder
	for i, e := range path {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(e.Action)
		switch e.Action {
		case 'M', 'L':
			writeNumbers(&b, e.X, e.Y)
		case 'C':
			writeNumbers(&b, e.X1, e.Y1, e.X2, e.Y2, e.X, e.Y)
		case 'A':
			writeNumbers(&b, e.RX, e.RY, e.Rotate, boolNumber(e.LargeArc), boolNumber(e.Sweep), e.X, e.Y)
		}
	}
	return b.String()
}

func writeNumbers(b *strings.Builder, vals ...float64) {
	for _, v := range vals {
		b.WriteByte(' ')
		b.WriteString(formatNumber(v))
	}
}

func boolNumber(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
