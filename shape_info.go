package gopublisher

// Line is one outline stroke. A shape carries no lines, one outline for
// all sides, or four lines ordered left, top, right, bottom.
type Line struct {
	Color   ColorReference
	Width   uint32 // EMU
	Present bool
}

// Side indices into ShapeInfo.Lines when four lines are set.
const (
	SideLeft = iota
	SideTop
	SideRight
	SideBottom
)

// DashStyle is a predefined stroke pattern.
type DashStyle int

const (
	DashSolid DashStyle = iota
	DashDash
	DashDot
	DashDashDot
	DashDashDotDot
	DashLongDash
	DashLongDashDot
)

// Dash describes a non-solid stroke. Lengths are multiples of the line width.
type Dash struct {
	Style    DashStyle
	Dots     []float64
	DotStyle string // "rect" or "round"
}

// NewDash expands a dash style into its dot lengths.
func NewDash(style DashStyle) *Dash {
	d := &Dash{Style: style, DotStyle: "rect"}
	switch style {
	case DashDash:
		d.Dots = []float64{4, 3}
	case DashDot:
		d.Dots = []float64{1, 1}
		d.DotStyle = "round"
	case DashDashDot:
		d.Dots = []float64{4, 3, 1, 3}
	case DashDashDotDot:
		d.Dots = []float64{4, 3, 1, 3, 1, 3}
	case DashLongDash:
		d.Dots = []float64{8, 3}
	case DashLongDashDot:
		d.Dots = []float64{8, 3, 1, 3}
	}
	return d
}

// ArrowStyle is a line end decoration.
type ArrowStyle int

const (
	ArrowNone ArrowStyle = iota
	ArrowTriangle
	ArrowStealth
	ArrowDiamond
	ArrowOval
	ArrowOpen
)

var arrowNames = [...]string{"none", "triangle", "stealth", "diamond", "oval", "open"}

func (a ArrowStyle) String() string {
	if a < 0 || int(a) >= len(arrowNames) {
		return "none"
	}
	return arrowNames[a]
}

// Arrow is one line end. Width and Length are 0 (narrow/short), 1 or 2.
type Arrow struct {
	Style  ArrowStyle
	Width  int
	Length int
}

// Arrows holds both ends of a line.
type Arrows struct {
	Start Arrow
	End   Arrow
}

// Shadow is a drop shadow offset from the shape.
type Shadow struct {
	Color   ColorReference
	OffsetX int64 // EMU
	OffsetY int64
	Opacity float64
}

// Margins are text insets in EMU.
type Margins struct {
	Left, Top, Right, Bottom int64
}

// DefaultMargins are the insets of a text frame that declares none.
var DefaultMargins = Margins{Left: 91440, Top: 45720, Right: 91440, Bottom: 45720}

// VerticalAlign positions text inside its frame.
type VerticalAlign int

const (
	VAlignTop VerticalAlign = iota
	VAlignMiddle
	VAlignBottom
)

func (v VerticalAlign) String() string {
	switch v {
	case VAlignMiddle:
		return "middle"
	case VAlignBottom:
		return "bottom"
	}
	return "top"
}

// TableInfo is the grid of a table frame in EMU.
type TableInfo struct {
	ColumnWidths []uint32
	RowHeights   []uint32
}

// CustomPath is a free-form outline carried by the shape itself.
type CustomPath struct {
	Vertices []Vertex
	Segments []uint16
	Guides   []Calculation
	Width    uint32 // coordinate space, 0 = 21600
	Height   uint32
}

func (p *CustomPath) shape() *CustomShape {
	cs := &CustomShape{
		Vertices:     p.Vertices,
		Segments:     p.Segments,
		Calculations: p.Guides,
		CoordWidth:   p.Width,
		CoordHeight:  p.Height,
	}
	if cs.CoordWidth == 0 {
		cs.CoordWidth = catalogSize
	}
	if cs.CoordHeight == 0 {
		cs.CoordHeight = catalogSize
	}
	return cs
}

// ShapeInfo collects everything known about one shape, keyed by its
// sequence number. Pointer fields are nil until set.
type ShapeInfo struct {
	SeqNum         uint32
	Type           *ShapeType
	CropType       *ShapeType
	ImageIndex     *uint32
	BorderArtIndex *uint32
	Coordinates    *Coordinate
	Lines          []Line
	TextID         *uint32
	Adjust         map[int]int32
	Rotation       *float64 // degrees, counter-clockwise
	FlipH, FlipV   bool
	Margins        *Margins
	Fill           Fill
	Path           *CustomPath
	Dash           *Dash
	Shadow         *Shadow
	Arrows         *Arrows
	Table          *TableInfo
	ClipPath       []Vertex
	VAlign         VerticalAlign
	Columns        int
	ColumnSpacing  uint32
	PageSeqNum     *uint32
	IsBackground   bool
}

func newShapeInfo(seq uint32) *ShapeInfo {
	return &ShapeInfo{SeqNum: seq, Adjust: make(map[int]int32)}
}

// GeometryType returns the effective shape type: the explicit type, else
// the crop type, else rectangle.
func (s *ShapeInfo) GeometryType() ShapeType {
	switch {
	case s.Type != nil:
		return *s.Type
	case s.CropType != nil:
		return *s.CropType
	}
	return ShapeRectangle
}

// Geometry returns the template used to outline the shape. A custom path
// takes precedence over the catalog.
func (s *ShapeInfo) Geometry() *CustomShape {
	if s.Path != nil && len(s.Path.Vertices) > 0 {
		return s.Path.shape()
	}
	return geometryFor(s.GeometryType())
}

// HasStroke reports whether any outline is visible.
func (s *ShapeInfo) HasStroke() bool {
	for _, l := range s.Lines {
		if l.Present && l.Width > 0 {
			return true
		}
	}
	return false
}

// HasFill reports whether the interior is painted.
func (s *ShapeInfo) HasFill() bool { return s.Fill != nil }

// HasText reports whether a text block is attached.
func (s *ShapeInfo) HasText() bool { return s.TextID != nil }

// HasBorderArt reports whether a border art frame is attached.
func (s *ShapeInfo) HasBorderArt() bool { return s.BorderArtIndex != nil }

// perSide reports whether the four sides are stroked independently.
func (s *ShapeInfo) perSide() bool {
	if len(s.Lines) != 4 {
		return false
	}
	first := s.Lines[0]
	for _, l := range s.Lines[1:] {
		if l != first {
			return true
		}
	}
	return false
}

// TextMargins returns the insets, defaulting for frames that set none.
func (s *ShapeInfo) TextMargins() Margins {
	if s.Margins != nil {
		return *s.Margins
	}
	return DefaultMargins
}
