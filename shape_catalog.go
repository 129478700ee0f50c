package gopublisher

// Vertex is one point of a shape template. A coordinate with bit 31 set
// (and no higher bits) refers to the result of formula (value & 0xFFFF)
// instead of being a literal.
type Vertex struct {
	X, Y int64
}

const vertexCalculated = 0x80000000

func calc(n int) int64 { return int64(vertexCalculated | uint32(n)) }

func isCalculated(v int64) bool { return v >= vertexCalculated && v <= 0xFFFFFFFF }

// Calculation is one entry of a shape's formula table.
type Calculation struct {
	Flags            uint16
	Arg1, Arg2, Arg3 int32
}

// TextRectangle is the area of a shape that hosts its text.
type TextRectangle struct {
	First, Second Vertex
}

// CustomShape is an immutable geometry template in a CoordWidth x CoordHeight
// coordinate space.
type CustomShape struct {
	Vertices      []Vertex
	Segments      []uint16
	Calculations  []Calculation
	DefaultAdjust []int32
	TextRects     []TextRectangle
	GluePoints    []Vertex
	CoordWidth    uint32
	CoordHeight   uint32
	// Open shapes are stroked but never filled.
	Open bool
}

// Formula operator and argument-flag bits.
const (
	opSum        = 0x00
	opProduct    = 0x01
	opMid        = 0x02
	opAbs        = 0x03
	opMin        = 0x04
	opMax        = 0x05
	opIf         = 0x06
	opMod        = 0x07
	opAtan2      = 0x08
	opSin        = 0x09
	opCos        = 0x0A
	opCosAtan2   = 0x0B
	opSinAtan2   = 0x0C
	opSqrt       = 0x0D
	opSumAngle   = 0x0E
	opEllipse    = 0x0F
	opTan        = 0x10
	opSqrtDiff   = 0x80
	opRotateX    = 0x81
	opRotateY    = 0x82
	flagSpecial1 = 0x2000
	flagSpecial2 = 0x4000
	flagSpecial3 = 0x8000
)

// Special argument codes.
const (
	specialGeoLeft   = 0x0140
	specialGeoTop    = 0x0141
	specialGeoRight  = 0x0142
	specialGeoBottom = 0x0143
	specialAdjust    = 0x0147
	specialAdjustMax = 0x0150
	specialFormula   = 0x0400
	specialAspect    = 0x0600
)

const catalogSize = 21600

func adjRef(i int) int32 { return int32(specialAdjust + i) }

func formulaRef(i int) int32 { return int32(specialFormula | i) }

// adjusted returns adjust value i.
func adjusted(i int) Calculation {
	return Calculation{Flags: flagSpecial1 | opSum, Arg1: adjRef(i)}
}

// complement returns total - adjust value i.
func complement(total int32, i int) Calculation {
	return Calculation{Flags: flagSpecial3 | opSum, Arg1: total, Arg3: adjRef(i)}
}

var rectangleShape = &CustomShape{
	Vertices:    []Vertex{{0, 0}, {catalogSize, 0}, {catalogSize, catalogSize}, {0, catalogSize}},
	GluePoints:  []Vertex{{10800, 0}, {0, 10800}, {10800, catalogSize}, {catalogSize, 10800}},
	TextRects:   []TextRectangle{{Vertex{0, 0}, Vertex{catalogSize, catalogSize}}},
	CoordWidth:  catalogSize,
	CoordHeight: catalogSize,
}

var customShapes = map[ShapeType]*CustomShape{
	ShapeRectangle:    rectangleShape,
	ShapeTextBox:      rectangleShape,
	ShapePictureFrame: rectangleShape,
	ShapeRoundRectangle: {
		Vertices: []Vertex{
			{calc(0), 0}, {calc(1), 0}, {catalogSize, calc(0)}, {catalogSize, calc(1)},
			{calc(1), catalogSize}, {calc(0), catalogSize}, {0, calc(1)}, {0, calc(0)}, {calc(0), 0},
		},
		Segments:      []uint16{0x4000, 0x0001, 0xA701, 0x0001, 0xA801, 0x0001, 0xA701, 0x0001, 0xA801, 0x6001, 0x8000},
		Calculations:  []Calculation{adjusted(0), complement(catalogSize, 0)},
		DefaultAdjust: []int32{3600},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeEllipse: {
		Vertices:    []Vertex{{10800, 10800}, {10800, 10800}, {0, 360}},
		Segments:    []uint16{0xA201, 0x6001, 0x8000},
		TextRects:   []TextRectangle{{Vertex{3163, 3163}, Vertex{18437, 18437}}},
		GluePoints:  []Vertex{{10800, 0}, {3163, 3163}, {0, 10800}, {3163, 18437}, {10800, catalogSize}, {18437, 18437}, {catalogSize, 10800}, {18437, 3163}},
		CoordWidth:  catalogSize,
		CoordHeight: catalogSize,
	},
	ShapeDiamond: {
		Vertices:    []Vertex{{10800, 0}, {catalogSize, 10800}, {10800, catalogSize}, {0, 10800}},
		TextRects:   []TextRectangle{{Vertex{5400, 5400}, Vertex{16200, 16200}}},
		CoordWidth:  catalogSize,
		CoordHeight: catalogSize,
	},
	ShapeIsoscelesTriangle: {
		Vertices:      []Vertex{{calc(0), 0}, {catalogSize, catalogSize}, {0, catalogSize}},
		Calculations:  []Calculation{adjusted(0)},
		DefaultAdjust: []int32{10800},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeRightTriangle: {
		Vertices:    []Vertex{{0, 0}, {catalogSize, catalogSize}, {0, catalogSize}},
		TextRects:   []TextRectangle{{Vertex{1900, 12700}, Vertex{12700, 19700}}},
		CoordWidth:  catalogSize,
		CoordHeight: catalogSize,
	},
	ShapeParallelogram: {
		Vertices:      []Vertex{{calc(0), 0}, {catalogSize, 0}, {calc(1), catalogSize}, {0, catalogSize}},
		Calculations:  []Calculation{adjusted(0), complement(catalogSize, 0)},
		DefaultAdjust: []int32{5400},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeTrapezoid: {
		Vertices:      []Vertex{{calc(0), 0}, {calc(1), 0}, {catalogSize, catalogSize}, {0, catalogSize}},
		Calculations:  []Calculation{adjusted(0), complement(catalogSize, 0)},
		DefaultAdjust: []int32{5400},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeHexagon: {
		Vertices: []Vertex{
			{calc(0), 0}, {calc(1), 0}, {catalogSize, 10800},
			{calc(1), catalogSize}, {calc(0), catalogSize}, {0, 10800},
		},
		Calculations:  []Calculation{adjusted(0), complement(catalogSize, 0)},
		DefaultAdjust: []int32{5400},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeOctagon: {
		Vertices: []Vertex{
			{calc(0), 0}, {calc(1), 0}, {catalogSize, calc(0)}, {catalogSize, calc(1)},
			{calc(1), catalogSize}, {calc(0), catalogSize}, {0, calc(1)}, {0, calc(0)},
		},
		Calculations:  []Calculation{adjusted(0), complement(catalogSize, 0)},
		DefaultAdjust: []int32{6326},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapePlus: {
		Vertices: []Vertex{
			{calc(0), 0}, {calc(1), 0}, {calc(1), calc(0)}, {catalogSize, calc(0)},
			{catalogSize, calc(1)}, {calc(1), calc(1)}, {calc(1), catalogSize}, {calc(0), catalogSize},
			{calc(0), calc(1)}, {0, calc(1)}, {0, calc(0)}, {calc(0), calc(0)},
		},
		Calculations:  []Calculation{adjusted(0), complement(catalogSize, 0)},
		DefaultAdjust: []int32{5400},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeStar: {
		Vertices: []Vertex{
			{10797, 0}, {8278, 8256}, {0, 8256}, {6722, 13405}, {4198, catalogSize},
			{10797, 16580}, {17401, catalogSize}, {14878, 13405}, {catalogSize, 8256}, {13321, 8256},
		},
		CoordWidth:  catalogSize,
		CoordHeight: catalogSize,
	},
	ShapeRightArrow: {
		Vertices: []Vertex{
			{0, calc(1)}, {calc(0), calc(1)}, {calc(0), 0}, {catalogSize, 10800},
			{calc(0), catalogSize}, {calc(0), calc(2)}, {0, calc(2)},
		},
		Calculations:  []Calculation{adjusted(0), adjusted(1), complement(catalogSize, 1)},
		DefaultAdjust: []int32{16200, 5400},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeLeftArrow: {
		Vertices: []Vertex{
			{catalogSize, calc(1)}, {calc(0), calc(1)}, {calc(0), 0}, {0, 10800},
			{calc(0), catalogSize}, {calc(0), calc(2)}, {catalogSize, calc(2)},
		},
		Calculations:  []Calculation{adjusted(0), adjusted(1), complement(catalogSize, 1)},
		DefaultAdjust: []int32{5400, 5400},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeUpArrow: {
		Vertices: []Vertex{
			{calc(1), catalogSize}, {calc(1), calc(0)}, {0, calc(0)}, {10800, 0},
			{catalogSize, calc(0)}, {calc(2), calc(0)}, {calc(2), catalogSize},
		},
		Calculations:  []Calculation{adjusted(0), adjusted(1), complement(catalogSize, 1)},
		DefaultAdjust: []int32{5400, 5400},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeDownArrow: {
		Vertices: []Vertex{
			{calc(1), 0}, {calc(1), calc(0)}, {0, calc(0)}, {10800, catalogSize},
			{catalogSize, calc(0)}, {calc(2), calc(0)}, {calc(2), 0},
		},
		Calculations:  []Calculation{adjusted(0), adjusted(1), complement(catalogSize, 1)},
		DefaultAdjust: []int32{16200, 5400},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeLeftRightArrow: {
		Vertices: []Vertex{
			{0, 10800}, {calc(0), 0}, {calc(0), calc(1)}, {calc(3), calc(1)}, {calc(3), 0},
			{catalogSize, 10800}, {calc(3), catalogSize}, {calc(3), calc(2)}, {calc(0), calc(2)}, {calc(0), catalogSize},
		},
		Calculations:  []Calculation{adjusted(0), adjusted(1), complement(catalogSize, 1), complement(catalogSize, 0)},
		DefaultAdjust: []int32{4320, 5400},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeHomePlate: {
		Vertices:      []Vertex{{0, 0}, {calc(0), 0}, {catalogSize, 10800}, {calc(0), catalogSize}, {0, catalogSize}},
		Calculations:  []Calculation{adjusted(0)},
		DefaultAdjust: []int32{16200},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeChevron: {
		Vertices: []Vertex{
			{0, 0}, {calc(0), 0}, {catalogSize, 10800}, {calc(0), catalogSize}, {0, catalogSize}, {calc(1), 10800},
		},
		Calculations:  []Calculation{adjusted(0), complement(catalogSize, 0)},
		DefaultAdjust: []int32{16200},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapePentagon: {
		Vertices:    []Vertex{{10800, 0}, {catalogSize, 8260}, {17370, catalogSize}, {4230, catalogSize}, {0, 8260}},
		CoordWidth:  catalogSize,
		CoordHeight: catalogSize,
	},
	ShapeLine: {
		Vertices:    []Vertex{{0, 0}, {catalogSize, catalogSize}},
		Segments:    []uint16{0x4000, 0x0001, 0x8000},
		CoordWidth:  catalogSize,
		CoordHeight: catalogSize,
		Open:        true,
	},
	ShapeCan: {
		Vertices: []Vertex{
			{0, calc(0)}, {0, calc(1)},
			{10800, calc(1)}, {10800, calc(0)}, {180, 0},
			{catalogSize, calc(0)},
			{10800, calc(0)}, {10800, calc(0)}, {0, -180},
			{10800, calc(0)}, {10800, calc(0)}, {0, 360},
		},
		Segments: []uint16{0x4000, 0x0001, 0xA101, 0x0001, 0xA101, 0x6001, 0x8000, 0xA201, 0x6001, 0x8000},
		Calculations: []Calculation{
			{Flags: flagSpecial1 | opProduct, Arg1: adjRef(0), Arg2: 1, Arg3: 2},
			{Flags: flagSpecial3 | opSum, Arg1: catalogSize, Arg3: formulaRef(0)},
		},
		DefaultAdjust: []int32{5400},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeCube: {
		Vertices: []Vertex{
			{0, calc(0)}, {calc(1), calc(0)}, {calc(1), catalogSize}, {0, catalogSize},
			{0, calc(0)}, {calc(0), 0}, {catalogSize, 0}, {calc(1), calc(0)},
			{calc(1), calc(0)}, {catalogSize, 0}, {catalogSize, calc(1)}, {calc(1), catalogSize},
		},
		Segments: []uint16{
			0x4000, 0x0003, 0x6001, 0x8000,
			0x4000, 0x0003, 0x6001, 0x8000,
			0x4000, 0x0003, 0x6001, 0x8000,
		},
		Calculations:  []Calculation{adjusted(0), complement(catalogSize, 0)},
		DefaultAdjust: []int32{5400},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeDonut: {
		Vertices: []Vertex{
			{10800, 10800}, {10800, 10800}, {0, 360},
			{10800, 10800}, {calc(0), calc(0)}, {0, 360},
		},
		Segments:      []uint16{0xA201, 0x6001, 0x8000, 0xA201, 0x6001, 0x8000},
		Calculations:  []Calculation{complement(10800, 0)},
		DefaultAdjust: []int32{5400},
		CoordWidth:    catalogSize,
		CoordHeight:   catalogSize,
	},
	ShapeLightningBolt: {
		Vertices: []Vertex{
			{8458, 0}, {0, 3923}, {7564, 8416}, {4993, 9720}, {12197, 13904}, {9987, 14934},
			{catalogSize, catalogSize}, {14768, 12911}, {16558, 12016}, {11030, 6840}, {12831, 6120},
		},
		CoordWidth:  catalogSize,
		CoordHeight: catalogSize,
	},
	ShapeHeart: {
		Vertices: []Vertex{
			{10800, catalogSize},
			{5400, 16200}, {0, 10800}, {0, 5400},
			{0, 1800}, {3600, 0}, {5400, 0},
			{7200, 0}, {10800, 1800}, {10800, 5400},
			{10800, 1800}, {14400, 0}, {16200, 0},
			{18000, 0}, {catalogSize, 1800}, {catalogSize, 5400},
			{catalogSize, 10800}, {16200, 16200}, {10800, catalogSize},
		},
		Segments:    []uint16{0x4000, 0x2006, 0x6001, 0x8000},
		CoordWidth:  catalogSize,
		CoordHeight: catalogSize,
	},
}

// LookupCustomShape returns the template for t, if the catalog has one.
func LookupCustomShape(t ShapeType) (*CustomShape, bool) {
	cs, ok := customShapes[t]
	return cs, ok
}

// geometryFor returns the template used to draw t; unknown types draw as rectangles.
func geometryFor(t ShapeType) *CustomShape {
	if cs, ok := customShapes[t]; ok {
		return cs
	}
	return rectangleShape
}
