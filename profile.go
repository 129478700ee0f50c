package gopublisher

import (
	"bytes"
	"fmt"
)

// Version is a format generation.
type Version int

const (
	VersionUnknown Version = iota
	// VersionNewest is the 2002 and later generation.
	VersionNewest
	// VersionIntermediate is the 2000 generation.
	VersionIntermediate
	// VersionOldest is the 97/98 generation.
	VersionOldest
)

func (v Version) String() string {
	switch v {
	case VersionNewest:
		return "2002+"
	case VersionIntermediate:
		return "2000"
	case VersionOldest:
		return "97"
	}
	return "unknown"
}

var (
	magicNewest = []byte{0xE8, 0xAC, 0x2C, 0x00}
	magicLegacy = []byte{0xE8, 0xAC, 0x22, 0x00}
)

const (
	legacyVersionOffset = 0x12
	oldestMaxVersion    = 0x0081
)

// Probe identifies the generation of the document in c.
func Probe(c Container) (Version, error) {
	contents, ok := c.Stream(streamContents)
	if !ok {
		return VersionUnknown, fmt.Errorf("no %s stream: %w", streamContents, ErrUnsupportedFormat)
	}
	if _, ok := c.Stream(streamQuill); !ok {
		return VersionUnknown, fmt.Errorf("no %s stream: %w", streamQuill, ErrUnsupportedFormat)
	}
	switch {
	case bytes.HasPrefix(contents, magicNewest):
		if _, ok := c.Stream(streamEscher); !ok {
			return VersionUnknown, fmt.Errorf("no %s stream: %w", streamEscher, ErrUnsupportedFormat)
		}
		return VersionNewest, nil
	case bytes.HasPrefix(contents, magicLegacy):
		v, err := newStream(contents).u16At(legacyVersionOffset)
		if err != nil {
			return VersionUnknown, fmt.Errorf("legacy header: %v: %w", err, ErrUnsupportedFormat)
		}
		if v <= oldestMaxVersion {
			return VersionOldest, nil
		}
		return VersionIntermediate, nil
	}
	return VersionUnknown, fmt.Errorf("unknown %s signature: %w", streamContents, ErrUnsupportedFormat)
}

// IsSupported reports whether c holds a document Parse can decode. It
// never panics.
func IsSupported(c Container) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	if c == nil {
		return false
	}
	_, err := Probe(c)
	return err == nil
}

// ChunkType is the generation-independent kind of a Contents chunk.
type ChunkType int

const (
	ChunkUnknown ChunkType = iota
	ChunkDocument
	ChunkPage
	ChunkShape
	ChunkAltShape
	ChunkTable
	ChunkLogo
	ChunkGroup
	ChunkBorderArt
	ChunkPalette
	ChunkFont
	ChunkImageData
	ChunkRectangle
	ChunkEllipse
	ChunkLine
	ChunkTextFrame
	ChunkImageFrame
	ChunkCustomShape
)

var chunkTypeNames = [...]string{
	"unknown", "document", "page", "shape", "altshape", "table", "logo", "group",
	"border-art", "palette", "font", "image-data", "rectangle", "ellipse", "line",
	"text-frame", "image-frame", "custom-shape",
}

func (t ChunkType) String() string {
	if t < 0 || int(t) >= len(chunkTypeNames) {
		return "unknown"
	}
	return chunkTypeNames[t]
}

// isShape reports whether chunks of this type carry a drawable shape.
func (t ChunkType) isShape() bool {
	switch t {
	case ChunkShape, ChunkAltShape, ChunkTable, ChunkLogo, ChunkRectangle, ChunkEllipse,
		ChunkLine, ChunkTextFrame, ChunkImageFrame, ChunkCustomShape:
		return true
	}
	return false
}

// shapeFieldOffsets locate the fields of a legacy shape chunk.
type shapeFieldOffsets struct {
	Flags, Rotation, Coordinates, ShapeType int64
	FillType, FillColor, FillBackColor      int64
	Lines, TextMarker, TextID, ImageIndex   int64
}

// documentFieldOffsets locate the fields of a legacy document chunk.
type documentFieldOffsets struct {
	Width, Height, LCID int64
}

// FormatProfile holds everything that differs between generations.
type FormatProfile struct {
	Version Version
	// TrailerOffsetPos is where the Contents header stores the trailer offset.
	TrailerOffsetPos int64
	// WideEntries selects the 14-byte legacy directory entry over the
	// 9-byte one.
	WideEntries bool
	// BackfillEnds derives chunk end offsets from the next chunk's offset.
	BackfillEnds bool
	ChunkTypes   map[uint16]ChunkType
	// LegacyShapeTypes maps fixed-geometry chunk types to shapes.
	LegacyShapeTypes map[ChunkType]ShapeType
	ShapeFields      shapeFieldOffsets
	DocumentFields   documentFieldOffsets
	TextMarker       uint16
	// CenterOrigin is set when coordinates are already relative to the page
	// center.
	CenterOrigin bool
	Palette      []Color
	// SingleByteText selects the code-page text stream over Quill.
	SingleByteText bool
}

var legacyShapeTypes = map[ChunkType]ShapeType{
	ChunkRectangle:  ShapeRectangle,
	ChunkEllipse:    ShapeEllipse,
	ChunkLine:       ShapeLine,
	ChunkTextFrame:  ShapeTextBox,
	ChunkImageFrame: ShapePictureFrame,
}

var profiles = map[Version]*FormatProfile{
	VersionNewest: {
		Version:          VersionNewest,
		TrailerOffsetPos: 0x1A,
		ChunkTypes: map[uint16]ChunkType{
			0x02: ChunkShape,
			0x20: ChunkAltShape,
			0x62: ChunkTable,
			0x79: ChunkLogo,
			0x47: ChunkGroup,
			0x43: ChunkPage,
			0x44: ChunkDocument,
			0x46: ChunkBorderArt,
			0x5C: ChunkPalette,
			0x6A: ChunkFont,
		},
		CenterOrigin: true,
	},
	VersionIntermediate: {
		Version:          VersionIntermediate,
		TrailerOffsetPos: 0x16,
		WideEntries:      true,
		BackfillEnds:     true,
		ChunkTypes: map[uint16]ChunkType{
			0x01: ChunkDocument,
			0x02: ChunkPage,
			0x03: ChunkRectangle,
			0x04: ChunkEllipse,
			0x05: ChunkLine,
			0x06: ChunkTextFrame,
			0x07: ChunkImageFrame,
			0x08: ChunkPalette,
			0x09: ChunkImageData,
			0x0A: ChunkGroup,
			0x0B: ChunkCustomShape,
		},
		LegacyShapeTypes: legacyShapeTypes,
		ShapeFields: shapeFieldOffsets{
			Flags: 0x00, Rotation: 0x02, Coordinates: 0x04, ShapeType: 0x14,
			FillType: 0x16, FillColor: 0x18, FillBackColor: 0x1C,
			Lines: 0x20, TextMarker: 0x38, TextID: 0x3A, ImageIndex: 0x3E,
		},
		DocumentFields: documentFieldOffsets{Width: 0x02, Height: 0x06, LCID: 0x0A},
		TextMarker:     0x0008,
		Palette:        legacyPalette,
	},
	VersionOldest: {
		Version:          VersionOldest,
		TrailerOffsetPos: 0x16,
		BackfillEnds:     true,
		ChunkTypes: map[uint16]ChunkType{
			0x10: ChunkDocument,
			0x11: ChunkPage,
			0x20: ChunkRectangle,
			0x21: ChunkEllipse,
			0x22: ChunkLine,
			0x23: ChunkTextFrame,
			0x24: ChunkImageFrame,
			0x25: ChunkCustomShape,
			0x30: ChunkPalette,
			0x31: ChunkImageData,
			0x40: ChunkGroup,
		},
		LegacyShapeTypes: legacyShapeTypes,
		ShapeFields: shapeFieldOffsets{
			Flags: 0x00, Rotation: 0x02, Coordinates: 0x04, ShapeType: 0x14,
			FillType: 0x1A, FillColor: 0x1C, FillBackColor: 0x20,
			Lines: 0x24, TextMarker: 0x3C, TextID: 0x3E, ImageIndex: 0x42,
		},
		DocumentFields: documentFieldOffsets{Width: 0x04, Height: 0x08, LCID: 0x0C},
		TextMarker:     0x0010,
		Palette:        legacyPalette,
		SingleByteText: true,
	},
}

// ProfileFor returns the format profile of v.
func ProfileFor(v Version) (*FormatProfile, error) {
	p, ok := profiles[v]
	if !ok {
		return nil, fmt.Errorf("version %s: %w", v, ErrUnsupportedFormat)
	}
	return p, nil
}

// chunkType maps a raw chunk type, ChunkUnknown when not listed.
func (p *FormatProfile) chunkType(raw uint16) ChunkType {
	return p.ChunkTypes[raw]
}
