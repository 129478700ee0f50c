package gopublisher

import "fmt"

// Color is an opaque RGB color.
type Color struct {
	R, G, B uint8
}

// Predefined colors.
var (
	ColorBlack = Color{}
	ColorWhite = Color{R: 0xFF, G: 0xFF, B: 0xFF}
)

// NewColorFromWord decodes a 0x00BBGGRR color word.
func NewColorFromWord(w uint32) Color {
	return Color{R: uint8(w), G: uint8(w >> 8), B: uint8(w >> 16)}
}

// Hex returns the "#rrggbb" form used in painter properties.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Color word kinds (the top byte of a 32-bit color word).
const (
	colorKindPaletteIndex    = 0x08
	colorKindChangeIntensity = 0x10
	intensityBaseWhite       = 0x01
	intensityBaseBlack       = 0x02
)

// ColorReference is a two-level color: a base word and a modifier word.
// Each word is a direct RGB value or a palette index; the modifier may
// instead shift the intensity of the base color towards black or white.
type ColorReference struct {
	Base     uint32
	Modified uint32
}

// NewColorReference builds a reference whose modifier equals its base.
func NewColorReference(w uint32) ColorReference {
	return ColorReference{Base: w, Modified: w}
}

// RGBReference builds a reference to a literal color.
func RGBReference(c Color) ColorReference {
	return NewColorReference(uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16)
}

// PaletteReference builds a reference to palette slot i.
func PaletteReference(i int) ColorReference {
	return NewColorReference(colorKindPaletteIndex<<24 | uint32(i)&0xFFFFFF)
}

func realColor(w uint32, palette []Color) Color {
	if w>>24 == colorKindPaletteIndex {
		i := int(w & 0xFFFFFF)
		if i < len(palette) {
			return palette[i]
		}
		return ColorBlack
	}
	return NewColorFromWord(w)
}

// GetFinalColor resolves the reference against palette. It is total: any
// pair of words and any palette, including an empty one, yield a color.
func (r ColorReference) GetFinalColor(palette []Color) Color {
	if r.Modified>>24 != colorKindChangeIntensity {
		return realColor(r.Modified, palette)
	}
	c := realColor(r.Base, palette)
	base := (r.Modified >> 8) & 0xFF
	intensity := float64((r.Modified>>16)&0xFF) / 0xFF
	switch base {
	case intensityBaseBlack:
		return Color{
			R: uint8(float64(c.R) * intensity),
			G: uint8(float64(c.G) * intensity),
			B: uint8(float64(c.B) * intensity),
		}
	case intensityBaseWhite:
		shift := func(v uint8) uint8 {
			return uint8(float64(v) + float64(0xFF-v)*(1-intensity))
		}
		return Color{R: shift(c.R), G: shift(c.G), B: shift(c.B)}
	}
	return c
}

// legacyPalette is the fixed palette the older generations index into when
// the document carries no palette of its own.
var legacyPalette = []Color{
	{0x00, 0x00, 0x00}, {0xFF, 0xFF, 0xFF}, {0xFF, 0x00, 0x00}, {0x00, 0xFF, 0x00},
	{0x00, 0x00, 0xFF}, {0xFF, 0xFF, 0x00}, {0x00, 0xFF, 0xFF}, {0xFF, 0x00, 0xFF},
	{0x80, 0x80, 0x80}, {0xC0, 0xC0, 0xC0}, {0x80, 0x00, 0x00}, {0x00, 0x80, 0x00},
	{0x00, 0x00, 0x80}, {0x80, 0x80, 0x00}, {0x00, 0x80, 0x80}, {0x80, 0x00, 0x80},
}

// Alignment is a paragraph's horizontal alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "end"
	case AlignJustify:
		return "justify"
	}
	return "start"
}

// CharacterStyle holds span formatting. Nil fields are inherited.
type CharacterStyle struct {
	Bold      *bool
	Italic    *bool
	Underline *bool
	Size      *float64 // points
	FontIndex *int
	Color     *ColorReference
	Language  *uint16
}

// ParagraphStyle holds paragraph formatting. Nil fields are inherited.
type ParagraphStyle struct {
	Alignment   *Alignment
	LineSpacing *float64 // percent
	SpaceBefore *int64   // EMU
	SpaceAfter  *int64
	IndentLeft  *int64
	IndentRight *int64
	IndentFirst *int64
}

// merge fills the unset fields of s from fallback.
func (s CharacterStyle) merge(fallback CharacterStyle) CharacterStyle {
	if s.Bold == nil {
		s.Bold = fallback.Bold
	}
	if s.Italic == nil {
		s.Italic = fallback.Italic
	}
	if s.Underline == nil {
		s.Underline = fallback.Underline
	}
	if s.Size == nil {
		s.Size = fallback.Size
	}
	if s.FontIndex == nil {
		s.FontIndex = fallback.FontIndex
	}
	if s.Color == nil {
		s.Color = fallback.Color
	}
	if s.Language == nil {
		s.Language = fallback.Language
	}
	return s
}

func (s ParagraphStyle) merge(fallback ParagraphStyle) ParagraphStyle {
	if s.Alignment == nil {
		s.Alignment = fallback.Alignment
	}
	if s.LineSpacing == nil {
		s.LineSpacing = fallback.LineSpacing
	}
	if s.SpaceBefore == nil {
		s.SpaceBefore = fallback.SpaceBefore
	}
	if s.SpaceAfter == nil {
		s.SpaceAfter = fallback.SpaceAfter
	}
	if s.IndentLeft == nil {
		s.IndentLeft = fallback.IndentLeft
	}
	if s.IndentRight == nil {
		s.IndentRight = fallback.IndentRight
	}
	if s.IndentFirst == nil {
		s.IndentFirst = fallback.IndentFirst
	}
	return s
}

func ptr[T any](v T) *T { return &v }
