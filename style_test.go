package gopublisher

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#ff8000", Color{R: 0xFF, G: 0x80}.Hex())
	assert.Equal(t, Color{R: 0x11, G: 0x22, B: 0x33}, NewColorFromWord(0x00332211))
}

func TestColorReferenceResolution(t *testing.T) {
	palette := []Color{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	assert.Equal(t, Color{7, 8, 9}, PaletteReference(2).GetFinalColor(palette))
	assert.Equal(t, ColorBlack, PaletteReference(3).GetFinalColor(palette), "out of range")
	assert.Equal(t, ColorBlack, PaletteReference(0).GetFinalColor(nil), "empty palette")
	assert.Equal(t, Color{R: 0x10, G: 0x20, B: 0x30}, RGBReference(Color{0x10, 0x20, 0x30}).GetFinalColor(nil))
}

func TestColorReferenceIntensity(t *testing.T) {
	base := uint32(0x0000C8) // red 200
	darker := ColorReference{Base: base, Modified: colorKindChangeIntensity<<24 | 0x80<<16 | intensityBaseBlack<<8}
	c := darker.GetFinalColor(nil)
	assert.InDelta(t, 100, int(c.R), 1)
	assert.Equal(t, uint8(0), c.G)

	lighter := ColorReference{Base: base, Modified: colorKindChangeIntensity<<24 | 0x00<<16 | intensityBaseWhite<<8}
	assert.Equal(t, ColorWhite, lighter.GetFinalColor(nil))

	unknownBase := ColorReference{Base: base, Modified: colorKindChangeIntensity<<24 | 0x40<<16 | 0x07<<8}
	assert.Equal(t, uint8(200), unknownBase.GetFinalColor(nil).R)
}

func TestColorReferenceIsTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	palettes := [][]Color{nil, {}, {{1, 1, 1}}, legacyPalette}
	for i := 0; i < 5000; i++ {
		ref := ColorReference{Base: rng.Uint32(), Modified: rng.Uint32()}
		if i%3 == 0 {
			ref.Modified = colorKindChangeIntensity<<24 | rng.Uint32()&0xFFFFFF
		}
		if i%5 == 0 {
			ref.Base = colorKindPaletteIndex<<24 | rng.Uint32()&0xFFFFFF
		}
		for _, p := range palettes {
			assert.NotPanics(t, func() { ref.GetFinalColor(p) })
		}
	}
}

func TestStyleMerge(t *testing.T) {
	s := CharacterStyle{Bold: ptr(true)}
	merged := s.merge(CharacterStyle{Bold: ptr(false), Size: ptr(12.0)})
	assert.True(t, *merged.Bold)
	assert.Equal(t, 12.0, *merged.Size)
	assert.Nil(t, merged.Italic)

	p := ParagraphStyle{}.merge(ParagraphStyle{Alignment: ptr(AlignCenter)})
	assert.Equal(t, AlignCenter, *p.Alignment)
	assert.Equal(t, "center", p.Alignment.String())
}
