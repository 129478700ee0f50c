package gopublisher

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestPropertyFormatting(t *testing.T) {
	props := NewPropertyList()
	props.InsertDouble("svg:x", 1.25, UnitInch)
	props.InsertDouble("fo:font-size", 12, UnitPoint)
	props.InsertDouble("draw:opacity", 0.5, UnitPercent)
	props.InsertInt("librevenge:num-pages", 3)
	props.InsertBool("draw:mirror-horizontal", true)
	props.Insert("draw:fill", "solid")

	assert.Equal(t, "1.25in", props.GetString("svg:x"))
	assert.Equal(t, "12pt", props.GetString("fo:font-size"))
	assert.Equal(t, "50%", props.GetString("draw:opacity"))
	assert.Equal(t, "3", props.GetString("librevenge:num-pages"))
	assert.Equal(t, "", props.GetString("missing"))
	assert.Equal(t,
		"draw:fill=solid draw:mirror-horizontal=true draw:opacity=50% fo:font-size=12pt librevenge:num-pages=3 svg:x=1.25in",
		props.String())

	var other PropertyList
	other.Merge(props)
	assert.Equal(t, props.Len(), other.Len())
}

func TestRawPainterTrace(t *testing.T) {
	var buf bytes.Buffer
	raw := NewRawPainter(&buf, false)
	require.NoError(t, Parse(intermediateRectangleDoc(), VersionIntermediate, raw, nil))
	require.NoError(t, raw.Err())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "startDocument("))
	assert.True(t, strings.HasPrefix(lines[1], "  startPage("))
	assert.Equal(t, "    setStyle(draw:fill=solid draw:fill-color=#ff0000 draw:stroke=none)", lines[2])
	assert.Equal(t, "    drawRectangle(svg:height=2in svg:width=1in svg:x=0in svg:y=0in)", lines[3])
	assert.Equal(t, "  endPage()", lines[4])
	assert.Equal(t, "endDocument()", lines[5])
}

func TestRawPainterGeometryAndBinary(t *testing.T) {
	var buf bytes.Buffer
	raw := NewRawPainter(&buf, true)
	poly := NewPropertyList()
	poly.SetPoints([]Point{{0, 0}, {1, 0.5}})
	raw.DrawPolygon(poly)
	obj := NewPropertyList()
	obj.Insert("librevenge:mime-type", "image/png")
	obj.SetBinary([]byte{0x89, 'P', 'N', 'G'})
	raw.DrawGraphicObject(obj)
	raw.InsertText("a \"b\"")

	out := buf.String()
	assert.Contains(t, out, "drawPolygon(svg:points=0,0 1,0.5)\n")
	assert.Contains(t, out, "drawGraphicObject(librevenge:mime-type=image/png, office:binary-data=<4 bytes>)\n")
	assert.Contains(t, out, `insertText("a \"b\"")`)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Greater(t, len(lines), 3, "binary payload is followed by a dump")
	assert.True(t, strings.HasPrefix(lines[2], "  "))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, assert.AnError }

func TestRawPainterKeepsFirstError(t *testing.T) {
	raw := NewRawPainter(failingWriter{}, false)
	raw.StartDocument(NewPropertyList())
	raw.EndDocument()
	assert.ErrorIs(t, raw.Err(), assert.AnError)
}

func TestSVGPainterRender(t *testing.T) {
	svg := NewSVGPainter(nil)
	require.NoError(t, Parse(intermediateRectangleDoc(), VersionIntermediate, svg, nil))
	assert.Equal(t, 1, svg.Pages())

	var buf bytes.Buffer
	require.NoError(t, svg.Render(&buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, "<!DOCTYPE html")
	assert.Contains(t, out, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="1in" height="2in" viewBox="0 0 72 144"`)
	assert.Contains(t, out, `<rect x="0" y="0" width="72" height="144"`)
	assert.Contains(t, out, `fill="#ff0000"`)
}

func TestSVGPainterText(t *testing.T) {
	rec := NewSVGPainter(nil)
	c := onePageCollector(rec)
	addSquare(c, 10, 1)
	c.SetShapeTextID(10, 0)
	c.AddTextBlock(0, TextBlock{{Spans: []TextSpan{{Text: "a<b"}}}})
	require.NoError(t, c.Go())

	var buf bytes.Buffer
	require.NoError(t, rec.Render(&buf))
	out := buf.String()
	assert.Contains(t, out, "<foreignObject")
	assert.Contains(t, out, "a&lt;b")
}

func TestSVGPainterRenderBeforeDocument(t *testing.T) {
	assert.Error(t, NewSVGPainter(nil).Render(&bytes.Buffer{}))
}

func TestSVGPainterImagePlaceholder(t *testing.T) {
	opts := DefaultSVGOptions()
	opts.EmbedImages = false
	svg := NewSVGPainter(opts)
	svg.StartDocument(NewPropertyList())
	page := NewPropertyList()
	page.InsertDouble("svg:width", 1, UnitInch)
	page.InsertDouble("svg:height", 1, UnitInch)
	svg.StartPage(page)
	obj := NewPropertyList()
	insertRect(&obj, PageRect{Width: 1, Height: 1})
	obj.Insert("librevenge:mime-type", "image/png")
	obj.SetBinary([]byte{1})
	svg.DrawGraphicObject(obj)
	svg.EndPage()
	svg.EndDocument()

	var buf bytes.Buffer
	require.NoError(t, svg.Render(&buf))
	assert.Contains(t, buf.String(), `stroke-dasharray="2 2"`)
	assert.NotContains(t, buf.String(), "<image")
}

// redDIB is a 1x1 24-bit bitmap without its file header.
func redDIB() []byte {
	var b byteBuilder
	b.u32(40).i32(1).i32(1).u16(1).u16(24).u32(0).u32(4).i32(0).i32(0).u32(0).u32(0)
	b.u8(0x00).u8(0x00).u8(0xFF).u8(0x00)
	return b.bytes()
}

func TestDIBFileHeader(t *testing.T) {
	dib := redDIB()
	file := dibFile(dib)
	require.Len(t, file, 14+len(dib))
	assert.Equal(t, "BM", string(file[:2]))
	assert.Equal(t, byte(54), file[10], "pixels follow both headers")

	img, err := bmp.Decode(bytes.NewReader(file))
	require.NoError(t, err)
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0xFFFF, 0, 0}, [3]uint32{r, g, b})
}

func TestSVGPainterConvertsBitmaps(t *testing.T) {
	svg := NewSVGPainter(nil)
	uri, ok := svg.imageURI("image/bmp", redDIB())
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	_, ok = svg.imageURI("image/x-pict", []byte{1, 2})
	assert.False(t, ok)
	_, ok = svg.imageURI("image/png", nil)
	assert.False(t, ok)
}

// emfRecordBytes builds one metafile record padded to size.
func emfRecordBytes(typ uint32, size int, fields ...uint32) []byte {
	var b byteBuilder
	b.u32(typ).u32(uint32(size))
	for _, f := range fields {
		b.u32(f)
	}
	b.padTo(size)
	return b.bytes()
}

// redSquareEMF draws a red 80x80 square with no outline on a 100x100
// device.
func redSquareEMF() []byte {
	var hdr byteBuilder
	hdr.u32(emrHeader).u32(88)
	hdr.i32(0).i32(0).i32(99).i32(99) // bounds
	hdr.i32(0).i32(0).i32(0).i32(0)   // frame
	hdr.raw(emfSignature[:])
	hdr.padTo(88)
	return concat(
		hdr.bytes(),
		emfRecordBytes(emrCreateBrushIndirect, 24, 1, 0, 0x000000FF, 0),
		emfRecordBytes(emrSelectObject, 12, 1),
		emfRecordBytes(emrSelectObject, 12, stockNullPen),
		emfRecordBytes(emrRectangle, 24, 10, 10, 90, 90),
		emfRecordBytes(emrEOF, 20, 0, 16, 20),
	)
}

func TestRasterizeEMF(t *testing.T) {
	img, err := rasterizeEMF(redSquareEMF(), 96)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, color.RGBA{0xFF, 0, 0, 0xFF}, color.RGBAModel.Convert(img.At(50, 50)))
	_, _, _, a := img.At(2, 2).RGBA()
	assert.Zero(t, a, "outside the square stays transparent")
}

func TestRasterizeEMFRejectsGarbage(t *testing.T) {
	_, err := rasterizeEMF([]byte("not a metafile at all"), 96)
	assert.Error(t, err)

	empty := concat(redSquareEMF()[:88], emfRecordBytes(emrEOF, 20, 0, 16, 20))
	_, err = rasterizeEMF(empty, 96)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
