package gopublisher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	oneInch  = 914400
	twoInch  = 2 * oneInch
	redIndex = 0x08000002 // slot 2 of the built-in legacy palette
)

// intermediateRectangleDoc is a 1x2in page holding one red rectangle that
// covers it.
func intermediateRectangleDoc() MemoryContainer {
	doc := (&byteBuilder{}).padTo(2).u32(oneInch).u32(twoInch).u16(0).padTo(0x10).bytes()
	rect := legacyShapeBody(0, 0, oneInch, twoInch, func(b *byteBuilder) {
		b.putU16(0x16, legacyFillSolid)
		b.putU32(0x18, redIndex)
	})
	return MemoryContainer{
		streamContents: legacyContents(0x0100, true,
			legacyChunk{typ: 0x01, seq: 1, body: doc},
			legacyChunk{typ: 0x02, seq: 2, body: legacyPageBody(pageKindNormal, 0)},
			legacyChunk{typ: 0x03, seq: 3, parent: 2, body: rect},
		),
		streamQuill: emptyQuill(),
	}
}

func TestIntermediateRoundTrip(t *testing.T) {
	c := intermediateRectangleDoc()
	v, err := Probe(c)
	require.NoError(t, err)
	require.Equal(t, VersionIntermediate, v)

	rec := &recordingPainter{}
	require.NoError(t, Parse(c, v, rec, nil))
	assert.Equal(t, []string{
		"startDocument", "startPage", "setStyle", "drawRectangle", "endPage", "endDocument",
	}, rec.names())

	assert.Equal(t, "1", rec.calls[0].props.GetString("librevenge:num-pages"))
	page := rec.calls[1].props
	assert.Equal(t, "1in", page.GetString("svg:width"))
	assert.Equal(t, "2in", page.GetString("svg:height"))

	style := rec.calls[2].props
	assert.Equal(t, "solid", style.GetString("draw:fill"))
	assert.Equal(t, "#ff0000", style.GetString("draw:fill-color"))
	assert.Equal(t, "none", style.GetString("draw:stroke"))

	rect := rec.calls[3].props
	assert.Equal(t, "0in", rect.GetString("svg:x"))
	assert.Equal(t, "0in", rect.GetString("svg:y"))
	assert.Equal(t, "1in", rect.GetString("svg:width"))
	assert.Equal(t, "2in", rect.GetString("svg:height"))
}

func TestDecodeThenPaint(t *testing.T) {
	col, err := Decode(intermediateRectangleDoc(), VersionIntermediate, nil)
	require.NoError(t, err)
	require.NoError(t, col.Validate())

	w, h := col.Size()
	assert.Equal(t, 1.0, w)
	assert.Equal(t, 2.0, h)
	s, ok := col.Shape(3)
	require.True(t, ok)
	assert.Equal(t, ShapeRectangle, s.GeometryType())
	require.NotNil(t, s.PageSeqNum)
	assert.Equal(t, uint32(2), *s.PageSeqNum)

	rec := &recordingPainter{}
	require.NoError(t, col.Paint(rec))
	assert.Len(t, rec.find("drawRectangle"), 1)
}

func TestBackfillEnds(t *testing.T) {
	refs := []ChunkReference{{Offset: 0x20}, {Offset: 0x30}, {Offset: 0x48}}
	backfillEnds(refs, 0x90)
	assert.Equal(t, uint32(0x30), refs[0].End)
	assert.Equal(t, uint32(0x48), refs[1].End)
	assert.Equal(t, uint32(0x90), refs[2].End)
}

func TestMissingDocumentChunk(t *testing.T) {
	c := MemoryContainer{
		streamContents: legacyContents(0x0100, true,
			legacyChunk{typ: 0x02, seq: 2, body: legacyPageBody(pageKindNormal, 0)},
		),
	}
	err := Parse(c, VersionIntermediate, &recordingPainter{}, nil)
	assert.True(t, errors.Is(err, ErrMissingMandatoryChunk))
}

func TestEmptyPageSizeFallsBackToLetter(t *testing.T) {
	c := MemoryContainer{
		streamContents: legacyContents(0x0100, true,
			legacyChunk{typ: 0x01, seq: 1, body: make([]byte, 0x10)},
		),
	}
	col, err := Decode(c, VersionIntermediate, nil)
	require.NoError(t, err)
	w, h := col.Size()
	assert.Equal(t, 8.5, w)
	assert.Equal(t, 11.0, h)
}

func TestGroupCycleAttachesAtTopLevel(t *testing.T) {
	doc := (&byteBuilder{}).padTo(2).u32(oneInch).u32(oneInch).padTo(0x10).bytes()
	c := MemoryContainer{
		streamContents: legacyContents(0x0100, true,
			legacyChunk{typ: 0x01, seq: 1, body: doc},
			legacyChunk{typ: 0x0A, seq: 3, parent: 4},
			legacyChunk{typ: 0x0A, seq: 4, parent: 3},
		),
	}
	col, err := Decode(c, VersionIntermediate, nil)
	require.NoError(t, err)
	tree := col.Tree()
	assert.Equal(t, 2, tree.Len())
	assert.Len(t, tree.Roots(), 2)
}

func TestLegacyGroupChildren(t *testing.T) {
	doc := (&byteBuilder{}).padTo(2).u32(oneInch).u32(oneInch).padTo(0x10).bytes()
	group := legacyShapeBody(0, 0, oneInch, oneInch, nil)
	child := legacyShapeBody(0, 0, oneInch/2, oneInch/2, nil)
	// the child precedes its group in the directory
	c := MemoryContainer{
		streamContents: legacyContents(0x0100, true,
			legacyChunk{typ: 0x01, seq: 1, body: doc},
			legacyChunk{typ: 0x02, seq: 2, body: legacyPageBody(pageKindNormal, 0)},
			legacyChunk{typ: 0x04, seq: 6, parent: 5, body: child},
			legacyChunk{typ: 0x0A, seq: 5, parent: 2, body: group},
		),
	}
	col, err := Decode(c, VersionIntermediate, nil)
	require.NoError(t, err)
	tree := col.Tree()
	require.Len(t, tree.Roots(), 1)
	root := tree.Node(tree.Roots()[0])
	assert.True(t, root.IsGroup)
	require.Len(t, root.Children, 1)
	kid := tree.Node(root.Children[0])
	require.NotNil(t, kid.SeqNum)
	assert.Equal(t, uint32(6), *kid.SeqNum)

	s, ok := col.Shape(6)
	require.True(t, ok)
	require.NotNil(t, s.PageSeqNum, "page found through the group")
	assert.Equal(t, uint32(2), *s.PageSeqNum)
	assert.Equal(t, ShapeEllipse, s.GeometryType())
}

func TestPageKinds(t *testing.T) {
	doc := (&byteBuilder{}).padTo(2).u32(oneInch).u32(oneInch).padTo(0x10).bytes()
	c := MemoryContainer{
		streamContents: legacyContents(0x0100, true,
			legacyChunk{typ: 0x01, seq: 1, body: doc},
			legacyChunk{typ: 0x02, seq: 2, body: legacyPageBody(pageKindNormal, 3)},
			legacyChunk{typ: 0x02, seq: 3, body: legacyPageBody(pageKindMaster, 0)},
			legacyChunk{typ: 0x02, seq: 4, body: legacyPageBody(pageKindDummy, 0)},
			legacyChunk{typ: 0x02, seq: 0x107, body: legacyPageBody(0, 0)},
			legacyChunk{typ: 0x02, seq: 8, body: legacyPageBody(0, 0)},
		),
	}
	col, err := Decode(c, VersionIntermediate, nil)
	require.NoError(t, err)
	want := map[uint32]PageKind{2: PageNormal, 3: PageMaster, 4: PageDummy, 0x107: PageMaster, 8: PageNormal}
	for seq, kind := range want {
		pg, ok := col.Page(seq)
		require.True(t, ok, "page %#x", seq)
		assert.Equal(t, kind, pg.Kind, "page %#x", seq)
	}
	pg, _ := col.Page(2)
	require.NotNil(t, pg.MasterSeqNum)
	assert.Equal(t, uint32(3), *pg.MasterSeqNum)
	assert.NoError(t, col.Validate())
}

func TestOldestTextFrame(t *testing.T) {
	doc := (&byteBuilder{}).padTo(4).u32(oneInch).u32(oneInch).padTo(0x10).bytes()
	frame := legacyShapeBody(0, 0, oneInch, oneInch, func(b *byteBuilder) {
		b.putU16(0x3C, 0x0010)
		b.putU32(0x3E, 0)
	})
	chars := []byte("AB\r\nCD\f")
	text := (&byteBuilder{}).u32(text97HeaderLength).u32(uint32(len(chars))).u32(0).u32(0).raw(chars).bytes()
	c := MemoryContainer{
		streamContents: legacyContents(0x0081, false,
			legacyChunk{typ: 0x10, seq: 1, body: doc},
			legacyChunk{typ: 0x11, seq: 2, body: legacyPageBody(pageKindNormal, 0)},
			legacyChunk{typ: 0x23, seq: 3, parent: 2, body: frame},
		),
		streamQuill: text,
	}
	v, err := Probe(c)
	require.NoError(t, err)
	require.Equal(t, VersionOldest, v)

	rec := &recordingPainter{}
	require.NoError(t, Parse(c, v, rec, nil))
	assert.Equal(t, []string{
		"startDocument", "startPage",
		"startTextObject",
		"openParagraph", "openSpan", "insertText", "closeSpan", "closeParagraph",
		"openParagraph", "openSpan", "insertText", "closeSpan", "closeParagraph",
		"endTextObject",
		"endPage", "endDocument",
	}, rec.names())
	texts := rec.find("insertText")
	assert.Equal(t, "AB", texts[0].text)
	assert.Equal(t, "CD", texts[1].text)
}

func TestText97Blocks(t *testing.T) {
	chars := []byte("one\fsec\x0bond\r\nthird\f")
	data := (&byteBuilder{}).u32(text97HeaderLength).u32(uint32(len(chars))).u32(0).u32(0).raw(chars).bytes()
	p, err := newParser(MemoryContainer{streamContents: nil}, VersionOldest, nil, nil)
	require.NoError(t, err)
	require.NoError(t, p.parseText97(data))

	b0, ok := p.c.TextBlock(0)
	require.True(t, ok)
	assert.Equal(t, "one", b0.PlainText())
	b1, ok := p.c.TextBlock(1)
	require.True(t, ok)
	assert.Equal(t, "sec\nond\nthird", b1.PlainText())
	require.Len(t, b1, 2)
	_, ok = p.c.TextBlock(2)
	assert.False(t, ok)
}

func TestText97EmptyBlockKeepsItsIndex(t *testing.T) {
	chars := []byte("one\f\ftwo\f")
	data := (&byteBuilder{}).u32(text97HeaderLength).u32(uint32(len(chars))).u32(0).u32(0).raw(chars).bytes()
	p, err := newParser(MemoryContainer{streamContents: nil}, VersionOldest, nil, nil)
	require.NoError(t, err)
	require.NoError(t, p.parseText97(data))

	b0, ok := p.c.TextBlock(0)
	require.True(t, ok)
	assert.Equal(t, "one", b0.PlainText())
	b1, ok := p.c.TextBlock(1)
	require.True(t, ok)
	assert.Empty(t, b1)
	b2, ok := p.c.TextBlock(2)
	require.True(t, ok)
	assert.Equal(t, "two", b2.PlainText())
	_, ok = p.c.TextBlock(3)
	assert.False(t, ok, "the trailing form feed opens no block")
}

func TestText97Runs(t *testing.T) {
	chars := []byte("boldplain")
	var b byteBuilder
	b.u32(0).u32(uint32(len(chars))).u32(0).u32(0)
	charOff := b.len()
	b.raw(chars)
	charRuns := b.len()
	b.u16(2)
	b.u32(4).u8(text97Bold).u8(0).u16(24).u16(0).u32(0)
	b.u32(9).u8(0).u8(0).u16(20).u16(0).u32(0)
	paraRuns := b.len()
	b.u16(1).u32(9).u16(uint16(AlignRight))
	b.putU32(0, uint32(charOff))
	b.putU32(8, uint32(charRuns))
	b.putU32(12, uint32(paraRuns))

	p, err := newParser(MemoryContainer{streamContents: nil}, VersionOldest, nil, nil)
	require.NoError(t, err)
	require.NoError(t, p.parseText97(b.bytes()))
	block, ok := p.c.TextBlock(0)
	require.True(t, ok)
	require.Len(t, block, 1)
	para := block[0]
	require.Len(t, para.Spans, 2)
	assert.Equal(t, "bold", para.Spans[0].Text)
	assert.True(t, *para.Spans[0].Style.Bold)
	assert.Equal(t, 12.0, *para.Spans[0].Style.Size)
	assert.Equal(t, "plain", para.Spans[1].Text)
	assert.False(t, *para.Spans[1].Style.Bold)
	require.NotNil(t, para.Style.Alignment)
	assert.Equal(t, AlignRight, *para.Style.Alignment)
}

func TestText97ShortHeader(t *testing.T) {
	p, err := newParser(MemoryContainer{streamContents: nil}, VersionOldest, nil, nil)
	require.NoError(t, err)
	assert.True(t, errors.Is(p.parseText97([]byte{1, 2, 3}), ErrEndOfStream))
}

func TestQuillTextBlocks(t *testing.T) {
	units := utf16Bytes("Hi\r\nThereSecond")
	ends := (&byteBuilder{}).u32(2).u32(9).u32(15).bytes()
	data := quillStream(
		quillEntry{name: quillText, data: units},
		quillEntry{name: quillBlockEnds, data: ends},
	)
	p, err := newParser(MemoryContainer{streamContents: nil}, VersionIntermediate, nil, nil)
	require.NoError(t, err)
	require.NoError(t, p.parseQuill(data))

	b0, ok := p.c.TextBlock(0)
	require.True(t, ok)
	assert.Equal(t, "Hi\nThere", b0.PlainText())
	require.Len(t, b0, 2)
	b1, ok := p.c.TextBlock(1)
	require.True(t, ok)
	assert.Equal(t, "Second", b1.PlainText())
}

func TestQuillWithoutTextSection(t *testing.T) {
	p, err := newParser(MemoryContainer{streamContents: nil}, VersionIntermediate, nil, nil)
	require.NoError(t, err)
	require.NoError(t, p.parseQuill(emptyQuill()))
	_, ok := p.c.TextBlock(0)
	assert.False(t, ok)
}

func TestQuillSectionOutOfRange(t *testing.T) {
	data := quillStream(quillEntry{name: quillText, data: utf16Bytes("x")})
	data = data[:len(data)-1]
	p, err := newParser(MemoryContainer{streamContents: nil}, VersionIntermediate, nil, nil)
	require.NoError(t, err)
	assert.True(t, errors.Is(p.parseQuill(data), ErrEndOfStream))
}

// newestRectangleDoc is a 1in square page with one red rectangle described
// in the drawing stream.
func newestRectangleDoc() MemoryContainer {
	contents := newestContents(
		newestChunk{typ: 0x44, seq: 1, blocks: concat(
			containerBlock(docSizeContainer, u32Block(docWidth, oneInch), u32Block(docHeight, oneInch)),
		)},
		newestChunk{typ: 0x43, seq: 2, blocks: concat(
			u32Container(pageShapeList, 7),
			u32Block(pageKind, pageKindNormal),
		)},
		newestChunk{typ: 0x02, seq: 7},
	)
	drawing := escherContainer(escherDgContainer,
		escherContainer(escherSpgrContainer,
			escherContainer(escherSpContainer,
				escherRec(1, 0, escherFSPGR, make([]byte, 16)),
				fspRec(0, 1024, 0x5),
			),
			escherContainer(escherSpContainer,
				fspRec(ShapeRectangle, 1025, 0),
				foptRecord(foptProp{id: propFillColor, value: 0x0000FF}),
				anchorRec(escherClientAnchor, -oneInch/2, -oneInch/2, oneInch/2, oneInch/2),
				clientDataRec(7),
			),
		),
	)
	return MemoryContainer{
		streamContents: contents,
		streamQuill:    emptyQuill(),
		streamEscher:   drawing,
	}
}

func TestNewestRoundTrip(t *testing.T) {
	c := newestRectangleDoc()
	v, err := Probe(c)
	require.NoError(t, err)
	require.Equal(t, VersionNewest, v)

	rec := &recordingPainter{}
	require.NoError(t, Parse(c, v, rec, nil))
	assert.Equal(t, []string{
		"startDocument", "startPage", "setStyle", "drawRectangle", "endPage", "endDocument",
	}, rec.names())
	assert.Equal(t, "#ff0000", rec.calls[2].props.GetString("draw:fill-color"))
	rect := rec.calls[3].props
	assert.Equal(t, "0in", rect.GetString("svg:x"))
	assert.Equal(t, "0in", rect.GetString("svg:y"))
	assert.Equal(t, "1in", rect.GetString("svg:width"))
	assert.Equal(t, "1in", rect.GetString("svg:height"))
}

func TestNewestNestedGroupMapsChildSpace(t *testing.T) {
	c := newestRectangleDoc()
	c[streamEscher] = escherContainer(escherDgContainer,
		escherContainer(escherSpgrContainer,
			escherContainer(escherSpContainer, fspRec(0, 1024, 0x5)),
			escherContainer(escherSpgrContainer,
				escherContainer(escherSpContainer,
					escherRec(1, 0, escherFSPGR, (&byteBuilder{}).i32(0).i32(0).i32(100).i32(100).bytes()),
					fspRec(0, 1026, 0x201),
					anchorRec(escherClientAnchor, -oneInch/2, -oneInch/2, 0, 0),
					clientDataRec(9),
				),
				escherContainer(escherSpContainer,
					fspRec(ShapeRectangle, 1025, 0),
					foptRecord(foptProp{id: propFillColor, value: 0x0000FF}),
					anchorRec(escherChildAnchor, 50, 50, 100, 100),
					clientDataRec(7),
				),
			),
		),
	)
	col, err := Decode(c, VersionNewest, nil)
	require.NoError(t, err)

	s, ok := col.Shape(7)
	require.True(t, ok)
	require.NotNil(t, s.Coordinates)
	assert.Equal(t, NewCoordinate(-oneInch/4, -oneInch/4, 0, 0), *s.Coordinates)

	tree := col.Tree()
	group, ok := tree.Lookup(9)
	require.True(t, ok)
	assert.True(t, tree.Node(group).IsGroup)
	shape, ok := tree.Lookup(7)
	require.True(t, ok)
	assert.Equal(t, group, tree.Node(shape).Parent)
}

func TestNewestMissingDrawingStream(t *testing.T) {
	c := newestRectangleDoc()
	delete(c, streamEscher)
	err := Parse(c, VersionNewest, &recordingPainter{}, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestProbe(t *testing.T) {
	legacy := func(version uint16) []byte {
		b := (&byteBuilder{}).raw(magicLegacy)
		b.putU16(legacyVersionOffset, version)
		return b.bytes()
	}
	tests := []struct {
		name string
		c    MemoryContainer
		want Version
	}{
		{"newest", MemoryContainer{streamContents: magicNewest, streamQuill: nil, streamEscher: nil}, VersionNewest},
		{"newest without drawing", MemoryContainer{streamContents: magicNewest, streamQuill: nil}, VersionUnknown},
		{"oldest", MemoryContainer{streamContents: legacy(0x0081), streamQuill: nil}, VersionOldest},
		{"intermediate", MemoryContainer{streamContents: legacy(0x0100), streamQuill: nil}, VersionIntermediate},
		{"truncated legacy header", MemoryContainer{streamContents: magicLegacy, streamQuill: nil}, VersionUnknown},
		{"no text stream", MemoryContainer{streamContents: legacy(0x0100)}, VersionUnknown},
		{"no contents", MemoryContainer{streamQuill: nil}, VersionUnknown},
		{"bad signature", MemoryContainer{streamContents: []byte{1, 2, 3, 4}, streamQuill: nil}, VersionUnknown},
		{"empty", MemoryContainer{}, VersionUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Probe(tt.c)
			assert.Equal(t, tt.want, v)
			if tt.want == VersionUnknown {
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want != VersionUnknown, IsSupported(tt.c))
		})
	}
}

func TestIsSupportedNil(t *testing.T) {
	assert.False(t, IsSupported(nil))
	var m MemoryContainer
	assert.False(t, IsSupported(m))
}

func TestParseRejectsUnknownVersion(t *testing.T) {
	err := Parse(MemoryContainer{streamContents: nil}, VersionUnknown, &recordingPainter{}, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
