package gopublisher

import (
	"bytes"
	"compress/zlib"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamReads(t *testing.T) {
	s := newStream((&byteBuilder{}).u8(0xAB).u16(0x1234).u32(0xDEADBEEF).u32(0x00018000).bytes())
	v8, err := s.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), v8)
	v16, err := s.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v16)
	v32, err := s.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v32)
	f, err := s.ReadFixed16()
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)
	assert.True(t, s.AtEOS())

	_, err = s.ReadU8()
	assert.True(t, errors.Is(err, ErrEndOfStream))
	assert.Equal(t, int64(11), s.Tell(), "failed read leaves the cursor")
}

func TestStreamSeekAndStillReading(t *testing.T) {
	s := newStream(make([]byte, 10))
	assert.True(t, s.StillReading(5))
	require.NoError(t, s.SeekTo(5))
	assert.False(t, s.StillReading(5))
	assert.True(t, s.StillReading(6))
	assert.True(t, errors.Is(s.SeekTo(11), ErrEndOfStream))
	assert.True(t, errors.Is(s.SeekTo(-1), ErrEndOfStream))
	require.NoError(t, s.SeekTo(10))
	assert.False(t, s.StillReading(100))
	_, err := s.Section(8, 4)
	assert.True(t, errors.Is(err, ErrEndOfStream))
}

func TestReadFixedAndVariableBlocks(t *testing.T) {
	data := concat(
		u16Block(0x02, 0x43),
		u32Block(0x04, 0x1000),
		flagBlock(0x09),
		containerBlock(0x12, u32Block(0x01, 914400), u32Block(0x02, 1828800)),
	)
	s := newStream(data)
	blocks, err := readBlocksUntil(s, s.Len())
	require.NoError(t, err)
	require.Len(t, blocks, 4)

	assert.Equal(t, uint32(0x43), blocks[0].Data)
	assert.Equal(t, int64(2), blocks[0].DataLength)
	assert.Equal(t, uint32(0x1000), blocks[1].Data)
	assert.Equal(t, int64(0), blocks[2].DataLength)
	assert.True(t, blocks[3].IsContainer())

	kids, err := blocks[3].children()
	require.NoError(t, err)
	set := newBlockSet(kids)
	w, ok := set.u32(0x01)
	require.True(t, ok)
	assert.Equal(t, uint32(914400), w)
	assert.Equal(t, blocks[3].DataOffset, kids[0].Start, "children report absolute offsets")
}

func TestBlockOverrunIsEndOfStream(t *testing.T) {
	data := (&byteBuilder{}).u8(1).u8(0x80).u32(100).raw([]byte{1, 2, 3}).bytes()
	_, err := readBlock(newStream(data))
	assert.True(t, errors.Is(err, ErrEndOfStream))

	short := (&byteBuilder{}).u8(1).u8(0x80).u32(3).bytes()
	_, err = readBlock(newStream(short))
	assert.True(t, errors.Is(err, ErrMalformedReference))
}

func TestBlockSetChildValues(t *testing.T) {
	set := newBlockSet([]BlockInfo{})
	vals, err := set.childValues(0x02)
	require.NoError(t, err)
	assert.Nil(t, vals)

	s := newStream(u32Container(0x02, 7, 8, 9))
	b, err := readBlock(s)
	require.NoError(t, err)
	vals, err = newBlockSet([]BlockInfo{b}).childValues(0x02)
	require.NoError(t, err)
	assert.Equal(t, []uint32{7, 8, 9}, vals)
}

func TestEscherChildrenAndFOPT(t *testing.T) {
	verts := complexArrayBytes(0xFFF0,
		(&byteBuilder{}).u16(0).u16(0).bytes(),
		(&byteBuilder{}).u16(100).u16(0xFFFF).bytes(),
	)
	sp := escherContainer(escherSpContainer,
		fspRec(ShapeEllipse, 1025, fspFlipH),
		foptRecord(
			foptProp{id: propFillColor, value: 0x0000FF},
			foptProp{id: propVertices, complex: verts},
			foptProp{id: 0x0999, value: 5},
		),
		clientDataRec(42),
	)
	s := newStream(sp)
	root, err := readEscherRecord(s)
	require.NoError(t, err)
	assert.True(t, root.IsContainer())

	kids, err := escherChildren(s, root)
	require.NoError(t, err)
	require.Len(t, kids, 3)
	assert.Equal(t, uint16(escherFSP), kids[0].Type)
	assert.Equal(t, uint16(ShapeEllipse), kids[0].Instance)

	fopt, ok, err := findEscherChild(s, root, escherFOPT)
	require.NoError(t, err)
	require.True(t, ok)
	vals, err := extractFOPTValues(s, fopt, map[uint16]bool{propFillColor: true, propVertices: true})
	require.NoError(t, err)
	c, ok := vals.value(propFillColor)
	assert.True(t, ok)
	assert.Equal(t, uint32(0xFF), c)
	_, ok = vals.value(0x0999)
	assert.False(t, ok, "unrequested ids are dropped")

	vs := parseVertices(vals.Complex[propVertices])
	assert.Equal(t, []Vertex{{0, 0}, {100, -1}}, vs)
}

func TestEscherRecordOverrun(t *testing.T) {
	data := (&byteBuilder{}).u16(0).u16(escherFSP).u32(50).bytes()
	_, err := readEscherRecord(newStream(data))
	assert.True(t, errors.Is(err, ErrEndOfStream))
}

func TestParseGuidesAndSegments(t *testing.T) {
	guides := parseGuides(complexArrayBytes(8,
		(&byteBuilder{}).u16(flagSpecial1|opSum).u16(0x0147).u16(0xFFFF).u16(0).bytes(),
	))
	require.Len(t, guides, 1)
	assert.Equal(t, int32(0x0147), guides[0].Arg1)
	assert.Equal(t, int32(-1), guides[0].Arg2)

	segs := parseSegments(complexArrayBytes(2,
		(&byteBuilder{}).u16(0x4000).bytes(),
		(&byteBuilder{}).u16(0x6001).bytes(),
	))
	assert.Equal(t, []uint16{0x4000, 0x6001}, segs)
}

func TestDecodeBlipBitmapAndMetafile(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	s := newStream(pngBlip(png))
	rec, err := readEscherRecord(s)
	require.NoError(t, err)
	img, err := decodeBlip(s, rec)
	require.NoError(t, err)
	assert.Equal(t, ImagePNG, img.Type)
	assert.Equal(t, png, img.Data)

	emf := bytes.Repeat([]byte{1, 0, 0, 0}, 30)
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	_, _ = zw.Write(emf)
	require.NoError(t, zw.Close())
	var payload byteBuilder
	payload.raw(make([]byte, 16)).u32(uint32(len(emf))).raw(make([]byte, 24)).u32(uint32(z.Len())).u8(0).u8(0xFE).raw(z.Bytes())
	s = newStream(escherRec(0, 0x3D4, escherBlipEMF, payload.bytes()))
	rec, err = readEscherRecord(s)
	require.NoError(t, err)
	img, err = decodeBlip(s, rec)
	require.NoError(t, err)
	assert.Equal(t, ImageEMF, img.Type)
	assert.Equal(t, emf, img.Data)
}

func TestReadBSEInlineAndEmpty(t *testing.T) {
	s := newStream(bseRec(pngBlip([]byte{1, 2, 3})))
	rec, err := readEscherRecord(s)
	require.NoError(t, err)
	img, ok, err := readBSE(s, rec, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, img.Data)

	empty := escherRec(2, 0, escherBSE, make([]byte, 36))
	s = newStream(empty)
	rec, err = readEscherRecord(s)
	require.NoError(t, err)
	_, ok, err = readBSE(s, rec, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
