package gopublisher

import "encoding/binary"

// byteBuilder assembles little-endian test fixtures.
type byteBuilder struct {
	buf []byte
}

func (b *byteBuilder) u8(v uint8) *byteBuilder {
	b.buf = append(b.buf, v)
	return b
}

func (b *byteBuilder) u16(v uint16) *byteBuilder {
	b.buf = binary.LittleEndian.AppendUint16(b.buf, v)
	return b
}

func (b *byteBuilder) u32(v uint32) *byteBuilder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
	return b
}

func (b *byteBuilder) i32(v int32) *byteBuilder {
	return b.u32(uint32(v))
}

func (b *byteBuilder) raw(p []byte) *byteBuilder {
	b.buf = append(b.buf, p...)
	return b
}

// padTo grows the buffer with zeroes up to off.
func (b *byteBuilder) padTo(off int) *byteBuilder {
	for len(b.buf) < off {
		b.buf = append(b.buf, 0)
	}
	return b
}

func (b *byteBuilder) putU16(off int, v uint16) {
	b.padTo(off + 2)
	binary.LittleEndian.PutUint16(b.buf[off:], v)
}

func (b *byteBuilder) putU32(off int, v uint32) {
	b.padTo(off + 4)
	binary.LittleEndian.PutUint32(b.buf[off:], v)
}

func (b *byteBuilder) len() int { return len(b.buf) }

func (b *byteBuilder) bytes() []byte { return b.buf }

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Blocks.

func flagBlock(id uint8) []byte { return []byte{id, 0x00} }

func u16Block(id uint8, v uint16) []byte {
	return (&byteBuilder{}).u8(id).u8(0x10).u16(v).bytes()
}

func u32Block(id uint8, v uint32) []byte {
	return (&byteBuilder{}).u8(id).u8(0x20).u32(v).bytes()
}

func varBlock(id, typ uint8, payload []byte) []byte {
	return (&byteBuilder{}).u8(id).u8(typ).u32(uint32(len(payload) + 6)).raw(payload).bytes()
}

func containerBlock(id uint8, kids ...[]byte) []byte {
	return varBlock(id, blockTypeGeneralContainer, concat(kids...))
}

func u32Container(id uint8, vals ...uint32) []byte {
	var kids [][]byte
	for _, v := range vals {
		kids = append(kids, u32Block(0, v))
	}
	return containerBlock(id, kids...)
}

func utf16Bytes(s string) []byte {
	var b byteBuilder
	for _, r := range s {
		b.u16(uint16(r))
	}
	return b.bytes()
}

// Drawing-layer records.

func escherRec(ver uint8, inst uint16, typ uint16, payload []byte) []byte {
	return (&byteBuilder{}).u16(inst<<4 | uint16(ver)).u16(typ).u32(uint32(len(payload))).raw(payload).bytes()
}

func escherContainer(typ uint16, kids ...[]byte) []byte {
	return escherRec(0xF, 0, typ, concat(kids...))
}

type foptProp struct {
	id      uint16
	value   uint32
	complex []byte
}

func foptRecord(props ...foptProp) []byte {
	var table, tail byteBuilder
	for _, p := range props {
		id := p.id
		v := p.value
		if p.complex != nil {
			id |= foptComplexFlag
			v = uint32(len(p.complex))
			tail.raw(p.complex)
		}
		table.u16(id).u32(v)
	}
	return escherRec(3, uint16(len(props)), escherFOPT, concat(table.bytes(), tail.bytes()))
}

func anchorRec(typ uint16, xs, ys, xe, ye int32) []byte {
	return escherRec(0, 0, typ, (&byteBuilder{}).i32(xs).i32(ys).i32(xe).i32(ye).bytes())
}

func fspRec(shapeType ShapeType, id, flags uint32) []byte {
	return escherRec(2, uint16(shapeType), escherFSP, (&byteBuilder{}).u32(id).u32(flags).bytes())
}

func clientDataRec(seq uint32) []byte {
	return escherRec(0, 0, escherClientData, (&byteBuilder{}).u32(seq).bytes())
}

func pngBlip(data []byte) []byte {
	payload := concat(make([]byte, blipUIDLength), []byte{0xFF}, data)
	return escherRec(0, 0x6E0, escherBlipPNG, payload)
}

func bseRec(blip []byte) []byte {
	var b byteBuilder
	b.u8(6).u8(6).raw(make([]byte, 16)).u16(0xFF).u32(uint32(len(blip))).u32(1).u32(0).u8(0).u8(0).u8(0).u8(0)
	b.raw(blip)
	return escherRec(2, 6, escherBSE, b.bytes())
}

func complexArrayBytes(cb uint16, elems ...[]byte) []byte {
	var b byteBuilder
	b.u16(uint16(len(elems))).u16(uint16(len(elems))).u16(cb)
	for _, e := range elems {
		b.raw(e)
	}
	return b.bytes()
}

// Whole documents.

type legacyChunk struct {
	typ    uint16
	seq    uint32
	parent uint32
	body   []byte
}

// legacyContents lays out a Contents stream of the older generations:
// header, chunk bodies in order, then the trailer directory.
func legacyContents(version uint16, wide bool, chunks ...legacyChunk) []byte {
	var b byteBuilder
	b.raw(magicLegacy).padTo(0x20)
	b.putU16(legacyVersionOffset, version)
	offsets := make([]int, len(chunks))
	for i, c := range chunks {
		offsets[i] = b.len()
		b.raw(c.body)
	}
	dataEnd := b.len()
	b.padTo((dataEnd + 0xF) &^ 0xF)
	trailer := b.len()
	b.putU32(0x16, uint32(trailer))
	b.u16(uint16(len(chunks)))
	for i, c := range chunks {
		if wide {
			b.u16(c.typ).u32(c.seq).u32(c.parent).u32(uint32(offsets[i]))
		} else {
			b.u8(uint8(c.typ)).u16(uint16(c.seq)).u16(uint16(c.parent)).u32(uint32(offsets[i]))
		}
	}
	b.u32(uint32(dataEnd))
	return b.bytes()
}

func legacyPageBody(kind uint16, master uint32) []byte {
	var b byteBuilder
	b.u16(kind).u32(master).padTo(0x10)
	return b.bytes()
}

// legacyShapeBody fills the placement fields shared by both legacy
// generations; set adds the generation-specific ones.
func legacyShapeBody(xs, ys, xe, ye int32, set func(b *byteBuilder)) []byte {
	var b byteBuilder
	b.padTo(4).i32(xs).i32(ys).i32(xe).i32(ye)
	if set != nil {
		set(&b)
	}
	b.padTo(0x48)
	return b.bytes()
}

type newestChunk struct {
	typ    uint16
	seq    uint32
	blocks []byte
}

// newestContents lays out a Contents stream of the newest generation. Each
// chunk body is its length followed by blocks.
func newestContents(chunks ...newestChunk) []byte {
	var b byteBuilder
	b.raw(magicNewest).padTo(0x20)
	var entries [][]byte
	for _, c := range chunks {
		off := b.len()
		b.u32(uint32(len(c.blocks) + 4)).raw(c.blocks)
		entries = append(entries, containerBlock(0x00,
			u32Block(chunkFieldType, uint32(c.typ)),
			u32Block(chunkFieldSeqNum, c.seq),
			u32Block(chunkFieldOffset, uint32(off)),
		))
	}
	trailer := b.len()
	dir := varBlock(0x01, blockTypeTrailerDirectory, concat(entries...))
	b.u32(uint32(len(dir) + 4)).raw(dir)
	b.putU32(0x1A, uint32(trailer))
	return b.bytes()
}

// emptyQuill is a Quill stream with an empty section directory.
func emptyQuill() []byte { return make([]byte, quillDirectoryOffset) }

type quillEntry struct {
	name string
	data []byte
}

func quillStream(sections ...quillEntry) []byte {
	var b byteBuilder
	b.padTo(quillCountOffset).u16(uint16(len(sections))).padTo(quillDirectoryOffset)
	off := quillDirectoryOffset + len(sections)*quillEntryLength
	for i, s := range sections {
		b.raw([]byte(s.name)).u16(uint16(i)).u16(0).u32(uint32(off)).u32(uint32(len(s.data))).padTo(quillDirectoryOffset + (i+1)*quillEntryLength)
		off += len(s.data)
	}
	for _, s := range sections {
		b.raw(s.data)
	}
	return b.bytes()
}
