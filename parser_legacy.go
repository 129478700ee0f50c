package gopublisher

import "fmt"

// Legacy shape flag bits.
const (
	legacyFlipH = 0x0001
	legacyFlipV = 0x0002
)

// Legacy fill type values.
const (
	legacyFillNone    = 0
	legacyFillSolid   = 1
	legacyFillPattern = 2
	legacyFillImage   = 3
)

const legacyLineSpecLength = 6

// fieldReader reads fields at fixed offsets of a chunk body and keeps the
// first error.
type fieldReader struct {
	s   *stream
	err error
}

func (r *fieldReader) u8(off int64) uint8 {
	if r.err != nil {
		return 0
	}
	var v uint8
	v, r.err = r.s.u8At(off)
	return v
}

func (r *fieldReader) u16(off int64) uint16 {
	if r.err != nil {
		return 0
	}
	var v uint16
	v, r.err = r.s.u16At(off)
	return v
}

func (r *fieldReader) u32(off int64) uint32 {
	if r.err != nil {
		return 0
	}
	var v uint32
	v, r.err = r.s.u32At(off)
	return v
}

func (r *fieldReader) i16(off int64) int64 { return int64(int16(r.u16(off))) }
func (r *fieldReader) i32(off int64) int64 { return int64(int32(r.u32(off))) }

func (p *parser) walkLegacyChunks() error {
	s := p.contents
	off, err := s.u32At(p.profile.TrailerOffsetPos)
	if err != nil {
		return err
	}
	if err := s.SeekTo(int64(off)); err != nil {
		return err
	}
	count, err := s.ReadU16()
	if err != nil {
		return err
	}
	refs := make([]ChunkReference, 0, count)
	for k := uint16(0); k < count; k++ {
		ref, err := p.readLegacyEntry(s)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}
	trailerEnd, err := s.ReadU32()
	if err != nil {
		return err
	}
	if p.profile.BackfillEnds {
		backfillEnds(refs, trailerEnd)
	}
	for _, ref := range refs {
		p.addChunk(ref)
	}
	return nil
}

func (p *parser) readLegacyEntry(s *stream) (ChunkReference, error) {
	var ref ChunkReference
	if p.profile.WideEntries {
		b, err := s.ReadBytes(14)
		if err != nil {
			return ref, err
		}
		r := fieldReader{s: newStream(b)}
		ref.RawType = r.u16(0)
		ref.SeqNum = r.u32(2)
		ref.ParentSeqNum = r.u32(6)
		ref.Offset = r.u32(10)
	} else {
		b, err := s.ReadBytes(9)
		if err != nil {
			return ref, err
		}
		r := fieldReader{s: newStream(b)}
		ref.RawType = uint16(r.u8(0))
		ref.SeqNum = uint32(r.u16(1))
		ref.ParentSeqNum = uint32(r.u16(3))
		ref.Offset = r.u32(5)
	}
	ref.HasParent = ref.ParentSeqNum != 0
	ref.Type = p.profile.chunkType(ref.RawType)
	return ref, nil
}

// backfillEnds derives each chunk's end from the offset of the next one;
// the last chunk ends where the trailer says the data ends.
func backfillEnds(refs []ChunkReference, trailerEnd uint32) {
	for i := range refs {
		if i+1 < len(refs) {
			refs[i].End = refs[i+1].Offset
		} else {
			refs[i].End = trailerEnd
		}
	}
}

func (p *parser) parseLegacyDocument(ref ChunkReference) error {
	body, err := p.body(ref)
	if err != nil {
		return err
	}
	f := p.profile.DocumentFields
	r := fieldReader{s: body}
	width, height := r.u32(f.Width), r.u32(f.Height)
	if r.err != nil {
		return r.err
	}
	if width == 0 || height == 0 {
		p.logger.Warn("document has no page size, using US Letter")
		width, height = defaultPageWidth, defaultPageHeight
	}
	p.setPageSize(width, height)
	if lcid, err := body.u16At(f.LCID); err == nil && lcid != 0 {
		p.c.SetLanguage(lcid)
	}
	return nil
}

func (p *parser) parseLegacyPage(ref ChunkReference) (uint16, error) {
	body, err := p.body(ref)
	if err != nil {
		return 0, err
	}
	if body.Len() < 2 {
		return 0, nil
	}
	kind, err := body.u16At(0)
	if err != nil {
		return 0, err
	}
	if m, err := body.u32At(2); err == nil && m != 0 && m != ref.SeqNum {
		p.c.SetMasterPage(ref.SeqNum, m)
	}
	return kind, nil
}

func (p *parser) parseLegacyPalette(ref ChunkReference) error {
	body, err := p.body(ref)
	if err != nil {
		return err
	}
	count, err := body.ReadU16()
	if err != nil {
		return err
	}
	palette := make([]Color, 0, count)
	for k := uint16(0); k < count; k++ {
		w, err := body.ReadU32()
		if err != nil {
			return err
		}
		palette = append(palette, NewColorFromWord(w))
	}
	if len(palette) > 0 {
		p.c.SetPalette(palette)
	}
	return nil
}

func (p *parser) dispatchLegacy() error {
	for _, ref := range p.chunksOf(ChunkImageData) {
		if err := p.parseImageData(ref); err != nil {
			return fmt.Errorf("image chunk %#x: %w", ref.SeqNum, err)
		}
	}
	var pending []ChunkReference
	for _, ref := range p.chunks {
		if (ref.Type == ChunkGroup || ref.Type.isShape()) && !p.skipped(ref.SeqNum) {
			pending = append(pending, ref)
		}
	}
	attached := make(map[uint32]bool, len(pending))
	for len(pending) > 0 {
		var next []ChunkReference
		for _, ref := range pending {
			parent, inGroup := p.groupParent(ref)
			if inGroup && !attached[parent] {
				next = append(next, ref)
				continue
			}
			if err := p.attachLegacy(ref, parent, inGroup); err != nil {
				return fmt.Errorf("%s chunk %#x: %w", ref.Type, ref.SeqNum, err)
			}
			attached[ref.SeqNum] = true
		}
		if len(next) == len(pending) {
			// groups that only reach each other
			for _, ref := range next {
				p.logger.Warn("group cycle, attaching at top level", Uint32("seq", ref.SeqNum))
				if err := p.attachLegacy(ref, 0, false); err != nil {
					return fmt.Errorf("%s chunk %#x: %w", ref.Type, ref.SeqNum, err)
				}
			}
			break
		}
		pending = next
	}
	return nil
}

// groupParent returns the group a chunk belongs to, if any.
func (p *parser) groupParent(ref ChunkReference) (uint32, bool) {
	if !ref.HasParent {
		return 0, false
	}
	parent, ok := p.chunk(ref.ParentSeqNum)
	if !ok || parent.Type != ChunkGroup {
		return 0, false
	}
	return parent.SeqNum, true
}

func (p *parser) attachLegacy(ref ChunkReference, parent uint32, inGroup bool) error {
	var parentPtr *uint32
	if inGroup {
		parentPtr = &parent
	}
	isGroup := ref.Type == ChunkGroup
	p.c.AttachShape(ref.SeqNum, parentPtr, isGroup)
	p.placeShape(ref.SeqNum)
	body, err := p.body(ref)
	if err != nil {
		return err
	}
	if isGroup {
		if body.Len() == 0 {
			return nil
		}
		r := fieldReader{s: body}
		p.legacyPlacement(ref.SeqNum, &r)
		return r.err
	}
	return p.parseLegacyShape(ref, body)
}

// legacyPlacement reads flips, rotation and the bounding box.
func (p *parser) legacyPlacement(seq uint32, r *fieldReader) {
	f := p.profile.ShapeFields
	flags := r.u16(f.Flags)
	rotation := r.u16(f.Rotation)
	xs, ys := r.i32(f.Coordinates), r.i32(f.Coordinates+4)
	xe, ye := r.i32(f.Coordinates+8), r.i32(f.Coordinates+12)
	if r.err != nil {
		return
	}
	if flags&(legacyFlipH|legacyFlipV) != 0 {
		p.c.SetShapeFlip(seq, flags&legacyFlipH != 0, flags&legacyFlipV != 0)
	}
	if rotation%360 != 0 {
		p.c.SetShapeRotation(seq, float64(rotation%360))
	}
	if !p.profile.CenterOrigin {
		dx, dy := p.pageWidth/2, p.pageHeight/2
		xs, ys, xe, ye = xs-dx, ys-dy, xe-dx, ye-dy
	}
	p.c.SetShapeCoordinates(seq, xs, ys, xe, ye)
}

func (p *parser) parseLegacyShape(ref ChunkReference, body *stream) error {
	seq := ref.SeqNum
	f := p.profile.ShapeFields
	r := fieldReader{s: body}
	p.legacyPlacement(seq, &r)

	st, fixed := p.profile.LegacyShapeTypes[ref.Type]
	if !fixed {
		st = ShapeType(r.u16(f.ShapeType))
	}
	fillType := r.u8(f.FillType)
	fore := NewColorReference(r.u32(f.FillColor))
	back := NewColorReference(r.u32(f.FillBackColor))
	var lines [4]Line
	for i := range lines {
		off := f.Lines + int64(i)*legacyLineSpecLength
		w := r.u16(off)
		lines[i] = Line{Width: quarterPointsToEMU(w), Color: NewColorReference(r.u32(off + 2)), Present: w > 0}
	}
	marker := r.u16(f.TextMarker)
	textID := r.u32(f.TextID)
	image := r.u32(f.ImageIndex)
	if r.err != nil {
		return r.err
	}

	p.c.SetShapeType(seq, st)
	switch fillType {
	case legacyFillNone:
	case legacyFillSolid:
		p.c.SetShapeFill(seq, NewSolidFill(fore))
	case legacyFillPattern:
		p.c.SetShapeFill(seq, &PatternFill{ImageIndex: image, Foreground: fore, Background: back})
	case legacyFillImage:
		if image != 0 {
			p.c.SetShapeFill(seq, &ImageFill{ImageIndex: image})
		}
	default:
		p.logger.Debug("unknown legacy fill type", Uint32("seq", seq), Int("type", int(fillType)))
	}
	for _, l := range lines {
		if l.Present {
			p.c.SetShapeLines(seq, lines[:])
			break
		}
	}
	if marker == p.profile.TextMarker {
		p.c.SetShapeTextID(seq, textID)
	}
	if ref.Type == ChunkImageFrame && image != 0 {
		p.c.SetShapeImageIndex(seq, image)
	}
	return nil
}

// parseImageData stores one picture: a u32 blip record type, then the
// encoded bytes. Unknown types keep their index but paint nothing.
func (p *parser) parseImageData(ref ChunkReference) error {
	body, err := p.body(ref)
	if err != nil {
		return err
	}
	typ, err := body.ReadU32()
	if err != nil {
		return err
	}
	data, err := body.ReadBytes(body.Len() - body.Tell())
	if err != nil {
		return err
	}
	it, ok := imageTypeForBlip(uint16(typ))
	if !ok {
		p.logger.Warn("unknown image type", Uint32("seq", ref.SeqNum), Uint32("type", typ))
		p.c.AddImage(Image{})
		return nil
	}
	p.c.AddImage(Image{Type: it, Data: data})
	return nil
}
