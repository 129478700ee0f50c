package gopublisher

import "fmt"

// Sub-blocks of a chunk entry in the newest trailer directory.
const (
	chunkFieldType   = 0x02
	chunkFieldSeqNum = 0x03
	chunkFieldOffset = 0x04
	chunkFieldParent = 0x05
	chunkFieldEnd    = 0x06
)

// Block ids inside newest chunk bodies.
const (
	docSizeContainer = 0x12
	docWidth         = 0x01
	docHeight        = 0x02
	docLCID          = 0x13

	pageShapeList  = 0x02
	pageBackground = 0x04
	pageMaster     = 0x05
	pageKind       = 0x06

	shapeTextID        = 0x27
	shapeVAlign        = 0x36
	shapeCropType      = 0xB9
	shapeBorderArt     = 0xC7
	shapeColumns       = 0x21
	shapeColumnSpacing = 0x22
	tableColumnWidths  = 0x01
	tableRowHeights    = 0x02

	listContainer = 0x01 // palette colors, border art pieces, font names
)

// US Letter, used when the document chunk carries no size.
const (
	defaultPageWidth  = 7772400
	defaultPageHeight = 10058400
)

func (p *parser) walkNewestChunks() error {
	s := p.contents
	off, err := s.u32At(p.profile.TrailerOffsetPos)
	if err != nil {
		return err
	}
	if err := s.SeekTo(int64(off)); err != nil {
		return err
	}
	length, err := s.ReadU32()
	if err != nil {
		return err
	}
	blocks, err := readBlocksUntil(s, int64(off)+int64(length))
	if err != nil {
		return err
	}
	for _, b := range blocks {
		if b.Type != blockTypeTrailerDirectory {
			continue
		}
		entries, err := b.children()
		if err != nil {
			return err
		}
		var seq uint32
		for _, e := range entries {
			if e.Type != blockTypeGeneralContainer {
				continue
			}
			ref, err := p.newestChunkEntry(e, seq)
			if err != nil {
				return err
			}
			p.addChunk(ref)
			seq = ref.SeqNum + 1
		}
	}
	return nil
}

func (p *parser) newestChunkEntry(e BlockInfo, nextSeq uint32) (ChunkReference, error) {
	fields, err := e.children()
	if err != nil {
		return ChunkReference{}, err
	}
	set := newBlockSet(fields)
	var ref ChunkReference
	raw, _ := set.u32(chunkFieldType)
	ref.RawType = uint16(raw)
	ref.Type = p.profile.chunkType(ref.RawType)
	ref.SeqNum = nextSeq
	if v, ok := set.u32(chunkFieldSeqNum); ok {
		ref.SeqNum = v
	}
	ref.Offset, _ = set.u32(chunkFieldOffset)
	ref.ParentSeqNum, ref.HasParent = set.u32(chunkFieldParent)
	if end, ok := set.u32(chunkFieldEnd); ok {
		ref.End = end
		return ref, nil
	}
	length, err := p.contents.u32At(int64(ref.Offset))
	if err != nil {
		return ref, fmt.Errorf("chunk %#x: %w", ref.SeqNum, err)
	}
	ref.End = ref.Offset + length
	return ref, nil
}

// newestBlocks decodes a chunk body: a u32 length followed by blocks.
func (p *parser) newestBlocks(ref ChunkReference) (blockSet, error) {
	s := p.contents
	if err := s.SeekTo(int64(ref.Offset)); err != nil {
		return nil, err
	}
	length, err := s.ReadU32()
	if err != nil {
		return nil, err
	}
	blocks, err := readBlocksUntil(s, int64(ref.Offset)+int64(length))
	if err != nil {
		return nil, err
	}
	return newBlockSet(blocks), nil
}

func (p *parser) parseDocument(ref ChunkReference) error {
	if p.profile.Version != VersionNewest {
		return p.parseLegacyDocument(ref)
	}
	set, err := p.newestBlocks(ref)
	if err != nil {
		return err
	}
	var width, height uint32
	if b, ok := set[docSizeContainer]; ok {
		kids, err := b.children()
		if err != nil {
			return err
		}
		size := newBlockSet(kids)
		width, _ = size.u32(docWidth)
		height, _ = size.u32(docHeight)
	}
	if width == 0 || height == 0 {
		p.logger.Warn("document has no page size, using US Letter")
		width, height = defaultPageWidth, defaultPageHeight
	}
	p.setPageSize(width, height)
	if lcid, ok := set.u32(docLCID); ok {
		p.c.SetLanguage(uint16(lcid))
	}
	return nil
}

func (p *parser) parseNewestPage(ref ChunkReference) (uint16, error) {
	set, err := p.newestBlocks(ref)
	if err != nil {
		return 0, err
	}
	shapes, err := set.childValues(pageShapeList)
	if err != nil {
		return 0, err
	}
	for _, seq := range shapes {
		p.c.SetShapePage(seq, ref.SeqNum)
	}
	if bg, ok := set.u32(pageBackground); ok {
		p.c.SetPageBackground(ref.SeqNum, bg)
	}
	if m, ok := set.u32(pageMaster); ok && m != ref.SeqNum {
		p.c.SetMasterPage(ref.SeqNum, m)
	}
	kind, _ := set.u32(pageKind)
	return uint16(kind), nil
}

func (p *parser) parsePalette(ref ChunkReference) error {
	if p.profile.Version != VersionNewest {
		return p.parseLegacyPalette(ref)
	}
	set, err := p.newestBlocks(ref)
	if err != nil {
		return err
	}
	words, err := set.childValues(listContainer)
	if err != nil {
		return err
	}
	palette := make([]Color, len(words))
	for i, w := range words {
		palette[i] = NewColorFromWord(w)
	}
	p.c.SetPalette(palette)
	return nil
}

func (p *parser) dispatchNewest() error {
	for _, ref := range p.chunksOf(ChunkFont) {
		if err := p.parseFontChunk(ref); err != nil {
			return fmt.Errorf("font chunk %#x: %w", ref.SeqNum, err)
		}
	}
	for _, ref := range p.chunksOf(ChunkBorderArt) {
		if err := p.parseBorderArt(ref); err != nil {
			return fmt.Errorf("border art chunk %#x: %w", ref.SeqNum, err)
		}
	}
	if err := p.parseEscher(); err != nil {
		return fmt.Errorf("drawing stream: %w", err)
	}
	for _, ref := range p.chunksOf(ChunkShape, ChunkAltShape, ChunkTable, ChunkLogo) {
		if p.skipped(ref.SeqNum) {
			continue
		}
		if err := p.parseNewestShape(ref); err != nil {
			return fmt.Errorf("shape chunk %#x: %w", ref.SeqNum, err)
		}
	}
	for _, ref := range p.chunksOf(ChunkGroup) {
		p.placeShape(ref.SeqNum)
	}
	return nil
}

func (p *parser) parseFontChunk(ref ChunkReference) error {
	set, err := p.newestBlocks(ref)
	if err != nil {
		return err
	}
	b, ok := set[listContainer]
	if !ok {
		return nil
	}
	names, err := stringBlocks(b)
	if err != nil {
		return err
	}
	for _, n := range names {
		p.c.AddFont(n)
	}
	return nil
}

// stringBlocks decodes the string children of a container block.
func stringBlocks(b BlockInfo) ([]string, error) {
	kids, err := b.children()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range kids {
		if k.Type != blockTypeString {
			continue
		}
		s, err := decodeUTF16(k.Raw)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// parseBorderArt stores one frame; its pieces are blip records.
func (p *parser) parseBorderArt(ref ChunkReference) error {
	set, err := p.newestBlocks(ref)
	if err != nil {
		return err
	}
	var pieces []Image
	if b, ok := set[listContainer]; ok {
		kids, err := b.children()
		if err != nil {
			return err
		}
		for _, k := range kids {
			s := newStream(k.Raw)
			rec, err := readEscherRecord(s)
			if err != nil {
				p.logger.Warn("bad border art piece", Uint32("seq", ref.SeqNum), Err(err))
				continue
			}
			img, err := decodeBlip(s, rec)
			if err != nil {
				p.logger.Warn("bad border art piece", Uint32("seq", ref.SeqNum), Err(err))
				continue
			}
			pieces = append(pieces, img)
		}
	}
	p.c.AddBorderArt(pieces)
	return nil
}

func (p *parser) parseNewestShape(ref ChunkReference) error {
	seq := ref.SeqNum
	set, err := p.newestBlocks(ref)
	if err != nil {
		return err
	}
	p.placeShape(seq)
	if v, ok := set.u32(shapeTextID); ok {
		p.c.SetShapeTextID(seq, v)
	}
	if v, ok := set.u32(shapeVAlign); ok {
		p.c.SetShapeVAlign(seq, VerticalAlign(min(v, uint32(VAlignBottom))))
	}
	if v, ok := set.u32(shapeCropType); ok {
		p.c.SetShapeCropType(seq, ShapeType(v))
	}
	if v, ok := set.u32(shapeBorderArt); ok {
		p.c.SetShapeBorderArtIndex(seq, v)
	}
	if n, ok := set.u32(shapeColumns); ok && n > 1 {
		spacing, _ := set.u32(shapeColumnSpacing)
		p.c.SetShapeColumns(seq, int(n), spacing)
	}
	if ref.Type == ChunkTable {
		cols, err := set.childValues(tableColumnWidths)
		if err != nil {
			return err
		}
		rows, err := set.childValues(tableRowHeights)
		if err != nil {
			return err
		}
		p.c.SetShapeTable(seq, TableInfo{ColumnWidths: cols, RowHeights: rows})
	}
	return nil
}
