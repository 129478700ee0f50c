package gopublisher

import (
	"fmt"
	"slices"
)

// ChunkReference locates one chunk of the Contents stream. Parents are
// referred to by sequence number.
type ChunkReference struct {
	Type         ChunkType
	RawType      uint16
	Offset       uint32
	End          uint32
	SeqNum       uint32
	ParentSeqNum uint32
	HasParent    bool
}

// Page kind values stored in page chunks; 0 leaves the kind to the
// sequence number lists of ParseOptions.
const (
	pageKindNormal = 1
	pageKindMaster = 2
	pageKindDummy  = 3
)

// parser drives one decode. The same walk serves all generations; the
// profile supplies every generation-specific offset and mapping.
type parser struct {
	profile   *FormatProfile
	opts      *ParseOptions
	logger    Logger
	c         *Collector
	container Container
	contents  *stream

	chunks []ChunkReference
	bySeq  map[uint32]int

	// page size in EMU, for origin translation
	pageWidth, pageHeight int64
}

// Parse decodes the document in c, which must be of generation v, and
// replays it on painter. Nothing is painted when an error is returned.
func Parse(c Container, v Version, painter Painter, opts *ParseOptions) error {
	p, err := newParser(c, v, painter, opts)
	if err != nil {
		return err
	}
	if err := p.parse(); err != nil {
		return err
	}
	return p.c.Go()
}

// Decode parses c into a Collector without painting it.
func Decode(c Container, v Version, opts *ParseOptions) (*Collector, error) {
	p, err := newParser(c, v, nil, opts)
	if err != nil {
		return nil, err
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.c, nil
}

func newParser(c Container, v Version, painter Painter, opts *ParseOptions) (*parser, error) {
	opts = opts.withDefaults()
	profile, err := ProfileFor(v)
	if err != nil {
		return nil, err
	}
	data, ok := c.Stream(streamContents)
	if !ok {
		return nil, fmt.Errorf("no %s stream: %w", streamContents, ErrUnsupportedFormat)
	}
	return &parser{
		profile:   profile,
		opts:      opts,
		logger:    opts.Logger.With(String("version", v.String())),
		c:         NewCollector(painter, opts),
		container: c,
		contents:  newStream(data),
		bySeq:     make(map[uint32]int),
	}, nil
}

func (p *parser) parse() error {
	var err error
	if p.profile.Version == VersionNewest {
		err = p.walkNewestChunks()
	} else {
		err = p.walkLegacyChunks()
	}
	if err != nil {
		return fmt.Errorf("chunk directory: %w", err)
	}
	p.logger.Debug("chunk directory", Int("chunks", len(p.chunks)))
	if err := p.dispatch(); err != nil {
		return err
	}
	if err := p.parseText(); err != nil {
		return fmt.Errorf("text: %w", err)
	}
	return nil
}

func (p *parser) addChunk(ref ChunkReference) {
	if ref.Type == ChunkUnknown {
		p.logger.Debug("unknown chunk type", Uint32("type", uint32(ref.RawType)), Uint32("seq", ref.SeqNum))
	}
	if _, dup := p.bySeq[ref.SeqNum]; !dup {
		p.bySeq[ref.SeqNum] = len(p.chunks)
	}
	p.chunks = append(p.chunks, ref)
}

// chunk returns the chunk with sequence number seq.
func (p *parser) chunk(seq uint32) (ChunkReference, bool) {
	i, ok := p.bySeq[seq]
	if !ok {
		return ChunkReference{}, false
	}
	return p.chunks[i], true
}

func (p *parser) chunksOf(types ...ChunkType) []ChunkReference {
	var out []ChunkReference
	for _, ref := range p.chunks {
		if slices.Contains(types, ref.Type) {
			out = append(out, ref)
		}
	}
	return out
}

// body returns the bytes of a chunk as a stream of their own.
func (p *parser) body(ref ChunkReference) (*stream, error) {
	if ref.End < ref.Offset {
		return nil, fmt.Errorf("chunk %#x ends at %d before its start %d: %w", ref.SeqNum, ref.End, ref.Offset, ErrMalformedReference)
	}
	return p.contents.Section(int64(ref.Offset), int64(ref.End-ref.Offset))
}

// pageOf follows parent links through groups up to the owning page.
func (p *parser) pageOf(seq uint32) (uint32, bool) {
	ref, ok := p.chunk(seq)
	for k := 0; k < len(p.chunks); k++ {
		if !ok || !ref.HasParent {
			return 0, false
		}
		ref, ok = p.chunk(ref.ParentSeqNum)
		if ok && ref.Type == ChunkPage {
			return ref.SeqNum, true
		}
	}
	return 0, false
}

// skipped reports whether seq lives on a page that is never painted.
func (p *parser) skipped(seq uint32) bool {
	page, ok := p.pageOf(seq)
	if !ok {
		return false
	}
	pg, ok := p.c.Page(page)
	return ok && pg.Kind != PageNormal && pg.Kind != PageMaster
}

// dispatch decodes the chunks in dependency order: document, pages,
// tables of colors, fonts and pictures, then shapes.
func (p *parser) dispatch() error {
	docs := p.chunksOf(ChunkDocument)
	if len(docs) == 0 {
		return fmt.Errorf("document chunk: %w", ErrMissingMandatoryChunk)
	}
	if err := p.parseDocument(docs[0]); err != nil {
		return fmt.Errorf("document chunk: %w", err)
	}
	for _, ref := range p.chunksOf(ChunkPage) {
		if err := p.parsePage(ref); err != nil {
			return fmt.Errorf("page chunk %#x: %w", ref.SeqNum, err)
		}
	}
	if p.profile.Palette != nil {
		p.c.SetPalette(p.profile.Palette)
	}
	for _, ref := range p.chunksOf(ChunkPalette) {
		if err := p.parsePalette(ref); err != nil {
			return fmt.Errorf("palette chunk %#x: %w", ref.SeqNum, err)
		}
	}
	if p.profile.Version == VersionNewest {
		return p.dispatchNewest()
	}
	return p.dispatchLegacy()
}

func (p *parser) parsePage(ref ChunkReference) error {
	p.c.AddPage(ref.SeqNum)
	var kind uint16
	var err error
	if p.profile.Version == VersionNewest {
		kind, err = p.parseNewestPage(ref)
	} else {
		kind, err = p.parseLegacyPage(ref)
	}
	if err != nil {
		return err
	}
	p.c.SetPageKind(ref.SeqNum, p.pageKind(ref.SeqNum, kind))
	return nil
}

// pageKind prefers the stored kind and falls back to the configured
// sequence number lists.
func (p *parser) pageKind(seq uint32, stored uint16) PageKind {
	switch stored {
	case pageKindNormal:
		return PageNormal
	case pageKindMaster:
		return PageMaster
	case pageKindDummy:
		return PageDummy
	}
	switch {
	case slices.Contains(p.opts.MasterPageSeqNums, seq):
		return PageMaster
	case slices.Contains(p.opts.DummyPageSeqNums, seq):
		return PageDummy
	}
	return PageNormal
}

// setPageSize records the document size given in EMU.
func (p *parser) setPageSize(width, height uint32) {
	p.pageWidth, p.pageHeight = int64(width), int64(height)
	p.c.SetWidth(EMUToInch(p.pageWidth))
	p.c.SetHeight(EMUToInch(p.pageHeight))
}

// placeShape records which page a shape or group is drawn on.
func (p *parser) placeShape(seq uint32) {
	if page, ok := p.pageOf(seq); ok {
		p.c.SetShapePage(seq, page)
	}
}

func (p *parser) parseText() error {
	data, ok := p.container.Stream(streamQuill)
	if !ok {
		return nil
	}
	if p.profile.SingleByteText {
		return p.parseText97(data)
	}
	return p.parseQuill(data)
}
