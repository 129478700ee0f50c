package gopublisher

import "slices"

// PageKind classifies a page.
type PageKind int

const (
	PageNormal PageKind = iota
	PageMaster
	PageDummy
)

func (k PageKind) String() string {
	switch k {
	case PageMaster:
		return "master"
	case PageDummy:
		return "dummy"
	}
	return "normal"
}

// PageInfo is one page of the document.
type PageInfo struct {
	SeqNum           uint32
	Kind             PageKind
	Roots            []NodeID
	MasterSeqNum     *uint32
	BackgroundSeqNum *uint32
}

// Collector accumulates what the parser decodes and, in Go, replays it on
// a Painter. All setters are keyed by sequence number and create the shape
// or page on first use.
type Collector struct {
	painter Painter
	logger  Logger

	width, height float64 // inches

	shapes     map[uint32]*ShapeInfo
	pages      map[uint32]*PageInfo
	pageOrder  []uint32
	palette    []Color
	fonts      []string
	images     []Image
	borderArts [][]Image
	textBlocks map[uint32]TextBlock
	charStyles []CharacterStyle
	paraStyles []ParagraphStyle

	defaultCharStyle CharacterStyle
	defaultParaStyle ParagraphStyle
	language         uint16

	tree  *GroupTree
	ready bool
}

// NewCollector creates a collector emitting to painter.
func NewCollector(painter Painter, opts *ParseOptions) *Collector {
	opts = opts.withDefaults()
	return &Collector{
		painter:    painter,
		logger:     opts.Logger,
		shapes:     make(map[uint32]*ShapeInfo),
		pages:      make(map[uint32]*PageInfo),
		textBlocks: make(map[uint32]TextBlock),
		language:   opts.DefaultLanguage,
		tree:       NewGroupTree(opts.MaxGroupDepth),
	}
}

func (c *Collector) shape(seq uint32) *ShapeInfo {
	s, ok := c.shapes[seq]
	if !ok {
		s = newShapeInfo(seq)
		c.shapes[seq] = s
	}
	return s
}

// Shape returns the shape recorded under seq.
func (c *Collector) Shape(seq uint32) (*ShapeInfo, bool) {
	s, ok := c.shapes[seq]
	return s, ok
}

func (c *Collector) SetShapeType(seq uint32, t ShapeType)       { c.shape(seq).Type = &t }
func (c *Collector) SetShapeCropType(seq uint32, t ShapeType)   { c.shape(seq).CropType = &t }
func (c *Collector) SetShapeImageIndex(seq, index uint32)       { c.shape(seq).ImageIndex = &index }
func (c *Collector) SetShapeBorderArtIndex(seq, index uint32)   { c.shape(seq).BorderArtIndex = &index }
func (c *Collector) SetShapeTextID(seq, id uint32)              { c.shape(seq).TextID = &id }
func (c *Collector) SetShapeMargins(seq uint32, m Margins)      { c.shape(seq).Margins = &m }
func (c *Collector) SetShapeFill(seq uint32, f Fill)            { c.shape(seq).Fill = f }
func (c *Collector) SetShapeDash(seq uint32, d *Dash)           { c.shape(seq).Dash = d }
func (c *Collector) SetShapeShadow(seq uint32, s *Shadow)       { c.shape(seq).Shadow = s }
func (c *Collector) SetShapeArrows(seq uint32, a Arrows)        { c.shape(seq).Arrows = &a }
func (c *Collector) SetShapeTable(seq uint32, t TableInfo)      { c.shape(seq).Table = &t }
func (c *Collector) SetShapeVAlign(seq uint32, v VerticalAlign) { c.shape(seq).VAlign = v }

// SetShapeCoordinates sets the bounding box in page-center relative EMU.
func (c *Collector) SetShapeCoordinates(seq uint32, xs, ys, xe, ye int64) {
	coord := NewCoordinate(xs, ys, xe, ye)
	c.shape(seq).Coordinates = &coord
}

// AddShapeLine appends one outline.
func (c *Collector) AddShapeLine(seq uint32, l Line) {
	s := c.shape(seq)
	s.Lines = append(s.Lines, l)
}

// SetShapeLines replaces the outlines.
func (c *Collector) SetShapeLines(seq uint32, lines []Line) { c.shape(seq).Lines = lines }

// SetAdjustValue sets adjust value i (0-based).
func (c *Collector) SetAdjustValue(seq uint32, i int, v int32) { c.shape(seq).Adjust[i] = v }

// SetShapeRotation sets the counter-clockwise rotation in degrees.
func (c *Collector) SetShapeRotation(seq uint32, deg float64) { c.shape(seq).Rotation = &deg }

// SetShapeFlip sets the mirror flags.
func (c *Collector) SetShapeFlip(seq uint32, h, v bool) {
	s := c.shape(seq)
	s.FlipH, s.FlipV = h, v
}

// SetShapeCustomPath overrides the catalog geometry.
func (c *Collector) SetShapeCustomPath(seq uint32, p CustomPath) { c.shape(seq).Path = &p }

// SetShapeClipPath sets the wrap polygon.
func (c *Collector) SetShapeClipPath(seq uint32, v []Vertex) { c.shape(seq).ClipPath = v }

// SetShapeColumns sets the text column layout.
func (c *Collector) SetShapeColumns(seq uint32, n int, spacing uint32) {
	s := c.shape(seq)
	s.Columns, s.ColumnSpacing = n, spacing
}

// SetShapePage records the page a top-level shape lives on.
func (c *Collector) SetShapePage(seq, page uint32) { c.shape(seq).PageSeqNum = &page }

// SetWidth sets the page width in inches.
func (c *Collector) SetWidth(inches float64) { c.width = inches }

// SetHeight sets the page height in inches.
func (c *Collector) SetHeight(inches float64) { c.height = inches }

// Size returns the page size in inches.
func (c *Collector) Size() (float64, float64) { return c.width, c.height }

func (c *Collector) page(seq uint32) *PageInfo {
	p, ok := c.pages[seq]
	if !ok {
		p = &PageInfo{SeqNum: seq}
		c.pages[seq] = p
		c.pageOrder = append(c.pageOrder, seq)
	}
	return p
}

// AddPage records a page. Pages are emitted in the order they are added.
func (c *Collector) AddPage(seq uint32) { c.page(seq) }

// Page returns the page recorded under seq.
func (c *Collector) Page(seq uint32) (*PageInfo, bool) {
	p, ok := c.pages[seq]
	return p, ok
}

// Pages returns the pages in recorded order.
func (c *Collector) Pages() []*PageInfo {
	out := make([]*PageInfo, 0, len(c.pageOrder))
	for _, seq := range c.pageOrder {
		out = append(out, c.pages[seq])
	}
	return out
}

func (c *Collector) SetPageKind(seq uint32, k PageKind) { c.page(seq).Kind = k }
func (c *Collector) SetMasterPage(seq, master uint32)   { c.page(seq).MasterSeqNum = &master }

// SetPageBackground marks shape bg as the background of page seq.
func (c *Collector) SetPageBackground(seq, bg uint32) {
	c.page(seq).BackgroundSeqNum = &bg
	c.shape(bg).IsBackground = true
}

// AddPaletteColor appends a palette entry.
func (c *Collector) AddPaletteColor(col Color) { c.palette = append(c.palette, col) }

// SetPalette replaces the palette.
func (c *Collector) SetPalette(p []Color) { c.palette = slices.Clone(p) }

// Palette returns the current palette.
func (c *Collector) Palette() []Color { return c.palette }

// AddFont appends a font name; spans refer to fonts by index.
func (c *Collector) AddFont(name string) { c.fonts = append(c.fonts, name) }

// Fonts returns the font table.
func (c *Collector) Fonts() []string { return c.fonts }

// AddImage stores a picture and returns its 1-based index.
func (c *Collector) AddImage(img Image) uint32 {
	c.images = append(c.images, img)
	return uint32(len(c.images))
}

// Image returns the picture at a 1-based index.
func (c *Collector) Image(index uint32) (Image, bool) {
	if index == 0 || int(index) > len(c.images) {
		return Image{}, false
	}
	img := c.images[index-1]
	return img, img.Type != ImageUnknown
}

// AddBorderArt stores the pieces of one border art frame and returns its
// 0-based index.
func (c *Collector) AddBorderArt(pieces []Image) uint32 {
	c.borderArts = append(c.borderArts, pieces)
	return uint32(len(c.borderArts) - 1)
}

// AddTextBlock stores the text of id.
func (c *Collector) AddTextBlock(id uint32, text TextBlock) { c.textBlocks[id] = text }

// TextBlock returns the text stored under id.
func (c *Collector) TextBlock(id uint32) (TextBlock, bool) {
	t, ok := c.textBlocks[id]
	return t, ok
}

func (c *Collector) AddCharacterStyle(s CharacterStyle)        { c.charStyles = append(c.charStyles, s) }
func (c *Collector) AddParagraphStyle(s ParagraphStyle)        { c.paraStyles = append(c.paraStyles, s) }
func (c *Collector) SetDefaultCharacterStyle(s CharacterStyle) { c.defaultCharStyle = s }
func (c *Collector) SetDefaultParagraphStyle(s ParagraphStyle) { c.defaultParaStyle = s }

// CharacterStyleAt returns style i of the style sheet.
func (c *Collector) CharacterStyleAt(i int) (CharacterStyle, bool) {
	if i < 0 || i >= len(c.charStyles) {
		return CharacterStyle{}, false
	}
	return c.charStyles[i], true
}

// ParagraphStyleAt returns style i of the style sheet.
func (c *Collector) ParagraphStyleAt(i int) (ParagraphStyle, bool) {
	if i < 0 || i >= len(c.paraStyles) {
		return ParagraphStyle{}, false
	}
	return c.paraStyles[i], true
}

// SetLanguage sets the document LCID.
func (c *Collector) SetLanguage(lcid uint16) { c.language = lcid }

// Language returns the document LCID.
func (c *Collector) Language() uint16 { return c.language }

// Tree returns the grouping hierarchy.
func (c *Collector) Tree() *GroupTree { return c.tree }

// BeginGroup opens a group in the hierarchy.
func (c *Collector) BeginGroup() error {
	_, err := c.tree.BeginGroup()
	return err
}

// EndGroup closes the current group.
func (c *Collector) EndGroup() { c.tree.EndGroup() }

// SetCurrentGroupSeqNum binds the open group to seq.
func (c *Collector) SetCurrentGroupSeqNum(seq uint32) { c.tree.SetCurrentGroupSeqNum(seq) }

// SetShapeOrder appends seq to the open group in drawing order.
func (c *Collector) SetShapeOrder(seq uint32) { c.tree.SetShapeOrder(seq) }

// AttachShape adds seq to the group parent (nil = top level).
func (c *Collector) AttachShape(seq uint32, parent *uint32, isGroup bool) {
	c.tree.Attach(seq, parent, isGroup)
}

const minPaletteSize = 8

// Go finishes the document model and emits it.
func (c *Collector) Go() error {
	if !c.ready {
		if len(c.palette) < minPaletteSize {
			c.palette = append([]Color{ColorBlack}, c.palette...)
		}
		c.setup()
		c.assignPages()
		c.ready = true
	}
	return newEmitter(c).emit()
}

// Paint emits the collected document on painter.
func (c *Collector) Paint(painter Painter) error {
	c.painter = painter
	return c.Go()
}

// setup synthesizes implied fills and computes each node's local transform.
func (c *Collector) setup() {
	for _, s := range c.shapes {
		if s.Fill == nil && s.ImageIndex != nil && *s.ImageIndex != 0 {
			s.Fill = &ImageFill{ImageIndex: *s.ImageIndex}
		}
	}
	for i := 0; i < c.tree.Len(); i++ {
		n := c.tree.Node(NodeID(i))
		if n.SeqNum == nil {
			continue
		}
		s, ok := c.shapes[*n.SeqNum]
		if !ok || s.Coordinates == nil {
			continue
		}
		n.Transform = c.localTransform(s)
	}
}

// localTransform rotates and mirrors a shape around its own center.
func (c *Collector) localTransform(s *ShapeInfo) Transform {
	t := FlipTransform(s.FlipH, s.FlipV)
	if s.Rotation != nil && *s.Rotation != 0 {
		t = RotationTransform(degToRad(*s.Rotation)).Mul(t)
	}
	if t.IsIdentity() {
		return t
	}
	cx, cy := s.Coordinates.ToPage(c.width, c.height).Center()
	return TransformWithOrigin(t, cx, cy)
}

// assignPages distributes the top-level nodes over their pages.
func (c *Collector) assignPages() {
	for _, p := range c.pages {
		p.Roots = p.Roots[:0]
	}
	for _, id := range c.tree.Roots() {
		n := c.tree.Node(id)
		if n.SeqNum == nil {
			continue
		}
		s, ok := c.shapes[*n.SeqNum]
		if !ok || s.PageSeqNum == nil {
			c.logger.Debug("shape without page", Uint32("seq", *n.SeqNum))
			continue
		}
		if s.IsBackground {
			continue
		}
		p, ok := c.pages[*s.PageSeqNum]
		if !ok {
			c.logger.Warn("shape on unknown page", Uint32("seq", *n.SeqNum), Uint32("page", *s.PageSeqNum))
			continue
		}
		p.Roots = append(p.Roots, id)
	}
}

func sortedKeys[V any](m map[uint32]V) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
