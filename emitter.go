package gopublisher

import (
	"fmt"
	"math"
	"strings"
)

// defaultBorderArtSize is the edge of one border art tile when the frame
// has no line width to size it.
const defaultBorderArtSize = 0.25 // inches

// emitter replays a finished Collector on its Painter.
type emitter struct {
	c      *Collector
	p      Painter
	logger Logger
	width  float64
	height float64
}

func newEmitter(c *Collector) *emitter {
	return &emitter{c: c, p: c.painter, logger: c.logger, width: c.width, height: c.height}
}

func (e *emitter) emit() error {
	if e.p == nil {
		return ErrNoPainter
	}
	pages := 0
	for _, pg := range e.c.Pages() {
		if pg.Kind == PageNormal {
			pages++
		}
	}
	doc := NewPropertyList()
	doc.InsertInt("librevenge:num-pages", pages)
	if lang, country, ok := languageProperties(e.c.language); ok {
		doc.Insert("dc:language", joinTag(lang, country))
	}
	e.p.StartDocument(doc)
	for _, pg := range e.c.Pages() {
		if pg.Kind != PageNormal {
			continue
		}
		e.emitPage(pg)
	}
	e.p.EndDocument()
	return nil
}

func joinTag(lang, country string) string {
	if country == "" {
		return lang
	}
	return lang + "-" + country
}

// emitPage draws the master page content first, then the page's own.
func (e *emitter) emitPage(pg *PageInfo) {
	props := NewPropertyList()
	props.InsertDouble("svg:width", e.width, UnitInch)
	props.InsertDouble("svg:height", e.height, UnitInch)
	e.p.StartPage(props)
	if pg.MasterSeqNum != nil && *pg.MasterSeqNum != pg.SeqNum {
		if m, ok := e.c.Page(*pg.MasterSeqNum); ok && m.Kind == PageMaster {
			e.emitPageContent(m)
		} else {
			e.logger.Warn("unknown master page", Uint32("page", pg.SeqNum), Uint32("master", *pg.MasterSeqNum))
		}
	}
	e.emitPageContent(pg)
	e.p.EndPage()
}

func (e *emitter) emitPageContent(pg *PageInfo) {
	if pg.BackgroundSeqNum != nil {
		if s, ok := e.c.Shape(*pg.BackgroundSeqNum); ok {
			rect := PageRect{Width: e.width, Height: e.height}
			if s.Coordinates != nil {
				rect = s.Coordinates.ToPage(e.width, e.height)
			}
			e.emitShape(s, rect, IdentityTransform())
		}
	}
	tree := e.c.tree
	for _, root := range pg.Roots {
		tree.Walk(root, func(id NodeID, entering bool) {
			n := tree.Node(id)
			if n.IsGroup {
				if entering {
					e.p.StartLayer(NewPropertyList())
				} else {
					e.p.EndLayer()
				}
				return
			}
			if n.SeqNum == nil {
				return
			}
			s, ok := e.c.Shape(*n.SeqNum)
			if !ok || s.Coordinates == nil {
				e.logger.Debug("skipping shape without coordinates", Uint32("seq", *n.SeqNum))
				return
			}
			e.emitShape(s, s.Coordinates.ToPage(e.width, e.height), tree.FoldedTransform(id))
		})
	}
}

// needsLayer reports whether the drawing operations of one shape must be
// wrapped in a layer so they stay together.
func needsLayer(borderArt, fill, stroke, text bool) bool {
	return borderArt && (fill || stroke || text) ||
		stroke && fill ||
		stroke && text ||
		fill && text
}

func (e *emitter) emitShape(s *ShapeInfo, rect PageRect, t Transform) {
	cs := s.Geometry()
	path := buildShapePath(cs, s.Adjust, rect)
	outline := transformPath(path.Elements, t)

	var text TextBlock
	hasText := false
	if s.TextID != nil {
		text, hasText = e.c.TextBlock(*s.TextID)
		if !hasText {
			e.logger.Warn("missing text block", Uint32("seq", s.SeqNum), Err(fmt.Errorf("text %d: %w", *s.TextID, ErrMalformedReference)))
		}
	}
	hasText = hasText && len(text) > 0
	var borderArt []Image
	if s.BorderArtIndex != nil {
		if i := int(*s.BorderArtIndex); i < len(e.c.borderArts) {
			borderArt = e.c.borderArts[i]
		} else {
			e.logger.Warn("missing border art", Uint32("seq", s.SeqNum), Err(fmt.Errorf("border art %d: %w", i, ErrMalformedReference)))
		}
	}
	hasFill := s.HasFill() && !path.NoFill && !cs.Open
	hasStroke := s.HasStroke() && !path.NoStroke
	hasBorderArt := len(borderArt) > 0

	layered := needsLayer(hasBorderArt, hasFill, hasStroke, hasText)
	if layered {
		e.p.StartLayer(NewPropertyList())
	}
	if s.Shadow != nil && (hasFill || hasStroke) {
		e.emitShadow(s, outline)
	}
	if hasFill {
		e.emitFill(s, rect, outline, t)
	}
	if hasStroke {
		e.emitStroke(s, rect, outline, t)
	}
	if hasBorderArt {
		e.emitBorderArt(s, rect, t, borderArt)
	}
	if hasText {
		e.emitText(s, rect, t, text)
	}
	if layered {
		e.p.EndLayer()
	}
}

func isRectangular(st ShapeType) bool {
	return st == ShapeRectangle || st == ShapeTextBox || st == ShapePictureFrame
}

// drawOutline picks the simplest painter primitive for the outline.
func (e *emitter) drawOutline(s *ShapeInfo, rect PageRect, outline []PathElement, t Transform) {
	props := NewPropertyList()
	st := s.GeometryType()
	switch {
	case s.Path == nil && isRectangular(st) && t.IsIdentity():
		insertRect(&props, rect)
		e.p.DrawRectangle(props)
	case s.Path == nil && st == ShapeEllipse && !t.Flips():
		cx, cy := t.Apply(rect.Center())
		props.InsertDouble("svg:cx", cx, UnitInch)
		props.InsertDouble("svg:cy", cy, UnitInch)
		props.InsertDouble("svg:rx", rect.Width/2, UnitInch)
		props.InsertDouble("svg:ry", rect.Height/2, UnitInch)
		if rot := radToDeg(t.Rotation()); rot != 0 {
			props.InsertDouble("librevenge:rotate", rot, UnitGeneric)
		}
		e.p.DrawEllipse(props)
	default:
		if pts, ok := polygonPoints(outline); ok {
			props.SetPoints(pts)
			e.p.DrawPolygon(props)
			return
		}
		props.SetPath(outline)
		e.p.DrawPath(props)
	}
}

// polygonPoints returns the vertices of a single closed straight-edged
// outline.
func polygonPoints(path []PathElement) ([]Point, bool) {
	if len(path) < 4 || path[0].Action != 'M' || path[len(path)-1].Action != 'Z' {
		return nil, false
	}
	pts := make([]Point, 0, len(path)-1)
	for i, el := range path[:len(path)-1] {
		if i > 0 && el.Action != 'L' {
			return nil, false
		}
		pts = append(pts, Point{X: el.X, Y: el.Y})
	}
	return pts, true
}

func insertRect(props *PropertyList, r PageRect) {
	props.InsertDouble("svg:x", r.X, UnitInch)
	props.InsertDouble("svg:y", r.Y, UnitInch)
	props.InsertDouble("svg:width", r.Width, UnitInch)
	props.InsertDouble("svg:height", r.Height, UnitInch)
}

// placedRect moves r so that its center follows t, and returns the
// rotation t applies in degrees.
func placedRect(r PageRect, t Transform) (PageRect, float64) {
	cx, cy := t.Apply(r.Center())
	r.X, r.Y = cx-r.Width/2, cy-r.Height/2
	return r, radToDeg(t.Rotation())
}

func (e *emitter) emitShadow(s *ShapeInfo, outline []PathElement) {
	props := NewPropertyList()
	props.Insert("draw:fill", "solid")
	props.Insert("draw:fill-color", s.Shadow.Color.GetFinalColor(e.c.palette).Hex())
	if s.Shadow.Opacity > 0 && s.Shadow.Opacity < 1 {
		props.InsertDouble("draw:opacity", s.Shadow.Opacity, UnitPercent)
	}
	props.Insert("draw:stroke", "none")
	e.p.SetStyle(props)
	shifted := NewPropertyList()
	shifted.SetPath(transformPath(outline, TranslationTransform(EMUToInch(s.Shadow.OffsetX), EMUToInch(s.Shadow.OffsetY))))
	e.p.DrawPath(shifted)
}

func (e *emitter) emitFill(s *ShapeInfo, rect PageRect, outline []PathElement, t Transform) {
	props := s.Fill.Resolve(e.c.palette, e.c.Image)
	if props.GetString("draw:fill") == "none" {
		if idx, ok := imageIndexOf(s.Fill); ok {
			e.logger.Warn("missing image", Uint32("seq", s.SeqNum), Err(fmt.Errorf("image %d: %w", idx, ErrMalformedReference)))
		}
		return
	}
	if _, ok := s.Fill.(*ImageFill); ok && s.Path == nil && isRectangular(s.GeometryType()) {
		placed, rot := placedRect(rect, t)
		obj := NewPropertyList()
		insertRect(&obj, placed)
		obj.Insert("librevenge:mime-type", props.GetString("librevenge:mime-type"))
		obj.SetBinary(props.Binary())
		if rot != 0 {
			obj.InsertDouble("librevenge:rotate", rot, UnitGeneric)
		}
		if t.Flips() {
			obj.InsertBool("draw:mirror-horizontal", true)
		}
		e.p.DrawGraphicObject(obj)
		return
	}
	props.Insert("draw:stroke", "none")
	e.p.SetStyle(props)
	e.drawOutline(s, rect, outline, t)
}

func imageIndexOf(f Fill) (uint32, bool) {
	switch f := f.(type) {
	case *ImageFill:
		return f.ImageIndex, true
	case *PatternFill:
		return f.ImageIndex, true
	}
	return 0, false
}

func (e *emitter) strokeProps(s *ShapeInfo, l Line) PropertyList {
	props := NewPropertyList()
	props.Insert("draw:fill", "none")
	props.Insert("draw:stroke", "solid")
	props.Insert("svg:stroke-color", l.Color.GetFinalColor(e.c.palette).Hex())
	width := EMUToInch(int64(l.Width))
	props.InsertDouble("svg:stroke-width", width, UnitInch)
	if s.Dash != nil && s.Dash.Style != DashSolid && len(s.Dash.Dots) > 0 {
		props.Insert("draw:stroke", "dash")
		dots := make([]string, len(s.Dash.Dots))
		for i, d := range s.Dash.Dots {
			dots[i] = formatNumber(d * width)
		}
		props.Insert("svg:stroke-dasharray", strings.Join(dots, " "))
		props.Insert("draw:dot-style", s.Dash.DotStyle)
	}
	if s.Arrows != nil {
		insertArrow(&props, "start", s.Arrows.Start, width)
		insertArrow(&props, "end", s.Arrows.End, width)
	}
	return props
}

func insertArrow(props *PropertyList, end string, a Arrow, lineWidth float64) {
	if a.Style == ArrowNone {
		return
	}
	props.Insert("draw:marker-"+end, a.Style.String())
	props.InsertDouble("draw:marker-"+end+"-width", lineWidth*float64(2+a.Width), UnitInch)
	props.InsertDouble("draw:marker-"+end+"-length", lineWidth*float64(2+a.Length), UnitInch)
}

func (e *emitter) emitStroke(s *ShapeInfo, rect PageRect, outline []PathElement, t Transform) {
	if !s.perSide() {
		for _, l := range s.Lines {
			if l.Present && l.Width > 0 {
				e.p.SetStyle(e.strokeProps(s, l))
				e.drawOutline(s, rect, outline, t)
				return
			}
		}
		return
	}
	tl := Point{rect.X, rect.Y}
	tr := Point{rect.X + rect.Width, rect.Y}
	br := Point{rect.X + rect.Width, rect.Y + rect.Height}
	bl := Point{rect.X, rect.Y + rect.Height}
	sides := [4][2]Point{
		SideLeft:   {bl, tl},
		SideTop:    {tl, tr},
		SideRight:  {tr, br},
		SideBottom: {br, bl},
	}
	for i, l := range s.Lines {
		if !l.Present || l.Width == 0 {
			continue
		}
		e.p.SetStyle(e.strokeProps(s, l))
		seg := []PathElement{
			{Action: 'M', X: sides[i][0].X, Y: sides[i][0].Y},
			{Action: 'L', X: sides[i][1].X, Y: sides[i][1].Y},
		}
		props := NewPropertyList()
		props.SetPath(transformPath(seg, t))
		e.p.DrawPath(props)
	}
}

// emitBorderArt tiles the frame edges: the first piece fills the corners,
// the second (when present) the edges.
func (e *emitter) emitBorderArt(s *ShapeInfo, rect PageRect, t Transform, pieces []Image) {
	size := defaultBorderArtSize
	for _, l := range s.Lines {
		if l.Present && l.Width > 0 {
			size = EMUToInch(int64(l.Width))
			break
		}
	}
	corner := pieces[0]
	edge := pieces[min(1, len(pieces)-1)]
	tile := func(img Image, x, y, w, h float64) {
		placed, rot := placedRect(PageRect{X: x, Y: y, Width: w, Height: h}, t)
		props := NewPropertyList()
		insertRect(&props, placed)
		if rot != 0 {
			props.InsertDouble("librevenge:rotate", rot, UnitGeneric)
		}
		props.Insert("librevenge:mime-type", img.Type.MimeType())
		props.SetBinary(img.Data)
		e.p.DrawGraphicObject(props)
	}
	x0, y0 := rect.X-size, rect.Y-size
	x1, y1 := rect.X+rect.Width, rect.Y+rect.Height
	for _, c := range [4]Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}} {
		tile(corner, c.X, c.Y, size, size)
	}
	if n := int(math.Floor(rect.Width / size)); n > 0 {
		w := rect.Width / float64(n)
		for i := 0; i < n; i++ {
			tile(edge, rect.X+float64(i)*w, y0, w, size)
			tile(edge, rect.X+float64(i)*w, y1, w, size)
		}
	}
	if n := int(math.Floor(rect.Height / size)); n > 0 {
		h := rect.Height / float64(n)
		for i := 0; i < n; i++ {
			tile(edge, x0, rect.Y+float64(i)*h, size, h)
			tile(edge, x1, rect.Y+float64(i)*h, size, h)
		}
	}
}

func (e *emitter) emitText(s *ShapeInfo, rect PageRect, t Transform, text TextBlock) {
	placed, rot := placedRect(rect, t)
	m := s.TextMargins()
	props := NewPropertyList()
	insertRect(&props, placed)
	props.InsertDouble("fo:padding-left", EMUToInch(m.Left), UnitInch)
	props.InsertDouble("fo:padding-top", EMUToInch(m.Top), UnitInch)
	props.InsertDouble("fo:padding-right", EMUToInch(m.Right), UnitInch)
	props.InsertDouble("fo:padding-bottom", EMUToInch(m.Bottom), UnitInch)
	props.Insert("draw:textarea-vertical-align", s.VAlign.String())
	if rot != 0 {
		props.InsertDouble("librevenge:rotate", rot, UnitGeneric)
	}
	if s.Columns > 1 {
		props.InsertInt("fo:column-count", s.Columns)
		props.InsertDouble("fo:column-gap", EMUToInch(int64(s.ColumnSpacing)), UnitInch)
	}
	if s.Table != nil {
		props.InsertInt("librevenge:table-columns", len(s.Table.ColumnWidths))
		props.InsertInt("librevenge:table-rows", len(s.Table.RowHeights))
	}
	e.p.StartTextObject(props)
	for _, para := range text {
		e.p.OpenParagraph(e.paragraphProps(para.Style.merge(e.c.defaultParaStyle)))
		for _, span := range para.Spans {
			e.p.OpenSpan(e.spanProps(span.Style.merge(e.c.defaultCharStyle)))
			for i, line := range strings.Split(span.Text, "\n") {
				if i > 0 {
					e.p.InsertLineBreak()
				}
				if line != "" {
					e.p.InsertText(line)
				}
			}
			e.p.CloseSpan()
		}
		e.p.CloseParagraph()
	}
	e.p.EndTextObject()
}

func (e *emitter) paragraphProps(st ParagraphStyle) PropertyList {
	props := NewPropertyList()
	align := AlignLeft
	if st.Alignment != nil {
		align = *st.Alignment
	}
	props.Insert("fo:text-align", align.String())
	if st.LineSpacing != nil {
		props.InsertDouble("fo:line-height", *st.LineSpacing/100, UnitPercent)
	}
	insertLength := func(key string, v *int64) {
		if v != nil {
			props.InsertDouble(key, EMUToInch(*v), UnitInch)
		}
	}
	insertLength("fo:margin-top", st.SpaceBefore)
	insertLength("fo:margin-bottom", st.SpaceAfter)
	insertLength("fo:margin-left", st.IndentLeft)
	insertLength("fo:margin-right", st.IndentRight)
	insertLength("fo:text-indent", st.IndentFirst)
	return props
}

func (e *emitter) spanProps(st CharacterStyle) PropertyList {
	props := NewPropertyList()
	color := ColorBlack
	if st.Color != nil {
		color = st.Color.GetFinalColor(e.c.palette)
	}
	props.Insert("fo:color", color.Hex())
	if st.Bold != nil && *st.Bold {
		props.Insert("fo:font-weight", "bold")
	}
	if st.Italic != nil && *st.Italic {
		props.Insert("fo:font-style", "italic")
	}
	if st.Underline != nil && *st.Underline {
		props.Insert("style:text-underline-type", "single")
	}
	if st.Size != nil && *st.Size > 0 {
		props.InsertDouble("fo:font-size", *st.Size, UnitPoint)
	}
	if st.FontIndex != nil {
		if i := *st.FontIndex; i >= 0 && i < len(e.c.fonts) {
			props.Insert("style:font-name", e.c.fonts[i])
		} else {
			e.logger.Debug("font index out of range", Err(fmt.Errorf("font %d: %w", i, ErrMalformedReference)))
		}
	}
	lcid := e.c.language
	if st.Language != nil {
		lcid = *st.Language
	}
	if lang, country, ok := languageProperties(lcid); ok {
		props.Insert("fo:language", lang)
		if country != "" {
			props.Insert("fo:country", country)
		}
	}
	return props
}
