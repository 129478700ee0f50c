package gopublisher

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	xhtmlNamespace = "http://www.w3.org/1999/xhtml"
	svgNamespace   = "http://www.w3.org/2000/svg"
	xhtmlPublicID  = "-//W3C//DTD XHTML 1.1 plus MathML 2.0 plus SVG 1.1//EN"
	xhtmlSystemID  = "http://www.w3.org/2002/04/xhtml-math-svg/xhtml-math-svg.dtd"
)

// SVGPainter builds an XHTML document holding one inline SVG per page.
// Coordinates are written in points.
type SVGPainter struct {
	opts   *SVGOptions
	logger Logger

	doc   *html.Node
	body  *html.Node
	page  *html.Node
	defs  *html.Node
	open  []*html.Node
	style PropertyList

	pages  int
	nextID int
	arrow  string
}

// NewSVGPainter returns a painter configured by opts; nil means
// DefaultSVGOptions.
func NewSVGPainter(opts *SVGOptions) *SVGPainter {
	if opts == nil {
		opts = DefaultSVGOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = NopLogger{}
	}
	return &SVGPainter{opts: opts, logger: logger}
}

// Pages returns the number of pages drawn so far.
func (s *SVGPainter) Pages() int { return s.pages }

// Render writes the document as XHTML. It fails before StartDocument.
func (s *SVGPainter) Render(w io.Writer) error {
	if s.doc == nil {
		return errors.New("svg painter: no document")
	}
	if _, err := io.WriteString(w, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"); err != nil {
		return err
	}
	return html.Render(w, s.doc)
}

func element(name string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: name, DataAtom: atom.Lookup([]byte(name))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func (s *SVGPainter) top() *html.Node {
	if len(s.open) == 0 {
		return s.body
	}
	return s.open[len(s.open)-1]
}

func (s *SVGPainter) push(n *html.Node) {
	s.add(n)
	s.open = append(s.open, n)
}

func (s *SVGPainter) pop() {
	if len(s.open) > 0 {
		s.open = s.open[:len(s.open)-1]
	}
}

func (s *SVGPainter) add(n *html.Node) *html.Node {
	if s.top() == nil {
		s.logger.Debug("drawing outside a document", String("element", n.Data))
		return n
	}
	s.top().AppendChild(n)
	return n
}

func (s *SVGPainter) newID(prefix string) string {
	s.nextID++
	return prefix + strconv.Itoa(s.nextID)
}

// pt converts an inch property to a point string.
func pt(props PropertyList, key string) string {
	p, ok := props.Get(key)
	if !ok {
		return "0"
	}
	return formatNumber(p.Num * pointsPerInch)
}

func (s *SVGPainter) StartDocument(props PropertyList) {
	s.doc = &html.Node{Type: html.DocumentNode}
	s.doc.AppendChild(&html.Node{
		Type: html.DoctypeNode,
		Data: "html",
		Attr: []html.Attribute{{Key: "public", Val: xhtmlPublicID}, {Key: "system", Val: xhtmlSystemID}},
	})
	root := element("html", "xmlns", xhtmlNamespace)
	if lang := props.GetString("dc:language"); lang != "" {
		setAttr(root, "xml:lang", lang)
		setAttr(root, "lang", lang)
	}
	head := element("head")
	title := element("title")
	title.AppendChild(&html.Node{Type: html.TextNode, Data: "Publication"})
	head.AppendChild(element("meta", "http-equiv", "Content-Type", "content", "application/xhtml+xml; charset=UTF-8"))
	head.AppendChild(title)
	s.body = element("body")
	root.AppendChild(head)
	root.AppendChild(s.body)
	s.doc.AppendChild(root)
	s.open = nil
	s.pages = 0
}

func (s *SVGPainter) EndDocument() { s.open = nil }

func (s *SVGPainter) StartPage(props PropertyList) {
	if s.body == nil {
		s.StartDocument(NewPropertyList())
	}
	s.open = nil
	s.page = element("svg",
		"xmlns", svgNamespace,
		"version", "1.1",
		"width", props.GetString("svg:width"),
		"height", props.GetString("svg:height"),
		"viewBox", "0 0 "+pt(props, "svg:width")+" "+pt(props, "svg:height"),
	)
	s.defs = nil
	s.arrow = ""
	s.push(s.page)
	s.pages++
}

func (s *SVGPainter) EndPage() {
	s.open = nil
	s.page = nil
}

func (s *SVGPainter) StartLayer(PropertyList) { s.push(element("g")) }
func (s *SVGPainter) EndLayer()               { s.pop() }

// SetStyle replaces the style used by the following drawing calls.
func (s *SVGPainter) SetStyle(props PropertyList) {
	s.style = NewPropertyList()
	s.style.Merge(props)
	s.style.SetBinary(props.Binary())
}

func (s *SVGPainter) definitions() *html.Node {
	if s.defs == nil {
		s.defs = element("defs")
		if s.page != nil {
			s.page.InsertBefore(s.defs, s.page.FirstChild)
		}
	}
	return s.defs
}

// applyStyle writes the current style onto a shape element.
func (s *SVGPainter) applyStyle(n *html.Node) {
	st := s.style
	switch st.GetString("draw:fill") {
	case "solid":
		setAttr(n, "fill", st.GetString("draw:fill-color"))
		if o, ok := st.Get("draw:opacity"); ok {
			setAttr(n, "fill-opacity", formatNumber(o.Num))
		}
	case "gradient":
		setAttr(n, "fill", "url(#"+s.gradient(st)+")")
	case "bitmap":
		if id, ok := s.pattern(st); ok {
			setAttr(n, "fill", "url(#"+id+")")
		} else {
			setAttr(n, "fill", "none")
		}
	default:
		setAttr(n, "fill", "none")
	}

	switch st.GetString("draw:stroke") {
	case "solid", "dash":
		setAttr(n, "stroke", st.GetString("svg:stroke-color"))
		setAttr(n, "stroke-width", pt(st, "svg:stroke-width"))
		if dash := st.GetString("svg:stroke-dasharray"); dash != "" && st.GetString("draw:stroke") == "dash" {
			setAttr(n, "stroke-dasharray", inchesToPoints(dash))
		}
		for _, end := range []string{"start", "end"} {
			if st.Has("draw:marker-" + end) {
				setAttr(n, "marker-"+end, "url(#"+s.arrowMarker()+")")
			}
		}
	default:
		setAttr(n, "stroke", "none")
	}
}

func inchesToPoints(list string) string {
	fields := strings.Fields(list)
	for i, f := range fields {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			fields[i] = formatNumber(v * pointsPerInch)
		}
	}
	return strings.Join(fields, " ")
}

func (s *SVGPainter) arrowMarker() string {
	if s.arrow != "" {
		return s.arrow
	}
	s.arrow = s.newID("arrow")
	m := element("marker",
		"id", s.arrow,
		"viewBox", "0 0 10 10",
		"refX", "5",
		"refY", "5",
		"markerWidth", "4",
		"markerHeight", "4",
		"orient", "auto-start-reverse",
	)
	m.AppendChild(element("path", "d", "M0 0 L10 5 L0 10 Z", "fill", "context-stroke"))
	s.definitions().AppendChild(m)
	return s.arrow
}

func gradientStop(offset, color string, opacity float64) *html.Node {
	return element("stop", "offset", offset, "stop-color", color, "stop-opacity", formatNumber(opacity))
}

func opacityOf(props PropertyList, key string) float64 {
	if p, ok := props.Get(key); ok {
		return p.Num
	}
	return 1
}

func (s *SVGPainter) gradient(st PropertyList) string {
	id := s.newID("gradient")
	start, end := st.GetString("draw:start-color"), st.GetString("draw:end-color")
	so, eo := opacityOf(st, "librevenge:start-opacity"), opacityOf(st, "librevenge:end-opacity")
	var g *html.Node
	switch style := st.GetString("draw:style"); style {
	case "radial", "rectangular":
		g = element("radialGradient", "id", id)
		g.AppendChild(gradientStop("0", end, eo))
		g.AppendChild(gradientStop("1", start, so))
	default:
		angle := 0.0
		if a, ok := st.Get("draw:angle"); ok {
			angle = a.Num
		}
		g = element("linearGradient",
			"id", id,
			"x1", "0", "y1", "0", "x2", "0", "y2", "1",
			"gradientTransform", "rotate("+formatNumber(-angle)+" 0.5 0.5)",
		)
		g.AppendChild(gradientStop("0", start, so))
		if style == "axial" {
			g.AppendChild(gradientStop("0.5", end, eo))
			g.AppendChild(gradientStop("1", start, so))
		} else {
			g.AppendChild(gradientStop("1", end, eo))
		}
	}
	s.definitions().AppendChild(g)
	return id
}

// pattern stretches the style's bitmap over the shape's bounding box.
func (s *SVGPainter) pattern(st PropertyList) (string, bool) {
	uri, ok := s.imageURI(st.GetString("librevenge:mime-type"), st.Binary())
	if !ok {
		return "", false
	}
	id := s.newID("pattern")
	p := element("pattern",
		"id", id,
		"patternUnits", "objectBoundingBox",
		"patternContentUnits", "objectBoundingBox",
		"width", "1",
		"height", "1",
	)
	p.AppendChild(element("image", "width", "1", "height", "1", "preserveAspectRatio", "none", "href", uri))
	s.definitions().AppendChild(p)
	return id, true
}

func (s *SVGPainter) DrawRectangle(props PropertyList) {
	n := element("rect",
		"x", pt(props, "svg:x"),
		"y", pt(props, "svg:y"),
		"width", pt(props, "svg:width"),
		"height", pt(props, "svg:height"),
	)
	s.applyStyle(n)
	s.add(n)
}

func (s *SVGPainter) DrawEllipse(props PropertyList) {
	n := element("ellipse",
		"cx", pt(props, "svg:cx"),
		"cy", pt(props, "svg:cy"),
		"rx", pt(props, "svg:rx"),
		"ry", pt(props, "svg:ry"),
	)
	if rot, ok := props.Get("librevenge:rotate"); ok && rot.Num != 0 {
		setAttr(n, "transform", "rotate("+formatNumber(-rot.Num)+" "+pt(props, "svg:cx")+" "+pt(props, "svg:cy")+")")
	}
	s.applyStyle(n)
	s.add(n)
}

func (s *SVGPainter) DrawPolygon(props PropertyList) {
	pts := props.Points()
	if len(pts) < 2 {
		return
	}
	scaled := make([]Point, len(pts))
	for i, p := range pts {
		scaled[i] = Point{X: p.X * pointsPerInch, Y: p.Y * pointsPerInch}
	}
	n := element("polygon", "points", pointList(scaled))
	s.applyStyle(n)
	s.add(n)
}

func (s *SVGPainter) DrawPath(props PropertyList) {
	path := props.Path()
	if len(path) == 0 {
		return
	}
	n := element("path", "d", PathData(scalePath(path, pointsPerInch)))
	s.applyStyle(n)
	s.add(n)
}

func scalePath(path []PathElement, k float64) []PathElement {
	out := make([]PathElement, len(path))
	for i, e := range path {
		e.X, e.Y = e.X*k, e.Y*k
		e.X1, e.Y1 = e.X1*k, e.Y1*k
		e.X2, e.Y2 = e.X2*k, e.Y2*k
		e.RX, e.RY = e.RX*k, e.RY*k
		out[i] = e
	}
	return out
}

// frameTransform returns the rotation and mirroring of a placed frame.
func frameTransform(props PropertyList) string {
	var parts []string
	x, _ := props.Get("svg:x")
	y, _ := props.Get("svg:y")
	w, _ := props.Get("svg:width")
	h, _ := props.Get("svg:height")
	cx := (x.Num + w.Num/2) * pointsPerInch
	cy := (y.Num + h.Num/2) * pointsPerInch
	if rot, ok := props.Get("librevenge:rotate"); ok && rot.Num != 0 {
		parts = append(parts, fmt.Sprintf("rotate(%s %s %s)", formatNumber(-rot.Num), formatNumber(cx), formatNumber(cy)))
	}
	if props.GetString("draw:mirror-horizontal") == "true" {
		parts = append(parts, fmt.Sprintf("translate(%s %s) scale(-1 1) translate(%s %s)",
			formatNumber(cx), formatNumber(cy), formatNumber(-cx), formatNumber(-cy)))
	}
	return strings.Join(parts, " ")
}

func (s *SVGPainter) DrawGraphicObject(props PropertyList) {
	rect := []string{
		"x", pt(props, "svg:x"),
		"y", pt(props, "svg:y"),
		"width", pt(props, "svg:width"),
		"height", pt(props, "svg:height"),
	}
	var n *html.Node
	if !s.opts.EmbedImages {
		n = element("rect", append(rect, "fill", "none", "stroke", "#808080", "stroke-dasharray", "2 2")...)
	} else {
		uri, ok := s.imageURI(props.GetString("librevenge:mime-type"), props.Binary())
		if !ok {
			return
		}
		n = element("image", append(rect, "preserveAspectRatio", "none", "href", uri)...)
	}
	if t := frameTransform(props); t != "" {
		setAttr(n, "transform", t)
	}
	s.add(n)
}

// imageURI returns a data URI for the picture, converting formats an SVG
// viewer cannot display to PNG.
func (s *SVGPainter) imageURI(mime string, data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	var img image.Image
	var err error
	switch mime {
	case "image/png", "image/jpeg":
		return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), true
	case "image/bmp":
		img, err = bmp.Decode(bytes.NewReader(dibFile(data)))
	case "image/tiff":
		img, err = tiff.Decode(bytes.NewReader(data))
	case "image/emf":
		if !s.opts.RasterizeMetafiles {
			s.logger.Debug("metafile left out", String("mime", mime))
			return "", false
		}
		img, err = rasterizeEMF(data, s.opts.MetafileDPI)
	default:
		s.logger.Warn("image type not displayable", String("mime", mime))
		return "", false
	}
	if err != nil {
		s.logger.Warn("image conversion failed", String("mime", mime), Err(err))
		return "", false
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.logger.Warn("png encoding failed", String("mime", mime), Err(err))
		return "", false
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), true
}

// dibFile prefixes a device-independent bitmap with the file header the
// BMP decoder expects.
func dibFile(dib []byte) []byte {
	r := fieldReader{s: newStream(dib)}
	size := r.u32(0)
	var bits uint16
	var colors, entry uint32 = 0, 4
	masks := uint32(0)
	if size == 12 {
		bits, entry = r.u16(10), 3
	} else {
		bits = r.u16(14)
		colors = r.u32(32)
		if size == 40 && r.u32(16) == 3 {
			masks = 12
		}
	}
	if r.err != nil {
		return dib
	}
	if colors == 0 && bits <= 8 {
		colors = 1 << bits
	}
	out := make([]byte, 0, 14+len(dib))
	out = append(out, 'B', 'M')
	out = binary.LittleEndian.AppendUint32(out, uint32(14+len(dib)))
	out = binary.LittleEndian.AppendUint32(out, 0)
	out = binary.LittleEndian.AppendUint32(out, 14+size+colors*entry+masks)
	return append(out, dib...)
}

func (s *SVGPainter) StartTextObject(props PropertyList) {
	fo := element("foreignObject",
		"x", pt(props, "svg:x"),
		"y", pt(props, "svg:y"),
		"width", pt(props, "svg:width"),
		"height", pt(props, "svg:height"),
	)
	if t := frameTransform(props); t != "" {
		setAttr(fo, "transform", t)
	}
	css := []string{
		"box-sizing:border-box",
		"width:100%",
		"height:100%",
		"display:flex",
		"flex-direction:column",
		"justify-content:" + justifyFor(props.GetString("draw:textarea-vertical-align")),
	}
	for _, side := range []string{"left", "top", "right", "bottom"} {
		if v := props.GetString("fo:padding-" + side); v != "" {
			css = append(css, "padding-"+side+":"+v)
		}
	}
	if n := props.GetString("fo:column-count"); n != "" {
		css = append(css, "column-count:"+n, "column-gap:"+props.GetString("fo:column-gap"), "display:block")
	}
	div := element("div", "xmlns", xhtmlNamespace, "style", strings.Join(css, ";"))
	fo.AppendChild(div)
	s.add(fo)
	s.open = append(s.open, div)
}

func justifyFor(valign string) string {
	switch valign {
	case "middle":
		return "center"
	case "bottom":
		return "flex-end"
	}
	return "flex-start"
}

func (s *SVGPainter) EndTextObject() { s.pop() }

func (s *SVGPainter) OpenParagraph(props PropertyList) {
	css := []string{"margin:0"}
	for _, kv := range [][2]string{
		{"fo:text-align", "text-align"},
		{"fo:line-height", "line-height"},
		{"fo:margin-top", "margin-top"},
		{"fo:margin-bottom", "margin-bottom"},
		{"fo:margin-left", "margin-left"},
		{"fo:margin-right", "margin-right"},
		{"fo:text-indent", "text-indent"},
	} {
		if v := props.GetString(kv[0]); v != "" {
			css = append(css, kv[1]+":"+v)
		}
	}
	s.push(element("p", "style", strings.Join(css, ";")))
}

func (s *SVGPainter) CloseParagraph() { s.pop() }

func (s *SVGPainter) OpenSpan(props PropertyList) {
	var css []string
	for _, kv := range [][2]string{
		{"fo:color", "color"},
		{"fo:font-weight", "font-weight"},
		{"fo:font-style", "font-style"},
		{"fo:font-size", "font-size"},
	} {
		if v := props.GetString(kv[0]); v != "" {
			css = append(css, kv[1]+":"+v)
		}
	}
	if props.Has("style:text-underline-type") {
		css = append(css, "text-decoration:underline")
	}
	if name := props.GetString("style:font-name"); name != "" {
		css = append(css, "font-family:'"+strings.ReplaceAll(name, "'", "")+"'")
	}
	span := element("span", "style", strings.Join(css, ";"))
	if lang := joinTag(props.GetString("fo:language"), props.GetString("fo:country")); lang != "" {
		setAttr(span, "xml:lang", lang)
	}
	s.push(span)
}

func (s *SVGPainter) CloseSpan() { s.pop() }

func (s *SVGPainter) InsertText(text string) {
	s.add(&html.Node{Type: html.TextNode, Data: text})
}

func (s *SVGPainter) InsertLineBreak() { s.add(element("br")) }
