package gopublisher

import (
	"fmt"
	"io"
	"strings"

	"github.com/midbel/hexdump"
)

// RawPainter writes every painter call as one line, indented by nesting
// depth. It is the debugging sink of pub2raw.
type RawPainter struct {
	w          io.Writer
	depth      int
	dumpBinary bool
	err        error
}

// NewRawPainter writes the trace to w. With dumpBinary set, image payloads
// are followed by a hex dump.
func NewRawPainter(w io.Writer, dumpBinary bool) *RawPainter {
	return &RawPainter{w: w, dumpBinary: dumpBinary}
}

// Err returns the first write error.
func (r *RawPainter) Err() error { return r.err }

func (r *RawPainter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, strings.Repeat("  ", r.depth)+format+"\n", args...)
}

func (r *RawPainter) call(name string, props PropertyList) {
	var parts []string
	if s := props.String(); s != "" {
		parts = append(parts, s)
	}
	if path := props.Path(); len(path) > 0 {
		parts = append(parts, "svg:d="+PathData(path))
	}
	if pts := props.Points(); len(pts) > 0 {
		parts = append(parts, "svg:points="+pointList(pts))
	}
	if b := props.Binary(); len(b) > 0 {
		parts = append(parts, fmt.Sprintf("office:binary-data=<%d bytes>", len(b)))
	}
	r.printf("%s(%s)", name, strings.Join(parts, ", "))
	if r.dumpBinary && len(props.Binary()) > 0 {
		for _, line := range strings.Split(strings.TrimRight(hexdump.Dump(props.Binary()), "\n"), "\n") {
			r.printf("  %s", line)
		}
	}
}

func (r *RawPainter) open(name string, props PropertyList) {
	r.call(name, props)
	r.depth++
}

func (r *RawPainter) close(name string) {
	if r.depth > 0 {
		r.depth--
	}
	r.printf("%s()", name)
}

func pointList(pts []Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = formatNumber(p.X) + "," + formatNumber(p.Y)
	}
	return strings.Join(parts, " ")
}

func (r *RawPainter) StartDocument(props PropertyList)     { r.open("startDocument", props) }
func (r *RawPainter) EndDocument()                         { r.close("endDocument") }
func (r *RawPainter) StartPage(props PropertyList)         { r.open("startPage", props) }
func (r *RawPainter) EndPage()                             { r.close("endPage") }
func (r *RawPainter) StartLayer(props PropertyList)        { r.open("startLayer", props) }
func (r *RawPainter) EndLayer()                            { r.close("endLayer") }
func (r *RawPainter) SetStyle(props PropertyList)          { r.call("setStyle", props) }
func (r *RawPainter) DrawRectangle(props PropertyList)     { r.call("drawRectangle", props) }
func (r *RawPainter) DrawEllipse(props PropertyList)       { r.call("drawEllipse", props) }
func (r *RawPainter) DrawPolygon(props PropertyList)       { r.call("drawPolygon", props) }
func (r *RawPainter) DrawPath(props PropertyList)          { r.call("drawPath", props) }
func (r *RawPainter) DrawGraphicObject(props PropertyList) { r.call("drawGraphicObject", props) }
func (r *RawPainter) StartTextObject(props PropertyList)   { r.open("startTextObject", props) }
func (r *RawPainter) EndTextObject()                       { r.close("endTextObject") }
func (r *RawPainter) OpenParagraph(props PropertyList)     { r.open("openParagraph", props) }
func (r *RawPainter) CloseParagraph()                      { r.close("closeParagraph") }
func (r *RawPainter) OpenSpan(props PropertyList)          { r.open("openSpan", props) }
func (r *RawPainter) CloseSpan()                           { r.close("closeSpan") }
func (r *RawPainter) InsertText(text string)               { r.printf("insertText(%q)", text) }
func (r *RawPainter) InsertLineBreak()                     { r.printf("insertLineBreak()") }
