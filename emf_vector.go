package gopublisher

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Enhanced metafile record types.
const (
	emrHeader              = 0x01
	emrPolyBezier          = 0x02
	emrPolygon             = 0x03
	emrPolyline            = 0x04
	emrPolyBezierTo        = 0x05
	emrPolylineTo          = 0x06
	emrSetWindowExtEx      = 0x09
	emrSetWindowOrgEx      = 0x0A
	emrSetViewportExtEx    = 0x0B
	emrSetViewportOrgEx    = 0x0C
	emrEOF                 = 0x0E
	emrMoveToEx            = 0x1B
	emrSelectObject        = 0x25
	emrCreatePen           = 0x26
	emrCreateBrushIndirect = 0x27
	emrDeleteObject        = 0x28
	emrEllipse             = 0x2A
	emrRectangle           = 0x2B
	emrLineTo              = 0x36
	emrBeginPath           = 0x3B
	emrEndPath             = 0x3C
	emrCloseFigure         = 0x3D
	emrFillPath            = 0x3E
	emrStrokeAndFillPath   = 0x3F
	emrStrokePath          = 0x40
	emrSelectClipPath      = 0x43
	emrAbortPath           = 0x44
	emrPolyBezier16        = 0x55
	emrPolygon16           = 0x56
	emrPolyline16          = 0x57
	emrPolyBezierTo16      = 0x58
	emrPolylineTo16        = 0x59
	emrPolyPolygon16       = 0x5B
	emrExtCreatePen        = 0x5F
)

// Stock objects selectable without creation.
const (
	stockWhiteBrush = 0x80000000
	stockBlackBrush = 0x80000004
	stockNullBrush  = 0x80000005
	stockWhitePen   = 0x80000006
	stockBlackPen   = 0x80000007
	stockNullPen    = 0x80000008
)

const (
	penStyleNull   = 5
	brushStyleNull = 1

	emfMaxPixels      = 4096
	emfBezierSteps    = 16
	emfEllipseSegment = 32
)

var emfSignature = [4]byte{' ', 'E', 'M', 'F'}

type emfPoint struct{ x, y float32 }

type emfFigure struct {
	pts    []emfPoint
	closed bool
}

type emfPen struct {
	null  bool
	width float64 // logical units
	color color.RGBA
}

type emfBrush struct {
	null  bool
	color color.RGBA
}

type emfRecord struct {
	typ  uint32
	body *stream
}

// emfPlayer replays the drawing records of an enhanced metafile onto an
// RGBA image. Only solid pens and brushes are honoured; text, bitmaps and
// clipping are ignored.
type emfPlayer struct {
	dst *image.RGBA
	z   *vector.Rasterizer

	// device bounds origin and device-to-pixel scale
	originX, originY float64
	scale            float64

	winOrg, winExt [2]float64
	vpOrg, vpExt   [2]float64

	pens    map[uint32]emfPen
	brushes map[uint32]emfBrush
	pen     emfPen
	brush   emfBrush

	cur     emfPoint
	inPath  bool
	figures []emfFigure
	drawn   bool
}

// rasterizeEMF draws an enhanced metafile at dpi. The image covers the
// header's device bounds; its pixel size follows the header frame.
func rasterizeEMF(data []byte, dpi float64) (image.Image, error) {
	records, err := splitEMFRecords(data)
	if err != nil {
		return nil, err
	}
	hdr := fieldReader{s: records[0].body}
	boundsL, boundsT := hdr.i32(8), hdr.i32(12)
	boundsR, boundsB := hdr.i32(16), hdr.i32(20)
	frameL, frameR := hdr.i32(24), hdr.i32(32)
	if hdr.err != nil {
		return nil, fmt.Errorf("metafile header: %w", hdr.err)
	}
	devW, devH := float64(boundsR-boundsL+1), float64(boundsB-boundsT+1)
	if devW <= 1 || devH <= 1 {
		return nil, fmt.Errorf("metafile bounds %dx%d: %w", int(devW), int(devH), ErrUnsupportedFormat)
	}
	scale := 1.0
	if frameR > frameL && dpi > 0 {
		// frame is in hundredths of a millimetre
		scale = float64(frameR-frameL) / 2540 * dpi / devW
	}
	scale = min(scale, emfMaxPixels/devW, emfMaxPixels/devH)
	w := max(1, int(math.Ceil(devW*scale)))
	h := max(1, int(math.Ceil(devH*scale)))

	e := &emfPlayer{
		dst:     image.NewRGBA(image.Rect(0, 0, w, h)),
		z:       vector.NewRasterizer(w, h),
		originX: float64(boundsL),
		originY: float64(boundsT),
		scale:   scale,
		winExt:  [2]float64{1, 1},
		vpExt:   [2]float64{1, 1},
		pens:    map[uint32]emfPen{},
		brushes: map[uint32]emfBrush{},
		pen:     emfPen{color: color.RGBA{A: 0xFF}},
		brush:   emfBrush{color: color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}},
	}
	e.z.DrawOp = draw.Over
	for i, rec := range records[1:] {
		if rec.typ == emrEOF {
			break
		}
		if rec.typ == emrFillPath && isClipFill(records[i+2:]) {
			e.figures = nil
			continue
		}
		if err := e.play(rec); err != nil {
			return nil, fmt.Errorf("metafile record %#x: %w", rec.typ, err)
		}
	}
	if !e.drawn {
		return nil, fmt.Errorf("metafile draws nothing: %w", ErrUnsupportedFormat)
	}
	return e.dst, nil
}

func splitEMFRecords(data []byte) ([]emfRecord, error) {
	s := newStream(data)
	var records []emfRecord
	for s.StillReading(s.Len()) {
		typ, err := s.ReadU32()
		if err != nil {
			return nil, err
		}
		size, err := s.ReadU32()
		if err != nil {
			return nil, err
		}
		if size < 8 {
			return nil, fmt.Errorf("record size %d: %w", size, ErrEndOfStream)
		}
		body, err := s.Section(s.Tell()-8, int64(size))
		if err != nil {
			return nil, err
		}
		if err := s.Skip(int64(size) - 8); err != nil {
			return nil, err
		}
		records = append(records, emfRecord{typ: typ, body: body})
		if typ == emrEOF {
			break
		}
	}
	if len(records) == 0 || records[0].typ != emrHeader || records[0].body.Len() < 44 ||
		[4]byte(records[0].body.data[40:44]) != emfSignature {
		return nil, fmt.Errorf("no metafile header: %w", ErrUnsupportedFormat)
	}
	return records, nil
}

// isClipFill reports whether a path fill is followed by a figure close and
// an abort, the sequence some writers use to set up clipping.
func isClipFill(next []emfRecord) bool {
	return len(next) >= 2 && next[0].typ == emrCloseFigure && next[1].typ == emrAbortPath
}

// toImage maps logical coordinates to image pixels.
func (e *emfPlayer) toImage(lx, ly int64) emfPoint {
	dx := (float64(lx)-e.winOrg[0])*e.vpExt[0]/e.winExt[0] + e.vpOrg[0]
	dy := (float64(ly)-e.winOrg[1])*e.vpExt[1]/e.winExt[1] + e.vpOrg[1]
	return emfPoint{
		x: float32((dx - e.originX) * e.scale),
		y: float32((dy - e.originY) * e.scale),
	}
}

func colorRef(r *fieldReader, off int64) color.RGBA {
	return color.RGBA{r.u8(off), r.u8(off + 1), r.u8(off + 2), 0xFF}
}

func (e *emfPlayer) play(rec emfRecord) error {
	r := fieldReader{s: rec.body}
	pair := func() [2]float64 { return [2]float64{float64(r.i32(8)), float64(r.i32(12))} }
	nonZero := func(v [2]float64) [2]float64 {
		if v[0] == 0 || v[1] == 0 {
			return [2]float64{1, 1}
		}
		return v
	}
	switch rec.typ {
	case emrSetWindowExtEx:
		e.winExt = nonZero(pair())
	case emrSetWindowOrgEx:
		e.winOrg = pair()
	case emrSetViewportExtEx:
		e.vpExt = nonZero(pair())
	case emrSetViewportOrgEx:
		e.vpOrg = pair()
	case emrCreatePen:
		e.pens[r.u32(8)] = emfPen{
			null:  r.u32(12) == penStyleNull,
			width: float64(r.i32(16)),
			color: colorRef(&r, 24),
		}
	case emrExtCreatePen:
		e.pens[r.u32(8)] = emfPen{
			null:  r.u32(28)&0x0F == penStyleNull,
			width: float64(r.u32(32)),
			color: colorRef(&r, 40),
		}
	case emrCreateBrushIndirect:
		e.brushes[r.u32(8)] = emfBrush{null: r.u32(12) == brushStyleNull, color: colorRef(&r, 16)}
	case emrDeleteObject:
		ih := r.u32(8)
		delete(e.pens, ih)
		delete(e.brushes, ih)
	case emrSelectObject:
		e.selectObject(r.u32(8))
	case emrMoveToEx:
		p := e.toImage(r.i32(8), r.i32(12))
		if e.inPath {
			e.figures = append(e.figures, emfFigure{pts: []emfPoint{p}})
		}
		e.cur = p
	case emrLineTo:
		e.extend([]emfPoint{e.toImage(r.i32(8), r.i32(12))})
	case emrRectangle, emrEllipse:
		l, t, rt, b := r.i32(8), r.i32(12), r.i32(16), r.i32(20)
		if r.err != nil {
			return r.err
		}
		if rec.typ == emrRectangle {
			e.shape(emfFigure{pts: []emfPoint{e.toImage(l, t), e.toImage(rt, t), e.toImage(rt, b), e.toImage(l, b)}, closed: true}, true)
		} else {
			e.shape(e.ellipse(l, t, rt, b), true)
		}
	case emrPolygon, emrPolygon16, emrPolyline, emrPolyline16:
		pts, err := e.polyPoints(&r, rec.typ == emrPolygon16 || rec.typ == emrPolyline16)
		if err != nil || len(pts) == 0 {
			return err
		}
		closed := rec.typ == emrPolygon || rec.typ == emrPolygon16
		e.shape(emfFigure{pts: pts, closed: closed}, closed)
		e.cur = pts[len(pts)-1]
	case emrPolylineTo, emrPolylineTo16:
		pts, err := e.polyPoints(&r, rec.typ == emrPolylineTo16)
		if err != nil || len(pts) == 0 {
			return err
		}
		e.extend(pts)
	case emrPolyBezier, emrPolyBezier16:
		pts, err := e.polyPoints(&r, rec.typ == emrPolyBezier16)
		if err != nil || len(pts) < 4 {
			return err
		}
		e.cur = pts[0]
		if e.inPath {
			e.figures = append(e.figures, emfFigure{pts: []emfPoint{pts[0]}})
		}
		e.extend(flattenBeziers(pts[0], pts[1:]))
	case emrPolyBezierTo, emrPolyBezierTo16:
		pts, err := e.polyPoints(&r, rec.typ == emrPolyBezierTo16)
		if err != nil || len(pts) < 3 {
			return err
		}
		e.extend(flattenBeziers(e.cur, pts))
	case emrPolyPolygon16:
		figs, err := e.polyPolygon(&r)
		if err != nil {
			return err
		}
		if e.inPath {
			e.figures = append(e.figures, figs...)
		} else {
			e.fill(figs)
			e.stroke(figs)
		}
	case emrBeginPath:
		e.inPath = true
		e.figures = nil
	case emrEndPath:
		e.inPath = false
	case emrCloseFigure:
		if n := len(e.figures); n > 0 {
			e.figures[n-1].closed = true
		}
	case emrFillPath:
		e.fill(e.figures)
		e.figures = nil
	case emrStrokeAndFillPath:
		for i := range e.figures {
			e.figures[i].closed = true
		}
		e.fill(e.figures)
		e.stroke(e.figures)
		e.figures = nil
	case emrStrokePath:
		e.stroke(e.figures)
		e.figures = nil
	case emrAbortPath, emrSelectClipPath:
		e.inPath = false
		e.figures = nil
	}
	return r.err
}

func (e *emfPlayer) selectObject(ih uint32) {
	switch ih {
	case stockWhiteBrush:
		e.brush = emfBrush{color: color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}}
	case stockBlackBrush:
		e.brush = emfBrush{color: color.RGBA{A: 0xFF}}
	case stockNullBrush:
		e.brush = emfBrush{null: true}
	case stockWhitePen:
		e.pen = emfPen{color: color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}}
	case stockBlackPen:
		e.pen = emfPen{color: color.RGBA{A: 0xFF}}
	case stockNullPen:
		e.pen = emfPen{null: true}
	default:
		if b, ok := e.brushes[ih]; ok {
			e.brush = b
		}
		if p, ok := e.pens[ih]; ok {
			e.pen = p
		}
	}
}

// polyPoints reads the point array shared by the poly records: a bounds
// rectangle, a count, then 16- or 32-bit pairs.
func (e *emfPlayer) polyPoints(r *fieldReader, short bool) ([]emfPoint, error) {
	n := r.u32(24)
	if r.err != nil {
		return nil, r.err
	}
	return e.readPoints(r, 28, n, short)
}

func (e *emfPlayer) readPoints(r *fieldReader, off int64, n uint32, short bool) ([]emfPoint, error) {
	size := int64(8)
	if short {
		size = 4
	}
	if off+int64(n)*size > r.s.Len() {
		return nil, fmt.Errorf("%d points: %w", n, ErrEndOfStream)
	}
	pts := make([]emfPoint, n)
	for i := range pts {
		at := off + int64(i)*size
		if short {
			pts[i] = e.toImage(r.i16(at), r.i16(at+2))
		} else {
			pts[i] = e.toImage(r.i32(at), r.i32(at+4))
		}
	}
	return pts, r.err
}

func (e *emfPlayer) polyPolygon(r *fieldReader) ([]emfFigure, error) {
	polys := r.u32(24)
	if r.err != nil {
		return nil, r.err
	}
	if 32+int64(polys)*4 > r.s.Len() {
		return nil, fmt.Errorf("%d polygons: %w", polys, ErrEndOfStream)
	}
	off := 32 + int64(polys)*4
	figs := make([]emfFigure, 0, polys)
	for i := int64(0); i < int64(polys); i++ {
		n := r.u32(32 + i*4)
		pts, err := e.readPoints(r, off, n, true)
		if err != nil {
			return nil, err
		}
		figs = append(figs, emfFigure{pts: pts, closed: true})
		off += int64(n) * 4
	}
	return figs, nil
}

func (e *emfPlayer) ellipse(l, t, r, b int64) emfFigure {
	cx, cy := float64(l+r)/2, float64(t+b)/2
	rx, ry := float64(r-l)/2, float64(b-t)/2
	pts := make([]emfPoint, emfEllipseSegment)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / emfEllipseSegment
		pts[i] = e.toImage(int64(math.Round(cx+rx*math.Cos(a))), int64(math.Round(cy+ry*math.Sin(a))))
	}
	return emfFigure{pts: pts, closed: true}
}

// flattenBeziers approximates consecutive cubic curves starting at p0;
// ctrl holds (control, control, end) triples.
func flattenBeziers(p0 emfPoint, ctrl []emfPoint) []emfPoint {
	out := make([]emfPoint, 0, len(ctrl)/3*emfBezierSteps)
	for i := 0; i+2 < len(ctrl); i += 3 {
		c1, c2, p3 := ctrl[i], ctrl[i+1], ctrl[i+2]
		for step := 1; step <= emfBezierSteps; step++ {
			t := float32(step) / emfBezierSteps
			it := 1 - t
			a, b, c, d := it*it*it, 3*it*it*t, 3*it*t*t, t*t*t
			out = append(out, emfPoint{
				x: a*p0.x + b*c1.x + c*c2.x + d*p3.x,
				y: a*p0.y + b*c1.y + c*c2.y + d*p3.y,
			})
		}
		p0 = p3
	}
	return out
}

// shape adds a figure to the open path or draws it at once.
func (e *emfPlayer) shape(fig emfFigure, filled bool) {
	if e.inPath {
		e.figures = append(e.figures, fig)
		return
	}
	figs := []emfFigure{fig}
	if filled {
		e.fill(figs)
	}
	e.stroke(figs)
}

// extend continues from the current position.
func (e *emfPlayer) extend(pts []emfPoint) {
	if len(pts) == 0 {
		return
	}
	if e.inPath {
		if n := len(e.figures); n == 0 || e.figures[n-1].closed {
			e.figures = append(e.figures, emfFigure{pts: []emfPoint{e.cur}})
		}
		last := &e.figures[len(e.figures)-1]
		last.pts = append(last.pts, pts...)
	} else {
		e.stroke([]emfFigure{{pts: append([]emfPoint{e.cur}, pts...)}})
	}
	e.cur = pts[len(pts)-1]
}

func (e *emfPlayer) paint(c color.RGBA) {
	e.z.Draw(e.dst, e.dst.Bounds(), image.NewUniform(c), image.Point{})
	e.drawn = true
}

func (e *emfPlayer) fill(figs []emfFigure) {
	if e.brush.null {
		return
	}
	b := e.dst.Bounds()
	e.z.Reset(b.Dx(), b.Dy())
	found := false
	for _, f := range figs {
		if len(f.pts) < 3 {
			continue
		}
		e.z.MoveTo(f.pts[0].x, f.pts[0].y)
		for _, p := range f.pts[1:] {
			e.z.LineTo(p.x, p.y)
		}
		e.z.ClosePath()
		found = true
	}
	if found {
		e.paint(e.brush.color)
	}
}

// stroke outlines every segment with a quad of the pen width.
func (e *emfPlayer) stroke(figs []emfFigure) {
	if e.pen.null {
		return
	}
	half := float32(max(1, e.pen.width*math.Abs(e.vpExt[0]/e.winExt[0])*e.scale) / 2)
	b := e.dst.Bounds()
	e.z.Reset(b.Dx(), b.Dy())
	found := false
	segment := func(p, q emfPoint) {
		dx, dy := q.x-p.x, q.y-p.y
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			return
		}
		nx, ny := -dy/l*half, dx/l*half
		e.z.MoveTo(p.x+nx, p.y+ny)
		e.z.LineTo(q.x+nx, q.y+ny)
		e.z.LineTo(q.x-nx, q.y-ny)
		e.z.LineTo(p.x-nx, p.y-ny)
		e.z.ClosePath()
		found = true
	}
	for _, f := range figs {
		for i := 0; i+1 < len(f.pts); i++ {
			segment(f.pts[i], f.pts[i+1])
		}
		if f.closed && len(f.pts) > 2 {
			segment(f.pts[len(f.pts)-1], f.pts[0])
		}
	}
	if found {
		e.paint(e.pen.color)
	}
}
