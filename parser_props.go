package gopublisher

import "encoding/binary"

// Flag bits of the boolean property words. The high word marks which of
// the low-word bits are meaningful.
const (
	fillBoolFilled   = 0x10
	lineBoolLine     = 0x08
	shadowBoolShadow = 0x02
)

// Fill type values.
const (
	fillSolid       = 0
	fillPattern     = 1
	fillTexture     = 2
	fillPicture     = 3
	fillShade       = 4
	fillShadeCenter = 5
	fillShadeShape  = 6
	fillShadeScale  = 7
	fillShadeTitle  = 8
	fillBackground  = 9
)

const (
	defaultLineWidth    = 9525  // 0.75pt
	defaultShadowOffset = 25400 // 2pt
	defaultShadowColor  = 0x808080
	defaultBackColor    = 0xFFFFFF
)

var lineDashes = map[uint32]DashStyle{
	1:  DashDash,
	2:  DashDot,
	3:  DashDashDot,
	4:  DashDashDotDot,
	5:  DashDot,
	6:  DashDash,
	7:  DashLongDash,
	8:  DashDashDot,
	9:  DashLongDashDot,
	10: DashDashDotDot,
}

// boolProp reads one flag of a boolean property; set is false when the
// document leaves the flag at its default.
func boolProp(v FOPTValues, id uint16, bit uint32) (value, set bool) {
	w, ok := v.value(id)
	if !ok || w&(bit<<16) == 0 {
		return false, false
	}
	return w&bit != 0, true
}

// fixedProp reads a 16.16 property, def when absent.
func fixedProp(v FOPTValues, id uint16, def float64) float64 {
	w, ok := v.value(id)
	if !ok {
		return def
	}
	return fixed16ToFloat(w)
}

func valueOr(v FOPTValues, id uint16, def uint32) uint32 {
	if w, ok := v.value(id); ok {
		return w
	}
	return def
}

// applyProperties copies the drawing properties of one shape into the
// collector.
func (p *parser) applyProperties(seq uint32, v FOPTValues) {
	if id, ok := v.value(propTextID); ok {
		p.c.SetShapeTextID(seq, id)
	}
	if pib, ok := v.value(propPib); ok && pib != 0 {
		p.c.SetShapeImageIndex(seq, pib)
	}
	p.applyTextMargins(seq, v)
	p.applyGeometry(seq, v)
	if f := p.fillFor(v); f != nil {
		p.c.SetShapeFill(seq, f)
	}
	p.applyLines(seq, v)
	if sh := shadowFor(v); sh != nil {
		p.c.SetShapeShadow(seq, sh)
	}
	if wrap, ok := v.Complex[propWrapPolygon]; ok {
		p.c.SetShapeClipPath(seq, parseVertices(wrap))
	}
}

func (p *parser) applyTextMargins(seq uint32, v FOPTValues) {
	m := DefaultMargins
	set := false
	for id, field := range map[uint16]*int64{
		propTextLeft:   &m.Left,
		propTextTop:    &m.Top,
		propTextRight:  &m.Right,
		propTextBottom: &m.Bottom,
	} {
		if w, ok := v.value(id); ok {
			*field = int64(int32(w))
			set = true
		}
	}
	if set {
		p.c.SetShapeMargins(seq, m)
	}
}

func (p *parser) applyGeometry(seq uint32, v FOPTValues) {
	for id := uint16(propAdjustFirst); id <= propAdjustLast; id++ {
		if w, ok := v.value(id); ok {
			p.c.SetAdjustValue(seq, int(id-propAdjustFirst), int32(w))
		}
	}
	data, ok := v.Complex[propVertices]
	if !ok {
		return
	}
	path := CustomPath{
		Vertices: parseVertices(data),
		Width:    valueOr(v, propGeoRight, 0),
		Height:   valueOr(v, propGeoBottom, 0),
	}
	if seg, ok := v.Complex[propSegments]; ok {
		path.Segments = parseSegments(seg)
	}
	if g, ok := v.Complex[propGuides]; ok {
		path.Guides = parseGuides(g)
	}
	if len(path.Vertices) > 0 {
		p.c.SetShapeCustomPath(seq, path)
	}
}

// fillFor builds the fill of a shape, nil when it has none.
func (p *parser) fillFor(v FOPTValues) Fill {
	if filled, set := boolProp(v, propFillBools, fillBoolFilled); set && !filled {
		return nil
	}
	typ := valueOr(v, propFillType, fillSolid)
	fore, hasFore := v.value(propFillColor)
	back := NewColorReference(valueOr(v, propFillBackColor, defaultBackColor))
	opacity := fixedProp(v, propFillOpacity, 1)
	blip := valueOr(v, propFillBlip, 0)

	switch typ {
	case fillSolid:
		if !hasFore {
			return nil
		}
		return &SolidFill{Color: NewColorReference(fore), Opacity: opacity}
	case fillPattern:
		return &PatternFill{ImageIndex: blip, Foreground: NewColorReference(fore), Background: back}
	case fillTexture, fillPicture:
		if blip == 0 {
			return nil
		}
		return &ImageFill{ImageIndex: blip, Tiled: typ == fillTexture}
	case fillShade, fillShadeCenter, fillShadeShape, fillShadeScale, fillShadeTitle:
		return gradientFor(v, typ, NewColorReference(fore), back, opacity)
	case fillBackground:
		return nil
	}
	p.logger.Debug("unknown fill type", Uint32("type", typ))
	return nil
}

func gradientFor(v FOPTValues, typ uint32, fore, back ColorReference, opacity float64) *GradientFill {
	g := &GradientFill{Angle: fixedProp(v, propFillAngle, 0)}
	switch typ {
	case fillShadeCenter:
		g.Style = GradientRectangular
	case fillShadeShape:
		g.Style = GradientRadial
	}
	if data, ok := v.Complex[propFillShadeColors]; ok {
		elems, _ := complexArray(data)
		for _, e := range elems {
			if len(e) < 8 {
				continue
			}
			c := NewColorReference(binary.LittleEndian.Uint32(e[0:4]))
			g.AddStop(c, fixed16ToFloat(binary.LittleEndian.Uint32(e[4:8])), opacity)
		}
		if len(g.Stops) > 0 {
			return g
		}
	}
	backOpacity := fixedProp(v, propFillBackOpacity, 1)
	focus := int32(valueOr(v, propFillFocus, 0))
	switch {
	case focus == 50 || focus == -50:
		g.Style = GradientAxial
		g.AddStop(fore, 0, opacity).AddStop(back, 0.5, backOpacity).AddStop(fore, 1, opacity)
	case focus == 100 || focus == -100:
		g.AddStop(back, 0, backOpacity).AddStop(fore, 1, opacity)
	default:
		g.AddStop(fore, 0, opacity).AddStop(back, 1, backOpacity)
	}
	return g
}

// sideLineBases are the color property ids of the left, top, right and
// bottom lines; width and flags follow at fixed distances.
var sideLineBases = [4]uint16{propLineLeftColor, propLineTopColor, propLineRightColor, propLineBottomColor}

func lineFor(v FOPTValues, colorID, widthID, boolsID uint16, def Line) Line {
	l := def
	if c, ok := v.value(colorID); ok {
		l.Color = NewColorReference(c)
		l.Present = true
	}
	if w, ok := v.value(widthID); ok {
		l.Width = w
		l.Present = true
	}
	if on, set := boolProp(v, boolsID, lineBoolLine); set {
		l.Present = on
	}
	return l
}

func (p *parser) applyLines(seq uint32, v FOPTValues) {
	main := lineFor(v, propLineColor, propLineWidth, propLineBools, Line{Width: defaultLineWidth})
	perSide := false
	for _, base := range sideLineBases {
		if _, ok := v.value(base); ok {
			perSide = true
		}
		if _, ok := v.value(base + sideLineWidthOffset); ok {
			perSide = true
		}
	}
	if perSide {
		lines := make([]Line, len(sideLineBases))
		for i, base := range sideLineBases {
			lines[i] = lineFor(v, base, base+sideLineWidthOffset, base+sideLineBoolsOffset, main)
		}
		p.c.SetShapeLines(seq, lines)
	} else if main.Present {
		p.c.AddShapeLine(seq, main)
	}
	if d, ok := lineDashes[valueOr(v, propLineDashing, 0)]; ok {
		p.c.SetShapeDash(seq, NewDash(d))
	}
	start, end := valueOr(v, propLineStartArrow, 0), valueOr(v, propLineEndArrow, 0)
	if start != 0 || end != 0 {
		p.c.SetShapeArrows(seq, Arrows{
			Start: arrowFor(start, valueOr(v, propLineStartWidth, 1), valueOr(v, propLineStartLength, 1)),
			End:   arrowFor(end, valueOr(v, propLineEndWidth, 1), valueOr(v, propLineEndLength, 1)),
		})
	}
}

func arrowFor(style, width, length uint32) Arrow {
	if style > uint32(ArrowOpen) {
		style = uint32(ArrowTriangle)
	}
	return Arrow{Style: ArrowStyle(style), Width: int(min(width, 2)), Length: int(min(length, 2))}
}

func shadowFor(v FOPTValues) *Shadow {
	if on, set := boolProp(v, propShadowBools, shadowBoolShadow); !set || !on {
		return nil
	}
	return &Shadow{
		Color:   NewColorReference(valueOr(v, propShadowColor, defaultShadowColor)),
		OffsetX: int64(int32(valueOr(v, propShadowOffsetX, defaultShadowOffset))),
		OffsetY: int64(int32(valueOr(v, propShadowOffsetY, defaultShadowOffset))),
		Opacity: 1,
	}
}
