package gopublisher

import (
	"fmt"
	"math"
)

// groupFrame maps the child coordinate space of a group onto page EMU.
// A nil frame is the patriarch, whose children are already in page space.
type groupFrame struct {
	child  Coordinate
	placed Coordinate
}

func (f *groupFrame) place(c Coordinate) Coordinate {
	if f == nil {
		return c
	}
	xs, ys := mapRect(f.child, f.placed, c.Xs, c.Ys)
	xe, ye := mapRect(f.child, f.placed, c.Xe, c.Ye)
	return NewCoordinate(xs, ys, xe, ye)
}

// spRecords are the children of one SpContainer that the parser reads.
type spRecords struct {
	fsp, fspgr, anchor, clientData *EscherRecord
	props                          FOPTValues
}

func (p *parser) parseEscher() error {
	data, ok := p.container.Stream(streamEscher)
	if !ok {
		return fmt.Errorf("no %s stream: %w", streamEscher, ErrUnsupportedFormat)
	}
	var delay *stream
	if d, ok := p.container.Stream(streamEscherDelay); ok {
		delay = newStream(d)
	}
	s := newStream(data)
	for s.StillReading(s.Len()) {
		rec, err := readEscherRecord(s)
		if err != nil {
			return err
		}
		switch rec.Type {
		case escherDggContainer:
			if err := p.parseBlipStore(s, rec, delay); err != nil {
				return err
			}
		case escherDgContainer:
			if err := p.parseDrawing(s, rec); err != nil {
				return err
			}
		}
		if err := s.SeekTo(rec.End()); err != nil {
			return err
		}
	}
	return nil
}

// parseBlipStore adds every picture of the blip store. Empty or unreadable
// slots still take an index so that later entries keep their numbers.
func (p *parser) parseBlipStore(s *stream, dgg EscherRecord, delay *stream) error {
	store, ok, err := findEscherChild(s, dgg, escherBStoreContainer)
	if err != nil || !ok {
		return err
	}
	entries, err := escherChildren(s, store)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Type != escherBSE {
			continue
		}
		img, ok, err := readBSE(s, e, delay)
		if err != nil {
			p.logger.Warn("unreadable blip", Int64("offset", e.Offset), Err(err))
		}
		if !ok {
			img = Image{}
		}
		p.c.AddImage(img)
	}
	return nil
}

func (p *parser) parseDrawing(s *stream, dg EscherRecord) error {
	root, ok, err := findEscherChild(s, dg, escherSpgrContainer)
	if err != nil || !ok {
		return err
	}
	return p.walkGroup(s, root, nil, true)
}

// walkGroup walks one SpgrContainer. Its first SpContainer describes the
// group itself; nesting depth is bounded by ParseOptions.MaxGroupDepth.
func (p *parser) walkGroup(s *stream, spgr EscherRecord, parent *groupFrame, root bool) error {
	kids, err := escherChildren(s, spgr)
	if err != nil {
		return err
	}
	var frame *groupFrame
	header := true
	for _, k := range kids {
		switch k.Type {
		case escherSpContainer:
			if header {
				header = false
				frame, err = p.parseGroupHeader(s, k, parent, root)
				if err != nil {
					return err
				}
				continue
			}
			if err := p.parseShapeRecord(s, k, frame); err != nil {
				return err
			}
		case escherSpgrContainer:
			if err := p.c.BeginGroup(); err != nil {
				return err
			}
			if err := p.walkGroup(s, k, frame, false); err != nil {
				return err
			}
			p.c.EndGroup()
		}
	}
	return nil
}

func (p *parser) spRecords(s *stream, sp EscherRecord) (spRecords, error) {
	var out spRecords
	kids, err := escherChildren(s, sp)
	if err != nil {
		return out, err
	}
	var child, client *EscherRecord
	for i := range kids {
		k := &kids[i]
		switch k.Type {
		case escherFSP:
			out.fsp = k
		case escherFSPGR:
			out.fspgr = k
		case escherChildAnchor:
			child = k
		case escherClientAnchor:
			client = k
		case escherClientData:
			out.clientData = k
		case escherFOPT, escherTertiaryFOPT:
			v, err := extractFOPTValues(s, *k, nil)
			if err != nil {
				return out, err
			}
			out.props = mergeFOPT(out.props, v)
		}
	}
	out.anchor = child
	if out.anchor == nil {
		out.anchor = client
	}
	return out, nil
}

// mergeFOPT adds the entries of b that a does not set.
func mergeFOPT(a, b FOPTValues) FOPTValues {
	if a.Scalar == nil {
		return b
	}
	for k, v := range b.Scalar {
		if _, ok := a.Scalar[k]; !ok {
			a.Scalar[k] = v
		}
	}
	for k, v := range b.Complex {
		if _, ok := a.Complex[k]; !ok {
			a.Complex[k] = v
		}
	}
	return a
}

func readRect(s *stream, rec EscherRecord) (Coordinate, error) {
	if err := s.SeekTo(rec.DataOffset); err != nil {
		return Coordinate{}, err
	}
	var v [4]int32
	for i := range v {
		n, err := s.ReadI32()
		if err != nil {
			return Coordinate{}, err
		}
		v[i] = n
	}
	return NewCoordinate(int64(v[0]), int64(v[1]), int64(v[2]), int64(v[3])), nil
}

func clientSeqNum(s *stream, rec *EscherRecord) (uint32, bool) {
	if rec == nil {
		return 0, false
	}
	seq, err := s.u32At(rec.DataOffset)
	return seq, err == nil
}

// escherRotation returns the stored clockwise rotation in degrees.
func escherRotation(v FOPTValues) float64 {
	r, ok := v.value(propRotation)
	if !ok {
		return 0
	}
	return fixed16ToFloat(r)
}

// anchorFor returns the page box of a shape. Shapes turned by roughly a
// quarter turn store their anchor with width and height exchanged.
func anchorFor(c Coordinate, rotation float64) Coordinate {
	r := math.Mod(rotation, 360)
	if r < 0 {
		r += 360
	}
	if (r >= 45 && r < 135) || (r >= 225 && r < 315) {
		cx, cy := (c.Xs+c.Xe)/2, (c.Ys+c.Ye)/2
		hw, hh := c.Width()/2, c.Height()/2
		return NewCoordinate(cx-hh, cy-hw, cx+hh, cy+hw)
	}
	return c
}

// placeRecord applies the FSP flips, the anchor and the rotation of a
// shape or group, returning its page box.
func (p *parser) placeRecord(s *stream, seq uint32, recs spRecords, parent *groupFrame) (Coordinate, bool, error) {
	if recs.fsp != nil {
		flags, err := s.u32At(recs.fsp.DataOffset + 4)
		if err != nil {
			return Coordinate{}, false, err
		}
		if flags&(fspFlipH|fspFlipV) != 0 {
			p.c.SetShapeFlip(seq, flags&fspFlipH != 0, flags&fspFlipV != 0)
		}
	}
	rotation := escherRotation(recs.props)
	if rotation != 0 {
		p.c.SetShapeRotation(seq, -rotation)
	}
	if recs.anchor == nil {
		return Coordinate{}, false, nil
	}
	c, err := readRect(s, *recs.anchor)
	if err != nil {
		return Coordinate{}, false, err
	}
	placed := parent.place(anchorFor(c, rotation))
	p.c.SetShapeCoordinates(seq, placed.Xs, placed.Ys, placed.Xe, placed.Ye)
	return placed, true, nil
}

func (p *parser) parseGroupHeader(s *stream, sp EscherRecord, parent *groupFrame, root bool) (*groupFrame, error) {
	if root {
		return nil, nil
	}
	recs, err := p.spRecords(s, sp)
	if err != nil {
		return nil, err
	}
	seq, ok := clientSeqNum(s, recs.clientData)
	if !ok {
		p.logger.Debug("group without sequence number", Int64("offset", sp.Offset))
		return parent, nil
	}
	p.c.SetCurrentGroupSeqNum(seq)
	placed, ok, err := p.placeRecord(s, seq, recs, parent)
	if err != nil {
		return nil, err
	}
	if !ok {
		return parent, nil
	}
	child := placed
	if recs.fspgr != nil {
		if child, err = readRect(s, *recs.fspgr); err != nil {
			return nil, err
		}
	}
	return &groupFrame{child: child, placed: placed}, nil
}

func (p *parser) parseShapeRecord(s *stream, sp EscherRecord, frame *groupFrame) error {
	recs, err := p.spRecords(s, sp)
	if err != nil {
		return err
	}
	seq, ok := clientSeqNum(s, recs.clientData)
	if !ok {
		p.logger.Debug("shape without sequence number", Int64("offset", sp.Offset))
		return nil
	}
	if p.skipped(seq) {
		return nil
	}
	p.c.SetShapeOrder(seq)
	if recs.fsp != nil {
		p.c.SetShapeType(seq, ShapeType(recs.fsp.Instance))
	}
	if _, _, err := p.placeRecord(s, seq, recs, frame); err != nil {
		return err
	}
	p.applyProperties(seq, recs.props)
	p.placeShape(seq)
	return nil
}
