package gopublisher

import (
	"encoding/binary"
	"fmt"
)

// Escher (drawing layer) record types.
const (
	escherDggContainer    = 0xF000
	escherBStoreContainer = 0xF001
	escherDgContainer     = 0xF002
	escherSpgrContainer   = 0xF003
	escherSpContainer     = 0xF004
	escherBSE             = 0xF007
	escherDg              = 0xF008
	escherFSPGR           = 0xF009
	escherFSP             = 0xF00A
	escherFOPT            = 0xF00B
	escherChildAnchor     = 0xF00F
	escherClientAnchor    = 0xF010
	escherClientData      = 0xF011
	escherTertiaryFOPT    = 0xF122

	escherBlipEMF      = 0xF01A
	escherBlipWMF      = 0xF01B
	escherBlipPICT     = 0xF01C
	escherBlipJPEG     = 0xF01D
	escherBlipPNG      = 0xF01E
	escherBlipDIB      = 0xF01F
	escherBlipTIFF     = 0xF029
	escherBlipJPEGCMYK = 0xF02A
)

// FSP flags.
const (
	fspGroup = 0x0001
	fspFlipH = 0x0040
	fspFlipV = 0x0080
)

// Shape property ids, with the blip and complex flag bits stripped.
const (
	propRotation         = 0x0004
	propTextID           = 0x0080
	propTextLeft         = 0x0081
	propTextTop          = 0x0082
	propTextRight        = 0x0083
	propTextBottom       = 0x0084
	propCropTop          = 0x0100
	propCropBottom       = 0x0101
	propCropLeft         = 0x0102
	propCropRight        = 0x0103
	propPib              = 0x0104
	propGeoRight         = 0x0142
	propGeoBottom        = 0x0143
	propVertices         = 0x0145
	propSegments         = 0x0146
	propAdjustFirst      = 0x0147
	propAdjustLast       = 0x0150
	propGuides           = 0x0156
	propFillType         = 0x0180
	propFillColor        = 0x0181
	propFillOpacity      = 0x0182
	propFillBackColor    = 0x0183
	propFillBackOpacity  = 0x0184
	propFillBlip         = 0x0186
	propFillAngle        = 0x018B
	propFillFocus        = 0x018C
	propFillShadeColors  = 0x0197
	propFillBools        = 0x01BF
	propLineColor        = 0x01C0
	propLineWidth        = 0x01CB
	propLineDashing      = 0x01CE
	propLineStartArrow   = 0x01D0
	propLineEndArrow     = 0x01D1
	propLineStartWidth   = 0x01D2
	propLineStartLength  = 0x01D3
	propLineEndWidth     = 0x01D4
	propLineEndLength    = 0x01D5
	propLineBools        = 0x01FF
	propShadowType       = 0x0200
	propShadowColor      = 0x0201
	propShadowOffsetX    = 0x0205
	propShadowOffsetY    = 0x0206
	propShadowBools      = 0x023F
	propLineLeftColor    = 0x0540
	propLineTopColor     = 0x0580
	propLineRightColor   = 0x05C0
	propLineBottomColor  = 0x0600
	propWrapPolygon      = 0x0383
	sideLineWidthOffset  = 0x0B
	sideLineBoolsOffset  = 0x3F
	foptBlipFlag         = 0x4000
	foptComplexFlag      = 0x8000
	foptPropertyIDMask   = 0x3FFF
	escherHeaderLength   = 8
	escherVersionMask    = 0x000F
	escherContainerMagic = 0x000F
)

// EscherRecord is the header of one drawing-layer record.
type EscherRecord struct {
	Version    uint8
	Instance   uint16
	Type       uint16
	Offset     int64
	DataOffset int64
	Length     uint32
}

// End returns the offset just past the record.
func (r EscherRecord) End() int64 { return r.DataOffset + int64(r.Length) }

// IsContainer reports whether the record holds nested records.
func (r EscherRecord) IsContainer() bool { return r.Version == escherContainerMagic }

func readEscherRecord(s *stream) (EscherRecord, error) {
	var r EscherRecord
	r.Offset = s.Tell()
	verInst, err := s.ReadU16()
	if err != nil {
		return r, err
	}
	typ, err := s.ReadU16()
	if err != nil {
		return r, err
	}
	length, err := s.ReadU32()
	if err != nil {
		return r, err
	}
	r.Version = uint8(verInst & escherVersionMask)
	r.Instance = verInst >> 4
	r.Type = typ
	r.DataOffset = s.Tell()
	r.Length = length
	if r.End() > s.Len() {
		return r, fmt.Errorf("escher record %#x at %d overruns stream: %w", typ, r.Offset, ErrEndOfStream)
	}
	return r, nil
}

// escherChildren lists the records nested in parent and leaves the cursor
// at the end of parent.
func escherChildren(s *stream, parent EscherRecord) ([]EscherRecord, error) {
	if err := s.SeekTo(parent.DataOffset); err != nil {
		return nil, err
	}
	var out []EscherRecord
	for s.StillReading(parent.End()) {
		r, err := readEscherRecord(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
		if err := s.SeekTo(r.End()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// findEscherChild returns the first child of parent with the given type.
func findEscherChild(s *stream, parent EscherRecord, typ uint16) (EscherRecord, bool, error) {
	kids, err := escherChildren(s, parent)
	if err != nil {
		return EscherRecord{}, false, err
	}
	for _, k := range kids {
		if k.Type == typ {
			return k, true, nil
		}
	}
	return EscherRecord{}, false, nil
}

// FOPTValues holds the extracted entries of a property table.
type FOPTValues struct {
	Scalar  map[uint16]uint32
	Complex map[uint16][]byte
}

// value returns a scalar property.
func (f FOPTValues) value(id uint16) (uint32, bool) {
	v, ok := f.Scalar[id]
	return v, ok
}

// extractFOPTValues decodes the property table rec. When wanted is non-nil
// only those ids are kept; everything else is skipped silently.
func extractFOPTValues(s *stream, rec EscherRecord, wanted map[uint16]bool) (FOPTValues, error) {
	vals := FOPTValues{Scalar: map[uint16]uint32{}, Complex: map[uint16][]byte{}}
	if err := s.SeekTo(rec.DataOffset); err != nil {
		return vals, err
	}
	type entry struct {
		id      uint16
		complex bool
		value   uint32
	}
	entries := make([]entry, 0, rec.Instance)
	for i := 0; i < int(rec.Instance); i++ {
		raw, err := s.ReadU16()
		if err != nil {
			return vals, err
		}
		v, err := s.ReadU32()
		if err != nil {
			return vals, err
		}
		entries = append(entries, entry{id: raw & foptPropertyIDMask, complex: raw&foptComplexFlag != 0, value: v})
	}
	for _, e := range entries {
		keep := wanted == nil || wanted[e.id]
		if !e.complex {
			if keep {
				vals.Scalar[e.id] = e.value
			}
			continue
		}
		if s.Tell()+int64(e.value) > rec.End() {
			return vals, fmt.Errorf("fopt complex property %#x overruns record: %w", e.id, ErrEndOfStream)
		}
		data, err := s.ReadBytes(int64(e.value))
		if err != nil {
			return vals, err
		}
		if keep {
			vals.Complex[e.id] = data
			vals.Scalar[e.id] = e.value
		}
	}
	return vals, nil
}

// complexArray splits an IMsoArray payload into its elements.
// cbElem 0xFFF0 denotes 4-byte points made of two 16-bit halves.
func complexArray(data []byte) ([][]byte, uint16) {
	if len(data) < 6 {
		return nil, 0
	}
	n := int(binary.LittleEndian.Uint16(data[0:2]))
	cb := binary.LittleEndian.Uint16(data[4:6])
	size := int(cb)
	if cb == 0xFFF0 {
		size = 4
	}
	if size == 0 {
		return nil, cb
	}
	out := make([][]byte, 0, n)
	for off := 6; len(out) < n && off+size <= len(data); off += size {
		out = append(out, data[off:off+size])
	}
	return out, cb
}

// parseVertices decodes a vertex array property.
func parseVertices(data []byte) []Vertex {
	elems, cb := complexArray(data)
	out := make([]Vertex, 0, len(elems))
	for _, e := range elems {
		if cb == 0xFFF0 || len(e) == 4 {
			out = append(out, Vertex{
				X: int64(int16(binary.LittleEndian.Uint16(e[0:2]))),
				Y: int64(int16(binary.LittleEndian.Uint16(e[2:4]))),
			})
			continue
		}
		if len(e) >= 8 {
			out = append(out, Vertex{
				X: int64(int32(binary.LittleEndian.Uint32(e[0:4]))),
				Y: int64(int32(binary.LittleEndian.Uint32(e[4:8]))),
			})
		}
	}
	return out
}

// parseSegments decodes a segment-info array property.
func parseSegments(data []byte) []uint16 {
	elems, _ := complexArray(data)
	out := make([]uint16, 0, len(elems))
	for _, e := range elems {
		if len(e) >= 2 {
			out = append(out, binary.LittleEndian.Uint16(e[0:2]))
		}
	}
	return out
}

// parseGuides decodes a guide (formula) array property.
func parseGuides(data []byte) []Calculation {
	elems, _ := complexArray(data)
	out := make([]Calculation, 0, len(elems))
	for _, e := range elems {
		if len(e) < 8 {
			continue
		}
		flags := binary.LittleEndian.Uint16(e[0:2])
		arg := func(i int, bit uint16) int32 {
			v := binary.LittleEndian.Uint16(e[2+2*i:])
			if flags&bit != 0 {
				return int32(v)
			}
			return int32(int16(v))
		}
		out = append(out, Calculation{
			Flags: flags,
			Arg1:  arg(0, flagSpecial1),
			Arg2:  arg(1, flagSpecial2),
			Arg3:  arg(2, flagSpecial3),
		})
	}
	return out
}
