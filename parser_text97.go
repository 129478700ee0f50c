package gopublisher

import "fmt"

const (
	text97HeaderLength  = 16
	text97CharRunLength = 14
	text97ParaRunLength = 6
)

// Character run flag bits.
const (
	text97Bold      = 0x01
	text97Italic    = 0x02
	text97Underline = 0x04
)

// parseText97 decodes the single-byte text of the oldest generation. Text
// blocks are separated by form feeds and numbered in stream order.
func (p *parser) parseText97(data []byte) error {
	s := newStream(data)
	if s.Len() < text97HeaderLength {
		return fmt.Errorf("text header of %d bytes: %w", s.Len(), ErrEndOfStream)
	}
	r := fieldReader{s: s}
	charOffset, charLength := r.u32(0), r.u32(4)
	charRunOffset, paraRunOffset := r.u32(8), r.u32(12)
	if r.err != nil {
		return r.err
	}
	chars, err := s.Section(int64(charOffset), int64(charLength))
	if err != nil {
		return fmt.Errorf("text characters: %w", err)
	}

	var charStyles []CharacterStyle
	var charRuns, paraRuns []styleRun
	var aligns []Alignment
	if charRunOffset != 0 {
		if charRuns, charStyles, err = readText97CharRuns(s, int64(charRunOffset)); err != nil {
			return fmt.Errorf("character runs: %w", err)
		}
	}
	if paraRunOffset != 0 {
		if paraRuns, aligns, err = readText97ParaRuns(s, int64(paraRunOffset)); err != nil {
			return fmt.Errorf("paragraph runs: %w", err)
		}
	}

	lcid := p.c.Language()
	units := make([]uint16, len(chars.data))
	for i, b := range chars.data {
		units[i] = uint16(b)
	}
	a := &textAssembler{
		units: units,
		decode: func(from, to int) (string, error) {
			return decodeCodePage(chars.data[from:to], lcid)
		},
		charRuns:  charRuns,
		paraRuns:  paraRuns,
		charStyle: func(i int) CharacterStyle { return charStyles[i] },
		paraStyle: func(i int) ParagraphStyle { return ParagraphStyle{Alignment: ptr(aligns[i])} },
		formFeeds: true,
	}
	var id uint32
	add := func(b TextBlock) {
		p.c.AddTextBlock(id, b)
		id++
	}
	last, err := a.scan(0, len(units), add)
	if err != nil {
		return err
	}
	if len(last) > 0 {
		add(last)
	}
	p.logger.Debug("text", Int("blocks", int(id)), Int("chars", len(units)))
	return nil
}

func readText97CharRuns(s *stream, off int64) ([]styleRun, []CharacterStyle, error) {
	n, err := s.u16At(off)
	if err != nil {
		return nil, nil, err
	}
	runs := make([]styleRun, 0, n)
	styles := make([]CharacterStyle, 0, n)
	for i := int64(0); i < int64(n); i++ {
		r := fieldReader{s: s}
		base := off + 2 + i*text97CharRunLength
		end := r.u32(base)
		flags := r.u8(base + 4)
		halfPoints := r.u16(base + 6)
		font := r.u16(base + 8)
		color := r.u32(base + 10)
		if r.err != nil {
			return nil, nil, r.err
		}
		st := CharacterStyle{
			Bold:      ptr(flags&text97Bold != 0),
			Italic:    ptr(flags&text97Italic != 0),
			Underline: ptr(flags&text97Underline != 0),
			FontIndex: ptr(int(font)),
			Color:     ptr(NewColorReference(color)),
		}
		if halfPoints > 0 {
			st.Size = ptr(float64(halfPoints) / 2)
		}
		runs = append(runs, styleRun{end: end, style: len(styles)})
		styles = append(styles, st)
	}
	return runs, styles, nil
}

func readText97ParaRuns(s *stream, off int64) ([]styleRun, []Alignment, error) {
	n, err := s.u16At(off)
	if err != nil {
		return nil, nil, err
	}
	runs := make([]styleRun, 0, n)
	aligns := make([]Alignment, 0, n)
	for i := int64(0); i < int64(n); i++ {
		r := fieldReader{s: s}
		base := off + 2 + i*text97ParaRunLength
		end := r.u32(base)
		align := r.u16(base + 4)
		if r.err != nil {
			return nil, nil, r.err
		}
		if align > uint16(AlignJustify) {
			align = uint16(AlignLeft)
		}
		runs = append(runs, styleRun{end: end, style: len(aligns)})
		aligns = append(aligns, Alignment(align))
	}
	return runs, aligns, nil
}
