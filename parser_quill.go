package gopublisher

import (
	"encoding/binary"
	"fmt"
)

const (
	quillCountOffset     = 0x1A
	quillDirectoryOffset = 0x20
	quillEntryLength     = 24
)

// Quill section names.
const (
	quillText       = "TEXT"
	quillBlockEnds  = "TCD "
	quillCharRuns   = "FDPC"
	quillParaRuns   = "FDPP"
	quillStyleSheet = "STSH"
	quillFonts      = "FONT"
)

// Style sheet blocks.
const (
	stshCharStyles       = 0x01
	stshParaStyles       = 0x02
	stshDefaultCharStyle = 0x03
	stshDefaultParaStyle = 0x04

	charBold      = 0x37
	charItalic    = 0x38
	charUnderline = 0x1E
	charSize      = 0x0C
	charFont      = 0x18
	charColor     = 0x44
	charLCID      = 0x0E

	paraAlignment   = 0x0D
	paraLineSpacing = 0x34
	paraSpaceBefore = 0x81
	paraSpaceAfter  = 0x82
	paraIndentLeft  = 0x83
	paraIndentRight = 0x84
	paraIndentFirst = 0x85
)

// quillSection is one entry of the Quill directory.
type quillSection struct {
	Name   string
	ID     uint16
	Offset uint32
	Length uint32
}

func readQuillDirectory(s *stream) (map[string]quillSection, error) {
	count, err := s.u16At(quillCountOffset)
	if err != nil {
		return nil, err
	}
	dir := make(map[string]quillSection, count)
	for i := int64(0); i < int64(count); i++ {
		b, err := s.Section(quillDirectoryOffset+i*quillEntryLength, quillEntryLength)
		if err != nil {
			return nil, fmt.Errorf("quill directory entry %d: %w", i, err)
		}
		r := fieldReader{s: b}
		sec := quillSection{
			Name:   string(b.data[0:4]),
			ID:     r.u16(4),
			Offset: r.u32(8),
			Length: r.u32(12),
		}
		if _, dup := dir[sec.Name]; !dup {
			dir[sec.Name] = sec
		}
	}
	return dir, nil
}

func (p *parser) parseQuill(data []byte) error {
	s := newStream(data)
	dir, err := readQuillDirectory(s)
	if err != nil {
		return err
	}
	section := func(name string) (*stream, bool, error) {
		sec, ok := dir[name]
		if !ok {
			return nil, false, nil
		}
		body, err := s.Section(int64(sec.Offset), int64(sec.Length))
		if err != nil {
			return nil, false, fmt.Errorf("quill %q section: %w", name, err)
		}
		return body, true, nil
	}

	if fonts, ok, err := section(quillFonts); err != nil {
		return err
	} else if ok && len(p.c.Fonts()) == 0 {
		if err := p.parseQuillFonts(fonts); err != nil {
			return err
		}
	}
	if stsh, ok, err := section(quillStyleSheet); err != nil {
		return err
	} else if ok {
		if err := p.parseStyleSheet(stsh); err != nil {
			return err
		}
	}

	text, ok, err := section(quillText)
	if err != nil || !ok {
		return err
	}
	units := make([]uint16, text.Len()/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(text.data[2*i:])
	}
	a := &textAssembler{
		units: units,
		decode: func(from, to int) (string, error) {
			return decodeUTF16(text.data[2*from : 2*to])
		},
		charStyle: func(i int) CharacterStyle {
			st, _ := p.c.CharacterStyleAt(i)
			return st
		},
		paraStyle: func(i int) ParagraphStyle {
			st, _ := p.c.ParagraphStyleAt(i)
			return st
		},
		bareReturns: true,
	}
	for name, runs := range map[string]*[]styleRun{quillCharRuns: &a.charRuns, quillParaRuns: &a.paraRuns} {
		sec, ok, err := section(name)
		if err != nil {
			return err
		}
		if ok {
			if *runs, err = readQuillRuns(sec); err != nil {
				return fmt.Errorf("quill %q section: %w", name, err)
			}
		}
	}

	ends := []uint32{uint32(len(units))}
	if tcd, ok, err := section(quillBlockEnds); err != nil {
		return err
	} else if ok {
		if ends, err = readBlockEnds(tcd); err != nil {
			return fmt.Errorf("quill %q section: %w", quillBlockEnds, err)
		}
	}
	start := 0
	for i, end := range ends {
		stop := min(int(end), len(units))
		if stop < start {
			p.logger.Warn("text block ends before it starts", Int("block", i))
			stop = start
		}
		block, err := a.scan(start, stop, nil)
		if err != nil {
			return err
		}
		p.c.AddTextBlock(uint32(i), block)
		start = stop
	}
	p.logger.Debug("quill text", Int("blocks", len(ends)), Int("chars", len(units)))
	return nil
}

func readBlockEnds(s *stream) ([]uint32, error) {
	n, err := s.ReadU32()
	if err != nil {
		return nil, err
	}
	if int64(n)*4 > s.Len()-s.Tell() {
		return nil, fmt.Errorf("%d block ends: %w", n, ErrEndOfStream)
	}
	ends := make([]uint32, n)
	for i := range ends {
		if ends[i], err = s.ReadU32(); err != nil {
			return nil, err
		}
	}
	return ends, nil
}

func readQuillRuns(s *stream) ([]styleRun, error) {
	n, err := s.ReadU16()
	if err != nil {
		return nil, err
	}
	runs := make([]styleRun, 0, n)
	for k := uint16(0); k < n; k++ {
		end, err := s.ReadU32()
		if err != nil {
			return nil, err
		}
		style, err := s.ReadU16()
		if err != nil {
			return nil, err
		}
		runs = append(runs, styleRun{end: end, style: int(style)})
	}
	return runs, nil
}

func (p *parser) parseQuillFonts(s *stream) error {
	blocks, err := readBlocksUntil(s, s.Len())
	if err != nil {
		return err
	}
	for _, b := range blocks {
		if !b.IsContainer() {
			continue
		}
		names, err := stringBlocks(b)
		if err != nil {
			return err
		}
		for _, n := range names {
			p.c.AddFont(n)
		}
		return nil
	}
	return nil
}

func (p *parser) parseStyleSheet(s *stream) error {
	blocks, err := readBlocksUntil(s, s.Len())
	if err != nil {
		return err
	}
	set := newBlockSet(blocks)
	styles := func(id uint8, each func(blockSet)) error {
		b, ok := set[id]
		if !ok {
			return nil
		}
		kids, err := b.children()
		if err != nil {
			return err
		}
		for _, k := range kids {
			props, err := k.children()
			if err != nil {
				return err
			}
			each(newBlockSet(props))
		}
		return nil
	}
	if err := styles(stshCharStyles, func(b blockSet) { p.c.AddCharacterStyle(characterStyleFrom(b)) }); err != nil {
		return err
	}
	if err := styles(stshParaStyles, func(b blockSet) { p.c.AddParagraphStyle(paragraphStyleFrom(b)) }); err != nil {
		return err
	}
	if b, ok := set[stshDefaultCharStyle]; ok {
		props, err := b.children()
		if err != nil {
			return err
		}
		p.c.SetDefaultCharacterStyle(characterStyleFrom(newBlockSet(props)))
	}
	if b, ok := set[stshDefaultParaStyle]; ok {
		props, err := b.children()
		if err != nil {
			return err
		}
		p.c.SetDefaultParagraphStyle(paragraphStyleFrom(newBlockSet(props)))
	}
	return nil
}

// flag reads a boolean property; a block without payload counts as set.
func (m blockSet) flag(id uint8) (bool, bool) {
	b, ok := m[id]
	if !ok {
		return false, false
	}
	return b.DataLength == 0 || b.Data != 0, true
}

func characterStyleFrom(b blockSet) CharacterStyle {
	var st CharacterStyle
	if v, ok := b.flag(charBold); ok {
		st.Bold = &v
	}
	if v, ok := b.flag(charItalic); ok {
		st.Italic = &v
	}
	if v, ok := b.u32(charUnderline); ok {
		st.Underline = ptr(v != 0)
	}
	if v, ok := b.u32(charSize); ok && v > 0 {
		st.Size = ptr(float64(v) / 2)
	}
	if v, ok := b.u32(charFont); ok {
		st.FontIndex = ptr(int(v))
	}
	if v, ok := b.u32(charColor); ok {
		st.Color = ptr(NewColorReference(v))
	}
	if v, ok := b.u32(charLCID); ok {
		st.Language = ptr(uint16(v))
	}
	return st
}

func paragraphStyleFrom(b blockSet) ParagraphStyle {
	var st ParagraphStyle
	if v, ok := b.u32(paraAlignment); ok && v <= uint32(AlignJustify) {
		st.Alignment = ptr(Alignment(v))
	}
	if v, ok := b.u32(paraLineSpacing); ok && v > 0 {
		st.LineSpacing = ptr(float64(v))
	}
	for id, field := range map[uint8]**int64{
		paraSpaceBefore: &st.SpaceBefore,
		paraSpaceAfter:  &st.SpaceAfter,
		paraIndentLeft:  &st.IndentLeft,
		paraIndentRight: &st.IndentRight,
		paraIndentFirst: &st.IndentFirst,
	} {
		if v, ok := b.u32(id); ok {
			*field = ptr(int64(int32(v)))
		}
	}
	return st
}
