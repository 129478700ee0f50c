package gopublisher

// Control characters of the text streams.
const (
	charLineBreak = 0x0B
	charFormFeed  = 0x0C
	charReturn    = 0x0D
	charLineFeed  = 0x0A
)

func isControl(u uint16) bool {
	return u == charReturn || u == charLineFeed || u == charLineBreak || u == charFormFeed
}

// styleRun applies one style up to (not including) character position end.
type styleRun struct {
	end   uint32
	style int
}

// styleAt returns the style of the run covering pos, -1 past the last run.
func styleAt(runs []styleRun, pos int) int {
	for _, r := range runs {
		if uint32(pos) < r.end {
			return r.style
		}
	}
	return -1
}

// nextBoundary returns the first run end after pos, or limit.
func nextBoundary(runs []styleRun, pos, limit int) int {
	for _, r := range runs {
		if int(r.end) > pos {
			return min(int(r.end), limit)
		}
	}
	return limit
}

// textAssembler rebuilds paragraphs and spans from a stream of code units
// and its style run tables. Positions count code units.
type textAssembler struct {
	units     []uint16
	decode    func(from, to int) (string, error)
	charRuns  []styleRun
	paraRuns  []styleRun
	charStyle func(i int) CharacterStyle
	paraStyle func(i int) ParagraphStyle

	// bareReturns selects whether a CR without LF ends a paragraph; when
	// false it is dropped.
	bareReturns bool
	// formFeeds selects whether FF ends the current text block.
	formFeeds bool

	block TextBlock
	para  TextParagraph
	open  bool
}

func (a *textAssembler) characterStyle(pos int) CharacterStyle {
	if i := styleAt(a.charRuns, pos); i >= 0 && a.charStyle != nil {
		return a.charStyle(i)
	}
	return CharacterStyle{}
}

// appendText adds units [from, to) to the open paragraph, one span per
// character run.
func (a *textAssembler) appendText(from, to int) error {
	for from < to {
		next := nextBoundary(a.charRuns, from, to)
		s, err := a.decode(from, next)
		if err != nil {
			return err
		}
		a.para.appendSpan(s, a.characterStyle(from))
		a.open = true
		from = next
	}
	return nil
}

// closeParagraph ends the paragraph whose last unit is at pos.
func (a *textAssembler) closeParagraph(pos int) {
	if i := styleAt(a.paraRuns, pos); i >= 0 && a.paraStyle != nil {
		a.para.Style = a.paraStyle(i)
	}
	a.block = append(a.block, a.para)
	a.para = TextParagraph{}
	a.open = false
}

// takeBlock returns the finished block and starts a new one.
func (a *textAssembler) takeBlock() TextBlock {
	b := a.block
	a.block = nil
	return b
}

// scan walks units [start, end). Blocks ended by a form feed go to
// onBlock; the block still open at end is returned.
func (a *textAssembler) scan(start, end int, onBlock func(TextBlock)) (TextBlock, error) {
	end = min(end, len(a.units))
	seg := start
	flush := func(to int) error {
		if to > seg {
			return a.appendText(seg, to)
		}
		return nil
	}
	for i := start; i < end; i++ {
		u := a.units[i]
		if !isControl(u) {
			continue
		}
		if err := flush(i); err != nil {
			return nil, err
		}
		switch u {
		case charReturn:
			switch {
			case i+1 < end && a.units[i+1] == charLineFeed:
				i++
				a.closeParagraph(i - 1)
			case a.bareReturns:
				a.closeParagraph(i)
			}
		case charLineBreak:
			a.para.appendSpan("\n", a.characterStyle(i))
			a.open = true
		case charFormFeed:
			if a.formFeeds {
				if a.open {
					a.closeParagraph(i)
				}
				// Every FF ends a block, empty or not, so block
				// indexes stay aligned with the frames that use them.
				if b := a.takeBlock(); onBlock != nil {
					onBlock(b)
				}
			}
		}
		seg = i + 1
	}
	if err := flush(end); err != nil {
		return nil, err
	}
	if a.open {
		a.closeParagraph(end - 1)
	}
	return a.takeBlock(), nil
}
