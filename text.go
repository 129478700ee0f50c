package gopublisher

import "strings"

// TextSpan is a run of text with one character style. A '\n' in Text is a
// line break inside the paragraph.
type TextSpan struct {
	Text  string
	Style CharacterStyle
}

// TextParagraph is a list of spans sharing one paragraph style.
type TextParagraph struct {
	Spans []TextSpan
	Style ParagraphStyle
}

// PlainText returns the paragraph text without formatting.
func (p TextParagraph) PlainText() string {
	var b strings.Builder
	for _, s := range p.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// appendSpan adds text, merging with the last span when the style matches.
func (p *TextParagraph) appendSpan(text string, style CharacterStyle) {
	if text == "" {
		return
	}
	if n := len(p.Spans); n > 0 && sameCharacterStyle(p.Spans[n-1].Style, style) {
		p.Spans[n-1].Text += text
		return
	}
	p.Spans = append(p.Spans, TextSpan{Text: text, Style: style})
}

// TextBlock is the text of one frame.
type TextBlock []TextParagraph

// PlainText joins the paragraphs with '\n'.
func (b TextBlock) PlainText() string {
	parts := make([]string, len(b))
	for i, p := range b {
		parts[i] = p.PlainText()
	}
	return strings.Join(parts, "\n")
}

func sameCharacterStyle(a, b CharacterStyle) bool {
	return eqPtr(a.Bold, b.Bold) && eqPtr(a.Italic, b.Italic) && eqPtr(a.Underline, b.Underline) &&
		eqPtr(a.Size, b.Size) && eqPtr(a.FontIndex, b.FontIndex) && eqPtr(a.Color, b.Color) &&
		eqPtr(a.Language, b.Language)
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
