package gopublisher

import (
	"fmt"
	"strings"
)

// Validate checks the collected document for structural issues and returns
// an error describing all problems found, or nil if the document is valid.
func (c *Collector) Validate() error {
	var errs []error

	if c.width <= 0 || c.height <= 0 {
		errs = append(errs, fmt.Errorf("page size %gx%g in is not positive", c.width, c.height))
	}
	for _, seq := range c.pageOrder {
		p := c.pages[seq]
		if p.MasterSeqNum == nil {
			continue
		}
		if m, ok := c.pages[*p.MasterSeqNum]; !ok || m.Kind != PageMaster {
			errs = append(errs, fmt.Errorf("page %#x: master %#x: %w", seq, *p.MasterSeqNum, ErrMalformedReference))
		}
	}
	for _, seq := range sortedKeys(c.shapes) {
		errs = append(errs, c.validateShape(c.shapes[seq])...)
	}

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Problems: errs}
}

func (c *Collector) validateShape(s *ShapeInfo) []error {
	var errs []error
	prefix := fmt.Sprintf("shape %#x", s.SeqNum)
	if s.Coordinates == nil && !s.IsBackground {
		errs = append(errs, fmt.Errorf("%s has no coordinates", prefix))
	}
	if s.TextID != nil {
		if _, ok := c.textBlocks[*s.TextID]; !ok {
			errs = append(errs, fmt.Errorf("%s: text %d: %w", prefix, *s.TextID, ErrMalformedReference))
		}
	}
	if s.ImageIndex != nil && *s.ImageIndex != 0 {
		if _, ok := c.Image(*s.ImageIndex); !ok {
			errs = append(errs, fmt.Errorf("%s: image %d: %w", prefix, *s.ImageIndex, ErrMalformedReference))
		}
	}
	if s.BorderArtIndex != nil && int(*s.BorderArtIndex) >= len(c.borderArts) {
		errs = append(errs, fmt.Errorf("%s: border art %d: %w", prefix, *s.BorderArtIndex, ErrMalformedReference))
	}
	return errs
}

// ValidationError lists every problem found by Validate.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return "validation failed:\n  " + strings.Join(msgs, "\n  ")
}

// Unwrap exposes the individual problems to errors.Is.
func (e *ValidationError) Unwrap() []error { return e.Problems }
