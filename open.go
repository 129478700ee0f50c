package gopublisher

import (
	"fmt"
	"io"
	"os"
)

// ParseFile reads a publication from disk and paints it on painter.
// This is a convenience wrapper around OpenContainer + Probe + Parse.
func ParseFile(path string, painter Painter, opts *ParseOptions) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ParseFrom(f, painter, opts)
}

// ParseFrom reads a publication from an io.ReaderAt and paints it.
func ParseFrom(r io.ReaderAt, painter Painter, opts *ParseOptions) error {
	c, v, err := openDocument(r)
	if err != nil {
		return err
	}
	return Parse(c, v, painter, opts)
}

// DecodeFile reads a publication from disk into a Collector without
// painting it. The generation found is returned alongside.
func DecodeFile(path string, opts *ParseOptions) (*Collector, Version, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, VersionUnknown, err
	}
	defer f.Close()
	c, v, err := openDocument(f)
	if err != nil {
		return nil, v, err
	}
	col, err := Decode(c, v, opts)
	return col, v, err
}

func openDocument(r io.ReaderAt) (Container, Version, error) {
	c, err := OpenContainer(r)
	if err != nil {
		return nil, VersionUnknown, err
	}
	v, err := Probe(c)
	if err != nil {
		return nil, VersionUnknown, fmt.Errorf("probe: %w", err)
	}
	return c, v, nil
}
