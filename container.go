package gopublisher

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/richardlehane/mscfb"
)

// Stream names inside the compound file.
const (
	streamContents    = "Contents"
	streamQuill       = "Quill/QuillSub/CONTENTS"
	streamEscher      = "Escher/EscherStm"
	streamEscherDelay = "Escher/EscherDelayStm"
)

// Container gives access to the named streams of a document. Names use
// '/' between storages.
type Container interface {
	Stream(name string) ([]byte, bool)
}

// MemoryContainer is a Container over in-memory streams.
type MemoryContainer map[string][]byte

// Stream implements Container.
func (m MemoryContainer) Stream(name string) ([]byte, bool) {
	b, ok := m[name]
	return b, ok
}

// Names returns the stream names.
func (m MemoryContainer) Names() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// OpenContainer reads every stream of an OLE compound file.
func OpenContainer(r io.ReaderAt) (MemoryContainer, error) {
	doc, err := mscfb.New(r)
	if err != nil {
		return nil, fmt.Errorf("open compound file: %v: %w", err, ErrUnsupportedFormat)
	}
	out := MemoryContainer{}
	for {
		entry, err := doc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("walk compound file: %w", err)
		}
		if entry.FileInfo().IsDir() {
			continue
		}
		data, err := io.ReadAll(entry)
		if err != nil {
			return nil, fmt.Errorf("read stream %q: %w", entry.Name, err)
		}
		out[strings.Join(append(entry.Path[:len(entry.Path):len(entry.Path)], entry.Name), "/")] = data
	}
	return out, nil
}
