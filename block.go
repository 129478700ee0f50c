package gopublisher

import "fmt"

// Block type tags of the generic chunk/trailer record format.
const (
	blockTypeGeneralContainer = 0x88
	blockTypeContainer8A      = 0x8A
	blockTypeTrailerDirectory = 0x90
	blockTypeString           = 0xC0
)

// BlockInfo is one decoded block. Fixed-size payloads of up to four bytes
// are also available as Data.
type BlockInfo struct {
	ID         uint8
	Type       uint8
	Start      int64
	DataOffset int64
	DataLength int64
	Data       uint32
	Raw        []byte
}

// End returns the offset just past the block.
func (b BlockInfo) End() int64 { return b.DataOffset + b.DataLength }

// IsContainer reports whether the block holds nested blocks.
func (b BlockInfo) IsContainer() bool { return isBlockContainer(b.Type) }

func isBlockContainer(t uint8) bool {
	switch t {
	case blockTypeGeneralContainer, blockTypeContainer8A, blockTypeTrailerDirectory:
		return true
	}
	return false
}

// fixedBlockLength returns the payload size of a fixed-size block type.
func fixedBlockLength(t uint8) (int64, bool) {
	switch t {
	case 0x00, 0x05, 0x08, 0x0A:
		return 0, true
	case 0x07, 0x10, 0x12, 0x18, 0x1A:
		return 2, true
	case 0x20, 0x22, 0x58, 0x68, 0x70, 0xB8:
		return 4, true
	case 0x28:
		return 8, true
	case 0x38:
		return 16, true
	case 0x48:
		return 24, true
	}
	return 0, false
}

// readBlock decodes the block at the cursor and leaves the cursor after it.
func readBlock(s *stream) (BlockInfo, error) {
	var b BlockInfo
	b.Start = s.Tell()
	id, err := s.ReadU8()
	if err != nil {
		return b, err
	}
	typ, err := s.ReadU8()
	if err != nil {
		return b, err
	}
	b.ID, b.Type = id, typ
	if n, ok := fixedBlockLength(typ); ok {
		b.DataOffset = b.Start + 2
		b.DataLength = n
	} else {
		total, err := s.ReadU32()
		if err != nil {
			return b, err
		}
		if total < 6 {
			return b, fmt.Errorf("block %#x at %d: length %d: %w", id, b.Start, total, ErrMalformedReference)
		}
		b.DataOffset = b.Start + 6
		b.DataLength = int64(total) - 6
	}
	raw, err := s.ReadBytes(b.DataLength)
	if err != nil {
		return b, fmt.Errorf("block %#x at %d: %w", id, b.Start, err)
	}
	b.Raw = raw
	switch b.DataLength {
	case 2:
		b.Data = uint32(raw[0]) | uint32(raw[1])<<8
	case 4, 8, 16, 24:
		b.Data = uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16 | uint32(raw[3])<<24
	}
	return b, nil
}

// readBlocksUntil decodes consecutive blocks until the cursor reaches end.
func readBlocksUntil(s *stream, end int64) ([]BlockInfo, error) {
	var blocks []BlockInfo
	for s.StillReading(end) {
		b, err := readBlock(s)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// children decodes the blocks nested in a container block.
func (b BlockInfo) children() ([]BlockInfo, error) {
	if !b.IsContainer() {
		return nil, nil
	}
	sub := newStream(b.Raw)
	blocks, err := readBlocksUntil(sub, sub.Len())
	if err != nil {
		return nil, err
	}
	for i := range blocks {
		blocks[i].Start += b.DataOffset
		blocks[i].DataOffset += b.DataOffset
	}
	return blocks, nil
}

// blockSet indexes sibling blocks by id; the first block with a given id wins.
type blockSet map[uint8]BlockInfo

func newBlockSet(blocks []BlockInfo) blockSet {
	m := make(blockSet, len(blocks))
	for _, b := range blocks {
		if _, seen := m[b.ID]; !seen {
			m[b.ID] = b
		}
	}
	return m
}

func (m blockSet) u32(id uint8) (uint32, bool) {
	b, ok := m[id]
	if !ok || b.DataLength < 2 {
		return 0, false
	}
	return b.Data, true
}

// childValues returns the Data words of the children of container block id.
func (m blockSet) childValues(id uint8) ([]uint32, error) {
	b, ok := m[id]
	if !ok {
		return nil, nil
	}
	kids, err := b.children()
	if err != nil {
		return nil, err
	}
	vals := make([]uint32, 0, len(kids))
	for _, k := range kids {
		vals = append(vals, k.Data)
	}
	return vals, nil
}
