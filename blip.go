package gopublisher

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// ImageType identifies the encoding of an embedded picture.
type ImageType int

const (
	ImageUnknown ImageType = iota
	ImagePNG
	ImageJPEG
	ImageDIB
	ImageWMF
	ImageEMF
	ImagePICT
	ImageTIFF
)

// MimeType returns the MIME type announced to painters.
func (t ImageType) MimeType() string {
	switch t {
	case ImagePNG:
		return "image/png"
	case ImageJPEG:
		return "image/jpeg"
	case ImageDIB:
		return "image/bmp"
	case ImageWMF:
		return "image/wmf"
	case ImageEMF:
		return "image/emf"
	case ImagePICT:
		return "image/pict"
	case ImageTIFF:
		return "image/tiff"
	}
	return "application/octet-stream"
}

func (t ImageType) isMetafile() bool {
	return t == ImageWMF || t == ImageEMF || t == ImagePICT
}

// Image is one decoded picture.
type Image struct {
	Type ImageType
	Data []byte
}

func imageTypeForBlip(recType uint16) (ImageType, bool) {
	switch recType {
	case escherBlipEMF:
		return ImageEMF, true
	case escherBlipWMF:
		return ImageWMF, true
	case escherBlipPICT:
		return ImagePICT, true
	case escherBlipJPEG, escherBlipJPEGCMYK:
		return ImageJPEG, true
	case escherBlipPNG:
		return ImagePNG, true
	case escherBlipDIB:
		return ImageDIB, true
	case escherBlipTIFF:
		return ImageTIFF, true
	}
	return ImageUnknown, false
}

const (
	blipUIDLength        = 16
	metafileHeaderLength = 34
	bseFixedLength       = 36
	// maxInflatedBlip bounds the size of a decompressed metafile.
	maxInflatedBlip = 64 << 20
)

// decodeBlip reads the picture held by the blip record rec.
func decodeBlip(s *stream, rec EscherRecord) (Image, error) {
	typ, ok := imageTypeForBlip(rec.Type)
	if !ok {
		return Image{}, fmt.Errorf("record %#x is not a blip: %w", rec.Type, ErrMalformedReference)
	}
	header := int64(blipUIDLength)
	if rec.Instance&1 == 1 {
		header += blipUIDLength
	}
	if !typ.isMetafile() {
		header++ // tag byte
		body, err := s.Section(rec.DataOffset+header, int64(rec.Length)-header)
		if err != nil {
			return Image{}, err
		}
		return Image{Type: typ, Data: body.data}, nil
	}

	if int64(rec.Length) < header+metafileHeaderLength {
		return Image{}, fmt.Errorf("metafile blip of %d bytes: %w", rec.Length, ErrEndOfStream)
	}
	if err := s.SeekTo(rec.DataOffset + header); err != nil {
		return Image{}, err
	}
	rawSize, err := s.ReadU32()
	if err != nil {
		return Image{}, err
	}
	if err := s.Skip(24); err != nil { // bounds + size in EMU
		return Image{}, err
	}
	saved, err := s.ReadU32()
	if err != nil {
		return Image{}, err
	}
	compression, err := s.ReadU8()
	if err != nil {
		return Image{}, err
	}
	if _, err := s.ReadU8(); err != nil { // filter
		return Image{}, err
	}
	avail := rec.End() - s.Tell()
	if int64(saved) > avail {
		saved = uint32(avail)
	}
	data, err := s.ReadBytes(int64(saved))
	if err != nil {
		return Image{}, err
	}
	if compression != 0 {
		return Image{Type: typ, Data: data}, nil
	}
	inflated, err := inflate(data, rawSize)
	if err != nil {
		return Image{}, fmt.Errorf("inflate %s blip: %w", typ.MimeType(), err)
	}
	return Image{Type: typ, Data: inflated}, nil
}

func inflate(data []byte, sizeHint uint32) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	limit := int64(maxInflatedBlip)
	if sizeHint > 0 && int64(sizeHint) < limit {
		limit = int64(sizeHint)
	}
	return io.ReadAll(io.LimitReader(zr, limit))
}

// readBSE decodes one blip-store entry. The picture is either embedded after
// the entry header or stored at foDelay in the delay stream. Empty slots
// report ok == false.
func readBSE(s *stream, rec EscherRecord, delay *stream) (img Image, ok bool, err error) {
	if rec.Length < bseFixedLength {
		return Image{}, false, nil
	}
	if err := s.SeekTo(rec.DataOffset); err != nil {
		return Image{}, false, err
	}
	winType, err := s.ReadU8()
	if err != nil {
		return Image{}, false, err
	}
	if winType == 0 {
		return Image{}, false, nil
	}
	delayOffset, err := s.u32At(rec.DataOffset + 28)
	if err != nil {
		return Image{}, false, err
	}
	nameLen, err := s.u8At(rec.DataOffset + 33)
	if err != nil {
		return Image{}, false, err
	}
	inline := rec.DataOffset + bseFixedLength + int64(nameLen)
	if inline+escherHeaderLength <= rec.End() {
		if err := s.SeekTo(inline); err != nil {
			return Image{}, false, err
		}
		blip, err := readEscherRecord(s)
		if err != nil {
			return Image{}, false, err
		}
		pic, err := decodeBlip(s, blip)
		return pic, err == nil, err
	}
	if delay == nil {
		return Image{}, false, nil
	}
	if err := delay.SeekTo(int64(delayOffset)); err != nil {
		return Image{}, false, err
	}
	blip, err := readEscherRecord(delay)
	if err != nil {
		return Image{}, false, err
	}
	img, err = decodeBlip(delay, blip)
	return img, err == nil, err
}
