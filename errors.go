package gopublisher

import "errors"

var (
	// ErrEndOfStream is returned when a read or seek leaves the bounds of a stream.
	ErrEndOfStream = errors.New("end of stream")
	// ErrUnsupportedFormat is returned when the container is not a recognised publication.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrMalformedReference marks an index or offset that points outside a known table.
	ErrMalformedReference = errors.New("malformed reference")
	// ErrMissingMandatoryChunk is returned when the document chunk is absent.
	ErrMissingMandatoryChunk = errors.New("missing mandatory chunk")
	// ErrNoPainter is returned when a collector is replayed without a painter.
	ErrNoPainter = errors.New("gopublisher: no painter")
)
