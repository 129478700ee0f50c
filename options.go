package gopublisher

// ParseOptions configures Parse.
type ParseOptions struct {
	// Logger receives the debug trace. Default: NopLogger.
	Logger Logger
	// MasterPageSeqNums are page sequence numbers treated as master pages
	// when the page chunk declares no kind. Default: 0x107.
	MasterPageSeqNums []uint32
	// DummyPageSeqNums are page sequence numbers never emitted.
	// Default: 0x10D, 0x110, 0x113, 0x117.
	DummyPageSeqNums []uint32
	// MaxGroupDepth bounds group nesting. Default: 64.
	MaxGroupDepth int
	// DefaultLanguage is the LCID used when the document declares none.
	// Default: 0x0409 (en-US).
	DefaultLanguage uint16
}

// DefaultParseOptions returns default parse options.
func DefaultParseOptions() *ParseOptions {
	return &ParseOptions{
		Logger:            NopLogger{},
		MasterPageSeqNums: []uint32{0x107},
		DummyPageSeqNums:  []uint32{0x10D, 0x110, 0x113, 0x117},
		MaxGroupDepth:     64,
		DefaultLanguage:   0x0409,
	}
}

// withDefaults fills unset fields from DefaultParseOptions.
func (o *ParseOptions) withDefaults() *ParseOptions {
	def := DefaultParseOptions()
	if o == nil {
		return def
	}
	out := *o
	if out.Logger == nil {
		out.Logger = def.Logger
	}
	if out.MasterPageSeqNums == nil {
		out.MasterPageSeqNums = def.MasterPageSeqNums
	}
	if out.DummyPageSeqNums == nil {
		out.DummyPageSeqNums = def.DummyPageSeqNums
	}
	if out.MaxGroupDepth == 0 {
		out.MaxGroupDepth = def.MaxGroupDepth
	}
	if out.DefaultLanguage == 0 {
		out.DefaultLanguage = def.DefaultLanguage
	}
	return &out
}

// SVGOptions configures the SVG painter.
type SVGOptions struct {
	// EmbedImages writes pictures as data URIs. Default: true.
	EmbedImages bool
	// RasterizeMetafiles converts EMF pictures to PNG. Default: true.
	RasterizeMetafiles bool
	// MetafileDPI is the rasterization resolution. Default: 96.
	MetafileDPI float64
	// Logger receives conversion warnings. Default: NopLogger.
	Logger Logger
}

// DefaultSVGOptions returns default SVG painter options.
func DefaultSVGOptions() *SVGOptions {
	return &SVGOptions{
		EmbedImages:        true,
		RasterizeMetafiles: true,
		MetafileDPI:        96,
		Logger:             NopLogger{},
	}
}
