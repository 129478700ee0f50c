package gopublisher

// ImageLookup returns the picture stored at a 1-based image index.
type ImageLookup func(index uint32) (Image, bool)

// Fill describes how the interior of a shape is painted. The set of
// implementations is closed: SolidFill, ImageFill, PatternFill and
// GradientFill. Fills are shared by pointer between shapes.
type Fill interface {
	// Resolve returns the painter properties for the fill.
	Resolve(palette []Color, images ImageLookup) PropertyList
	isFill()
}

// SolidFill paints a single color.
type SolidFill struct {
	Color   ColorReference
	Opacity float64 // 0..1
}

// NewSolidFill creates an opaque solid fill.
func NewSolidFill(c ColorReference) *SolidFill {
	return &SolidFill{Color: c, Opacity: 1}
}

func (*SolidFill) isFill() {}

// Resolve implements Fill.
func (f *SolidFill) Resolve(palette []Color, _ ImageLookup) PropertyList {
	props := NewPropertyList()
	props.Insert("draw:fill", "solid")
	props.Insert("draw:fill-color", f.Color.GetFinalColor(palette).Hex())
	if f.Opacity < 1 {
		props.InsertDouble("draw:opacity", f.Opacity, UnitPercent)
	}
	return props
}

// ImageFill paints a stored picture, stretched or tiled.
type ImageFill struct {
	ImageIndex uint32
	Tiled      bool
}

func (*ImageFill) isFill() {}

// Resolve implements Fill. A missing picture yields no fill.
func (f *ImageFill) Resolve(_ []Color, images ImageLookup) PropertyList {
	props := NewPropertyList()
	img, ok := lookupImage(images, f.ImageIndex)
	if !ok {
		props.Insert("draw:fill", "none")
		return props
	}
	insertBitmap(&props, img)
	if f.Tiled {
		props.Insert("style:repeat", "repeat")
	} else {
		props.Insert("style:repeat", "stretch")
	}
	return props
}

// PatternFill paints a two-color bitmap pattern.
type PatternFill struct {
	ImageIndex uint32
	Foreground ColorReference
	Background ColorReference
}

func (*PatternFill) isFill() {}

// Resolve implements Fill. Without its bitmap the pattern degrades to its
// foreground color.
func (f *PatternFill) Resolve(palette []Color, images ImageLookup) PropertyList {
	props := NewPropertyList()
	img, ok := lookupImage(images, f.ImageIndex)
	if !ok {
		props.Insert("draw:fill", "solid")
		props.Insert("draw:fill-color", f.Foreground.GetFinalColor(palette).Hex())
		return props
	}
	insertBitmap(&props, img)
	props.Insert("style:repeat", "repeat")
	props.Insert("draw:fill-color", f.Foreground.GetFinalColor(palette).Hex())
	props.Insert("draw:fill-background-color", f.Background.GetFinalColor(palette).Hex())
	return props
}

// GradientStyle selects the gradient geometry.
type GradientStyle int

const (
	GradientLinear GradientStyle = iota
	GradientAxial
	GradientRadial
	GradientRectangular
)

func (s GradientStyle) String() string {
	switch s {
	case GradientAxial:
		return "axial"
	case GradientRadial:
		return "radial"
	case GradientRectangular:
		return "rectangular"
	}
	return "linear"
}

// GradientStop is one color position of a gradient.
type GradientStop struct {
	Color   ColorReference
	Offset  float64 // 0..1
	Opacity float64 // 0..1
}

// GradientFill paints a color gradient.
type GradientFill struct {
	Stops []GradientStop
	Angle float64 // degrees
	Style GradientStyle
}

func (*GradientFill) isFill() {}

// AddStop appends a color stop.
func (f *GradientFill) AddStop(c ColorReference, offset, opacity float64) *GradientFill {
	f.Stops = append(f.Stops, GradientStop{Color: c, Offset: offset, Opacity: opacity})
	return f
}

// Resolve implements Fill. A gradient without stops yields no fill; a
// single stop is painted as a solid color.
func (f *GradientFill) Resolve(palette []Color, _ ImageLookup) PropertyList {
	props := NewPropertyList()
	switch len(f.Stops) {
	case 0:
		props.Insert("draw:fill", "none")
		return props
	case 1:
		props.Insert("draw:fill", "solid")
		props.Insert("draw:fill-color", f.Stops[0].Color.GetFinalColor(palette).Hex())
		return props
	}
	first, last := f.Stops[0], f.Stops[len(f.Stops)-1]
	props.Insert("draw:fill", "gradient")
	props.Insert("draw:style", f.Style.String())
	props.InsertDouble("draw:angle", f.Angle, UnitGeneric)
	props.Insert("draw:start-color", first.Color.GetFinalColor(palette).Hex())
	props.Insert("draw:end-color", last.Color.GetFinalColor(palette).Hex())
	props.InsertDouble("librevenge:start-opacity", first.Opacity, UnitPercent)
	props.InsertDouble("librevenge:end-opacity", last.Opacity, UnitPercent)
	props.InsertInt("librevenge:stop-count", len(f.Stops))
	return props
}

func lookupImage(images ImageLookup, index uint32) (Image, bool) {
	if images == nil || index == 0 {
		return Image{}, false
	}
	return images(index)
}

func insertBitmap(props *PropertyList, img Image) {
	props.Insert("draw:fill", "bitmap")
	props.Insert("librevenge:mime-type", img.Type.MimeType())
	props.SetBinary(img.Data)
}
