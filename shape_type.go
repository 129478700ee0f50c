package gopublisher

import "fmt"

// ShapeType is the drawing-layer shape type (the FSP instance value).
type ShapeType uint16

const (
	ShapeNotPrimitive      ShapeType = 0
	ShapeRectangle         ShapeType = 1
	ShapeRoundRectangle    ShapeType = 2
	ShapeEllipse           ShapeType = 3
	ShapeDiamond           ShapeType = 4
	ShapeIsoscelesTriangle ShapeType = 5
	ShapeRightTriangle     ShapeType = 6
	ShapeParallelogram     ShapeType = 7
	ShapeTrapezoid         ShapeType = 8
	ShapeHexagon           ShapeType = 9
	ShapeOctagon           ShapeType = 10
	ShapePlus              ShapeType = 11
	ShapeStar              ShapeType = 12
	ShapeRightArrow        ShapeType = 13
	ShapeHomePlate         ShapeType = 15
	ShapeCube              ShapeType = 16
	ShapeLine              ShapeType = 20
	ShapeCan               ShapeType = 22
	ShapeDonut             ShapeType = 23
	ShapeChevron           ShapeType = 55
	ShapePentagon          ShapeType = 56
	ShapeLeftArrow         ShapeType = 66
	ShapeDownArrow         ShapeType = 67
	ShapeUpArrow           ShapeType = 68
	ShapeLeftRightArrow    ShapeType = 69
	ShapeLightningBolt     ShapeType = 73
	ShapeHeart             ShapeType = 74
	ShapePictureFrame      ShapeType = 75
	ShapeTextBox           ShapeType = 202
)

var shapeTypeNames = map[ShapeType]string{
	ShapeNotPrimitive:      "not-primitive",
	ShapeRectangle:         "rectangle",
	ShapeRoundRectangle:    "round-rectangle",
	ShapeEllipse:           "ellipse",
	ShapeDiamond:           "diamond",
	ShapeIsoscelesTriangle: "isosceles-triangle",
	ShapeRightTriangle:     "right-triangle",
	ShapeParallelogram:     "parallelogram",
	ShapeTrapezoid:         "trapezoid",
	ShapeHexagon:           "hexagon",
	ShapeOctagon:           "octagon",
	ShapePlus:              "plus",
	ShapeStar:              "star",
	ShapeRightArrow:        "right-arrow",
	ShapeHomePlate:         "home-plate",
	ShapeCube:              "cube",
	ShapeLine:              "line",
	ShapeCan:               "can",
	ShapeDonut:             "donut",
	ShapeChevron:           "chevron",
	ShapePentagon:          "pentagon",
	ShapeLeftArrow:         "left-arrow",
	ShapeDownArrow:         "down-arrow",
	ShapeUpArrow:           "up-arrow",
	ShapeLeftRightArrow:    "left-right-arrow",
	ShapeLightningBolt:     "lightning-bolt",
	ShapeHeart:             "heart",
	ShapePictureFrame:      "picture-frame",
	ShapeTextBox:           "text-box",
}

func (t ShapeType) String() string {
	if n, ok := shapeTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("shape-type(%d)", uint16(t))
}
