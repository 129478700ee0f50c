package gopublisher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnitConversions(t *testing.T) {
	assert.Equal(t, int64(914400), Inch(1))
	assert.Equal(t, int64(12700), Points(1))
	assert.Equal(t, 0.5, EMUToInch(457200))
	assert.Equal(t, 72.0, EMUToPoint(914400))
	assert.Equal(t, uint32(12700), quarterPointsToEMU(4))
	assert.Equal(t, -1.5, fixed16ToFloat(0xFFFE8000))
	assert.InDelta(t, 90, radToDeg(degToRad(90)), 1e-12)
}

func TestInchClamps(t *testing.T) {
	assert.Equal(t, int64(maxEMU), Inch(1e300))
	assert.Equal(t, -int64(maxEMU), Inch(-1e300))
}
