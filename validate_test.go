package gopublisher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCleanDocument(t *testing.T) {
	c := onePageCollector(nil)
	addSquare(c, 10, 1)
	c.SetShapeTextID(10, 0)
	c.AddTextBlock(0, TextBlock{{Spans: []TextSpan{{Text: "x"}}}})
	img := c.AddImage(Image{Type: ImagePNG, Data: []byte{1}})
	c.SetShapeImageIndex(10, img)
	assert.NoError(t, c.Validate())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	c := onePageCollector(nil)
	c.SetMasterPage(1, 9)
	c.AttachShape(10, nil, false)
	c.SetShapePage(10, 1)
	c.SetShapeTextID(10, 4)
	c.SetShapeImageIndex(10, 3)

	err := c.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 4)
	assert.True(t, errors.Is(err, ErrMalformedReference))
	assert.Contains(t, err.Error(), "has no coordinates")
}

func TestValidatePageSize(t *testing.T) {
	c := NewCollector(nil, nil)
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page size")
	assert.False(t, errors.Is(err, ErrMalformedReference))
}
