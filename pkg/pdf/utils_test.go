package pdf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicateBoxes(t *testing.T) {
	boxes := []BoundingBox{
		{0, 0, 10, 10},
		{5, 5, 20, 20},
		{0.02, 0, 10, 10.03},
		{5, 5, 20, 20},
	}
	assert.Equal(t, []BoundingBox{{0, 0, 10, 10}, {5, 5, 20, 20}}, DeduplicateBoxes(boxes))
	assert.Empty(t, DeduplicateBoxes(nil))
}

func TestClipToPage(t *testing.T) {
	page := BoundingBox{0, 0, 100, 100}
	boxes := []BoundingBox{
		{-10, 10, 50, 20},
		{200, 200, 210, 210},
		{100, 40, 120, 60},
		{0, math.NaN(), 10, 10},
	}
	assert.Equal(t, []BoundingBox{{0, 10, 50, 20}, {100, 40, 100, 60}}, ClipToPage(boxes, page))
}
