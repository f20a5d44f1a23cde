package pdf

import (
	"math"
)

// Tolerance for floating point comparisons
const FloatTolerance = 0.1

// DeduplicateBoxes removes boxes that repeat an earlier box within FloatTolerance.
// Content order of the survivors is preserved.
func DeduplicateBoxes(boxes []BoundingBox) []BoundingBox {
	if len(boxes) == 0 {
		return boxes
	}

	type key [4]int64
	quantize := func(v float64) int64 {
		return int64(math.Round(v / FloatTolerance))
	}

	seen := make(map[key]struct{}, len(boxes))
	result := make([]BoundingBox, 0, len(boxes))
	for _, b := range boxes {
		k := key{quantize(b.X0), quantize(b.Y0), quantize(b.X1), quantize(b.Y1)}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, b)
	}
	return result
}

// ClipToPage drops boxes that lie entirely off the page and clips the rest to it.
// Boxes that touch the page only along an edge are kept as degenerate slivers.
func ClipToPage(boxes []BoundingBox, page BoundingBox) []BoundingBox {
	result := make([]BoundingBox, 0, len(boxes))
	for _, b := range boxes {
		if !b.IsFinite() || !b.Intersects(page) {
			continue
		}
		result = append(result, b.Clamp(page))
	}
	return result
}
