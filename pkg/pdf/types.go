package pdf

import "math"

// BoundingBox represents a rectangular area with coordinates.
// The origin is the top-left corner of the page and y grows downward.
type BoundingBox struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// Width returns the width of the bounding box
func (b BoundingBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the height of the bounding box
func (b BoundingBox) Height() float64 {
	return b.Y1 - b.Y0
}

// IsEmpty reports whether the box has no area. NaN coordinates count as empty.
func (b BoundingBox) IsEmpty() bool {
	return !(b.X1 > b.X0) || !(b.Y1 > b.Y0)
}

// Contains checks if a point is within the bounding box
func (b BoundingBox) Contains(x, y float64) bool {
	return x >= b.X0 && x <= b.X1 && y >= b.Y0 && y <= b.Y1
}

// ContainsBox checks if other lies entirely inside b
func (b BoundingBox) ContainsBox(other BoundingBox) bool {
	return other.X0 >= b.X0 && other.Y0 >= b.Y0 && other.X1 <= b.X1 && other.Y1 <= b.Y1
}

// Intersects checks if two bounding boxes intersect
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return !(b.X1 < other.X0 || b.X0 > other.X1 || b.Y1 < other.Y0 || b.Y0 > other.Y1)
}

// Clamp returns the part of b that lies inside outer.
// Disjoint boxes yield the zero BoundingBox, which is empty.
func (b BoundingBox) Clamp(outer BoundingBox) BoundingBox {
	c := BoundingBox{
		X0: max(b.X0, outer.X0),
		Y0: max(b.Y0, outer.Y0),
		X1: min(b.X1, outer.X1),
		Y1: min(b.Y1, outer.Y1),
	}
	if c.X1 < c.X0 || c.Y1 < c.Y0 {
		return BoundingBox{}
	}
	return c
}

// Union returns the smallest box containing both boxes.
// Empty operands are ignored; the union of two empty boxes is the zero box.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	switch {
	case b.IsEmpty() && other.IsEmpty():
		return BoundingBox{}
	case b.IsEmpty():
		return other
	case other.IsEmpty():
		return b
	}
	return BoundingBox{
		X0: min(b.X0, other.X0),
		Y0: min(b.Y0, other.Y0),
		X1: max(b.X1, other.X1),
		Y1: max(b.Y1, other.Y1),
	}
}

// RestrictBottom truncates the bottom edge at y.
// The second result is false when the box starts below y and is dropped entirely.
func (b BoundingBox) RestrictBottom(y float64) (BoundingBox, bool) {
	if b.Y0 > y {
		return BoundingBox{}, false
	}
	b.Y1 = min(b.Y1, y)
	return b, true
}

// Expand grows each edge outward by the given amounts. Negative values shrink the box.
func (b BoundingBox) Expand(left, top, right, bottom float64) BoundingBox {
	return BoundingBox{
		X0: b.X0 - left,
		Y0: b.Y0 - top,
		X1: b.X1 + right,
		Y1: b.Y1 + bottom,
	}
}

// IsFinite reports whether every coordinate is a finite number
func (b BoundingBox) IsFinite() bool {
	for _, v := range [4]float64{b.X0, b.Y0, b.X1, b.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Normalize orders the corners so that X0 <= X1 and Y0 <= Y1
func (b BoundingBox) Normalize() BoundingBox {
	return BoundingBox{
		X0: min(b.X0, b.X1),
		Y0: min(b.Y0, b.Y1),
		X1: max(b.X0, b.X1),
		Y1: max(b.Y0, b.Y1),
	}
}

// CharObject represents a single glyph placed on the page
type CharObject struct {
	Text     string
	Font     string
	FontSize float64
	X0       float64
	Y0       float64
	X1       float64
	Y1       float64
}

// GetBBox returns the character's bounding box
func (c CharObject) GetBBox() BoundingBox {
	return BoundingBox{X0: c.X0, Y0: c.Y0, X1: c.X1, Y1: c.Y1}
}

// Word represents a run of characters without an intervening gap
type Word struct {
	Text       string
	X0         float64
	Y0         float64
	X1         float64
	Y1         float64
	Characters []CharObject
}

// GetBBox returns the word's bounding box
func (w Word) GetBBox() BoundingBox {
	return BoundingBox{X0: w.X0, Y0: w.Y0, X1: w.X1, Y1: w.Y1}
}

// TextLine is a baseline-aligned sequence of characters.
// Boxes is parallel to the runes of Text; an inserted word space covers the gap it fills.
type TextLine struct {
	Text  string
	Boxes []BoundingBox
	BBox  BoundingBox
}

// Point represents a 2D point
type Point struct {
	X, Y float64
}
