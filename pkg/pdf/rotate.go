package pdf

// NormalizeRotation folds deg into [0, 360) and snaps it down to a multiple of 90.
func NormalizeRotation(deg int) int {
	deg = ((deg % 360) + 360) % 360
	return deg - deg%90
}

// ValidRotation reports whether deg is one of the rotation deltas a caller may request.
func ValidRotation(deg int) bool {
	switch deg {
	case 0, 90, 180, 270:
		return true
	}
	return false
}

// DisplaySize returns the page size after rotating a w x h page clockwise by rot degrees.
func DisplaySize(w, h float64, rot int) (float64, float64) {
	if rot == 90 || rot == 270 {
		return h, w
	}
	return w, h
}

// ToDisplay maps a box from unrotated top-left coordinates of a w x h page
// into the coordinates of the page rotated clockwise by rot degrees.
func ToDisplay(b BoundingBox, rot int, w, h float64) BoundingBox {
	x0, y0 := toDisplayPoint(b.X0, b.Y0, rot, w, h)
	x1, y1 := toDisplayPoint(b.X1, b.Y1, rot, w, h)
	return BoundingBox{X0: x0, Y0: y0, X1: x1, Y1: y1}.Normalize()
}

// FromDisplay is the inverse of ToDisplay.
func FromDisplay(b BoundingBox, rot int, w, h float64) BoundingBox {
	x0, y0 := fromDisplayPoint(b.X0, b.Y0, rot, w, h)
	x1, y1 := fromDisplayPoint(b.X1, b.Y1, rot, w, h)
	return BoundingBox{X0: x0, Y0: y0, X1: x1, Y1: y1}.Normalize()
}

func toDisplayPoint(u, v float64, rot int, w, h float64) (float64, float64) {
	switch rot {
	case 90:
		return h - v, u
	case 180:
		return w - u, h - v
	case 270:
		return v, w - u
	}
	return u, v
}

func fromDisplayPoint(x, y float64, rot int, w, h float64) (float64, float64) {
	switch rot {
	case 90:
		return y, h - x
	case 180:
		return w - x, h - y
	case 270:
		return w - y, x
	}
	return x, y
}
