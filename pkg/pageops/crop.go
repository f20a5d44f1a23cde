package pageops

import (
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
)

// PageCrop is the change applied to one page. Box is given in display coordinates
// of the page after Rotate has been added to its own rotation, with the origin at
// the top-left of the visible page. An empty Box leaves the crop box untouched.
type PageCrop struct {
	Box    pdf.BoundingBox
	Rotate int
}

// Crop applies one PageCrop per page of data and returns the rewritten document.
// Pages keep their order and every page must have an entry.
func Crop(c context.Context, data []byte, crops []PageCrop) ([]byte, error) {
	const op = "pageops.crop"

	conf := newConfiguration()
	ctx, err := readContext(data, conf)
	if err != nil {
		return nil, pdf.NewOpError(op, err)
	}
	if len(crops) != ctx.PageCount {
		return nil, pdf.NewOpError(op, fmt.Errorf("got %d crops for %d pages", len(crops), ctx.PageCount))
	}

	for i, crop := range crops {
		if err := c.Err(); err != nil {
			return nil, err
		}
		if !pdf.ValidRotation(crop.Rotate) {
			return nil, pdf.NewOpError(op, pdf.Validationf("rotate_degrees must be one of 0, 90, 180, 270."))
		}
		if err := applyPageCrop(ctx, i+1, crop); err != nil {
			return nil, pdf.NewOpError(op, fmt.Errorf("page %d: %w", i+1, err))
		}
	}

	out, err := writeContext(c, ctx)
	if err != nil {
		return nil, pdf.NewOpError(op, err)
	}
	return out, nil
}

func applyPageCrop(ctx *model.Context, pageNr int, crop PageCrop) error {
	pageDict, _, attrs, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return err
	}
	if pageDict == nil || attrs == nil {
		return pdf.Decodef("Could not read PDF.")
	}

	visible := visibleBox(attrs)
	rotation := pdf.NormalizeRotation(attrs.Rotate + crop.Rotate)
	pageDict["Rotate"] = types.Integer(rotation)

	if crop.Box.IsEmpty() || !crop.Box.IsFinite() {
		return nil
	}

	user := toUserSpace(crop.Box, rotation, visible)
	if user.IsEmpty() {
		return nil
	}
	pageDict["CropBox"] = types.NewNumberArray(user.X0, user.Y0, user.X1, user.Y1)
	return nil
}

// visibleBox mirrors how page views are measured: the crop box limited to the
// media box, or the media box alone. Coordinates are PDF user space.
func visibleBox(attrs *model.InheritedPageAttrs) pdf.BoundingBox {
	media := pdf.BoundingBox{X0: 0, Y0: 0, X1: 612, Y1: 792}
	if attrs.MediaBox != nil {
		if r := rectangleBox(attrs.MediaBox); !r.IsEmpty() {
			media = r
		}
	}
	if attrs.CropBox != nil {
		if c := rectangleBox(attrs.CropBox).Clamp(media); !c.IsEmpty() {
			return c
		}
	}
	return media
}

func rectangleBox(r *types.Rectangle) pdf.BoundingBox {
	return pdf.BoundingBox{X0: r.LL.X, Y0: r.LL.Y, X1: r.UR.X, Y1: r.UR.Y}.Normalize()
}

// toUserSpace maps a display box of a page with the given rotation and visible
// user-space box back into PDF user space, limited to the visible box.
func toUserSpace(display pdf.BoundingBox, rotation int, visible pdf.BoundingBox) pdf.BoundingBox {
	w, h := visible.Width(), visible.Height()
	u := pdf.FromDisplay(display, rotation, w, h)
	user := pdf.BoundingBox{
		X0: visible.X0 + u.X0,
		Y0: visible.Y1 - u.Y1,
		X1: visible.X0 + u.X1,
		Y1: visible.Y1 - u.Y0,
	}
	return user.Clamp(visible)
}
