package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	pdfcropper "github.com/pyhub-apps/pdfcropper-golang"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/crop"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/label"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pageops"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
)

const rootPage = `<!doctype html>
<html><head><meta charset="utf-8"><title>PDF Cropper</title></head>
<body>
<h2>PDF Cropper API is running</h2>
<ul>
<li>GET <a href="/presets">/presets</a></li>
<li>POST /crop/preset (file, preset, rotate_degrees)</li>
<li>POST /crop/manual (file, x0r, y0r, x1r, y1r, rotate_degrees)</li>
<li>POST /pdf/merge (files)</li>
<li>POST /pdf/rearrange (file, order)</li>
<li>POST /fnsku/generate (fnsku, price, qty)</li>
</ul>
<p>Health: <a href="/health">/health</a></p>
</body></html>`

func handleRoot(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(rootPage))
}

func (s *Server) handleHealth(c *gin.Context) {
	active := s.active.Load()
	status := "healthy"
	if active >= s.cfg.MaxConcurrentRequests {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"status": status,
		"active": active,
	})
}

func (s *Server) handlePresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": s.presets.Names()})
}

// jobContext bounds one job by the request timeout and the client connection
func (s *Server) jobContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
}

func (s *Server) handleCropPreset(c *gin.Context) {
	data, err := s.formPDF(c, "file")
	if err != nil {
		fail(c, err)
		return
	}
	rotate, err := formRotate(c)
	if err != nil {
		fail(c, err)
		return
	}

	req := crop.Request{Preset: strings.TrimSpace(c.PostForm("preset")), Rotate: rotate}
	strategy, err := s.presets.Resolve(req)
	if err != nil {
		fail(c, err)
		return
	}
	s.runCrop(c, data, strategy, rotate, req.Preset+".pdf")
}

func (s *Server) handleCropManual(c *gin.Context) {
	data, err := s.formPDF(c, "file")
	if err != nil {
		fail(c, err)
		return
	}
	rotate, err := formRotate(c)
	if err != nil {
		fail(c, err)
		return
	}

	var ratios crop.Ratios
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"x0r", &ratios.X0},
		{"y0r", &ratios.Y0},
		{"x1r", &ratios.X1},
		{"y1r", &ratios.Y1},
	} {
		if *f.dst, err = formFloat(c, f.name); err != nil {
			fail(c, err)
			return
		}
	}

	strategy, err := s.presets.Resolve(crop.Request{Ratios: &ratios, Rotate: rotate})
	if err != nil {
		fail(c, err)
		return
	}
	s.runCrop(c, data, strategy, rotate, "manual-crop.pdf")
}

func (s *Server) runCrop(c *gin.Context, data []byte, strategy crop.Strategy, rotate int, filename string) {
	ctx, cancel := s.jobContext(c)
	defer cancel()

	out, err := pdfcropper.Crop(ctx, data, strategy, rotate, pdf.WithLogger(requestLogger(c)))
	if err != nil {
		fail(c, err)
		return
	}
	sendPDF(c, filename, out)
}

func (s *Server) handleMerge(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		fail(c, pdf.Validationf("Upload at least 2 PDFs."))
		return
	}
	files := form.File["files"]
	if len(files) < 2 {
		fail(c, pdf.Validationf("Upload at least 2 PDFs."))
		return
	}

	inputs := make([][]byte, 0, len(files))
	for _, fh := range files {
		data, err := s.readUpload(fh)
		if err != nil {
			fail(c, err)
			return
		}
		inputs = append(inputs, data)
	}

	ctx, cancel := s.jobContext(c)
	defer cancel()

	out, err := pageops.Merge(ctx, inputs)
	if err != nil {
		fail(c, err)
		return
	}
	sendPDF(c, "merged.pdf", out)
}

func (s *Server) handleRearrange(c *gin.Context) {
	data, err := s.formPDF(c, "file")
	if err != nil {
		fail(c, err)
		return
	}
	order, ok := c.GetPostForm("order")
	if !ok {
		fail(c, pdf.Validationf("Order cannot be empty."))
		return
	}

	ctx, cancel := s.jobContext(c)
	defer cancel()

	out, err := pageops.Rearrange(ctx, data, order)
	if err != nil {
		fail(c, err)
		return
	}
	sendPDF(c, "rearranged.pdf", out)
}

func (s *Server) handleFNSKU(c *gin.Context) {
	qty := 1
	if v := strings.TrimSpace(c.PostForm("qty")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail(c, pdf.Validationf("Qty must be between 1 and %d.", label.MaxQty))
			return
		}
		qty = n
	}

	ctx, cancel := s.jobContext(c)
	defer cancel()

	out, err := label.Generate(ctx, label.Request{
		FNSKU: c.PostForm("fnsku"),
		Price: c.PostForm("price"),
		Qty:   qty,
	})
	if err != nil {
		fail(c, err)
		return
	}
	sendPDF(c, "fnsku-labels-4x6.pdf", out)
}
