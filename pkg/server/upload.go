package server

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
)

const minUploadBytes = 100

var allowedUploadTypes = map[string]bool{
	"application/pdf":          true,
	"application/octet-stream": true,
}

// formPDF reads and validates the uploaded PDF in field
func (s *Server) formPDF(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, pdf.Validationf("Please upload a PDF file.")
	}
	return s.readUpload(fh)
}

// readUpload enforces the upload rules: a PDF content type (or none), the size cap,
// a minimum size and the %PDF signature.
func (s *Server) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || !allowedUploadTypes[strings.ToLower(mediaType)] {
			return nil, pdf.Validationf("Please upload a PDF file.")
		}
	}

	maxBytes := s.cfg.MaxUploadBytes()
	if fh.Size > maxBytes {
		return nil, pdf.TooLargef("File too large (max %dMB).", s.cfg.MaxUploadMB)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	lr := &io.LimitedReader{R: f, N: maxBytes + 1}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, pdf.TooLargef("File too large (max %dMB).", s.cfg.MaxUploadMB)
	}
	if len(data) < minUploadBytes {
		return nil, pdf.Validationf("Empty/invalid PDF.")
	}
	if !pdf.HasPDFMagic(data) {
		return nil, pdf.Decodef("Could not read PDF.")
	}
	return data, nil
}

// formRotate reads rotate_degrees, defaulting to 0
func formRotate(c *gin.Context) (int, error) {
	v := strings.TrimSpace(c.DefaultPostForm("rotate_degrees", "0"))
	if v == "" {
		return 0, nil
	}
	deg, err := strconv.Atoi(v)
	if err != nil || !pdf.ValidRotation(deg) {
		return 0, pdf.Validationf("rotate_degrees must be one of 0, 90, 180, 270.")
	}
	return deg, nil
}

// formFloat reads a required float field
func formFloat(c *gin.Context, field string) (float64, error) {
	v := strings.TrimSpace(c.PostForm(field))
	if v == "" {
		return 0, pdf.Validationf("%s is required.", field)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, pdf.Validationf("%s must be a number.", field)
	}
	return f, nil
}
