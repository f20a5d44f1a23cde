package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
)

func writeErr(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

// fail maps err onto a status and a message that is safe to show to clients
func fail(c *gin.Context, err error) {
	status, code := classify(err)
	msg := publicMessage(err, status)

	entry := requestLogger(c).WithError(err).WithField("code", code)
	if status >= http.StatusInternalServerError {
		entry.Error("request error")
	} else {
		entry.Debug("request rejected")
	}
	writeErr(c, status, code, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, pdf.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, pdf.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, pdf.ErrDecode):
		return http.StatusUnprocessableEntity, "decode_failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "cancelled"
	}
	return http.StatusInternalServerError, "internal_error"
}

func publicMessage(err error, status int) string {
	if msg, ok := pdf.Message(err); ok {
		return msg
	}
	switch status {
	case http.StatusGatewayTimeout:
		return "Request timed out."
	case http.StatusServiceUnavailable:
		return "Request cancelled."
	}
	return "Internal server error"
}

func sendPDF(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
