package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yahya12213/certgen"
	"github.com/yahya12213/certgen/doctpl"
	"github.com/yahya12213/certgen/geometry"
	"github.com/yahya12213/certgen/pageops"
	"github.com/yahya12213/certgen/variables"
)

type renderRequest struct {
	Template  *doctpl.Template `json:"template" binding:"required"`
	Record    variables.Record `json:"record"`
	Watermark string           `json:"watermark"`
}

type batchRequest struct {
	Template *doctpl.Template   `json:"template" binding:"required"`
	Records  []variables.Record `json:"records" binding:"required"`
}

type previewRequest struct {
	Template *doctpl.Template `json:"template" binding:"required"`
	Record   variables.Record `json:"record"`
	Scale    float64          `json:"scale"`
}

type templateRequest struct {
	Template *doctpl.Template `json:"template" binding:"required"`
}

type substituteRequest struct {
	Text       string           `json:"text" binding:"required"`
	Record     variables.Record `json:"record"`
	DateFormat string           `json:"dateFormat"`
	Locale     string           `json:"locale"`
}

// errorStatus maps engine errors to HTTP statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, certgen.ErrNoPages), errors.Is(err, certgen.ErrInvalidLayout):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBatchTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errEmptyBatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("render failed", "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func sendPDF(c *gin.Context, name string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (s *Server) handleRender(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comp := s.composer()
	pdf := comp.NewDocument(req.Template)
	if req.Watermark != "" {
		pageops.Watermark(pdf, pageops.TextWatermark{Text: req.Watermark})
	}
	if err := comp.AppendTo(c.Request.Context(), pdf, req.Template, req.Record); err != nil {
		s.fail(c, err)
		return
	}
	data, err := pdf.Bytes()
	if err != nil {
		s.fail(c, err)
		return
	}
	sendPDF(c, "certificate.pdf", data)
}

var (
	errEmptyBatch      = errors.New("httpapi: batch has no records")
	errBatchTooLarge   = errors.New("httpapi: batch exceeds the record limit")
	errMissingTemplate = errors.New("httpapi: template is required")
)

// checkBatch enforces the record limit. A zero limit disables it.
func (s *Server) checkBatch(n int) error {
	if n == 0 {
		return errEmptyBatch
	}
	if s.cfg.MaxBatch > 0 && n > s.cfg.MaxBatch {
		return fmt.Errorf("%w: %d > %d", errBatchTooLarge, n, s.cfg.MaxBatch)
	}
	return nil
}

func (s *Server) handleBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.checkBatch(len(req.Records)); err != nil {
		s.fail(c, err)
		return
	}

	pdf, err := s.composer().RenderBatch(c.Request.Context(), req.Template, req.Records)
	if err != nil {
		s.fail(c, err)
		return
	}
	data, err := pdf.Bytes()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("X-Page-Count", fmt.Sprint(pdf.PageCount()))
	sendPDF(c, "certificates.pdf", data)
}

func (s *Server) handlePreview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Scale <= 0 {
		req.Scale = 1
	}

	img, err := s.composer().Preview(c.Request.Context(), req.Template, req.Record, req.Scale)
	if err != nil {
		s.fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleResolvePages(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doctpl.Normalize(*req.Template))
}

func (s *Server) handleSubstitute(c *gin.Context) {
	var req substituteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	sub := variables.Substituter{Locale: variables.LocaleByName(req.Locale)}
	c.JSON(http.StatusOK, gin.H{"text": sub.Substitute(req.Text, req.Record, req.DateFormat)})
}

func (s *Server) handleValidate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	problems := doctpl.Problems(req.Template)
	c.JSON(http.StatusOK, gin.H{
		"valid":    len(problems) == 0,
		"problems": problems,
	})
}

func (s *Server) handleFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":   geometry.FormatCatalog(),
		"variables": variables.Vocabulary(),
	})
}
