package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	watermark "github.com/soft98-top/pdf-watermark-remover"
	"github.com/soft98-top/pdf-watermark-remover/colors"
	"github.com/soft98-top/pdf-watermark-remover/engine"
	"github.com/soft98-top/pdf-watermark-remover/pattern"
)

// patternRequest mirrors the pattern-file record for request bodies.
type patternRequest struct {
	Type        string     `json:"type" binding:"required,oneof=text image"`
	BBox        [4]float64 `json:"bbox"`
	Text        string     `json:"text"`
	Description string     `json:"description"`
}

// removeRequest selects a pipeline and its parameters.
type removeRequest struct {
	Mode      string           `json:"mode" binding:"required,oneof=pattern color"`
	Colors    []string         `json:"colors"`
	Patterns  []patternRequest `json:"patterns"`
	Tolerance float64          `json:"tolerance"`
	DPI       int              `json:"dpi"`
	BatchSize int              `json:"batchSize"`
	StartPage *int             `json:"startPage"`
	EndPage   *int             `json:"endPage"`
}

func (s *Server) handleUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	defer file.Close()

	if header.Size > s.cfg.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF files are accepted"})
		return
	}

	if err := os.MkdirAll(s.cfg.TempDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create temp directory"})
		return
	}

	id := uuid.New().String()
	path := s.workingPath(id)
	out, err := os.Create(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}
	defer out.Close()
	if _, err := out.ReadFrom(file); err != nil {
		os.Remove(path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	s.cfg.Log.Info().Str("id", id).Str("filename", header.Filename).Msg("uploaded")
	c.JSON(http.StatusOK, gin.H{"id": id, "filename": header.Filename})
}

func (s *Server) handleAnalyzeColors(c *gin.Context) {
	path, ok := s.lookup(c)
	if !ok {
		return
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	dpi, err := strconv.Atoi(c.DefaultQuery("dpi", "0"))
	if err != nil || dpi < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dpi"})
		return
	}

	r := watermark.Open(s.cfg.Engine, path).Logger(s.cfg.Log)
	defer r.Close()

	dominant, err := r.AnalyzePageColors(page, dpi)
	if err != nil {
		s.respondError(c, err)
		return
	}
	report := make([]gin.H, len(dominant))
	for i, d := range dominant {
		report[i] = gin.H{
			"rgb":        []uint8{d.RGB.R, d.RGB.G, d.RGB.B},
			"hex":        d.Hex(),
			"percentage": d.Percentage,
		}
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "colors": report})
}

func (s *Server) handleAnalyzeElements(c *gin.Context) {
	path, ok := s.lookup(c)
	if !ok {
		return
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}

	r := watermark.Open(s.cfg.Engine, path).Logger(s.cfg.Log)
	defer r.Close()

	elements, err := r.AnalyzePageElements(page)
	if err != nil {
		s.respondError(c, err)
		return
	}
	report := make([]gin.H, len(elements))
	for i, el := range elements {
		entry := gin.H{
			"index": i + 1,
			"type":  strings.ToLower(el.Type().String()),
			"bbox":  el.BoundingBox().Coords(),
		}
		if tb, ok := el.(*engine.TextBlock); ok {
			entry["text"] = tb.Text()
		}
		report[i] = entry
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "elements": report})
}

func (s *Server) handleRemove(c *gin.Context) {
	path, ok := s.lookup(c)
	if !ok {
		return
	}
	var req removeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := watermark.Open(s.cfg.Engine, path).Logger(s.cfg.Log)
	defer r.Close()
	if req.Tolerance > 0 {
		r.Tolerance(req.Tolerance)
	}
	if req.DPI > 0 {
		r.DPI(req.DPI)
	}
	if req.BatchSize > 0 {
		r.BatchSize(req.BatchSize)
	}

	var rng *watermark.PageRange
	if req.StartPage != nil || req.EndPage != nil {
		rng = &watermark.PageRange{}
		if req.StartPage != nil {
			rng.Start = *req.StartPage
		}
		if req.EndPage != nil {
			rng.End = *req.EndPage
		} else {
			n, err := r.PageCount()
			if err != nil {
				s.respondError(c, err)
				return
			}
			rng.End = n - 1
		}
	}

	switch req.Mode {
	case "pattern":
		for _, p := range req.Patterns {
			r.AddPattern(pattern.Pattern{
				Kind:        pattern.KindFromString(p.Type),
				BBox:        engine.NewRect(p.BBox[0], p.BBox[1], p.BBox[2], p.BBox[3]),
				Text:        p.Text,
				Description: p.Description,
			})
		}
		if err := r.RemoveByPattern(rng); err != nil {
			s.respondError(c, err)
			return
		}
	case "color":
		targets, err := colors.ParseList(req.Colors)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := r.RemoveByColor(targets, rng); err != nil {
			s.respondError(c, err)
			return
		}
	}

	outID := uuid.New().String()
	if err := r.Save(s.workingPath(outID)); err != nil {
		s.respondError(c, err)
		return
	}

	warnings := r.Warnings()
	c.JSON(http.StatusOK, gin.H{
		"output":   outID,
		"warnings": formatWarnings(warnings),
	})
}

func (s *Server) handleDownload(c *gin.Context) {
	path, ok := s.lookup(c)
	if !ok {
		return
	}
	c.FileAttachment(path, "cleaned.pdf")
}

// lookup validates the id path parameter and resolves it to a working file.
// The id must parse as a UUID, which also rules out path traversal.
func (s *Server) lookup(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return "", false
	}
	path := s.workingPath(id)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown document id"})
		return "", false
	}
	return path, true
}

func (s *Server) workingPath(id string) string {
	return filepath.Join(s.cfg.TempDir, id+".pdf")
}

// respondError maps the remover's error taxonomy to HTTP statuses:
// user-input problems are 400s, everything else is a 500.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, watermark.ErrInvalidRange),
		errors.Is(err, watermark.ErrNoPatterns),
		errors.Is(err, watermark.ErrNoColors):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.cfg.Log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func formatWarnings(warnings []watermark.Warning) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.String()
	}
	return out
}
