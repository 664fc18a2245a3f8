// Package api exposes the watermark remover over HTTP: upload a PDF,
// analyze a page's dominant colors or elements, run either removal
// pipeline, and download the cleaned result. Uploaded documents live in a
// temp directory keyed by UUID until removed.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/soft98-top/pdf-watermark-remover/engine"
)

// Config holds server configuration. Engine is the PDF engine collaborator
// used for every uploaded document.
type Config struct {
	Engine      engine.Engine
	TempDir     string
	MaxFileSize int64
	Log         zerolog.Logger
}

// Server handles watermark-removal HTTP requests.
type Server struct {
	cfg Config
}

// New creates a server with the given configuration.
func New(cfg Config) *Server {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 100 << 20
	}
	return &Server{cfg: cfg}
}

// Register attaches the watermark routes to a gin engine.
func (s *Server) Register(r *gin.Engine) {
	group := r.Group("/api/watermark")
	{
		group.POST("/upload", s.handleUpload)
		group.GET("/:id/colors", s.handleAnalyzeColors)
		group.GET("/:id/elements", s.handleAnalyzeElements)
		group.POST("/:id/remove", s.handleRemove)
		group.GET("/:id/download", s.handleDownload)
	}
}
