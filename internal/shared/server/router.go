// Package server provides the worker's operational HTTP surface: health,
// metrics, and read-only document status lookups.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dock-optimizer/internal/documents"
	"dock-optimizer/internal/shared/metrics"
	"dock-optimizer/internal/shared/server/middleware"
	"dock-optimizer/internal/shared/server/respond"
)

// RouterDeps carries the services the ops routes read from.
type RouterDeps struct {
	Documents *documents.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
	)

	r.GET("/healthz", func(c *gin.Context) {
		respond.OK(c, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	if deps.Documents != nil {
		api := r.Group("/api/v1")
		api.GET("/documents/:id", documentStatusHandler(deps.Documents))
	}

	return r
}

func documentStatusHandler(svc *documents.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, documents.ErrNotFound) {
				respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", "Failed to load document", nil)
			return
		}
		c.Set("documentId", doc.ID)
		respond.OK(c, gin.H{
			"id":               doc.ID,
			"status":           string(doc.Status),
			"fileName":         doc.FileName,
			"originalFilename": doc.OriginalFilename,
			"mimeType":         doc.MimeType,
			"sizeBytes":        doc.SizeBytes,
			"parsedData":       doc.ParsedData,
			"createdAt":        doc.CreatedAt,
		})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
