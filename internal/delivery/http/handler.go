package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	resolver *usecase.ResolverService
}

// NewHandler creates a new HTTP handler
func NewHandler(resolver *usecase.ResolverService) *Handler {
	return &Handler{resolver: resolver}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricelens-backend",
		"version": "1.0.0",
	})
}

// resolveRequest is the POST body for a single-item resolution.
type resolveRequest struct {
	StyleID   string `json:"style_id" binding:"required"`
	Brand     string `json:"brand"`
	Title     string `json:"title"`
	Gender    string `json:"gender"`
	Category  string `json:"category"`
	ImageURL  string `json:"image_url" binding:"required"`
	ViewCount int    `json:"view_count"`
}

// ResolveItem resolves one catalog item through both search passes and
// returns the per-site URLs and listing prices.
func (h *Handler) ResolveItem(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": domain.ErrInvalidRequest.Error(),
		})
		return
	}

	result := h.resolver.ResolveOne(c.Request.Context(), domain.Item{
		StyleID:   req.StyleID,
		Brand:     req.Brand,
		Title:     req.Title,
		Gender:    req.Gender,
		Category:  req.Category,
		ImageURL:  req.ImageURL,
		ViewCount: req.ViewCount,
	})

	c.JSON(http.StatusOK, gin.H{
		"style_id":      result.Item.StyleID,
		"brand_site":    result.BrandSite,
		"allowed_sites": result.AllowedSites,
		"site_results":  result.SiteResults,
	})
}
