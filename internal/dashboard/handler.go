package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	httperr "github.com/socialdesk-lab/socialdesk/internal/core/errors"
)

// RegisterRoutes registers the dashboard read API routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/dashboard/summary", s.HandleSummary)
	r.GET("/v1/dashboard/top-posts", s.HandleTopPosts)
}

// HandleSummary handles GET /v1/dashboard/summary
func (s *Service) HandleSummary(c *gin.Context) {
	resp, err := s.Summary(c.Request.Context())
	if err != nil {
		slog.Error("Failed to build dashboard summary", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to build dashboard summary",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleTopPosts handles GET /v1/dashboard/top-posts
// Query parameters: limit (default 10, max 100)
func (s *Service) HandleTopPosts(c *gin.Context) {
	limit := defaultTopPostsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidJsonError,
				Message:   "Invalid limit parameter",
				Details:   map[string]interface{}{"limit": raw},
			})
			return
		}
		limit = parsed
	}

	resp, err := s.TopPosts(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Failed to fetch top posts", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to fetch top posts",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}
