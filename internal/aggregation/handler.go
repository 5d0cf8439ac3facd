package aggregation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	httperr "github.com/socialdesk-lab/socialdesk/internal/core/errors"
)

// RegisterRoutes exposes the manual trigger endpoint on the reporter's HTTP
// surface, for operators who don't want to wait for the next tick.
func (s *Scheduler) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/report/trigger", s.HandleTrigger)
}

// HandleTrigger handles POST /v1/report/trigger
// Runs one aggregate-and-deliver cycle synchronously. Returns 409 if a
// scheduled cycle is already in flight.
func (s *Scheduler) HandleTrigger(c *gin.Context) {
	if err := s.RunCycle(c.Request.Context()); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrCycleInProgress) {
			status = http.StatusConflict
		}
		c.JSON(status, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Report cycle failed",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Stats sent to desk",
	})
}
