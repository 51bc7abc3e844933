package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TriggerSync runs one CRM feed pass synchronously and reports its counters.
func (s *Server) TriggerSync(c *gin.Context) {
	result, err := s.ingestor.SyncFromFeed(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
