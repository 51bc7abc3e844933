package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultHistoryDays = 7

func (s *Server) GetContactSnapshot(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	snap, err := s.scoringSvc.LatestSnapshot(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if snap == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (s *Server) GetContactHistory(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	days := defaultHistoryDays
	if raw := c.Query("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days <= 0 || days > 365 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	history, err := s.scoringSvc.History(c.Request.Context(), id, time.Duration(days)*24*time.Hour)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contact_id": id,
		"days":       days,
		"snapshots":  history,
	})
}
