package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	scoringdomain "github.com/propelre/leadpulse/internal/scoring/domain"
)

type triggerRunRequest struct {
	// Config overrides the env-derived defaults for this run only.
	Config *scoringdomain.ScoreConfig `json:"config,omitempty"`
}

func (s *Server) TriggerScoringRun(c *gin.Context) {
	var req triggerRunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	cfg := scoringdomain.FromAppConfig(s.cfg.Scoring)
	if req.Config != nil {
		cfg = *req.Config
	}

	run, err := s.scoringSvc.Run(c.Request.Context(), cfg)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, run)
}

func (s *Server) GetScoringRun(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	run, err := s.scoringSvc.GetRun(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

func parseID(raw string) (snowflake.ID, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidRequest
	}
	return snowflake.ID(n), nil
}
