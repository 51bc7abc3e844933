package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	matchingdomain "github.com/propelre/leadpulse/internal/matching/domain"
)

type matchRequest struct {
	// Config overrides the default match weights for this request only.
	Config *matchingdomain.MatchConfig `json:"config,omitempty"`
	// Limit truncates the ranking; zero returns everything.
	Limit int `json:"limit,omitempty"`
}

func (s *Server) MatchBuyer(c *gin.Context) {
	buyerID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req matchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}
	if req.Limit < 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cfg := matchingdomain.DefaultMatchConfig()
	if req.Config != nil {
		cfg = *req.Config
	}

	candidates, err := s.catalogRepo.ListActive(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	results, err := s.matchingSvc.MatchProperties(c.Request.Context(), buyerID, candidates, cfg)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Limit > 0 && req.Limit < len(results) {
		results = results[:req.Limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"buyer_id": buyerID,
		"matches":  results,
	})
}
