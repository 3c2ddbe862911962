package handler

import (
	"errors"
	"net/http"

	"github.com/chungty/companylens/middleware"
	"github.com/chungty/companylens/pkg/logger"
	"github.com/chungty/companylens/service"
	"github.com/gin-gonic/gin"
)

type EnrichHandler struct {
	enrich *service.EnrichmentClient
}

func NewEnrichHandler(enrich *service.EnrichmentClient) *EnrichHandler {
	return &EnrichHandler{enrich: enrich}
}

type EnrichRequest struct {
	Name   string `json:"name" binding:"required"`
	Domain string `json:"domain" binding:"required"`
}

// Enrich looks up one company and returns the record. Upstream failures map
// to 502, mock rejections to 422; neither is retried here.
func (h *EnrichHandler) Enrich(c *gin.Context) {
	var req EnrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and domain are required"})
		return
	}

	record, err := h.enrich.EnrichCompany(c.Request.Context(), req.Name, req.Domain)
	if err != nil {
		var mockErr *service.MockDataError
		if errors.As(err, &mockErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "vendor returned mock data, refusing to use it",
				"domain": mockErr.Domain,
				"reason": mockErr.Reason,
			})
			return
		}

		var upstreamErr *service.UpstreamError
		if errors.As(err, &upstreamErr) {
			logger.Error(c.Request.Context(), "enrichment upstream failed",
				"domain", req.Domain,
				"status", upstreamErr.Status,
			)
			c.JSON(http.StatusBadGateway, gin.H{
				"error":      "enrichment vendor unavailable",
				"request_id": middleware.GetRequestID(c),
			})
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Stats returns the enrichment call counters
func (h *EnrichHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.enrich.Stats())
}
