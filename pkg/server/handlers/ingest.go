package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parsdesk/dana"
	"github.com/parsdesk/dana/pkg/server/dto"
)

// IngestHandler handles passage indexing requests.
type IngestHandler struct {
	client *dana.Client
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(client *dana.Client) *IngestHandler {
	return &IngestHandler{client: client}
}

// AddPassages handles POST /api/v1/ingest/passages.
func (h *IngestHandler) AddPassages(c *gin.Context) {
	var req dto.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Message: err.Error()})
		return
	}

	if err := h.client.Ingest(c.Request.Context(), req.Passages); err != nil {
		if errors.Is(err, dana.ErrReadOnlyCorpus) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "corpus is read-only", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "ingestion failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.IngestResponse{Indexed: len(req.Passages)})
}
