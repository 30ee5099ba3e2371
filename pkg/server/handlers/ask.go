package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parsdesk/dana"
	"github.com/parsdesk/dana/pkg/server/dto"
	"github.com/parsdesk/dana/pkg/types"
)

// AskHandler handles question answering requests.
type AskHandler struct {
	client *dana.Client
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(client *dana.Client) *AskHandler {
	return &AskHandler{client: client}
}

// Ask handles POST /api/v1/ask. Per-request overrides apply on top of the
// tuned defaults; pass ?debug=true to include pipeline debug info.
func (h *AskHandler) Ask(c *gin.Context) {
	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Message: err.Error()})
		return
	}

	cfg := req.Apply(h.client.RetrievalConfig())
	result, _, err := h.client.Answer(c.Request.Context(), req.Query(), cfg)
	if err != nil {
		if errors.Is(err, dana.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "query failed", Message: err.Error()})
		return
	}

	includeDebug := c.Query("debug") == "true"
	c.JSON(statusFor(result.Error), dto.NewAskResponse(result, includeDebug))
}

// statusFor maps terminal pipeline outcomes onto HTTP status codes. "No
// information" is a successful answer about the corpus, not a server error.
func statusFor(resultError types.ResultError) int {
	switch resultError {
	case types.ResultErrorProviderUnreachable:
		return http.StatusServiceUnavailable
	case types.ResultErrorGenerationFailed:
		return http.StatusBadGateway
	case types.ResultErrorCancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusOK
	}
}
