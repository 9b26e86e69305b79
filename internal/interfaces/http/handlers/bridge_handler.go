package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chain-bridge.backend/internal/domain/entities"
	domainerrors "chain-bridge.backend/internal/domain/errors"
	"chain-bridge.backend/internal/interfaces/http/response"
	"chain-bridge.backend/pkg/utils"
)

type SettlementService interface {
	Initiate(ctx context.Context, input *entities.InitiateBridgeInput) (*entities.InitiateBridgeResponse, error)
	Complete(ctx context.Context, input *entities.CompleteBridgeInput) (*entities.BridgeRequest, error)
	Cancel(ctx context.Context, input *entities.CancelBridgeInput) (*entities.BridgeRequest, error)
	Get(ctx context.Context, requestID uint64) (*entities.BridgeRequest, error)
	List(ctx context.Context, status *entities.RequestStatus, pagination utils.PaginationParams) ([]*entities.BridgeRequest, int64, error)
	Stats(ctx context.Context) (*entities.BridgeStats, error)
}

// BridgeHandler handles the settlement endpoints
type BridgeHandler struct {
	settlement SettlementService
}

func NewBridgeHandler(settlement SettlementService) *BridgeHandler {
	return &BridgeHandler{settlement: settlement}
}

// Initiate starts a new cross-chain transfer
// POST /api/v1/bridge/initiate
func (h *BridgeHandler) Initiate(c *gin.Context) {
	var input entities.InitiateBridgeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.settlement.Initiate(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Complete finalizes a transfer with its attestation
// POST /api/v1/bridge/complete
func (h *BridgeHandler) Complete(c *gin.Context) {
	var input entities.CompleteBridgeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	request, err := h.settlement.Complete(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": request})
}

// Cancel refunds a timed-out transfer to its sender
// POST /api/v1/bridge/cancel
func (h *BridgeHandler) Cancel(c *gin.Context) {
	var input entities.CancelBridgeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	request, err := h.settlement.Cancel(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": request})
}

// GetRequest returns one request by id
// GET /api/v1/bridge/requests/:id
func (h *BridgeHandler) GetRequest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request ID"))
		return
	}

	request, err := h.settlement.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": request})
}

// ListRequests lists requests newest first, optionally filtered by status
// GET /api/v1/bridge/requests
func (h *BridgeHandler) ListRequests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}
	pagination := utils.GetPaginationParams(page, limit)

	var status *entities.RequestStatus
	if raw := c.Query("status"); raw != "" {
		s := entities.RequestStatus(raw)
		switch s {
		case entities.RequestStatusCreated, entities.RequestStatusCompleted, entities.RequestStatusCancelled:
			status = &s
		default:
			response.Error(c, domainerrors.BadRequest("Invalid status filter"))
			return
		}
	}

	requests, total, err := h.settlement.List(c.Request.Context(), status, pagination)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"requests":   requests,
		"pagination": utils.CalculateMeta(total, pagination.Page, pagination.Limit),
	})
}

// GetStats returns the aggregate settlement counters
// GET /api/v1/bridge/stats
func (h *BridgeHandler) GetStats(c *gin.Context) {
	stats, err := h.settlement.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
