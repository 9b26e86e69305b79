package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chain-bridge.backend/internal/domain/entities"
	domainerrors "chain-bridge.backend/internal/domain/errors"
	"chain-bridge.backend/internal/interfaces/http/response"
)

type FeeService interface {
	Quote(ctx context.Context, chainID uint64, amount string, now time.Time) (int64, error)
	Get(ctx context.Context, chainID uint64) (*entities.DynamicFee, error)
	History(ctx context.Context, chainID uint64, limit int) ([]*entities.FeeHistoryEntry, error)
	Adjustments(ctx context.Context, chainID uint64, limit int) ([]*entities.FeeAdjustment, error)
	MarketData(ctx context.Context, chainID uint64) (*entities.FeeMarketData, error)
}

// FeeHandler handles the public fee read endpoints
type FeeHandler struct {
	fees FeeService
}

func NewFeeHandler(fees FeeService) *FeeHandler {
	return &FeeHandler{fees: fees}
}

func chainIDParam(c *gin.Context) (uint64, bool) {
	chainID, err := strconv.ParseUint(c.Param("chainId"), 10, 64)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid chain ID"))
		return 0, false
	}
	return chainID, true
}

// Quote computes the current fee for a prospective transfer
// GET /api/v1/fees/quote?chainId=&amount=
func (h *FeeHandler) Quote(c *gin.Context) {
	chainID, err := strconv.ParseUint(c.Query("chainId"), 10, 64)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid chain ID"))
		return
	}
	amount := c.Query("amount")
	if amount == "" {
		response.Error(c, domainerrors.BadRequest("amount is required"))
		return
	}

	feeBps, err := h.fees.Quote(c.Request.Context(), chainID, amount, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"chainId": chainID,
		"amount":  amount,
		"feeBps":  feeBps,
	})
}

// GetHistory returns the last N committed fees for a chain
// GET /api/v1/fees/:chainId/history?limit=N
func (h *FeeHandler) GetHistory(c *gin.Context) {
	chainID, ok := chainIDParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	history, err := h.fees.History(c.Request.Context(), chainID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"history": history})
}

// GetAdjustments returns the last N fee adjustment records for a chain
// GET /api/v1/fees/:chainId/adjustments?limit=N
func (h *FeeHandler) GetAdjustments(c *gin.Context) {
	chainID, ok := chainIDParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	adjustments, err := h.fees.Adjustments(c.Request.Context(), chainID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"adjustments": adjustments})
}

// GetMarketData returns the derived fee market read model for a chain
// GET /api/v1/fees/:chainId/market
func (h *FeeHandler) GetMarketData(c *gin.Context) {
	chainID, ok := chainIDParam(c)
	if !ok {
		return
	}

	data, err := h.fees.MarketData(c.Request.Context(), chainID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"market": data})
}
