package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"chain-bridge.backend/internal/domain/entities"
	domainerrors "chain-bridge.backend/internal/domain/errors"
)

type feeStub struct {
	quoteFn       func(ctx context.Context, chainID uint64, amount string, now time.Time) (int64, error)
	getFn         func(ctx context.Context, chainID uint64) (*entities.DynamicFee, error)
	historyFn     func(ctx context.Context, chainID uint64, limit int) ([]*entities.FeeHistoryEntry, error)
	adjustmentsFn func(ctx context.Context, chainID uint64, limit int) ([]*entities.FeeAdjustment, error)
	marketFn      func(ctx context.Context, chainID uint64) (*entities.FeeMarketData, error)
}

func (s *feeStub) Quote(ctx context.Context, chainID uint64, amount string, now time.Time) (int64, error) {
	if s.quoteFn != nil {
		return s.quoteFn(ctx, chainID, amount, now)
	}
	return 0, domainerrors.ErrNotFound
}

func (s *feeStub) Get(ctx context.Context, chainID uint64) (*entities.DynamicFee, error) {
	if s.getFn != nil {
		return s.getFn(ctx, chainID)
	}
	return nil, domainerrors.ErrNotFound
}

func (s *feeStub) History(ctx context.Context, chainID uint64, limit int) ([]*entities.FeeHistoryEntry, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx, chainID, limit)
	}
	return []*entities.FeeHistoryEntry{}, nil
}

func (s *feeStub) Adjustments(ctx context.Context, chainID uint64, limit int) ([]*entities.FeeAdjustment, error) {
	if s.adjustmentsFn != nil {
		return s.adjustmentsFn(ctx, chainID, limit)
	}
	return []*entities.FeeAdjustment{}, nil
}

func (s *feeStub) MarketData(ctx context.Context, chainID uint64) (*entities.FeeMarketData, error) {
	if s.marketFn != nil {
		return s.marketFn(ctx, chainID)
	}
	return nil, domainerrors.ErrNotFound
}

func newFeeRouter(stub *feeStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewFeeHandler(stub)
	r := gin.New()
	r.GET("/fees/quote", h.Quote)
	r.GET("/fees/:chainId/history", h.GetHistory)
	r.GET("/fees/:chainId/adjustments", h.GetAdjustments)
	r.GET("/fees/:chainId/market", h.GetMarketData)
	return r
}

func TestFeeHandler_Quote(t *testing.T) {
	stub := &feeStub{
		quoteFn: func(_ context.Context, chainID uint64, amount string, _ time.Time) (int64, error) {
			require.Equal(t, uint64(137), chainID)
			require.Equal(t, "1000", amount)
			return 42, nil
		},
	}
	r := newFeeRouter(stub)

	w := perform(r, http.MethodGet, "/fees/quote?chainId=137&amount=1000", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"feeBps":42`)

	require.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/fees/quote?amount=1000", "").Code)
	require.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/fees/quote?chainId=137", "").Code)

	stub.quoteFn = func(context.Context, uint64, string, time.Time) (int64, error) {
		return 0, domainerrors.ErrNotFound
	}
	require.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/fees/quote?chainId=1&amount=5", "").Code)
}

func TestFeeHandler_History(t *testing.T) {
	var seenLimit int
	stub := &feeStub{
		historyFn: func(_ context.Context, chainID uint64, limit int) ([]*entities.FeeHistoryEntry, error) {
			seenLimit = limit
			return []*entities.FeeHistoryEntry{{ChainID: chainID, FeeBps: 120}}, nil
		},
	}
	r := newFeeRouter(stub)

	w := perform(r, http.MethodGet, "/fees/137/history?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 5, seenLimit)
	require.Contains(t, w.Body.String(), `"fee":120`)

	require.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/fees/abc/history", "").Code)
}

func TestFeeHandler_MarketData(t *testing.T) {
	stub := &feeStub{
		marketFn: func(_ context.Context, chainID uint64) (*entities.FeeMarketData, error) {
			if chainID != 137 {
				return nil, domainerrors.ErrNotFound
			}
			return &entities.FeeMarketData{ChainID: 137, CurrentFeeBps: 100, AverageFeeBps: 110, HistoryLength: 4, Enabled: true}, nil
		},
	}
	r := newFeeRouter(stub)

	w := perform(r, http.MethodGet, "/fees/137/market", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"averageFee":110`)

	require.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/fees/1/market", "").Code)
}
