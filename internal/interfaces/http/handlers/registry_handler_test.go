package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"chain-bridge.backend/internal/domain/entities"
	domainerrors "chain-bridge.backend/internal/domain/errors"
)

type tokenRegistryStub struct {
	listFn  func(ctx context.Context) ([]*entities.TokenConfig, error)
	statsFn func(ctx context.Context, token string) (*entities.TokenStats, error)
}

func (s *tokenRegistryStub) List(ctx context.Context) ([]*entities.TokenConfig, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return []*entities.TokenConfig{}, nil
}

func (s *tokenRegistryStub) Stats(ctx context.Context, token string) (*entities.TokenStats, error) {
	if s.statsFn != nil {
		return s.statsFn(ctx, token)
	}
	return nil, domainerrors.ErrNotFound
}

type chainConfigStub struct {
	listFn func(ctx context.Context) ([]*entities.ChainConfig, error)
}

func (s *chainConfigStub) ListChains(ctx context.Context) ([]*entities.ChainConfig, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return []*entities.ChainConfig{}, nil
}

type validatorSetStub struct {
	setFn func(ctx context.Context) (*entities.ValidatorSet, error)
}

func (s *validatorSetStub) Set(ctx context.Context) (*entities.ValidatorSet, error) {
	if s.setFn != nil {
		return s.setFn(ctx)
	}
	return &entities.ValidatorSet{}, nil
}

func newRegistryRouter(tokens *tokenRegistryStub, chains *chainConfigStub, validators *validatorSetStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewRegistryHandler(tokens, chains, validators)
	r := gin.New()
	r.GET("/tokens", h.ListTokens)
	r.GET("/tokens/:address/stats", h.GetTokenStats)
	r.GET("/chains", h.ListChains)
	r.GET("/validators", h.ListValidators)
	return r
}

func TestRegistryHandler_Tokens(t *testing.T) {
	tokens := &tokenRegistryStub{
		listFn: func(context.Context) ([]*entities.TokenConfig, error) {
			return []*entities.TokenConfig{{Token: "0xtoken", Symbol: "USDC", Enabled: true}}, nil
		},
		statsFn: func(_ context.Context, token string) (*entities.TokenStats, error) {
			if token != "0xtoken" {
				return nil, domainerrors.ErrNotFound
			}
			return &entities.TokenStats{Token: token, TotalTransferred: "1500", SuccessRateBps: 10000}, nil
		},
	}
	r := newRegistryRouter(tokens, &chainConfigStub{}, &validatorSetStub{})

	w := perform(r, http.MethodGet, "/tokens", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"symbol":"USDC"`)

	w = perform(r, http.MethodGet, "/tokens/0xtoken/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"successRate":10000`)

	require.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/tokens/0xother/stats", "").Code)
}

func TestRegistryHandler_ChainsAndValidators(t *testing.T) {
	chains := &chainConfigStub{
		listFn: func(context.Context) ([]*entities.ChainConfig, error) {
			return []*entities.ChainConfig{{ChainID: 137, Name: "polygon", Enabled: true}}, nil
		},
	}
	validators := &validatorSetStub{
		setFn: func(context.Context) (*entities.ValidatorSet, error) {
			return &entities.ValidatorSet{
				Validators: []entities.Validator{{Address: "0xval"}},
				Count:      1,
				Threshold:  1,
			}, nil
		},
	}
	r := newRegistryRouter(&tokenRegistryStub{}, chains, validators)

	w := perform(r, http.MethodGet, "/chains", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"name":"polygon"`)

	w = perform(r, http.MethodGet, "/validators", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"threshold":1`)
}
