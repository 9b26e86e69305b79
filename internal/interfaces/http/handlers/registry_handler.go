package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"chain-bridge.backend/internal/domain/entities"
	"chain-bridge.backend/internal/interfaces/http/response"
)

type TokenRegistryService interface {
	List(ctx context.Context) ([]*entities.TokenConfig, error)
	Stats(ctx context.Context, token string) (*entities.TokenStats, error)
}

type ChainConfigService interface {
	ListChains(ctx context.Context) ([]*entities.ChainConfig, error)
}

type ValidatorSetService interface {
	Set(ctx context.Context) (*entities.ValidatorSet, error)
}

// RegistryHandler handles the public configuration read endpoints
type RegistryHandler struct {
	tokens     TokenRegistryService
	chains     ChainConfigService
	validators ValidatorSetService
}

func NewRegistryHandler(tokens TokenRegistryService, chains ChainConfigService, validators ValidatorSetService) *RegistryHandler {
	return &RegistryHandler{
		tokens:     tokens,
		chains:     chains,
		validators: validators,
	}
}

// ListTokens lists the configured token risk profiles
// GET /api/v1/tokens
func (h *RegistryHandler) ListTokens(c *gin.Context) {
	tokens, err := h.tokens.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tokens": tokens})
}

// GetTokenStats returns running statistics for one token
// GET /api/v1/tokens/:address/stats
func (h *RegistryHandler) GetTokenStats(c *gin.Context) {
	stats, err := h.tokens.Stats(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// ListChains lists the configured destination chains
// GET /api/v1/chains
func (h *RegistryHandler) ListChains(c *gin.Context) {
	chains, err := h.chains.ListChains(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"chains": chains})
}

// ListValidators returns the attestor set with its threshold
// GET /api/v1/validators
func (h *RegistryHandler) ListValidators(c *gin.Context) {
	set, err := h.validators.Set(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"validatorSet": set})
}
