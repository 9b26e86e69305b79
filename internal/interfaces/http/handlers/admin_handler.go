package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"chain-bridge.backend/internal/domain/entities"
	domainerrors "chain-bridge.backend/internal/domain/errors"
	"chain-bridge.backend/internal/interfaces/http/response"
)

type ConfigAdminService interface {
	UpsertChain(ctx context.Context, input *entities.UpsertChainConfigInput) (*entities.ChainConfig, error)
	GetSettings(ctx context.Context) (*entities.BridgeSettings, error)
	UpdateSettings(ctx context.Context, input *entities.UpdateSettingsInput) (*entities.BridgeSettings, error)
}

type TokenAdminService interface {
	Upsert(ctx context.Context, input *entities.UpsertTokenConfigInput) (*entities.TokenConfig, error)
}

type FeeAdminService interface {
	Configure(ctx context.Context, chainID uint64, input *entities.ConfigureDynamicFeeInput) (*entities.DynamicFee, error)
	TriggerUpdate(ctx context.Context, chainID uint64, input *entities.TriggerFeeUpdateInput) (*entities.DynamicFee, error)
	Optimize(ctx context.Context, chainID uint64) (*entities.DynamicFee, error)
}

type ValidatorAdminService interface {
	Add(ctx context.Context, input *entities.AddValidatorInput) error
	Remove(ctx context.Context, address string) error
	SetThreshold(ctx context.Context, threshold int64) error
	SetMerkleRoot(ctx context.Context, input *entities.SetMerkleRootInput) error
}

// AdminHandler handles the operator-only configuration surface
type AdminHandler struct {
	config     ConfigAdminService
	tokens     TokenAdminService
	fees       FeeAdminService
	validators ValidatorAdminService
}

func NewAdminHandler(config ConfigAdminService, tokens TokenAdminService, fees FeeAdminService, validators ValidatorAdminService) *AdminHandler {
	return &AdminHandler{
		config:     config,
		tokens:     tokens,
		fees:       fees,
		validators: validators,
	}
}

// UpsertChain creates or replaces a destination chain configuration
// POST /api/v1/admin/chains
func (h *AdminHandler) UpsertChain(c *gin.Context) {
	var input entities.UpsertChainConfigInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	chain, err := h.config.UpsertChain(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"chain": chain})
}

// UpsertToken creates or replaces a token risk profile
// POST /api/v1/admin/tokens
func (h *AdminHandler) UpsertToken(c *gin.Context) {
	var input entities.UpsertTokenConfigInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	token, err := h.tokens.Upsert(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token})
}

// ConfigureFee creates or replaces per-chain dynamic fee state
// POST /api/v1/admin/fees/:chainId
func (h *AdminHandler) ConfigureFee(c *gin.Context) {
	chainID, ok := chainIDParam(c)
	if !ok {
		return
	}
	var input entities.ConfigureDynamicFeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	fee, err := h.fees.Configure(c.Request.Context(), chainID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"fee": fee})
}

// TriggerFeeUpdate feeds an observed transfer into the fee engine
// POST /api/v1/admin/fees/:chainId/trigger
func (h *AdminHandler) TriggerFeeUpdate(c *gin.Context) {
	chainID, ok := chainIDParam(c)
	if !ok {
		return
	}
	var input entities.TriggerFeeUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	fee, err := h.fees.TriggerUpdate(c.Request.Context(), chainID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"fee": fee})
}

// OptimizeFee recomputes the base fee from recent history
// POST /api/v1/admin/fees/:chainId/optimize
func (h *AdminHandler) OptimizeFee(c *gin.Context) {
	chainID, ok := chainIDParam(c)
	if !ok {
		return
	}

	fee, err := h.fees.Optimize(c.Request.Context(), chainID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"fee": fee})
}

// AddValidator registers an attestor
// POST /api/v1/admin/validators
func (h *AdminHandler) AddValidator(c *gin.Context) {
	var input entities.AddValidatorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.validators.Add(c.Request.Context(), &input); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"address": input.Address})
}

// RemoveValidator deregisters an attestor
// DELETE /api/v1/admin/validators/:address
func (h *AdminHandler) RemoveValidator(c *gin.Context) {
	if err := h.validators.Remove(c.Request.Context(), c.Param("address")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": c.Param("address")})
}

// SetThreshold updates the signature threshold
// PUT /api/v1/admin/validators/threshold
func (h *AdminHandler) SetThreshold(c *gin.Context) {
	var input entities.SetThresholdInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.validators.SetThreshold(c.Request.Context(), input.Threshold); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"threshold": input.Threshold})
}

// SetMerkleRoot registers an attestation root for a chain
// POST /api/v1/admin/merkle-roots
func (h *AdminHandler) SetMerkleRoot(c *gin.Context) {
	var input entities.SetMerkleRootInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.validators.SetMerkleRoot(c.Request.Context(), &input); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"chainId": input.ChainID, "root": input.Root})
}

// GetSettings returns the global settlement parameters
// GET /api/v1/admin/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.config.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings partially updates the global settlement parameters
// PUT /api/v1/admin/settings
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var input entities.UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	settings, err := h.config.UpdateSettings(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}
