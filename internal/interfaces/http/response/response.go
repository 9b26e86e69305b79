package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "chain-bridge.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps a domain error onto its HTTP shape. AppErrors pass through
// with their own status; bare sentinels are classified here so usecases
// never deal in HTTP codes.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
		return
	}

	status, code := classify(err)
	c.JSON(status, gin.H{
		"code":    code,
		"message": err.Error(),
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return http.StatusNotFound, domainerrors.CodeNotFound
	case errors.Is(err, domainerrors.ErrAlreadyFinalized),
		errors.Is(err, domainerrors.ErrReplayedTxHash),
		errors.Is(err, domainerrors.ErrAlreadyExists),
		errors.Is(err, domainerrors.ErrTooSoon):
		return http.StatusConflict, domainerrors.CodeConflict
	case errors.Is(err, domainerrors.ErrExpiredWindow),
		errors.Is(err, domainerrors.ErrWindowNotElapsed),
		errors.Is(err, domainerrors.ErrRootExpired):
		return http.StatusConflict, domainerrors.CodeExpired
	case errors.Is(err, domainerrors.ErrNotSender):
		return http.StatusForbidden, domainerrors.CodeForbidden
	case errors.Is(err, domainerrors.ErrUnauthorized),
		errors.Is(err, domainerrors.ErrTokenExpired):
		return http.StatusUnauthorized, domainerrors.CodeUnauthorized
	case errors.Is(err, domainerrors.ErrInsufficientSignatures),
		errors.Is(err, domainerrors.ErrInvalidProof),
		errors.Is(err, domainerrors.ErrUnknownCommitment),
		errors.Is(err, domainerrors.ErrHashMismatch):
		return http.StatusUnprocessableEntity, domainerrors.CodeBadRequest
	case errors.Is(err, domainerrors.ErrBridgePaused),
		errors.Is(err, domainerrors.ErrChainDisabled),
		errors.Is(err, domainerrors.ErrTokenDisabled),
		errors.Is(err, domainerrors.ErrSameChain),
		errors.Is(err, domainerrors.ErrWrongSource),
		errors.Is(err, domainerrors.ErrWrongDest),
		errors.Is(err, domainerrors.ErrBelowMinimum),
		errors.Is(err, domainerrors.ErrAboveMaximum),
		errors.Is(err, domainerrors.ErrVolumeExceeded),
		errors.Is(err, domainerrors.ErrFeeTooHigh),
		errors.Is(err, domainerrors.ErrInvalidAmount),
		errors.Is(err, domainerrors.ErrInvalidAddress),
		errors.Is(err, domainerrors.ErrInsufficientFunds),
		errors.Is(err, domainerrors.ErrThresholdOutOfRange),
		errors.Is(err, domainerrors.ErrLastValidator),
		errors.Is(err, domainerrors.ErrInvalidInput),
		errors.Is(err, domainerrors.ErrBadRequest):
		return http.StatusBadRequest, domainerrors.CodeBadRequest
	default:
		return http.StatusInternalServerError, domainerrors.CodeInternalError
	}
}
