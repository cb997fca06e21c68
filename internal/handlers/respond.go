package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finwage/payroll_backend/internal/apperrors"
	"github.com/finwage/payroll_backend/internal/middleware"
)

// respondError maps application errors onto HTTP status codes. Validation
// problems are 400, lifecycle violations 409, attach-eligibility failures 422,
// external collaborator failures 502; anything unrecognized is a 500 with a
// generic message so internals never leak.
func respondError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var partial *apperrors.PartialUnlockError
	if errors.As(err, &partial) {
		logger.Error("Cancellation left assignments locked", slog.String("payment_id", partial.PaymentID), slog.Any("still_locked", partial.StillLockedIDs))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":                  "payment cancelled but some assignments could not be unlocked",
			"stillLockedAssignments": partial.StillLockedIDs,
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrEmptyPayment):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidState):
		logger.Warn("Invalid state transition", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotEligible):
		logger.Warn("Assignment not eligible", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrGatewayFailure):
		logger.Error("Gateway failure", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "external service unavailable"})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("Unhandled error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
