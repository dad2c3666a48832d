package handlers

import (
	"errors"
	"net/http"

	"nafany/database"
	"nafany/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a service error onto its HTTP status. Store and unexpected failures
// are logged and answered with the generic message only.
func respondError(c *gin.Context, err error, fields ...zap.Field) {
	var ve *utils.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{Message: "invalid input", Fields: ve.FieldMap()})
	case errors.Is(err, database.ErrSlotTaken):
		c.JSON(http.StatusConflict, gin.H{"available": false, "message": "slot already booked, choose another"})
	case errors.Is(err, database.ErrConflict):
		utils.JSONError(c, http.StatusConflict, "changed by another request, reload and retry")
	case errors.Is(err, database.ErrDuplicate):
		utils.JSONError(c, http.StatusConflict, "already exists")
	case errors.Is(err, database.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found")
	case errors.Is(err, utils.ErrInvalidCredentials):
		utils.JSONError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, utils.ErrForbidden):
		utils.JSONError(c, http.StatusForbidden, "access denied")
	default:
		utils.GetLogger().Error("Request failed",
			append(fields, zap.String("path", c.FullPath()), zap.Error(err))...)
		utils.JSONError(c, http.StatusInternalServerError, utils.GenericErrorMessage)
	}
}

// bindJSON decodes the body, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.GetLogger().Debug("Malformed request body", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
