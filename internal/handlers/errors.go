package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"
)

// respondServiceError maps service error kinds onto HTTP statuses. This
// is the only place the mapping lives.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrPermission):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalidState):
		utils.Conflict(c, err.Error())
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled service error")
		utils.InternalServerError(c, "Something went wrong")
	}
}
