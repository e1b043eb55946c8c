package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sanumxxx/timetable-api/internal/models"
	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
	"github.com/sanumxxx/timetable-api/pkg/response"
)

// respondError renders conflict errors with their structured payload so
// clients can list the colliding lessons and offer a forced retry.
// Everything else goes through the common error envelope.
func respondError(c *gin.Context, err error) {
	var conflictErr *models.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, response.Envelope{
			Error: appErrors.Clone(appErrors.ErrConflict, conflictErr.Message),
			Data:  conflictErr,
		})
		return
	}

	var swapErr *models.SwapConflictError
	if errors.As(err, &swapErr) {
		c.JSON(http.StatusConflict, response.Envelope{
			Error: appErrors.Clone(appErrors.ErrConflict, swapErr.Message),
			Data:  swapErr,
		})
		return
	}

	var groupMoveErr *models.GroupMoveConflictError
	if errors.As(err, &groupMoveErr) {
		c.JSON(http.StatusConflict, response.Envelope{
			Error: appErrors.Clone(appErrors.ErrConflict, groupMoveErr.Message),
			Data:  groupMoveErr,
		})
		return
	}

	response.Error(c, err)
}
