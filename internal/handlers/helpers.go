package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"patient-studies-server/internal/models"
	"patient-studies-server/internal/utils"
)

// pathID reads an unsigned integer path parameter. Anything else cannot
// name a row, so it is answered with 404 like an unknown id.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.NotFound(c, "Not found.")
		return 0, false
	}
	return uint(id), true
}

// bindBody binds the JSON body. It answers malformed bodies itself and
// returns false; rule violations are returned for the caller to report.
func bindBody(c *gin.Context, obj interface{}) (utils.FieldErrors, bool) {
	errs, err := utils.BindJSON(c, obj)
	if err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return nil, false
	}
	return errs, true
}

// respondError maps store and validation errors onto responses.
func respondError(c *gin.Context, err error, notFound string) {
	var fieldErrs utils.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		utils.ValidationFailed(c, fieldErrs)
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.NotFound(c, notFound)
	case errors.Is(err, models.ErrProtected):
		utils.Conflict(c, "Cannot delete: "+err.Error())
	default:
		_ = c.Error(err)
		utils.InternalServerError(c, "Database error: "+err.Error())
	}
}
