package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Marga-Ghale/ora-crm-backend/internal/logger"
	"github.com/Marga-Ghale/ora-crm-backend/internal/models"
	"github.com/Marga-Ghale/ora-crm-backend/internal/service"
)

// respondError maps a service error onto the HTTP error body. notFound is
// the message used for ErrNotFound.
func respondError(c *gin.Context, err error, notFound string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make([]models.FieldError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			details = append(details, models.FieldError{Field: f.Field, Message: f.Message})
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: verr.Error(), Details: details})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid credentials"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid token"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "Forbidden"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: notFound})
	default:
		logger.App().WithError(err).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"user_id":    c.GetString("userID"),
			"request_id": c.GetString("requestID"),
		}).Error("[API] request failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: message})
}
