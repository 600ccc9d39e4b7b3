package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/sirupsen/logrus"
)

// Коды ошибок в теле ответа
const (
	codeValidation   = "validation_failed"
	codeForbidden    = "forbidden"
	codeNotFound     = "not_found"
	codeInvalidState = "invalid_state"
	codeConflict     = "conflict"
	codeBadRequest   = "bad_request"
	codeInternal     = "internal"
)

// ErrorResponse - тело ответа с ошибкой
// @Description Тело ответа с ошибкой
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

// respondError переводит доменную ошибку в HTTP-статус.
// Внутренние ошибки не раскрываются клиенту.
func respondError(c *gin.Context, log *logrus.Entry, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Code: codeValidation, Fields: verr.Fields})
	case errors.Is(err, models.ErrForbidden):
		log.WithError(err).Warn("Access denied")
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied", Code: codeForbidden})
	case errors.Is(err, models.ErrNotFound):
		log.WithError(err).Info("Entity not found")
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: codeNotFound})
	case errors.Is(err, models.ErrInvalidState):
		log.WithError(err).Info("Invalid state transition")
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: codeInvalidState})
	case errors.Is(err, models.ErrConflict):
		log.WithError(err).Info("Concurrent transition lost")
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: codeConflict})
	default:
		log.WithError(err).Error("Request failed in service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: codeInternal})
	}
}

func badRequest(c *gin.Context, log *logrus.Entry, err error, message string) {
	log.WithError(err).Warn(message)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: codeBadRequest})
}
