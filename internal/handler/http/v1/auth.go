package v1

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/config"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/sirupsen/logrus"
	twclient "github.com/twilio/twilio-go/client"
)

const (
	headerAPIKey   = "X-API-Key"
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"

	headerTwilioSignature = "X-Twilio-Signature"

	callerKey = "caller"
)

// APIKeyAuthMiddleware - middleware для аутентификации по API-ключу.
// Браузер не может выставить заголовок при открытии websocket, поэтому
// ключ также принимается из параметра api_key.
func APIKeyAuthMiddleware(cfg *config.Config, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(headerAPIKey)
		if apiKey == "" {
			// Проверяем также заголовок Authorization: Bearer
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				apiKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}
		if apiKey == "" {
			apiKey = c.Query("api_key")
		}

		if apiKey == "" {
			log.Warn("API key missing from request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "API key required", Code: "unauthorized"})
			return
		}

		if !slices.Contains(cfg.APIKeys, apiKey) {
			log.Warn("Invalid API key provided")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid API key", Code: "unauthorized"})
			return
		}

		c.Next()
	}
}

// TwilioSignatureMiddleware пропускает только запросы, подписанные токеном
// аккаунта Twilio. Подпись считается от публичного адреса вебхука и полей формы.
func TwilioSignatureMiddleware(cfg *config.Config, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.TwilioValidateSignature {
			c.Next()
			return
		}
		if cfg.TwilioAuthToken == "" {
			log.Warn("Twilio signature check enabled without TWILIO_AUTH_TOKEN")
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "webhook signature cannot be verified", Code: codeForbidden})
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			log.WithError(err).Warn("Failed to parse Twilio webhook form")
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid form body", Code: codeBadRequest})
			return
		}

		params := make(map[string]string, len(c.Request.PostForm))
		for k, v := range c.Request.PostForm {
			params[k] = v[0]
		}
		validator := twclient.NewRequestValidator(cfg.TwilioAuthToken)
		if !validator.Validate(webhookURL(c, cfg.TwilioWebhookURL), params, c.GetHeader(headerTwilioSignature)) {
			log.WithField("path", c.Request.URL.Path).Warn("Invalid Twilio signature")
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "invalid webhook signature", Code: codeForbidden})
			return
		}

		c.Next()
	}
}

// webhookURL - адрес, который видел Twilio при подписи запроса
func webhookURL(c *gin.Context, configured string) string {
	if configured != "" {
		return configured
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.RequestURI()
}

// CallerMiddleware извлекает идентичность вызывающего. Регистрация и выдача
// учетных данных живут во внешнем сервисе, сюда приходят уже проверенные
// X-User-ID и X-User-Role.
func CallerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := c.GetHeader(headerUserID)
		rawRole := c.GetHeader(headerUserRole)
		if rawID == "" && rawRole == "" {
			rawID, rawRole = c.Query("user_id"), c.Query("role")
		}

		id, err := uuid.Parse(rawID)
		if err != nil {
			log.WithError(err).Warn("Caller identity missing or malformed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "caller identity required", Code: "unauthorized"})
			return
		}
		role := models.Role(strings.ToLower(rawRole))
		if !role.Valid() {
			log.WithField("role", rawRole).Warn("Unknown caller role")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unknown caller role", Code: "unauthorized"})
			return
		}

		c.Set(callerKey, models.Caller{ID: id, Role: role})
		c.Next()
	}
}

// callerFrom возвращает вызывающего, которого положил CallerMiddleware
func callerFrom(c *gin.Context) models.Caller {
	v, _ := c.Get(callerKey)
	caller, _ := v.(models.Caller)
	return caller
}
