package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twilio/twilio-go/twiml"
)

const twimlContentType = "application/xml; charset=utf-8"

// @Summary Incoming SMS incident report
// @Description Twilio webhook. Body format: INCIDENT: [type] at [location] - [description]. Requests must carry a valid X-Twilio-Signature.
// @Tags SMS
// @Accept x-www-form-urlencoded
// @Produce xml
// @Param From formData string true "Sender phone"
// @Param Body formData string true "Message text"
// @Param X-Twilio-Signature header string false "Twilio request signature"
// @Success 200 {string} string "TwiML reply"
// @Failure 403 {object} ErrorResponse
// @Router /sms/incoming [post]
func (h *Handler) incomingSMS(c *gin.Context) {
	log := h.logger.WithField("method", "incomingSMS")

	from := c.PostForm("From")
	body := c.PostForm("Body")

	// Twilio ждет 200 в любом случае, текст ответа уходит отправителю
	reply, err := h.smsService.HandleIncomingSMS(c.Request.Context(), from, body)
	if err != nil {
		log.WithError(err).Error("Failed to process incoming SMS")
	}

	doc, err := twiml.Messages([]twiml.Element{twiml.MessagingMessage{Body: reply}})
	if err != nil {
		log.WithError(err).Error("Failed to render TwiML reply")
		doc = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`
	}
	c.Data(http.StatusOK, twimlContentType, []byte(doc))
}
