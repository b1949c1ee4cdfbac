package handler

import (
	"encoding/xml"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChasingCode34/trip-sync/internal/service"
)

// SMSHandler handles the inbound Twilio SMS webhook.
type SMSHandler struct {
	conversation *service.ConversationService
}

// NewSMSHandler creates a new SMSHandler.
func NewSMSHandler(conversation *service.ConversationService) *SMSHandler {
	return &SMSHandler{conversation: conversation}
}

// twiml is the reply document Twilio expects from a messaging webhook.
type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// ReceiveMessage handles POST /webhook/sms. Twilio posts form fields
// "From" (sender phone number) and "Body" (message text). The webhook
// always answers with a non-empty TwiML reply: user-input problems come
// back as conversational re-prompts and internal failures as a generic
// try-again message, never as an empty 500.
func (h *SMSHandler) ReceiveMessage(c *gin.Context) {
	from := c.PostForm("From")
	body := c.PostForm("Body")

	if from == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing From field"})
		return
	}

	reply, err := h.conversation.HandleMessage(c.Request.Context(), from, body)
	if err != nil {
		log.Printf("webhook: handling message from %s: %v", from, err)
		reply = service.TryAgainReply()
	}

	respondTwiML(c, reply)
}

func respondTwiML(c *gin.Context, message string) {
	out, err := xml.Marshal(twiml{Message: message})
	if err != nil {
		c.String(http.StatusInternalServerError, "")
		return
	}
	c.Data(http.StatusOK, "text/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
