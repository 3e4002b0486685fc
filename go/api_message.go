package adoptionserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	adoptionhttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/http/mapper"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// MessageAPI serves the caller's inbox.
type MessageAPI struct {
	service   adoptionports.Service
	responder *apierrors.Responder
}

// NewMessageAPI wires the inbox reader.
func NewMessageAPI(service adoptionports.Service, responder *apierrors.Responder) MessageAPI {
	if responder == nil {
		responder = NewResponder("")
	}
	return MessageAPI{service: service, responder: responder}
}

// Get /api/messages
// List decision notifications delivered to the caller
func (api *MessageAPI) ListMessages(c *gin.Context) {
	identity, _ := identityFrom(c)
	messages, err := api.service.Inbox(c.Request.Context(), identity.UserID)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromMessages(messages))
}
