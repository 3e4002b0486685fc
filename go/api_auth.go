package adoptionserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// AuthAPI handles registration and login.
type AuthAPI struct {
	service   userports.Service
	responder *apierrors.Responder
}

// NewAuthAPI wires the users service.
func NewAuthAPI(service userports.Service, responder *apierrors.Responder) AuthAPI {
	if responder == nil {
		responder = NewResponder("")
	}
	return AuthAPI{service: service, responder: responder}
}

// Post /api/auth/register
// Create an account with the user role
func (api *AuthAPI) Register(c *gin.Context) {
	var payload userhttpmapper.RegisterRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, api.responder, err)
		return
	}
	created, err := api.service.Register(c.Request.Context(), userhttpmapper.ToRegisterInput(payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromProjection(created))
}

// Post /api/auth/login
// Exchange credentials for a bearer token
func (api *AuthAPI) Login(c *gin.Context) {
	var payload userhttpmapper.LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, api.responder, err)
		return
	}
	result, err := api.service.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromLoginResult(result))
}

// Get /api/auth/me
// Return the authenticated caller
func (api *AuthAPI) CurrentUser(c *gin.Context) {
	identity, _ := identityFrom(c)
	user, err := api.service.GetByID(c.Request.Context(), identity.UserID)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromProjection(user))
}
