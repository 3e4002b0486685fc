package adoptionserver

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// Access is the authorization level a route requires.
type Access int

const (
	AccessPublic Access = iota
	AccessUser
	AccessAdmin
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// Access gates the route behind authentication or the admin role.
	Access Access
	// Middleware runs after authentication and before the handler.
	Middleware []gin.HandlerFunc
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	AuthAPI     AuthAPI
	PetAPI      PetAPI
	AdoptionAPI AdoptionAPI
	MessageAPI  MessageAPI
}

// RouterOptions configures cross-cutting middleware.
type RouterOptions struct {
	Verifier      TokenVerifier
	Responder     *apierrors.Responder
	Logger        *slog.Logger
	SubmitLimiter gin.HandlerFunc
	Metrics       http.Handler
	Middleware    []gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	return NewRouterWithGinEngine(router, handleFunctions, opts)
}

// NewRouterWithGinEngine adds the API routes and middleware to an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, opts RouterOptions) *gin.Engine {
	if opts.Responder == nil {
		opts.Responder = NewResponder("")
	}
	router.Use(opts.Middleware...)
	router.Use(RequestID())
	if opts.Logger != nil {
		router.Use(AccessLog(opts.Logger))
	}
	router.NoRoute(func(c *gin.Context) {
		opts.Responder.Respond(c, apierrors.ErrNotFound.WithDetail("route not found"))
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	authenticate := Authenticate(opts.Verifier, opts.Responder)
	requireAdmin := RequireAdmin(opts.Responder)
	for _, route := range getRoutes(handleFunctions, opts) {
		if route.HandlerFunc == nil {
			continue
		}
		chain := make([]gin.HandlerFunc, 0, len(route.Middleware)+3)
		switch route.Access {
		case AccessUser:
			chain = append(chain, authenticate)
		case AccessAdmin:
			chain = append(chain, authenticate, requireAdmin)
		}
		chain = append(chain, route.Middleware...)
		chain = append(chain, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, chain...)
	}
	return router
}

func getRoutes(handleFunctions ApiHandleFunctions, opts RouterOptions) []Route {
	var submitMiddleware []gin.HandlerFunc
	if opts.SubmitLimiter != nil {
		submitMiddleware = append(submitMiddleware, opts.SubmitLimiter)
	}
	return []Route{
		{"Register", http.MethodPost, "/api/auth/register", AccessPublic, nil, handleFunctions.AuthAPI.Register},
		{"Login", http.MethodPost, "/api/auth/login", AccessPublic, nil, handleFunctions.AuthAPI.Login},
		{"CurrentUser", http.MethodGet, "/api/auth/me", AccessUser, nil, handleFunctions.AuthAPI.CurrentUser},

		{"FindPets", http.MethodGet, "/api/pets", AccessPublic, nil, handleFunctions.PetAPI.FindPets},
		{"GetPetById", http.MethodGet, "/api/pets/:petId", AccessPublic, nil, handleFunctions.PetAPI.GetPetById},
		{"AddPet", http.MethodPost, "/api/pets", AccessAdmin, nil, handleFunctions.PetAPI.AddPet},
		{"UpdatePet", http.MethodPut, "/api/pets/:petId", AccessAdmin, nil, handleFunctions.PetAPI.UpdatePet},
		{"DeletePet", http.MethodDelete, "/api/pets/:petId", AccessAdmin, nil, handleFunctions.PetAPI.DeletePet},

		{"SubmitApplication", http.MethodPost, "/api/pets/:petId/adopt", AccessUser, submitMiddleware, handleFunctions.AdoptionAPI.SubmitApplication},
		{"DecideApplication", http.MethodPut, "/api/adoptions/:id", AccessAdmin, nil, handleFunctions.AdoptionAPI.DecideApplication},
		{"DeleteApplication", http.MethodDelete, "/api/adoptions/:id", AccessUser, nil, handleFunctions.AdoptionAPI.DeleteApplication},
		{"ListUserApplications", http.MethodGet, "/api/adoptions/user/:userId", AccessUser, nil, handleFunctions.AdoptionAPI.ListUserApplications},
		{"ListAllApplications", http.MethodGet, "/api/adoptions/all", AccessAdmin, nil, handleFunctions.AdoptionAPI.ListAllApplications},

		{"ListMessages", http.MethodGet, "/api/messages", AccessUser, nil, handleFunctions.MessageAPI.ListMessages},
	}
}
