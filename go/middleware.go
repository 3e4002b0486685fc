package adoptionserver

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// HeaderRequestID carries the request correlation id.
const HeaderRequestID = "X-Request-ID"

// HeaderIdempotencyKey lets clients retry a submission or decision safely.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdentity  = "identity"
	ctxKeyRequestID = "requestId"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// RequestID propagates or assigns an X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// AccessLog writes one structured line per request.
func AccessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("request_id", c.GetString(ctxKeyRequestID)),
		}
		if identity, ok := identityFrom(c); ok {
			attrs = append(attrs, slog.Int64("user.id", identity.UserID))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}
		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "http request", attrs...)
	}
}

// Authenticate requires a valid bearer token and stores the caller identity.
func Authenticate(verifier TokenVerifier, responder *apierrors.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			responder.Respond(c, apierrors.ErrUnauthorized.WithDetail("authentication is not configured"))
			return
		}
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			responder.Respond(c, apierrors.ErrUnauthorized.WithDetail("missing bearer token"))
			return
		}
		identity, err := verifier.Verify(token)
		if err != nil {
			responder.RespondError(c, err)
			return
		}
		c.Set(ctxKeyIdentity, identity)
		c.Request = c.Request.WithContext(auth.ContextWithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// RequireAdmin rejects authenticated callers without the admin role.
func RequireAdmin(responder *apierrors.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			responder.Respond(c, apierrors.ErrUnauthorized.WithDetail("authentication required"))
			return
		}
		if !identity.IsAdmin() {
			responder.Respond(c, apierrors.ErrForbidden.WithDetail("administrator role required"))
			return
		}
		c.Next()
	}
}

// RateLimiter throttles requests per authenticated caller.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perMinute requests per caller with an equal burst.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &RateLimiter{
		limiters: map[int64]*rate.Limiter{},
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
	}
}

// Allow reports whether the caller may proceed now.
func (r *RateLimiter) Allow(userID int64) bool {
	r.mu.Lock()
	limiter, ok := r.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[userID] = limiter
	}
	r.mu.Unlock()
	return limiter.Allow()
}

// Middleware rejects callers over their budget with 429 and Retry-After.
func (r *RateLimiter) Middleware(responder *apierrors.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			c.Next()
			return
		}
		if !r.Allow(identity.UserID) {
			retryAfter := int(math.Ceil(1 / float64(r.limit)))
			c.Header("Retry-After", fmt.Sprint(retryAfter))
			responder.Respond(c, apierrors.ErrRateLimited.WithDetail("too many adoption applications, try again later"))
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) (auth.Identity, bool) {
	value, ok := c.Get(ctxKeyIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := value.(auth.Identity)
	return identity, ok
}
