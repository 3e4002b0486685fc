package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper maps domain/application errors to ProblemDetail.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder renders problems and translates errors through a chain of mappers.
type Responder struct {
	// BaseURI is prepended to problem type URIs if they are relative.
	BaseURI string
	mappers []ErrorMapper
}

// NewResponder creates a responder with optional base URI and error mappers.
func NewResponder(baseURI string, mappers ...ErrorMapper) *Responder {
	return &Responder{BaseURI: baseURI, mappers: mappers}
}

// AddMapper appends an error mapper to the chain.
func (r *Responder) AddMapper(mapper ErrorMapper) {
	if mapper != nil {
		r.mappers = append(r.mappers, mapper)
	}
}

// Respond sends a ProblemDetail response and aborts the handler chain.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError tries each mapper, then a ProblemDetail already in the chain,
// and finally falls back to an internal error.
func (r *Responder) RespondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	if problem, ok := r.Problem(err); ok {
		r.Respond(c, problem)
		return
	}
	_ = c.Error(err)
	r.Respond(c, ErrInternal.WithDetail(err.Error()))
}

// Problem resolves the ProblemDetail for err without writing a response.
func (r *Responder) Problem(err error) (ProblemDetail, bool) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			return problem, true
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem, true
	}
	return ProblemDetail{}, false
}

// DefaultResponder uses relative URIs and no custom mappers.
var DefaultResponder = NewResponder("")

// Respond is a convenience function using the default responder.
func Respond(c *gin.Context, problem ProblemDetail) {
	DefaultResponder.Respond(c, problem)
}
