package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/service/identity"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func statusFor(err error) (int, errorResponse) {
	var authErr *domain.AuthError
	var valErr *domain.ValidationError
	switch {
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity, errorResponse{Error: "validation_failed", Message: "Please correct the highlighted fields.", Fields: valErr.Fields}
	case errors.As(err, &authErr):
		resp := errorResponse{Error: authErr.Code, Message: identity.UserMessage(err)}
		switch authErr.Code {
		case domain.AuthEmailInUse:
			return http.StatusConflict, resp
		case domain.AuthWeakPassword, domain.AuthInvalidEmail:
			return http.StatusUnprocessableEntity, resp
		case domain.AuthTooManyRequests:
			return http.StatusTooManyRequests, resp
		default:
			return http.StatusUnauthorized, resp
		}
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized, errorResponse{Error: "auth_required", Message: "Please sign in to continue."}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: "Not found."}
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, errorResponse{Error: "already_exists", Message: "Already exists."}
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusConflict, errorResponse{Error: "empty_cart", Message: "Your cart is empty."}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal", Message: "Something went wrong. Please try again."}
	}
}

func abortWithError(c *gin.Context, err error) {
	status, resp := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, resp)
}

func (a *api) fail(c *gin.Context, err error) {
	status, _ := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	abortWithError(c, err)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: err.Error()})
}
