// Package http exposes authentication endpoints over gin.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/earthenstore/storefront-api/internal/domains/users/adapters/http/mapper"
	"github.com/earthenstore/storefront-api/internal/domains/users/application"
	"github.com/earthenstore/storefront-api/internal/domains/users/ports"
	apierrors "github.com/earthenstore/storefront-api/internal/shared/errors"
	"github.com/earthenstore/storefront-api/internal/shared/identity"
)

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "session_token"

// Handler serves registration, login, and logout.
type Handler struct {
	service   ports.Service
	responder *apierrors.Responder
	secure    bool
}

func NewHandler(service ports.Service, secureCookies bool) (*Handler, error) {
	if service == nil {
		return nil, errors.New("users service is required")
	}
	return &Handler{
		service:   service,
		responder: apierrors.NewResponder(mapUserError),
		secure:    secureCookies,
	}, nil
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var payload mapper.RegisterRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, "invalid registration payload: "+err.Error())
		return
	}
	user, err := h.service.Register(c.Request.Context(), payload.Email, payload.Name, payload.Password)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromDomainUser(user))
}

// Login handles POST /api/auth/login and sets the session cookie.
func (h *Handler) Login(c *gin.Context) {
	var payload mapper.LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, "invalid login payload: "+err.Error())
		return
	}
	token, err := h.service.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, 0, "/", "", h.secure, true)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout handles POST /api/auth/logout. It revokes the caller's sessions and
// clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if userID, ok := identity.UserID(c.Request.Context()); ok {
		if err := h.service.Logout(c.Request.Context(), userID); err != nil {
			h.responder.RespondError(c, err)
			return
		}
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", h.secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me handles GET /api/auth/me for the authenticated caller.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := identity.UserID(c.Request.Context())
	if !ok {
		h.responder.Unauthorized(c, "authentication required")
		return
	}
	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			h.responder.Unauthorized(c, "authentication required")
			return
		}
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainUser(user))
}

func mapUserError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, application.ErrAuthentication):
		return apierrors.ErrUnauthorized.WithDetail("invalid email or password"), true
	case errors.Is(err, application.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrEmailTaken):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}
