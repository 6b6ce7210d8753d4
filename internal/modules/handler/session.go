package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridspace-io/gridspace/internal/infra/session"
	"github.com/gridspace-io/gridspace/internal/middleware"
	"github.com/gridspace-io/gridspace/internal/modules/serializer"
)

type SessionHandler struct {
	store      session.Store
	cookieName string
}

func NewSessionHandler(store session.Store, cookieName string) *SessionHandler {
	return &SessionHandler{store: store, cookieName: cookieName}
}

// Logout godoc
//
//	@Summary		Log out
//	@Description	Revoke the caller's session token and clear the session cookie
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=map[string]bool}
//	@Failure		401	{object}	serializer.Response
//	@Router			/auth/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	token := middleware.SessionToken(c, h.cookieName)
	if token == "" {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return
	}
	if err := h.store.Delete(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, serializer.ServerErr("revoke session failed", err))
		return
	}
	if h.cookieName != "" {
		c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	}
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"success": true}})
}
