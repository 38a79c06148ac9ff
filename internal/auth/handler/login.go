package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.credentialService.Authenticate(
		c.Request.Context(),
		req.Email,
		req.Password,
	)

	if err != nil {
		// Generic wording: no hint whether the account exists.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	tokens, err := h.localIssuer.IssueTokens(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	sess, err := h.sessions.Create(
		c.Request.Context(),
		user,
		h.localIssuer.Name(),
		tokens,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	h.issueCookie(c, sess.ID)

	c.JSON(http.StatusOK, gin.H{"status": "logged_in"})
}
