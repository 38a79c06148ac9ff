package handler

import (
	"errors"
	"net/http"

	"github.com/SidahmedSeg/arack-engine-search-sub003/internal/auth/credentials"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a local account and logs the user straight in, so
// registration ends with the same session cookie a login would produce.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.credentialService.Register(
		c.Request.Context(),
		req.Email,
		req.Password,
	)

	if err != nil {
		if errors.Is(err, credentials.ErrAlreadyRegistered) {
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "registration failed"})
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

	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}
