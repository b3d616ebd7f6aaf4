package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/apperror"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (h HandlerSet) Profile(c *gin.Context) {
	account, err := h.accounts.Profile(c.Request.Context(), identity(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountResponse(account))
}

// UpdateProfile applies a strict patch: one key outside the role's
// allow-list rejects the whole body.
func (h HandlerSet) UpdateProfile(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.fail(c, apperror.NewValidation("Invalid request body"))
		return
	}

	id := identity(c)
	account, err := h.accounts.UpdateProfile(c.Request.Context(), id, body, patchIgnoredFields(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountResponse(account))
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), identity(c), req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
