package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/models"
)

// ListAccounts returns every account of one role, credentials stripped.
func (h HandlerSet) ListAccounts(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := h.accounts.List(c.Request.Context(), role, page(c))
		if err != nil {
			h.fail(c, err)
			return
		}

		items := make([]accountResponse, 0, len(accounts))
		for _, account := range accounts {
			items = append(items, toAccountResponse(account))
		}
		c.JSON(http.StatusOK, items)
	}
}
