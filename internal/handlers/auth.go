package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/internal/models"
	"marketplace/internal/service"
)

type registerRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	Phone           string `json:"phone"`
	Location        string `json:"location"`
	Address         string `json:"address"`
	BusinessName    string `json:"businessName"`
	BusinessAddress string `json:"businessAddress"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type accountResponse struct {
	ID              string      `json:"id"`
	Role            models.Role `json:"role"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Phone           string      `json:"phone"`
	Location        string      `json:"location"`
	Address         string      `json:"address,omitempty"`
	BusinessName    string      `json:"businessName,omitempty"`
	BusinessAddress string      `json:"businessAddress,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type authResponse struct {
	Message   string          `json:"message"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Account   accountResponse `json:"account"`
}

// toAccountResponse is the only way accounts leave the API, so the password
// hash never does.
func toAccountResponse(a models.Account) accountResponse {
	return accountResponse{
		ID:              a.ID,
		Role:            a.Role,
		Name:            a.Name,
		Email:           a.Email,
		Phone:           a.Phone,
		Location:        a.Location,
		Address:         a.Address,
		BusinessName:    a.BusinessName,
		BusinessAddress: a.BusinessAddress,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func (h HandlerSet) RegisterAccount(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.fail(c, bindError(err))
			return
		}

		result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
			Role:            role,
			Name:            req.Name,
			Email:           req.Email,
			Password:        req.Password,
			Phone:           req.Phone,
			Location:        req.Location,
			Address:         req.Address,
			BusinessName:    req.BusinessName,
			BusinessAddress: req.BusinessAddress,
		})
		if err != nil {
			h.fail(c, err)
			return
		}

		sendAuthResponse(c, http.StatusCreated, "Registered successfully", result)
	}
}

func (h HandlerSet) Login(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.fail(c, bindError(err))
			return
		}

		result, err := h.auth.Login(c.Request.Context(), role, req.Email, req.Password)
		if err != nil {
			h.fail(c, err)
			return
		}

		sendAuthResponse(c, http.StatusOK, "Login successful", result)
	}
}

func (h HandlerSet) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), identity(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func sendAuthResponse(c *gin.Context, status int, message string, result service.AuthResult) {
	c.JSON(status, authResponse{
		Message:   message,
		Token:     result.Token,
		ExpiresAt: result.Identity.ExpiresAt,
		Account:   toAccountResponse(result.Account),
	})
}
