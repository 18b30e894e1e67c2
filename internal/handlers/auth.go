package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"patient-studies-server/internal/accounts"
	"patient-studies-server/internal/utils"
)

// AuthHandler exchanges credentials for an API token.
type AuthHandler struct {
	Accounts *accounts.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *accounts.Service) *AuthHandler {
	return &AuthHandler{Accounts: svc}
}

// LoginRequest represents the request body for obtaining a token.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the account's token.
type LoginResponse struct {
	Token string `json:"token"`
}

// Login returns the token of the account matching the credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	token, err := h.Accounts.ObtainToken(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			errs := utils.FieldErrors{}
			errs.Add("non_field_errors", "Unable to log in with provided credentials.")
			utils.ValidationFailed(c, errs)
			return
		}
		respondError(c, err, "User not found")
		return
	}

	utils.Success(c, "Login successful", LoginResponse{Token: token.Key})
}
