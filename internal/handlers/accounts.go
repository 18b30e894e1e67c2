package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"patient-studies-server/internal/accounts"
	"patient-studies-server/internal/models"
	"patient-studies-server/internal/utils"
)

// AccountHandler handles account creation by staff.
type AccountHandler struct {
	Accounts *accounts.Service
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *accounts.Service) *AccountHandler {
	return &AccountHandler{Accounts: svc}
}

// CreateAccountRequest represents the request body for creating an account.
type CreateAccountRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Password string `json:"password" binding:"required,min=8"`
	IsStaff  bool   `json:"is_staff"`
}

// AccountResponse is returned on creation with the freshly issued token.
type AccountResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
	Token    string `json:"token"`
}

// CreateAccount creates an account and issues its token.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user := models.User{Username: req.Username, IsActive: true, IsStaff: req.IsStaff}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	token, err := h.Accounts.CreateUser(c.Request.Context(), &user, accounts.CreateOptions{})
	if err != nil {
		if errors.Is(err, accounts.ErrUsernameTaken) {
			errs := utils.FieldErrors{}
			errs.Add("username", accounts.ErrUsernameTaken.Error()+".")
			utils.ValidationFailed(c, errs)
			return
		}
		respondError(c, err, "User not found")
		return
	}

	utils.Created(c, "Account created successfully", AccountResponse{
		ID:       user.ID,
		Username: user.Username,
		IsStaff:  user.IsStaff,
		Token:    token.Key,
	})
}
