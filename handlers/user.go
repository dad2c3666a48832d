package handlers

import (
	"net/http"

	"nafany/models"
	"nafany/services/user"
	"nafany/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	UserService user.UserService
}

func NewUserHandler(userService user.UserService) *UserHandler {
	return &UserHandler{UserService: userService}
}

// RegisterUserHandler handles POST /api/users/register.
func (h *UserHandler) RegisterUserHandler(c *gin.Context) {
	var req models.UserRegistration
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.UserService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, zap.String("email", req.Email))
		return
	}
	utils.GetLogger().Info("User registered", zap.String("email", created.Email))
	c.JSON(http.StatusCreated, created)
}

// AuthenticateUserHandler handles POST /api/users/login.
func (h *UserHandler) AuthenticateUserHandler(c *gin.Context) {
	var req models.LoginInput
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.UserService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, zap.String("email", req.Email))
		return
	}
	c.JSON(http.StatusOK, resp)
}
