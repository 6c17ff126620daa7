package controller

import (
	"ctchen222/morpion/internal/api/models"
	"ctchen222/morpion/internal/api/response"
	"ctchen222/morpion/internal/api/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserController handles identity-related HTTP requests.
type UserController struct {
	userService service.UserService
}

// NewUserController creates a new UserController.
func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// GuestLogin issues a player id and a bearer token for it.
func (uc *UserController) GuestLogin(c *gin.Context) {
	var req models.GuestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	playerID, token, err := uc.userService.GuestLogin(c.Request.Context(), req.Name)
	switch {
	case errors.Is(err, service.ErrNameTaken):
		response.ErrorResponse(c, http.StatusConflict, err.Error())
		return
	case errors.Is(err, service.ErrReservedName):
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.SuccessResponse(c, models.GuestResponse{PlayerID: playerID, Token: token})
}
