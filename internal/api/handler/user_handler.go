package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/visioncall/calling-api/internal/core/ports"
)

// UserHandler handles account profile operations.
type UserHandler struct {
	users ports.UserRepository
}

func NewUserHandler(users ports.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// Me returns the authenticated account's public profile.
//
// @Summary      Get the current account
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  authResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /user/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	accountID, _, err := ctxAccount(c)
	if err != nil {
		return err
	}

	user, err := h.users.FindByID(c.Request().Context(), accountID)
	if err != nil {
		return err
	}

	pub := user.Public()
	return c.JSON(http.StatusOK, authResponse{User: &pub})
}

// Get returns any account's public profile. Admin only; gated by RBAC in the
// router.
//
// @Summary      Get an account by id
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  authResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /user/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	pub := user.Public()
	return c.JSON(http.StatusOK, authResponse{User: &pub})
}

// SetFCMToken registers the device push address for the authenticated
// account, replacing any previous one.
//
// @Summary      Register the device push address
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      fcmTokenRequest  true  "Device push address"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /user/fcm-token [post]
func (h *UserHandler) SetFCMToken(c echo.Context) error {
	accountID, _, err := ctxAccount(c)
	if err != nil {
		return err
	}

	var req fcmTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.users.SetFCMToken(c.Request().Context(), accountID, req.FCMToken); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Message: "push address registered"})
}
