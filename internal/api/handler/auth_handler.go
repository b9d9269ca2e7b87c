package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/visioncall/calling-api/internal/api/metrics"
	"github.com/visioncall/calling-api/internal/core/domain"
	"github.com/visioncall/calling-api/internal/core/ports"
)

// AuthHandler handles registration, login and the credential token flows.
type AuthHandler struct {
	auth        ports.AuthService
	credentials ports.CredentialService
}

func NewAuthHandler(auth ports.AuthService, credentials ports.CredentialService) *AuthHandler {
	return &AuthHandler{auth: auth, credentials: credentials}
}

// Register creates a new inactive account and mails the activation link.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.credentials.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	metrics.RegistrationsTotal.Inc()

	pub := user.Public()
	return c.JSON(http.StatusCreated, authResponse{User: &pub})
}

// Login authenticates an account and returns a session token. When the
// request carries a device push address it is registered on the account.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password, req.FCMToken)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	pub := user.Public()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: &pub})
}

// VerifyEmail consumes an activation key from the mailed link.
//
// @Summary      Activate an account by activation key
// @Tags         auth
// @Produce      json
// @Param        key  query     string  true  "Activation key"
// @Success      200  {object}  authResponse
// @Failure      404  {object}  errorResponse
// @Router       /auth/verify-email-id [get]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	user, err := h.credentials.Activate(c.Request().Context(), c.QueryParam("key"))
	if err != nil {
		return err
	}

	pub := user.Public()
	return c.JSON(http.StatusOK, authResponse{User: &pub})
}

// ForgotPassword issues a fresh reset key and mails the reset link. The reply
// is 202 regardless of delivery: mail is fire-and-forget.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      202   {object}  statusResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.credentials.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, statusResponse{Message: "reset mail sent"})
}

// VerifyPasswordKey checks a reset key without consuming it, so the client
// can gate the reset form.
//
// @Summary      Verify a password reset key
// @Tags         auth
// @Produce      json
// @Param        key  query     string  true  "Reset key"
// @Success      200  {object}  statusResponse
// @Failure      404  {object}  errorResponse
// @Router       /auth/verify-password-key [get]
func (h *AuthHandler) VerifyPasswordKey(c echo.Context) error {
	if err := h.credentials.VerifyPasswordResetKey(c.Request().Context(), c.QueryParam("key")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Message: "key valid"})
}

// ResetPassword consumes a reset key and stores the new password.
//
// @Summary      Reset password with a reset key
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset key and new password"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.credentials.ResetPassword(c.Request().Context(), req.Key, req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Message: "password updated"})
}

// ChangePassword replaces the password of the authenticated account.
//
// @Summary      Change the current account's password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Old and new passwords"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	accountID, _, err := ctxAccount(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.credentials.ChangePassword(c.Request().Context(), accountID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Message: "password updated"})
}

// loginResult maps a login failure to its metric label.
func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUserNotFound):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrNotActivated):
		return "not_activated"
	default:
		return "error"
	}
}
