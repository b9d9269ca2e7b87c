package handler

import "github.com/visioncall/calling-api/internal/core/domain"

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=128"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type loginRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required"`
	FCMToken string `json:"fcm_token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Key             string `json:"key"              validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=128"`
}

type fcmTokenRequest struct {
	FCMToken string `json:"fcm_token" validate:"required"`
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Text       string `json:"text"        validate:"required,max=2000"`
}

type callRequest struct {
	ReceiverID  string `json:"receiver_id"  validate:"required"`
	SessionCode string `json:"session_code" validate:"required"`
}

type authResponse struct {
	Token string             `json:"token,omitempty"`
	User  *domain.PublicUser `json:"user,omitempty"`
}

type messageResponse struct {
	Message      *domain.Message           `json:"message"`
	Notification *domain.NotificationDraft `json:"notification,omitempty"`
}

type callResponse struct {
	Notification *domain.NotificationDraft `json:"notification"`
	SessionCode  string                    `json:"session_code"`
	MediaToken   string                    `json:"media_token"`
}

type statusResponse struct {
	Message string `json:"message"`
}
