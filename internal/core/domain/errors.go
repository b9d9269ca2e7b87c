package domain

import "errors"

var ErrMissingField = errors.New("required field missing")
var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already taken")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrNotActivated = errors.New("user not activated")
var ErrPasswordMismatch = errors.New("passwords do not match")
var ErrNoOpChange = errors.New("new password is the same as the current password")
var ErrDuplicateToken = errors.New("token already in use")
var ErrTokenAllocationExhausted = errors.New("token allocation retries exhausted")
var ErrInvalidNotificationType = errors.New("invalid notification type")
var ErrMissingSignalingData = errors.New("session code and media token required")
var ErrNoPushAddress = errors.New("receiver has no registered push address")
var ErrInvalidDeliveryTransition = errors.New("invalid delivery state transition")
var ErrNotificationNotFound = errors.New("notification not found")
var ErrMessageNotFound = errors.New("message not found")
var ErrTooManyRequests = errors.New("too many requests")
var ErrForbidden = errors.New("access forbidden")
