package identity

import (
	"errors"

	"valentine-storefront/internal/domain"
)

var messages = map[string]string{
	domain.AuthInvalidCredential:  "Invalid email or password.",
	domain.AuthWrongPassword:      "Invalid email or password.",
	domain.AuthUserNotFound:       "No account found with this email.",
	domain.AuthInvalidEmail:       "Please enter a valid email address.",
	domain.AuthEmailInUse:         "An account with this email already exists.",
	domain.AuthWeakPassword:       "Password should be at least 6 characters.",
	domain.AuthPopupClosed:        "Sign-in popup was closed before completing.",
	domain.AuthPopupBlocked:       "Sign-in popup was blocked by the browser.",
	domain.AuthUnauthorizedDomain: "This sign-in method is not available here.",
	domain.AuthTooManyRequests:    "Too many attempts. Please try again later.",
	domain.AuthInvalidToken:       "Your session has expired. Please sign in again.",
}

// UserMessage turns an authentication error into text fit for shoppers.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		return "Something went wrong. Please try again."
	}
	if msg, ok := messages[authErr.Code]; ok {
		return msg
	}
	return "Authentication failed (" + authErr.Code + ")."
}
