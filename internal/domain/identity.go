package domain

import "time"

// Identity is what the rest of the system knows about a signed-in user.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// Sign-in providers reported by ListSignInMethods.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google.com"
)

// Account is the identity provider's stored record.
type Account struct {
	UID          string
	Email        string
	PasswordHash string
	DisplayName  string
	PhotoURL     string
	Provider     string
	CreatedAt    time.Time
}

func (a Account) Identity() Identity {
	return Identity{UID: a.UID, Email: a.Email, DisplayName: a.DisplayName, PhotoURL: a.PhotoURL}
}

// Authentication error codes.
const (
	AuthInvalidCredential  = "auth/invalid-credential"
	AuthWrongPassword      = "auth/wrong-password"
	AuthUserNotFound       = "auth/user-not-found"
	AuthInvalidEmail       = "auth/invalid-email"
	AuthEmailInUse         = "auth/email-already-in-use"
	AuthWeakPassword       = "auth/weak-password"
	AuthPopupClosed        = "auth/popup-closed-by-user"
	AuthPopupBlocked       = "auth/popup-blocked"
	AuthUnauthorizedDomain = "auth/unauthorized-domain"
	AuthTooManyRequests    = "auth/too-many-requests"
	AuthInvalidToken       = "auth/invalid-token"
)

// AuthError carries a provider error code; Detail is for logs only.
type AuthError struct {
	Code   string
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return e.Code + ": " + e.Detail
	}
	return e.Code
}
