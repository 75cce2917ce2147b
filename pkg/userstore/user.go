package userstore

import "errors"

var (
	// ErrFailedToSaveUser is returned when a profile cannot be persisted,
	// typically because the provider did not supply a stable user ID.
	ErrFailedToSaveUser = errors.New("failed-to-save-user")

	// ErrUserNotFound is returned by Get when no record exists for the ID.
	// Callers should treat this as a normal outcome, not a failure.
	ErrUserNotFound = errors.New("user not found")
)

// Profile is the normalized profile returned by the identity provider.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Slug     string `json:"slug"`
}

// UserRecord represents one authenticated end user of this client application
// together with the provider credentials issued for them.
type UserRecord struct {
	ID           string
	Username     string
	Slug         string
	AccessToken  string
	RefreshToken string
}
