package userstore

import "context"

// UserRepository defines the storage operations for user records.
// A record is created or overwritten on every successful login and
// removed on logout.
type UserRepository interface {
	// Save constructs a UserRecord from the token pair and profile, keyed by
	// profile.ID. Returns ErrFailedToSaveUser if the profile has no ID.
	Save(ctx context.Context, accessToken, refreshToken string, profile Profile) (UserRecord, error)

	// Get retrieves a user record by ID. Returns ErrUserNotFound if no
	// record exists, which is expected after a restart or logout.
	Get(ctx context.Context, id string) (UserRecord, error)

	// Delete removes a user record. Deleting a non-existent ID is a no-op.
	Delete(ctx context.Context, id string) error
}
