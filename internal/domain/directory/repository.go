package directory

import "context"

// UserRepository reads the externally-owned user directory.
type UserRepository interface {
	// GetByID resolves one user, ErrUserNotFound when missing
	GetByID(ctx context.Context, id string) (User, error)

	// ListActive enumerates active users for the absentee sweep
	ListActive(ctx context.Context) ([]User, error)
}
