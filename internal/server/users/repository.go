package users

import "context"

// Repository is the user store. Lookups return common.ErrorNotFound when no
// row matches; Create returns common.ErrUserAlreadyExists when a unique
// constraint rejects the row.
type Repository interface {
	Create(ctx context.Context, user *User) (int64, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Activate(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
