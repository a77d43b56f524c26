package users

import (
	"context"
)

// UserStore defines the interface for user storage operations.
// Lookups report absence through the boolean result rather than an error.
type UserStore interface {
	// Save inserts the user when ID is zero and updates it in place otherwise.
	// A write that violates the unique email constraint returns a *ConflictError.
	Save(ctx context.Context, user *User) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, bool, error)
	FindByEmail(ctx context.Context, email string) (*User, bool, error)
	FindAll(ctx context.Context) ([]*User, error)
	DeleteByID(ctx context.Context, id int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// UserService defines the interface for user service operations
type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error)
	FindUserByID(ctx context.Context, id int64) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	GetAllUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
}
