package users

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	store UserStore
	now   func() time.Time
}

// NewUserService creates a new user service instance
func NewUserService(store UserStore) *UserServiceImpl {
	return &UserServiceImpl{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser validates the input, rejects a taken email and persists a new user
func (s *UserServiceImpl) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if req == nil {
		return nil, NewValidationError("request", nil, "request cannot be empty")
	}
	if err := validateUserInput(req.Name, req.Email); err != nil {
		return nil, err
	}

	exists, err := s.store.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check if email exists: %w", err)
	}
	if exists {
		return nil, NewEmailConflictError(req.Email)
	}

	now := s.now()
	user := &User{
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	saved, err := s.store.Save(ctx, user)
	if err != nil {
		if IsConflictError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

// FindUserByID returns the user with the given id
func (s *UserServiceImpl) FindUserByID(ctx context.Context, id int64) (*User, error) {
	if err := validateUserID(id); err != nil {
		return nil, err
	}

	user, ok, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !ok {
		return nil, NewUserNotFoundByIDError(id)
	}

	return user, nil
}

// FindUserByEmail returns the user owning the given email
func (s *UserServiceImpl) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, NewValidationError("email", email, "email cannot be empty")
	}

	user, ok, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if !ok {
		return nil, NewUserNotFoundByEmailError(email)
	}

	return user, nil
}

// GetAllUsers returns every stored user in store order
func (s *UserServiceImpl) GetAllUsers(ctx context.Context) ([]*User, error) {
	users, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser replaces name and email of an existing user and refreshes UpdatedAt
func (s *UserServiceImpl) UpdateUser(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	if err := validateUserID(id); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, NewValidationError("request", nil, "request cannot be empty")
	}
	if err := validateUserInput(req.Name, req.Email); err != nil {
		return nil, err
	}

	user, err := s.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Only a changed email can collide with another user
	if user.Email != req.Email {
		exists, err := s.store.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check if email exists: %w", err)
		}
		if exists {
			return nil, NewEmailConflictError(req.Email)
		}
	}

	updated := *user
	updated.Name = req.Name
	updated.Email = req.Email
	updated.UpdatedAt = s.now()

	saved, err := s.store.Save(ctx, &updated)
	if err != nil {
		if IsConflictError(err) || IsNotFoundError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return saved, nil
}

// DeleteUser permanently removes an existing user
func (s *UserServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	if err := validateUserID(id); err != nil {
		return err
	}

	exists, err := s.store.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check if user exists: %w", err)
	}
	if !exists {
		return NewUserNotFoundByIDError(id)
	}

	if err := s.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

func validateUserID(id int64) error {
	if id <= 0 {
		return NewValidationError("id", id, "user ID is required")
	}
	return nil
}

// validateUserInput only requires a non-blank email containing '@' and '.'
func validateUserInput(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("name", name, "name cannot be empty")
	}

	if strings.TrimSpace(email) == "" {
		return NewValidationError("email", email, "email cannot be empty")
	}

	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return NewValidationError("email", email, "invalid email format")
	}

	return nil
}
