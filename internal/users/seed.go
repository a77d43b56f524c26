package users

import (
	"context"

	"go.uber.org/zap"
)

// DefaultUsers are created at startup when seeding is enabled
var DefaultUsers = []CreateUserRequest{
	{Name: "John Doe", Email: "john.doe@example.com"},
	{Name: "Jane Smith", Email: "jane.smith@example.com"},
	{Name: "Bob Johnson", Email: "bob.johnson@example.com"},
}

// SetupDefaults creates the sample users through the service.
// Users that already exist are skipped; other failures are logged and counted.
func SetupDefaults(ctx context.Context, service UserService, logger *zap.Logger) (created int, failed int) {
	for i := range DefaultUsers {
		req := DefaultUsers[i]

		user, err := service.CreateUser(ctx, &req)
		if err != nil {
			if IsConflictError(err) {
				logger.Debug("Sample user already exists", zap.String("email", req.Email))
				continue
			}
			logger.Error("Failed to create sample user", zap.String("email", req.Email), zap.Error(err))
			failed++
			continue
		}

		logger.Info("Sample user created", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
		created++
	}

	return created, failed
}
