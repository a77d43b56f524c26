package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// pgUniqueViolation is the SQLSTATE raised for a unique constraint violation
const pgUniqueViolation = "23505"

// UserSchema represents the users table schema in PostgreSQL
type UserSchema struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Email     string    `bun:"email,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// UserIndexes are created after the users table
var UserIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users (created_at)",
}

// PostgresStore implements the UserStore interface using PostgreSQL
type PostgresStore struct {
	db bun.IDB
}

// NewPostgresStore creates a new PostgreSQL user store
func NewPostgresStore(db bun.IDB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save inserts a new user or updates an existing one
func (s *PostgresStore) Save(ctx context.Context, user *User) (*User, error) {
	if user == nil {
		return nil, fmt.Errorf("user cannot be nil")
	}

	schema := UserToUserSchema(user)

	if schema.ID == 0 {
		_, err := s.db.NewInsert().
			Model(&schema).
			ExcludeColumn("id").
			Returning("*").
			Exec(ctx)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, NewEmailConflictErrorWithCause(user.Email, err)
			}
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return UserSchemaToUser(schema), nil
	}

	result, err := s.db.NewUpdate().
		Model(&schema).
		Column("name", "email", "updated_at").
		WherePK().
		Returning("*").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, NewEmailConflictErrorWithCause(user.Email, err)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, NewUserNotFoundByIDError(user.ID)
	}

	return UserSchemaToUser(schema), nil
}

// FindByID retrieves a user by id
func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*User, bool, error) {
	var schema UserSchema
	err := s.db.NewSelect().
		Model(&schema).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}

	return UserSchemaToUser(schema), true, nil
}

// FindByEmail retrieves a user by exact email
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, bool, error) {
	var schema UserSchema
	err := s.db.NewSelect().
		Model(&schema).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get user by email: %w", err)
	}

	return UserSchemaToUser(schema), true, nil
}

// FindAll retrieves every user ordered by id
func (s *PostgresStore) FindAll(ctx context.Context) ([]*User, error) {
	var schemas []UserSchema
	err := s.db.NewSelect().
		Model(&schemas).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, 0, len(schemas))
	for _, schema := range schemas {
		users = append(users, UserSchemaToUser(schema))
	}
	return users, nil
}

// DeleteByID removes a user row permanently
func (s *PostgresStore) DeleteByID(ctx context.Context, id int64) error {
	_, err := s.db.NewDelete().
		Model((*UserSchema)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ExistsByID checks if a user with the given id exists
func (s *PostgresStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*UserSchema)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// ExistsByEmail checks if a user with the given email exists
func (s *PostgresStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*UserSchema)(nil)).
		Where("email = ?", email).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == pgUniqueViolation
	}
	return false
}

// Helper conversion functions

func UserSchemaToUser(schema UserSchema) *User {
	return &User{
		ID:        schema.ID,
		Name:      schema.Name,
		Email:     schema.Email,
		CreatedAt: schema.CreatedAt.UTC(),
		UpdatedAt: schema.UpdatedAt.UTC(),
	}
}

func UserToUserSchema(user *User) UserSchema {
	return UserSchema{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
