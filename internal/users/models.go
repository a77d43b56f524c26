package users

import (
	"time"
)

// TimestampLayout is the wire format for user timestamps
const TimestampLayout = "2006-01-02 15:04:05"

// User represents a registered person
type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUserRequest represents the request to create a user
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUserRequest represents the request to replace a user's name and email
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserResponse is the JSON representation of a user
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// NewUserResponse converts a domain user into its response form
func NewUserResponse(user *User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: Timestamp(user.CreatedAt),
		UpdatedAt: Timestamp(user.UpdatedAt),
	}
}

// NewUserResponses converts a list of domain users, never returning nil
func NewUserResponses(users []*User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}
	return responses
}

// Timestamp marshals as "yyyy-MM-dd HH:mm:ss" in UTC
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	formatted := time.Time(t).UTC().Format(TimestampLayout)
	return []byte(`"` + formatted + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	parsed, err := time.ParseInLocation(`"`+TimestampLayout+`"`, string(data), time.UTC)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}
