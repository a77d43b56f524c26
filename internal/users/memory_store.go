package users

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// InMemoryStore implements UserStore without a database.
// It enforces the same unique email constraint as the users table and never reuses ids.
type InMemoryStore struct {
	mu     sync.RWMutex
	users  map[int64]User
	nextID int64
}

// NewInMemoryStore creates an empty in-memory user store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:  make(map[int64]User),
		nextID: 1,
	}
}

func (s *InMemoryStore) Save(ctx context.Context, user *User) (*User, error) {
	if user == nil {
		return nil, fmt.Errorf("user cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.users {
		if id != user.ID && existing.Email == user.Email {
			return nil, NewEmailConflictError(user.Email)
		}
	}

	stored := *user
	if stored.ID == 0 {
		stored.ID = s.nextID
		s.nextID++
	} else {
		current, ok := s.users[stored.ID]
		if !ok {
			return nil, NewUserNotFoundByIDError(stored.ID)
		}
		stored.CreatedAt = current.CreatedAt
	}

	s.users[stored.ID] = stored

	out := stored
	return &out, nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, id int64) (*User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, false, nil
	}
	return &user, true, nil
}

func (s *InMemoryStore) FindByEmail(ctx context.Context, email string) (*User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			found := user
			return &found, true, nil
		}
	}
	return nil, false, nil
}

// FindAll returns users ordered by id, matching the relational store
func (s *InMemoryStore) FindAll(ctx context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*User, 0, len(s.users))
	for _, user := range s.users {
		u := user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *InMemoryStore) DeleteByID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *InMemoryStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok, nil
}

func (s *InMemoryStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}
