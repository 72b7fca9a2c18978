// Package userstest provides an in-memory users.Repository for tests.
package userstest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
)

// Memory keeps users in a map and enforces username and e-mail uniqueness
// like the database constraints do. Setting Err makes every call fail with
// it; CreateErr only affects Create.
type Memory struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]users.User

	Err       error
	CreateErr error
	Creates   int
}

var _ users.Repository = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{byID: map[int64]users.User{}}
}

// Add stores u directly and returns its id.
func (m *Memory) Add(u users.User) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	m.byID[u.ID] = u
	return u.ID
}

// Delete removes a user, simulating an account that disappeared.
func (m *Memory) Delete(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

func (m *Memory) Create(ctx context.Context, user *users.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Creates++

	if m.Err != nil {
		return 0, m.Err
	}
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	for _, u := range m.byID {
		if u.Email == user.Email || u.Username == user.Username {
			return 0, common.ErrUserAlreadyExists
		}
	}

	m.nextID++
	now := time.Now().UTC()
	u := *user
	u.ID, u.CreatedAt, u.UpdatedAt = m.nextID, now, now
	m.byID[u.ID] = u
	user.ID = u.ID
	return u.ID, nil
}

func (m *Memory) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, err := m.GetByID(ctx, id)
	return m.exists(err)
}

func (m *Memory) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return m.exists(err)
}

func (m *Memory) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	return m.exists(err)
}

func (m *Memory) exists(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (m *Memory) GetByID(ctx context.Context, id int64) (*users.User, error) {
	return m.find(func(u users.User) bool { return u.ID == id })
}

func (m *Memory) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return m.find(func(u users.User) bool { return u.Email == email })
}

func (m *Memory) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return m.find(func(u users.User) bool { return u.Username == username })
}

func (m *Memory) find(match func(users.User) bool) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.byID {
		if match(u) {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *Memory) Activate(ctx context.Context, id int64) error {
	return m.update(id, func(u *users.User) { u.Activated = true })
}

func (m *Memory) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return m.update(id, func(u *users.User) { u.PasswordHash = passwordHash })
}

func (m *Memory) update(id int64, fn func(*users.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	u, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	m.byID[id] = u
	return nil
}
