package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tdai-app/tdai/pkg/core/types"
)

// Memory keeps everything in process. Used when no database is
// configured; contents are lost on exit.
type Memory struct {
	mu    sync.Mutex
	users map[string]types.User
	chats map[string]map[string]types.ChatSession
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]types.User),
		chats: make(map[string]map[string]types.ChatSession),
	}
}

func (m *Memory) EnsureUser(ctx context.Context, email string) (types.User, error) {
	email = NormalizeEmail(email)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	u, ok := m.users[email]
	if !ok {
		u = types.User{
			Email:    email,
			Profile:  types.UserProfile{Name: defaultName(email)},
			Activity: types.UserActivity{CreatedAt: now},
		}
	}
	u.Activity.LastLogin = now
	m.users[email] = u
	return u, nil
}

func (m *Memory) UpdateProfile(ctx context.Context, email string, profile types.UserProfile) error {
	email = NormalizeEmail(email)

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[email]
	if !ok {
		return nil
	}
	u.Profile = profile
	m.users[email] = u
	return nil
}

func (m *Memory) SaveChat(ctx context.Context, email string, chat types.ChatSession) error {
	email = NormalizeEmail(email)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.chats[email] == nil {
		m.chats[email] = make(map[string]types.ChatSession)
	}
	m.chats[email][chat.ID] = chat
	return nil
}

func (m *Memory) ListChats(ctx context.Context, email string) ([]types.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var chats []types.ChatSession
	for _, chat := range m.chats[NormalizeEmail(email)] {
		chats = append(chats, chat)
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].CreatedAt.After(chats[j].CreatedAt)
	})
	return chats, nil
}

func (m *Memory) DeleteChat(ctx context.Context, email, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.chats[NormalizeEmail(email)], id)
	return nil
}

func (m *Memory) Close() {}
