package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Harikishanth/healbee/internal/models"
)

// MemoryStorage is an in-process Storage used for tests and for running
// without a database.
type MemoryStorage struct {
	mu       sync.RWMutex
	chats    map[string]models.Chat
	messages map[string][]models.ChatMessage
	memory   map[int64]map[string]string
	profiles map[int64]models.UserProfile
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		chats:    make(map[string]models.Chat),
		messages: make(map[string][]models.ChatMessage),
		memory:   make(map[int64]map[string]string),
		profiles: make(map[int64]models.UserProfile),
	}
}

func (s *MemoryStorage) CreateChat(_ context.Context, userID int64, title string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.chats[id] = models.Chat{
		ID:        id,
		UserID:    userID,
		Title:     truncateRunes(title, maxChatTitleChars),
		CreatedAt: time.Now(),
	}
	return id, nil
}

func (s *MemoryStorage) ListChats(_ context.Context, userID int64) ([]models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chats []models.Chat
	for _, c := range s.chats {
		if c.UserID == userID {
			chats = append(chats, c)
		}
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].CreatedAt.After(chats[j].CreatedAt)
	})
	return chats, nil
}

func (s *MemoryStorage) UpdateChatTitle(_ context.Context, chatID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		return fmt.Errorf("chat not found")
	}
	c.Title = truncateRunes(title, maxChatTitleChars)
	s.chats[chatID] = c
	return nil
}

func (s *MemoryStorage) SaveMessage(_ context.Context, chatID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[chatID] = append(s.messages[chatID], models.ChatMessage{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *MemoryStorage) ListMessages(_ context.Context, chatID string) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.ChatMessage(nil), s.messages[chatID]...), nil
}

func (s *MemoryStorage) RecentMessagesFromOtherChats(_ context.Context, userID int64, excludeChatID string, limit int) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var others []models.Chat
	for _, c := range s.chats {
		if c.UserID == userID && c.ID != excludeChatID {
			others = append(others, c)
		}
	}
	sort.Slice(others, func(i, j int) bool {
		return others[i].CreatedAt.After(others[j].CreatedAt)
	})
	if len(others) > 3 {
		others = others[:3]
	}

	var out []models.ChatMessage
	for _, c := range others {
		msgs := s.messages[c.ID]
		// Two latest messages per chat, newest first.
		for i := len(msgs) - 1; i >= 0 && i >= len(msgs)-2; i-- {
			m := msgs[i]
			m.Content = truncateRunes(m.Content, 500)
			out = append(out, m)
			if len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func (s *MemoryStorage) GetUserMemory(_ context.Context, userID int64) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.memory[userID]))
	for k, v := range s.memory[userID] {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStorage) UpsertUserMemory(_ context.Context, userID int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.memory[userID] == nil {
		s.memory[userID] = make(map[string]string)
	}
	s.memory[userID][key] = truncateRunes(value, maxMemoryValueChars)
	return nil
}

func (s *MemoryStorage) GetUserProfile(_ context.Context, userID int64) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	out := p
	return &out, nil
}

func (s *MemoryStorage) UpsertUserProfile(_ context.Context, userID int64, profile *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[userID] = clampProfile(profile)
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
