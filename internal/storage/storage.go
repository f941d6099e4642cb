package storage

import (
	"context"

	"github.com/Harikishanth/healbee/internal/models"
)

// Storage persists chats, messages, cross-chat key/value memory and the
// user profile. Methods return errors idiomatically; the session loader
// in the bot layer is responsible for degrading failures to neutral
// empty values so the response pipeline keeps working without
// persistence.
type Storage interface {
	CreateChat(ctx context.Context, userID int64, title string) (string, error)
	ListChats(ctx context.Context, userID int64) ([]models.Chat, error)
	UpdateChatTitle(ctx context.Context, chatID, title string) error

	SaveMessage(ctx context.Context, chatID, role, content string) error
	ListMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error)
	// RecentMessagesFromOtherChats returns a few latest messages from the
	// user's other chats, newest chats first, for continuity context.
	RecentMessagesFromOtherChats(ctx context.Context, userID int64, excludeChatID string, limit int) ([]models.ChatMessage, error)

	GetUserMemory(ctx context.Context, userID int64) (map[string]string, error)
	UpsertUserMemory(ctx context.Context, userID int64, key, value string) error

	GetUserProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
	UpsertUserProfile(ctx context.Context, userID int64, profile *models.UserProfile) error

	Close() error
}

// Write-side caps shared by all implementations.
const (
	maxChatTitleChars   = 200
	maxMemoryValueChars = 2000
	maxHistoryItems     = 50
	maxAllergyItems     = 30
	maxConditionItems   = 30
)

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func capItems(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// clampProfile normalizes a profile before it is written.
func clampProfile(p *models.UserProfile) models.UserProfile {
	out := *p
	out.MedicalHistory = capItems(out.MedicalHistory, maxHistoryItems)
	out.KnownConditions = capItems(out.KnownConditions, maxHistoryItems)
	out.ChronicConditions = capItems(out.ChronicConditions, maxConditionItems)
	out.Allergies.Items = capItems(out.Allergies.Items, maxAllergyItems)
	return out
}
