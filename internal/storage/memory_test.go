package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harikishanth/healbee/internal/models"
)

func TestMemoryStorageChatsAndMessages(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	chatID, err := s.CreateChat(ctx, 42, "First chat")
	require.NoError(t, err)
	require.NotEmpty(t, chatID)

	require.NoError(t, s.SaveMessage(ctx, chatID, models.RoleUser, "I have a fever"))
	require.NoError(t, s.SaveMessage(ctx, chatID, models.RoleAssistant, "Since when?"))

	msgs, err := s.ListMessages(ctx, chatID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, "I have a fever", msgs[0].Content)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)

	chats, err := s.ListChats(ctx, 42)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "First chat", chats[0].Title)

	chats, err = s.ListChats(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, chats, "chats are scoped per user")
}

func TestMemoryStorageUpdateChatTitle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	chatID, err := s.CreateChat(ctx, 1, "Chat")
	require.NoError(t, err)

	require.NoError(t, s.UpdateChatTitle(ctx, chatID, "Fever questions"))
	chats, err := s.ListChats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Fever questions", chats[0].Title)

	assert.Error(t, s.UpdateChatTitle(ctx, "missing", "x"))
}

func TestMemoryStorageUserMemory(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	mem, err := s.GetUserMemory(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, mem)

	require.NoError(t, s.UpsertUserMemory(ctx, 1, models.MemoryKeyLastSymptoms, "fever"))
	require.NoError(t, s.UpsertUserMemory(ctx, 1, models.MemoryKeyLastSymptoms, "fever, cough"))
	require.NoError(t, s.UpsertUserMemory(ctx, 1, models.MemoryKeyLastAdvice, strings.Repeat("x", 3000)))

	mem, err = s.GetUserMemory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "fever, cough", mem[models.MemoryKeyLastSymptoms])
	assert.Len(t, mem[models.MemoryKeyLastAdvice], maxMemoryValueChars, "values are capped on write")
}

func TestMemoryStorageUserProfile(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	profile, err := s.GetUserProfile(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, profile, "missing profile reads as nil, not an error")

	age := 34
	in := &models.UserProfile{
		Name:              "Asha",
		Age:               &age,
		Gender:            "female",
		ChronicConditions: make([]string, 40),
		Allergies:         models.AllergyField{Items: make([]string, 40)},
	}
	require.NoError(t, s.UpsertUserProfile(ctx, 1, in))

	profile, err = s.GetUserProfile(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Asha", profile.Name)
	require.NotNil(t, profile.Age)
	assert.Equal(t, 34, *profile.Age)
	assert.Len(t, profile.ChronicConditions, maxConditionItems)
	assert.Len(t, profile.Allergies.Items, maxAllergyItems)
}

func TestMemoryStorageRecentMessagesFromOtherChats(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	current, err := s.CreateChat(ctx, 9, "current")
	require.NoError(t, err)
	require.NoError(t, s.SaveMessage(ctx, current, models.RoleUser, "current question"))

	other, err := s.CreateChat(ctx, 9, "other")
	require.NoError(t, err)
	require.NoError(t, s.SaveMessage(ctx, other, models.RoleUser, "old question"))
	require.NoError(t, s.SaveMessage(ctx, other, models.RoleAssistant, "old answer"))
	require.NoError(t, s.SaveMessage(ctx, other, models.RoleUser, strings.Repeat("y", 600)))

	msgs, err := s.RecentMessagesFromOtherChats(ctx, 9, current, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2, "two latest messages per other chat")
	assert.Len(t, msgs[0].Content, 500, "contents are capped at 500 characters")
	assert.Equal(t, "old answer", msgs[1].Content)
	for _, m := range msgs {
		assert.NotEqual(t, "current question", m.Content)
	}

	msgs, err = s.RecentMessagesFromOtherChats(ctx, 9, current, 1)
	require.NoError(t, err)
	assert.Len(t, msgs, 1, "limit is honored")
}
