package bot

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harikishanth/healbee/internal/models"
	"github.com/Harikishanth/healbee/internal/storage"
)

// failingStorage errors on every call, simulating a dead database.
type failingStorage struct{}

var errDown = errors.New("storage unavailable")

func (failingStorage) CreateChat(context.Context, int64, string) (string, error) {
	return "", errDown
}
func (failingStorage) ListChats(context.Context, int64) ([]models.Chat, error) { return nil, errDown }
func (failingStorage) UpdateChatTitle(context.Context, string, string) error   { return errDown }
func (failingStorage) SaveMessage(context.Context, string, string, string) error {
	return errDown
}
func (failingStorage) ListMessages(context.Context, string) ([]models.ChatMessage, error) {
	return nil, errDown
}
func (failingStorage) RecentMessagesFromOtherChats(context.Context, int64, string, int) ([]models.ChatMessage, error) {
	return nil, errDown
}
func (failingStorage) GetUserMemory(context.Context, int64) (map[string]string, error) {
	return nil, errDown
}
func (failingStorage) UpsertUserMemory(context.Context, int64, string, string) error {
	return errDown
}
func (failingStorage) GetUserProfile(context.Context, int64) (*models.UserProfile, error) {
	return nil, errDown
}
func (failingStorage) UpsertUserProfile(context.Context, int64, *models.UserProfile) error {
	return errDown
}
func (failingStorage) Close() error { return nil }

func newTestBot(store storage.Storage) *Bot {
	return &Bot{
		storage:  store,
		logger:   zap.NewNop(),
		sessions: make(map[int64]*sessionState),
	}
}

func TestLoadSessionContextAbsorbsStorageFailures(t *testing.T) {
	b := newTestBot(failingStorage{})
	state := &sessionState{
		ChatID:            "chat-1",
		ExtractedSymptoms: []string{"fever"},
		LastAdviceGiven:   "rest",
	}

	sess := b.loadSessionContext(context.Background(), 1, state)

	require.NotNil(t, sess)
	assert.Nil(t, sess.Profile)
	assert.Empty(t, sess.Memory)
	assert.Empty(t, sess.PastMessages)
	// Ephemeral state survives regardless of storage health.
	assert.Equal(t, []string{"fever"}, sess.ExtractedSymptoms)
	assert.Equal(t, "rest", sess.LastAdviceGiven)
}

func TestLoadSessionContextFromStorage(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	b := newTestBot(store)

	require.NoError(t, store.UpsertUserProfile(ctx, 7, &models.UserProfile{Name: "Asha"}))
	require.NoError(t, store.UpsertUserMemory(ctx, 7, models.MemoryKeyLastAdvice, "hydrate"))

	otherChat, err := store.CreateChat(ctx, 7, "earlier")
	require.NoError(t, err)
	require.NoError(t, store.SaveMessage(ctx, otherChat, models.RoleUser, "old question"))

	currentChat, err := store.CreateChat(ctx, 7, "current")
	require.NoError(t, err)

	sess := b.loadSessionContext(ctx, 7, &sessionState{ChatID: currentChat})

	require.NotNil(t, sess.Profile)
	assert.Equal(t, "Asha", sess.Profile.Name)
	assert.Equal(t, "hydrate", sess.Memory[models.MemoryKeyLastAdvice])
	require.Len(t, sess.PastMessages, 1)
	assert.Equal(t, "old question", sess.PastMessages[0].Content)
}

func TestLoadSessionContextSnapshotIsolation(t *testing.T) {
	b := newTestBot(storage.NewMemoryStorage())
	state := &sessionState{ChatID: "chat-1", ExtractedSymptoms: []string{"fever"}}

	sess := b.loadSessionContext(context.Background(), 1, state)

	// A later turn must not leak into an already-taken snapshot.
	b.mu.Lock()
	state.addSymptoms([]models.Entity{{Text: "cough", Label: "symptom"}})
	state.LastAdviceGiven = "rest"
	b.mu.Unlock()

	assert.Equal(t, []string{"fever"}, sess.ExtractedSymptoms)
	assert.Empty(t, sess.LastAdviceGiven)
}

func TestLoadSessionContextConcurrentSymptomUpdates(t *testing.T) {
	b := newTestBot(storage.NewMemoryStorage())
	state := &sessionState{ChatID: "chat-1"}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			b.mu.Lock()
			state.addSymptoms([]models.Entity{{Text: strconv.Itoa(i), Label: "symptom"}})
			b.mu.Unlock()
		}
	}()
	for i := 0; i < 50; i++ {
		sess := b.loadSessionContext(context.Background(), 1, state)
		assert.LessOrEqual(t, len(sess.ExtractedSymptoms), 50)
	}
	<-done
}

func TestSessionSingleStatePerUser(t *testing.T) {
	b := newTestBot(storage.NewMemoryStorage())

	var wg sync.WaitGroup
	states := make([]*sessionState, 8)
	for i := range states {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			states[i] = b.session(context.Background(), 5)
		}(i)
	}
	wg.Wait()

	// Concurrent first messages must all land on one shared state.
	for _, s := range states[1:] {
		assert.Same(t, states[0], s)
	}
	assert.Same(t, states[0], b.session(context.Background(), 5))
}

func TestSessionStateAddSymptoms(t *testing.T) {
	state := &sessionState{}

	state.addSymptoms([]models.Entity{
		{Text: "fever", Label: "symptom"},
		{Text: "cough", Label: "symptom"},
		{Text: "fever", Label: "symptom"},
		{Text: "ibuprofen", Label: "medication"},
		{Text: "", Label: "symptom"},
	})

	assert.Equal(t, []string{"fever", "cough"}, state.ExtractedSymptoms)
}

func TestRememberTurnPersistsContinuity(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	b := newTestBot(store)

	chatID, err := store.CreateChat(ctx, 3, "Chat")
	require.NoError(t, err)
	state := &sessionState{ChatID: chatID, ExtractedSymptoms: []string{"fever", "cough"}}

	b.rememberTurn(ctx, 3, state, "I feel hot", "Monitor your temperature.")

	msgs, err := store.ListMessages(ctx, chatID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)

	mem, err := store.GetUserMemory(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "fever, cough", mem[models.MemoryKeyLastSymptoms])
	assert.Equal(t, "Monitor your temperature.", mem[models.MemoryKeyLastAdvice])
}

func TestRememberTurnToleratesStorageFailure(t *testing.T) {
	b := newTestBot(failingStorage{})
	state := &sessionState{ChatID: "chat-1", ExtractedSymptoms: []string{"fever"}}

	// Must not panic or error; failures are logged only.
	b.rememberTurn(context.Background(), 1, state, "q", "a")
}
