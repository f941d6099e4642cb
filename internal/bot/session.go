package bot

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Harikishanth/healbee/internal/models"
)

// How much cross-chat history a session may pull in.
const maxOtherChatExcerpts = 10

// sessionState is the ephemeral continuity kept between turns of one
// chat. It lives only in process memory and is rebuilt empty after a
// restart or /newchat.
type sessionState struct {
	ChatID            string
	ExtractedSymptoms []string
	FollowUpAnswers   []models.FollowUpAnswer
	LastAdviceGiven   string
}

// addSymptoms merges newly extracted symptom entities, keeping first
// mention order and dropping duplicates.
func (s *sessionState) addSymptoms(entities []models.Entity) {
	for _, e := range entities {
		if e.Label != "symptom" || e.Text == "" {
			continue
		}
		known := false
		for _, existing := range s.ExtractedSymptoms {
			if existing == e.Text {
				known = true
				break
			}
		}
		if !known {
			s.ExtractedSymptoms = append(s.ExtractedSymptoms, e.Text)
		}
	}
}

// loadSessionContext assembles the continuity snapshot for one request.
// Every storage failure is logged and absorbed into a neutral empty
// value: the response pipeline must keep working with no persistence at
// all. State fields are copied under b.mu so a concurrent message from
// the same user cannot mutate the snapshot mid-request.
func (b *Bot) loadSessionContext(ctx context.Context, userID int64, state *sessionState) *models.SessionContext {
	b.mu.Lock()
	sess := &models.SessionContext{
		ExtractedSymptoms: append([]string(nil), state.ExtractedSymptoms...),
		FollowUpAnswers:   append([]models.FollowUpAnswer(nil), state.FollowUpAnswers...),
		LastAdviceGiven:   state.LastAdviceGiven,
	}
	chatID := state.ChatID
	b.mu.Unlock()

	profile, err := b.storage.GetUserProfile(ctx, userID)
	if err != nil {
		b.logger.Warn("failed to load user profile",
			zap.Error(err),
			zap.Int64("user_id", userID))
	} else {
		sess.Profile = profile
	}

	memory, err := b.storage.GetUserMemory(ctx, userID)
	if err != nil {
		b.logger.Warn("failed to load user memory",
			zap.Error(err),
			zap.Int64("user_id", userID))
	} else if len(memory) > 0 {
		sess.Memory = memory
	}

	past, err := b.storage.RecentMessagesFromOtherChats(ctx, userID, chatID, maxOtherChatExcerpts)
	if err != nil {
		b.logger.Warn("failed to load past messages",
			zap.Error(err),
			zap.Int64("user_id", userID))
	} else {
		sess.PastMessages = past
	}

	return sess
}

// rememberTurn persists what the next session needs for continuity.
// Failures are logged, never surfaced to the user.
func (b *Bot) rememberTurn(ctx context.Context, userID int64, state *sessionState, query, reply string) {
	b.mu.Lock()
	chatID := state.ChatID
	symptoms := strings.Join(state.ExtractedSymptoms, ", ")
	b.mu.Unlock()

	if err := b.storage.SaveMessage(ctx, chatID, models.RoleUser, query); err != nil {
		b.logger.Error("failed to save user message",
			zap.Error(err),
			zap.String("chat_id", chatID))
	}
	if err := b.storage.SaveMessage(ctx, chatID, models.RoleAssistant, reply); err != nil {
		b.logger.Error("failed to save assistant message",
			zap.Error(err),
			zap.String("chat_id", chatID))
	}

	if symptoms != "" {
		if err := b.storage.UpsertUserMemory(ctx, userID, models.MemoryKeyLastSymptoms, symptoms); err != nil {
			b.logger.Error("failed to update last symptoms",
				zap.Error(err),
				zap.Int64("user_id", userID))
		}
	}
	if err := b.storage.UpsertUserMemory(ctx, userID, models.MemoryKeyLastAdvice, reply); err != nil {
		b.logger.Error("failed to update last advice",
			zap.Error(err),
			zap.Int64("user_id", userID))
	}
}
