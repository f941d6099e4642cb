package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Harikishanth/healbee/internal/generator"
	"github.com/Harikishanth/healbee/internal/models"
	"github.com/Harikishanth/healbee/internal/nlu"
	"github.com/Harikishanth/healbee/internal/places"
	"github.com/Harikishanth/healbee/internal/storage"
)

const placesLimitPerType = 8

type Bot struct {
	api        *tgbotapi.BotAPI
	storage    storage.Storage
	classifier nlu.Classifier
	generator  *generator.Generator
	places     *places.Client
	logger     *zap.Logger

	mu       sync.Mutex
	sessions map[int64]*sessionState
}

func New(token string, store storage.Storage, classifier nlu.Classifier, gen *generator.Generator, placesClient *places.Client, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:        api,
		storage:    store,
		classifier: classifier,
		generator:  gen,
		places:     placesClient,
		logger:     logger,
		sessions:   make(map[int64]*sessionState),
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		go b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	query := message.Text
	if message.Caption != "" {
		query = message.Caption
	}
	if strings.TrimSpace(query) == "" {
		return
	}

	userID := message.From.ID
	state := b.session(ctx, userID)

	cls := b.classifier.Classify(ctx, query)

	b.mu.Lock()
	state.addSymptoms(cls.Entities)
	b.mu.Unlock()

	sess := b.loadSessionContext(ctx, userID, state)
	reply := b.generator.Generate(ctx, query, cls, sess)

	b.rememberTurn(ctx, userID, state, query, reply)

	b.mu.Lock()
	state.LastAdviceGiven = reply
	b.mu.Unlock()

	b.sendMessage(message.Chat.ID, reply)
}

// session returns the live state for a user, creating a fresh chat on
// first contact. A failed chat creation still yields usable state; the
// turn simply won't be persisted.
func (b *Bot) session(ctx context.Context, userID int64) *sessionState {
	b.mu.Lock()
	state, ok := b.sessions[userID]
	b.mu.Unlock()
	if ok {
		return state
	}

	chatID, err := b.storage.CreateChat(ctx, userID, "Chat")
	if err != nil {
		b.logger.Error("failed to create chat",
			zap.Error(err),
			zap.Int64("user_id", userID))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// Re-check: a concurrent first message may have won the race while
	// the chat row was being created. The spare chat stays empty.
	if existing, ok := b.sessions[userID]; ok {
		return existing
	}
	state = &sessionState{ChatID: chatID}
	b.sessions[userID] = state
	return state
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "newchat":
		b.handleNewChat(ctx, message)
	case "chats":
		b.handleChats(ctx, message)
	case "history":
		b.handleHistory(ctx, message)
	case "profile":
		b.handleProfile(ctx, message)
	case "places":
		b.handlePlaces(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to HealBee! 🐝
I can answer everyday health questions in English and Hindi, remember your ongoing conversation, and help you find nearby hospitals and clinics.

I am not a doctor: I never diagnose, and I never recommend medications. For anything serious, please see a healthcare professional.

Just type your question to begin, or use /help to see all commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/newchat - Start a fresh conversation
/chats - List your conversations
/history - Show recent messages of this conversation
/profile - Show your stored health profile
/places <location> - Find hospitals and clinics near a location

Anything else you type is treated as a health question.`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleNewChat(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	chatID, err := b.storage.CreateChat(ctx, userID, "Chat")
	if err != nil {
		b.logger.Error("failed to create chat",
			zap.Error(err),
			zap.Int64("user_id", userID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't start a new conversation. Please try again.")
		return
	}

	b.mu.Lock()
	b.sessions[userID] = &sessionState{ChatID: chatID}
	b.mu.Unlock()

	b.sendMessage(message.Chat.ID, "Started a fresh conversation. What would you like to ask?")
}

func (b *Bot) handleChats(ctx context.Context, message *tgbotapi.Message) {
	chats, err := b.storage.ListChats(ctx, message.From.ID)
	if err != nil {
		b.logger.Error("failed to list chats",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't retrieve your conversations.")
		return
	}
	if len(chats) == 0 {
		b.sendMessage(message.Chat.ID, "You don't have any conversations yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your conversations:\n")
	for i, c := range chats {
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, c.Title, c.CreatedAt.Format("2 Jan 2006"))
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	state := b.session(ctx, message.From.ID)

	messages, err := b.storage.ListMessages(ctx, state.ChatID)
	if err != nil {
		b.logger.Error("failed to list messages",
			zap.Error(err),
			zap.String("chat_id", state.ChatID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't retrieve your message history.")
		return
	}
	if len(messages) == 0 {
		b.sendMessage(message.Chat.ID, "This conversation doesn't have any messages yet.")
		return
	}
	if len(messages) > 10 {
		messages = messages[len(messages)-10:]
	}

	var sb strings.Builder
	sb.WriteString("Recent messages:\n\n")
	for _, m := range messages {
		label := "You"
		if m.Role == models.RoleAssistant {
			label = "HealBee"
		}
		fmt.Fprintf(&sb, "%s: %s\n\n", label, m.Content)
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) handleProfile(ctx context.Context, message *tgbotapi.Message) {
	profile, err := b.storage.GetUserProfile(ctx, message.From.ID)
	if err != nil {
		b.logger.Error("failed to load user profile",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't retrieve your profile.")
		return
	}
	if profile == nil {
		b.sendMessage(message.Chat.ID, "You don't have a stored profile yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your stored profile:\n")
	if profile.Name != "" {
		fmt.Fprintf(&sb, "Name: %s\n", profile.Name)
	}
	if profile.Age != nil {
		fmt.Fprintf(&sb, "Age: %d\n", *profile.Age)
	}
	if profile.Gender != "" {
		fmt.Fprintf(&sb, "Gender: %s\n", profile.Gender)
	}
	if profile.HeightCm != nil {
		fmt.Fprintf(&sb, "Height: %g cm\n", *profile.HeightCm)
	}
	if profile.WeightKg != nil {
		fmt.Fprintf(&sb, "Weight: %g kg\n", *profile.WeightKg)
	}
	if len(profile.ChronicConditions) > 0 {
		fmt.Fprintf(&sb, "Chronic conditions: %s\n", strings.Join(profile.ChronicConditions, ", "))
	}
	if !profile.Allergies.IsZero() {
		fmt.Fprintf(&sb, "Allergies: %s\n", profile.Allergies.Excerpt())
	}
	if profile.Location != "" {
		fmt.Fprintf(&sb, "Location: %s\n", profile.Location)
	}
	sb.WriteString("\nThis information is used only for tone and continuity, never for diagnosis.")
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) handlePlaces(ctx context.Context, message *tgbotapi.Message) {
	location := strings.TrimSpace(message.CommandArguments())
	if location == "" {
		// Fall back to the stored profile location.
		if profile, err := b.storage.GetUserProfile(ctx, message.From.ID); err == nil && profile != nil {
			location = profile.Location
		}
	}
	if location == "" {
		b.sendMessage(message.Chat.ID, "Please tell me a location, e.g. /places Mumbai")
		return
	}

	results := b.places.SearchNearbyHealthPlaces(ctx, location, placesLimitPerType)
	if len(results) == 0 {
		b.sendMessage(message.Chat.ID, "I couldn't find hospitals or clinics near \""+location+"\". Try a nearby city or area name.")
		return
	}
	if len(results) > 10 {
		results = results[:10]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Health facilities near %s:\n\n", location)
	for i, p := range results {
		fmt.Fprintf(&sb, "%d. %s (%s)\n%s\n", i+1, p.Name, p.Type, p.Address)
		if link := places.OSMDirectionsLink(p.Lat, p.Lon); link != "" {
			fmt.Fprintf(&sb, "Directions: %s\n", link)
		}
		sb.WriteString("\n")
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	b.sendMessage(chatID, "⚠️ "+text)
}
