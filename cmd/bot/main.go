package main

import (
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Harikishanth/healbee/internal/bot"
	"github.com/Harikishanth/healbee/internal/generator"
	"github.com/Harikishanth/healbee/internal/nlu"
	"github.com/Harikishanth/healbee/internal/places"
	"github.com/Harikishanth/healbee/internal/storage"
	"github.com/Harikishanth/healbee/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// One model-provider client for the whole process, shared by the
	// generator and the optional LLM classifier.
	clientConfig := openai.DefaultConfig(cfg.LLM.APIKey)
	if cfg.LLM.BaseURL != "" {
		clientConfig.BaseURL = cfg.LLM.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	// Initialize the NLU classifier
	var classifier nlu.Classifier
	if cfg.NLU.UseLLM {
		classifier = nlu.NewLLMClassifier(client, cfg.NLU.Model, logger)
	} else {
		classifier = nlu.NewRuleClassifier()
	}

	// Initialize the response generator and places helper
	gen := generator.New(client, cfg.LLM.Model, cfg.LLM.SystemPrompt, logger)
	placesClient := places.NewClient(logger)

	// Initialize bot
	b, err := bot.New(cfg.Telegram.Token, store, classifier, gen, placesClient, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Start the bot
	if err := b.Start(); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}
