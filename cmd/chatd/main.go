package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"supportchat/backend/internal/api/handler"
	"supportchat/backend/internal/chathub"
	"supportchat/backend/internal/config"
	"supportchat/backend/internal/models"
	"supportchat/backend/internal/storage"
	"supportchat/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	// TranslateError makes unique violations surface as gorm.ErrDuplicatedKey,
	// which the conversation-creation race handling relies on.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.Conversation{},
		&models.Message{},
		&models.AdminUser{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

// bootstrapAdmin seeds the configured admin account when none exists yet.
func bootstrapAdmin(s storage.Storage, cfg *config.Config) {
	if cfg.BootstrapAdminUser == "" || cfg.BootstrapAdminPassword == "" {
		return
	}
	_, err := s.GetAdminByUsername(cfg.BootstrapAdminUser)
	if err == nil {
		return
	}
	if !errors.Is(err, storage.ErrAdminNotFound) {
		log.Printf("ERROR: Failed to look up bootstrap admin: %v", err)
		return
	}
	if _, err := s.CreateAdmin(cfg.BootstrapAdminUser, cfg.BootstrapAdminPassword); err != nil {
		log.Printf("ERROR: Failed to create bootstrap admin: %v", err)
		return
	}
	log.Printf("INFO: Bootstrap admin %q created.", cfg.BootstrapAdminUser)
}

func main() {
	log.Println("Starting supportchat backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb, cfg.AdminSessionTTL)
	bootstrapAdmin(s, cfg)

	registry := chathub.NewRegistry()
	hub := chathub.NewHub(registry)
	service := chathub.NewService(s, hub)
	bridge := chathub.NewBridge(service, registry)

	if cfg.TelegramBotToken != "" && cfg.TelegramAdminChatID != 0 {
		notifier, err := telegram.NewNotifier(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
		if err != nil {
			log.Fatalf("Failed to start telegram notifier: %v", err)
		}
		notifier.Attach(hub)
		log.Println("Telegram offline notifications enabled.")
	}

	r := gin.Default()
	h := handler.NewHandler(service, registry, bridge, s, cfg)
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
