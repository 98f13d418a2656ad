package main

import (
	"fmt"
	"log"
	"os"

	"supportchat/backend/internal/config"
	"supportchat/backend/internal/models"
	"supportchat/backend/internal/storage"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Admin credential management: create accounts, rotate passwords, list users.
// Passwords are taken from the ADMIN_PASSWORD environment variable so they
// never land in shell history.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.AdminUser{}); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	s := storage.NewStorageService(db, nil, 0) // No redis needed for the admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <create|passwd|list> [args]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "create":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin create <username>  (password from ADMIN_PASSWORD)")
			os.Exit(1)
		}
		username := os.Args[2]
		password := requirePassword()
		if _, err := s.CreateAdmin(username, password); err != nil {
			log.Fatalf("Error creating admin: %v", err)
		}
		fmt.Printf("Admin %s has been created.\n", username)
	case "passwd":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin passwd <username>  (password from ADMIN_PASSWORD)")
			os.Exit(1)
		}
		username := os.Args[2]
		password := requirePassword()
		if err := s.UpdateAdminPassword(username, password); err != nil {
			log.Fatalf("Error updating password: %v", err)
		}
		fmt.Printf("Password for %s has been updated.\n", username)
	case "list":
		admins, err := s.ListAdmins()
		if err != nil {
			log.Fatalf("Error listing admins: %v", err)
		}
		for _, admin := range admins {
			fmt.Printf("%d\t%s\t%s\n", admin.ID, admin.Username, admin.CreatedAt.Format("2006-01-02"))
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func requirePassword() string {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		fmt.Println("ADMIN_PASSWORD is not set")
		os.Exit(1)
	}
	return password
}
