package main

import (
	"log"
	"os"

	"go-smartretail-api/internal/model"
	"go-smartretail-api/pkg/database"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Operator tool: reset a merchant password from the terminal.
// Usage: reset-password <email> <new-password>
func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	if len(os.Args) != 3 {
		log.Fatal("Usage: reset-password <email> <new-password>")
	}
	email := os.Args[1]
	newPassword := os.Args[2]

	// 2. Setup Database
	db := database.ConnectDB()

	// 3. Find the merchant account
	var user model.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		log.Fatalf("User %s not found in database: %v", email, err)
	}

	// 4. Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), model.PasswordHashCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	// 5. Update
	if err := db.Model(&user).Update("password_hash", string(hashedPassword)).Error; err != nil {
		log.Fatalf("Failed to update password in DB: %v", err)
	}

	log.Printf("Password for %s has been reset", email)
}
