package database

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ndr-radio/internal/models"
)

// SeedAdmin ensures the configured admin account exists so the station
// is controllable on first boot. Password changes in config are NOT
// applied to an existing row.
func SeedAdmin(db *gorm.DB, username, password string) {
	if username == "" || password == "" {
		log.Println("⚠️ Admin credentials not configured, skipping seed")
		return
	}

	var count int64
	db.Model(&models.Users{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("⚠️ Failed to hash admin password: %v", err)
		return
	}

	user := models.Users{
		Username:     username,
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err := db.Create(&user).Error; err != nil {
		log.Printf("⚠️ Failed to seed admin user: %v", err)
		return
	}
	log.Printf("✅ Seeded admin user %q", username)
}
