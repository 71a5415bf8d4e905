package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"email_logs", "user_sender_permissions", "email_templates", "sender_identities", "audit_logs", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUser(db, "admin@mailroom.dev", "Avery Admin", string(hash), "admin")
		seedUser(db, "sam@mailroom.dev", "Sam Sender", string(hash), "user")

		identities := []struct {
			Email       string
			DisplayName string
			Active      bool
		}{
			{"noreply@mailroom.dev", "Mailroom Notifications", true},
			{"support@mailroom.dev", "Mailroom Support", true},
			{"legacy@mailroom.dev", "Legacy Sender", false},
		}
		for _, ident := range identities {
			var exists int
			row := db.Raw("SELECT 1 FROM sender_identities WHERE email_address = ?", ident.Email).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO sender_identities (email_address, display_name, is_active, created_at) VALUES (?, ?, ?, now())",
				ident.Email, ident.DisplayName, ident.Active).Error; err != nil {
				log.Fatalf("failed to insert identity %s: %v", ident.Email, err)
			}
			fmt.Println("Seeded sender identity:", ident.Email)
		}

		// Grant the regular user the support identity
		if err := db.Exec(`
			INSERT INTO user_sender_permissions (user_id, sender_identity_id, created_at)
			SELECT u.id, si.id, now()
			FROM users u, sender_identities si
			WHERE u.email = 'sam@mailroom.dev' AND si.email_address = 'support@mailroom.dev'
			  AND NOT EXISTS (
				SELECT 1 FROM user_sender_permissions p
				WHERE p.user_id = u.id AND p.sender_identity_id = si.id
			  )`).Error; err != nil {
			log.Fatalf("failed to seed grant: %v", err)
		}

		var exists int
		row := db.Raw("SELECT 1 FROM email_templates WHERE name = ?", "Welcome").Row()
		if err := row.Scan(&exists); err != nil {
			if err := db.Exec(`
				INSERT INTO email_templates (name, description, html_content, created_by, created_at, updated_at)
				SELECT ?, ?, ?, u.id, now(), now() FROM users u WHERE u.email = 'admin@mailroom.dev'`,
				"Welcome", "Greets a newly invited user", "<p>Hi there,</p><p>Your account is ready.</p>").Error; err != nil {
				log.Fatalf("failed to insert template: %v", err)
			}
			fmt.Println("Seeded template: Welcome")
		}

		fmt.Println("Seeding complete. Default password for seeded users:", password)
	},
}

func seedUser(db *gorm.DB, email, name, passwordHash, role string) {
	var exists int
	row := db.Raw("SELECT 1 FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Println("user already exists:", email)
		return
	}

	if err := db.Exec("INSERT INTO users (email, name, password_hash, role, status, created_at, updated_at) VALUES (?, ?, ?, ?, 'active', now(), now())",
		email, name, passwordHash, role).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
}
