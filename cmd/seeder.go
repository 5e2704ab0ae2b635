package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample accounts, modules and role permissions for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"logs", "user_permissions", "role_permissions", "user_message_restrictions",
				"mailboxes", "messages", "document_logs", "document_permissions",
				"document_versions", "documents", "hr_notes", "users", "modules",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash := func(password string) string {
			h, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)
			if err != nil {
				log.Fatalf("failed to hash password: %v", err)
			}
			return string(h)
		}

		users := []struct {
			Username   string
			Password   string
			Role       string
			Clearance  int
			Department string
		}{
			{"admin", "admin", "admin", 6, "systeme"},
			{"dr.chen", "password", "scientifique", 3, "recherche"},
			{"agent.moreau", "password", "securite", 4, "surveillance"},
			{"mme.dubois", "password", "administration", 2, "ressources humaines"},
			{"dir.laurent", "password", "direction", 5, "direction"},
			{"unite-7", "password", "ia", 1, "calcul"},
			{"obs.martin", "password", "staff", 6, "observation"},
		}

		for _, u := range users {
			var exists int
			if err := db.Raw("SELECT 1 FROM users WHERE username = ?", u.Username).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO users (username, password_hash, role, clearance, department, suspended, created_at, updated_at) VALUES (?, ?, ?, ?, ?, false, now(), now())",
				u.Username, hash(u.Password), u.Role, u.Clearance, u.Department,
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Username, err)
			}
			fmt.Println("Seeded user:", u.Username)
		}

		modules := []struct {
			Name string
			Desc string
		}{
			{"documents", "gestion documentaire"},
			{"messagerie", "messagerie interne"},
			{"rh", "dossiers du personnel"},
			{"annuaire", "annuaire du site"},
		}

		for _, m := range modules {
			var exists int
			if err := db.Raw("SELECT 1 FROM modules WHERE name = ?", m.Name).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO modules (name, description, enabled, config, updated_at) VALUES (?, ?, true, '{}', now())",
				m.Name, m.Desc,
			).Error; err != nil {
				log.Fatalf("failed to insert module %s: %v", m.Name, err)
			}
			fmt.Println("Seeded module:", m.Name)
		}

		rolePermissions := map[string][]string{
			"scientifique":   {"documents.read", "documents.write", "messages.send"},
			"securite":       {"documents.read", "documents.write", "messages.send"},
			"administration": {"documents.read", "documents.write", "messages.send", "rh.read"},
			"direction":      {"documents.read", "documents.write", "documents.moderate", "messages.send", "rh.read", "rh.write"},
			"ia":             {"documents.read", "messages.send"},
			"staff":          {"documents.read", "documents.write", "documents.moderate", "messages.send", "rh.read", "rh.write"},
		}

		for role, perms := range rolePermissions {
			for _, perm := range perms {
				var exists int
				if err := db.Raw("SELECT 1 FROM role_permissions WHERE role = ? AND permission = ?", role, perm).Row().Scan(&exists); err == nil {
					continue
				}
				if err := db.Exec(
					"INSERT INTO role_permissions (role, permission, created_at) VALUES (?, ?, now())",
					role, perm,
				).Error; err != nil {
					log.Fatalf("failed to grant %s to role %s: %v", perm, role, err)
				}
			}
		}

		fmt.Println("Seeding complete")
	},
}
