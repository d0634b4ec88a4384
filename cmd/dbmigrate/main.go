package main

import (
	"flag"
	"fmt"
	"log"

	"forum-bans/internal/config"
	"forum-bans/internal/models"
	"forum-bans/internal/storage"

	"gorm.io/gorm"
)

func main() {
	// Define command line flags
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	action := flag.String("action", "migrate", "Action to perform (migrate, reset, status)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	if err := storage.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	db := storage.GetDB()
	if db == nil {
		log.Fatalf("Failed to get database connection")
	}

	// Perform requested action
	switch *action {
	case "migrate":
		if err := migrateDatabase(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migration completed successfully")
	case "reset":
		if err := resetDatabase(db); err != nil {
			log.Fatalf("Reset failed: %v", err)
		}
		log.Println("Database reset completed successfully")
	case "status":
		if err := checkStatus(db); err != nil {
			log.Fatalf("Status check failed: %v", err)
		}
	default:
		log.Fatalf("Unknown action: %s", *action)
	}
}

func allModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Ban{},
		&models.BanException{},
		&models.AuditLog{},
	}
}

// migrateDatabase creates or updates all tables
func migrateDatabase(db *gorm.DB) error {
	return db.AutoMigrate(allModels()...)
}

// resetDatabase drops and recreates all tables
func resetDatabase(db *gorm.DB) error {
	if err := db.Migrator().DropTable(allModels()...); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return migrateDatabase(db)
}

// checkStatus reports which tables exist and their row counts
func checkStatus(db *gorm.DB) error {
	for _, model := range allModels() {
		if !db.Migrator().HasTable(model) {
			fmt.Printf("%T: table missing\n", model)
			continue
		}
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			return err
		}
		fmt.Printf("%T: %d rows\n", model, count)
	}
	return nil
}
