// database/migrate.go - Database Migration Runner
package database

import (
	"log"
	"wellspace/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Achievement{},
		&models.UserAchievementProgress{},
		&models.Reflection{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes AutoMigrate does not cover.
func createIndexes() {
	db := GetDB()

	// Ledger: unique pair plus recency ordering for "recently completed"
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_user_achievement ON user_achievement_progress(user_id, achievement_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_progress_user_completed ON user_achievement_progress(user_id, completed_at DESC)")

	// Catalog: target drives candidate selection in the engine
	db.Exec("CREATE INDEX IF NOT EXISTS idx_achievements_target ON achievements(criteria_target)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_achievements_category ON achievements(category)")

	// Reflections: streak derivation reads dates per user
	db.Exec("CREATE INDEX IF NOT EXISTS idx_reflections_user_date ON reflections(user_id, date)")

	log.Println("✅ Indexes created successfully")
}
