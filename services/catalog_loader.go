// services/catalog_loader.go - Catalog Seeding
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"wellspace/models"

	"gorm.io/gorm"
)

// SeedCatalogFromFile loads achievement definitions from a JSON file into an
// empty catalog. A non-empty catalog or a missing file is not an error; the
// seed only backfills a fresh install.
func SeedCatalogFromFile(db *gorm.DB, path string) error {
	var count int64
	if err := db.Model(&models.Achievement{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to inspect catalog: %w", err)
	}
	if count > 0 {
		log.Printf("Catalog already has %d achievements, skipping seed", count)
		return nil
	}
	return ImportCatalog(db, path, false)
}

// ImportCatalog loads definitions from a JSON file. With replace set, the
// existing catalog is dropped first; progress records are left alone.
func ImportCatalog(db *gorm.DB, path string, replace bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("No achievement seed file at %s, skipping", path)
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var defs []models.Achievement
	if err := json.Unmarshal(data, &defs); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(defs) == 0 {
		log.Printf("No achievement definitions in %s", path)
		return nil
	}

	if replace {
		if err := db.Where("1 = 1").Delete(&models.Achievement{}).Error; err != nil {
			return fmt.Errorf("failed to clear catalog: %w", err)
		}
	}

	if err := db.Create(&defs).Error; err != nil {
		return fmt.Errorf("failed to insert achievements: %w", err)
	}

	log.Printf("✅ Loaded %d achievements from %s", len(defs), path)
	return nil
}
