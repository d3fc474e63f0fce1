// cmd/seed-achievements - Achievement Catalog Importer
//
// Loads achievement definitions from a JSON file into the database.
// With -replace the existing catalog is dropped first; progress records
// are never touched.
package main

import (
	"flag"
	"log"
	"wellspace/database"
	"wellspace/services"

	"github.com/joho/godotenv"
)

func main() {
	file := flag.String("file", "./data/achievements.json", "path to achievement definitions")
	replace := flag.Bool("replace", false, "drop the existing catalog before importing")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	database.InitDB()
	defer database.CloseDB()

	if err := services.ImportCatalog(database.GetDB(), *file, *replace); err != nil {
		log.Fatalf("❌ Import failed: %v", err)
	}
}
