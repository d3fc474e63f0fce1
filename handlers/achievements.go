// handlers/achievements.go
package handlers

import (
	"wellspace/middleware"
	"wellspace/services"

	"github.com/gofiber/fiber/v2"
)

var (
	catalogService *services.CatalogService
	queryService   *services.AchievementQueryService
)

// InitAchievementHandlers wires the catalog and query services.
func InitAchievementHandlers(catalog *services.CatalogService, query *services.AchievementQueryService) {
	catalogService = catalog
	queryService = query
}

func serviceError(c *fiber.Ctx, err error) error {
	return c.Status(services.StatusOf(err)).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

// GetAchievements lists the catalog. Hidden achievements only appear for
// admin callers.
// GET /api/achievements
func GetAchievements(c *fiber.Ctx) error {
	achievements, err := catalogService.ListAchievements(middleware.IsAdmin(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": achievements,
		"total":        len(achievements),
	})
}

// GetAchievement returns one definition.
// GET /api/achievements/:id
func GetAchievement(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid achievement id"})
	}

	achievement, err := catalogService.GetAchievement(uint(id), middleware.IsAdmin(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "achievement": achievement})
}

// GetCategories lists the fixed category set.
// GET /api/achievements/categories
func GetCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "categories": catalogService.ListCategories()})
}

// GetAchievementsByCategory lists one category, ordered by title.
// GET /api/achievements/category/:category
func GetAchievementsByCategory(c *fiber.Ctx) error {
	achievements, err := catalogService.ListByCategory(c.Params("category"), middleware.IsAdmin(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": achievements,
		"total":        len(achievements),
	})
}

// GetUserAchievements returns the full catalog joined with the caller's
// progress, including synthesized NotStarted entries.
// GET /api/users/me/achievements
func GetUserAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	achievements, err := queryService.GetUserAchievements(userID)
	if err != nil {
		return serviceError(c, err)
	}

	completed := 0
	for _, a := range achievements {
		if a.IsCompleted {
			completed++
		}
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": achievements,
		"total":        len(achievements),
		"completed":    completed,
	})
}

// GetCompletedAchievements returns the caller's completed records.
// GET /api/users/me/achievements/completed
func GetCompletedAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	records, err := queryService.GetCompletedAchievements(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "achievements": records, "total": len(records)})
}

// GetRecentAchievements returns the caller's most recent completions.
// GET /api/users/me/achievements/recent?limit=5
func GetRecentAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	records, err := queryService.GetRecentlyCompletedAchievements(userID, c.QueryInt("limit", services.DefaultRecentLimit))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "achievements": records, "total": len(records)})
}
