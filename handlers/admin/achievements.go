package admin

import (
	"wellspace/middleware"
	"wellspace/services"

	"github.com/gofiber/fiber/v2"
)

var catalogService *services.CatalogService

// InitAdminHandlers wires the catalog service for admin CRUD.
func InitAdminHandlers(catalog *services.CatalogService) {
	catalogService = catalog
}

func serviceError(c *fiber.Ctx, err error) error {
	return c.Status(services.StatusOf(err)).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

// GetAchievements returns all achievements, hidden included
func GetAchievements(c *fiber.Ctx) error {
	achievements, err := catalogService.ListAchievements(middleware.IsAdmin(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "achievements": achievements, "total": len(achievements)})
}

// CreateAchievement creates a new achievement
func CreateAchievement(c *fiber.Ctx) error {
	var input services.AchievementInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	achievement, err := catalogService.CreateAchievement(input, middleware.IsAdmin(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "achievement": achievement})
}

// UpdateAchievement updates an existing achievement
func UpdateAchievement(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid achievement id"})
	}

	var input services.AchievementInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	achievement, err := catalogService.UpdateAchievement(uint(id), input, middleware.IsAdmin(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "achievement": achievement})
}

// DeleteAchievement deletes an achievement
func DeleteAchievement(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid achievement id"})
	}

	if err := catalogService.DeleteAchievement(uint(id), middleware.IsAdmin(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Achievement deleted successfully"})
}
