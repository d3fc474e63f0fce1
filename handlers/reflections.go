// handlers/reflections.go
package handlers

import (
	"time"
	"wellspace/middleware"
	"wellspace/models"
	"wellspace/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	reflectionService *services.ReflectionService
	achievementEngine *services.AchievementEngine
	reflectionLog     *zap.Logger
)

// InitReflectionHandlers wires the reflection store and the achievement
// engine.
func InitReflectionHandlers(reflections *services.ReflectionService, engine *services.AchievementEngine, logger *zap.Logger) {
	reflectionService = reflections
	achievementEngine = engine
	reflectionLog = logger
}

type CreateReflectionRequest struct {
	Mood    string     `json:"mood"`
	Content string     `json:"content"`
	Date    *time.Time `json:"date,omitempty"`
}

// CreateReflection stores a reflection and runs achievement processing.
// The reflection write is the primary action: achievement failures are
// logged and swallowed, never surfaced to the caller.
// POST /api/reflections
func CreateReflection(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateReflectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	date := time.Time{}
	if req.Date != nil {
		date = *req.Date
	}

	reflection, err := reflectionService.Create(userID, req.Mood, req.Content, date)
	if err != nil {
		return serviceError(c, err)
	}

	newAchievements := processAchievements(userID, *reflection)

	return c.Status(201).JSON(fiber.Map{
		"success":          true,
		"reflection":       reflection,
		"new_achievements": newAchievements,
	})
}

// processAchievements is the swallowed-error boundary around the engine.
func processAchievements(userID uint, reflection models.Reflection) (newAchievements []models.Achievement) {
	newAchievements = []models.Achievement{}
	defer func() {
		if r := recover(); r != nil {
			reflectionLog.Error("achievement processing panicked",
				zap.Uint("user_id", userID),
				zap.Any("panic", r))
		}
	}()

	touched, err := achievementEngine.ProcessReflectionActivity(userID, reflection)
	if err != nil {
		reflectionLog.Error("achievement processing failed",
			zap.Uint("user_id", userID),
			zap.Error(err))
	}
	for _, rec := range touched {
		if rec.JustCompleted {
			newAchievements = append(newAchievements, rec.Achievement)
		}
	}
	return newAchievements
}

// GetReflections lists the caller's reflections, newest first.
// GET /api/reflections
func GetReflections(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	reflections, err := reflectionService.List(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "reflections": reflections, "total": len(reflections)})
}
