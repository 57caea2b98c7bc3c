package system

import (
	"context"
	"time"

	"go-docmap/internal/common/api"
	"go-docmap/internal/database"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
)

var startedAt = time.Now()

type HealthApi struct {
	db *database.MongodbDB
}

func NewHealthApi(db *database.MongodbDB) api.Route {
	return &HealthApi{db: db}
}

func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.health)
}

// health godoc
// @Summary Health check
// @Description Reports service and database health
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthApi) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	status := fiber.StatusOK
	err := h.db.DB.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
	if err != nil {
		dbStatus = "unreachable"
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status":   dbStatus,
		"uptime":   time.Since(startedAt).String(),
		"database": dbStatus,
	})
}
