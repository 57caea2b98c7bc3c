package matching

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type MatchController struct {
	Service MatchService
	Hub     *ProgressHub
}

func NewMatchController(service MatchService, hub *ProgressHub) *MatchController {
	return &MatchController{Service: service, Hub: hub}
}

// Execute godoc
// @Summary Execute matching run
// @Description Map the given documents into the rows of a template instance
// @Tags matching
// @Accept json
// @Produce json
// @Param request body MatchRequest true "Match Request"
// @Success 200 {object} MatchResult
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/matching/execute [post]
func (ctrl *MatchController) Execute(c *fiber.Ctx) error {
	var req MatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.TemplateInstanceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "template_instance_id is required",
		})
	}

	result, err := ctrl.Service.Execute(c.UserContext(), req, nil)
	if err != nil {
		status := fiber.StatusBadRequest
		if result != nil {
			// run started and then aborted; partial results ride along
			status = fiber.StatusConflict
		}
		payload := fiber.Map{"error": err.Error()}
		if result != nil {
			payload["data"] = result
		}
		return c.Status(status).JSON(payload)
	}

	return c.JSON(fiber.Map{"data": result})
}

// Preview godoc
// @Summary Preview matching
// @Description Run the matching pipeline in memory without persisting rows
// @Tags matching
// @Accept json
// @Produce json
// @Param request body PreviewRequest true "Preview Request"
// @Success 200 {object} PreviewMatchResult
// @Router /api/matching/preview [post]
func (ctrl *MatchController) Preview(c *fiber.Ctx) error {
	var req PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.DataTemplateID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "data_template_id is required",
		})
	}

	result, err := ctrl.Service.Preview(c.UserContext(), req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"data": result})
}

// StreamProgress streams batch progress events for one instance over a
// websocket until the client disconnects.
func (ctrl *MatchController) StreamProgress(conn *websocket.Conn) {
	instanceID := conn.Params("instance_id")
	ch := ctrl.Hub.Subscribe(instanceID)
	defer ctrl.Hub.Unsubscribe(instanceID, ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
