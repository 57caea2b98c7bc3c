package mapping

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MappingController struct {
	Service MappingService
}

func NewMappingController(service MappingService) *MappingController {
	return &MappingController{Service: service}
}

// CreateConfig godoc
// @Summary Create mapping config
// @Description Create a scoped mapping configuration for a template
// @Tags mappings
// @Accept json
// @Produce json
// @Param config body MappingConfig true "Mapping Config"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/mappings [post]
func (ctrl *MappingController) CreateConfig(c *fiber.Ctx) error {
	var cfg MappingConfig
	if err := c.BodyParser(&cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if userIDStr, ok := c.Locals("user_id").(string); ok {
		if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
			cfg.CreatedBy = oid
		}
	}

	if err := ctrl.Service.CreateConfig(c.UserContext(), &cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Mapping config created successfully",
		"data":    cfg,
	})
}

// ListConfigs godoc
// @Summary List mapping configs
// @Tags mappings
// @Produce json
// @Param template_id query string true "Template ID"
// @Success 200 {array} MappingConfig
// @Router /api/mappings [get]
func (ctrl *MappingController) ListConfigs(c *fiber.Ctx) error {
	templateID := c.Query("template_id")
	if templateID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "template_id query parameter is required",
		})
	}

	configs, err := ctrl.Service.ListConfigs(c.UserContext(), templateID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"data": configs})
}

// GetConfig godoc
// @Summary Get mapping config
// @Tags mappings
// @Produce json
// @Param id path string true "Config ID"
// @Success 200 {object} MappingConfig
// @Failure 404 {object} map[string]interface{}
// @Router /api/mappings/{id} [get]
func (ctrl *MappingController) GetConfig(c *fiber.Ctx) error {
	cfg, err := ctrl.Service.GetConfig(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Mapping config not found",
		})
	}

	return c.JSON(fiber.Map{"data": cfg})
}

// UpdateConfig godoc
// @Summary Update mapping config
// @Tags mappings
// @Accept json
// @Produce json
// @Param id path string true "Config ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/mappings/{id} [put]
func (ctrl *MappingController) UpdateConfig(c *fiber.Ctx) error {
	var updates map[string]interface{}
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.UpdateConfig(c.UserContext(), c.Params("id"), updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Mapping config updated successfully"})
}

// DisableConfig godoc
// @Summary Disable mapping config
// @Description Soft-disable a config so resolution skips it
// @Tags mappings
// @Produce json
// @Param id path string true "Config ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/mappings/{id} [delete]
func (ctrl *MappingController) DisableConfig(c *fiber.Ctx) error {
	if err := ctrl.Service.DisableConfig(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Mapping config disabled"})
}

// ValidateConfig godoc
// @Summary Validate mapping config
// @Description Run rule parameter validation without processing any documents
// @Tags mappings
// @Accept json
// @Produce json
// @Param config body MappingConfig true "Mapping Config"
// @Success 200 {object} map[string]interface{}
// @Router /api/mappings/validate [post]
func (ctrl *MappingController) ValidateConfig(c *fiber.Ctx) error {
	var cfg MappingConfig
	if err := c.BodyParser(&cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := cfg.ValidateScope(); err != nil {
		return c.JSON(fiber.Map{
			"valid":  false,
			"issues": []RuleIssue{{Message: err.Error()}},
		})
	}

	issues := ctrl.Service.ValidateConfig(&cfg)
	return c.JSON(fiber.Map{
		"valid":  len(issues) == 0,
		"issues": issues,
	})
}

// ResolveMapping godoc
// @Summary Resolve mapping
// @Description Merge all applicable configs for a template and call context
// @Tags mappings
// @Produce json
// @Param template_id path string true "Template ID"
// @Param company_id query string false "Company ID"
// @Param format_id query string false "Format ID"
// @Success 200 {object} ResolvedMapping
// @Router /api/mappings/resolve/{template_id} [get]
func (ctrl *MappingController) ResolveMapping(c *fiber.Ctx) error {
	mctx := MappingContext{
		CompanyID: c.Query("company_id"),
		FormatID:  c.Query("format_id"),
	}

	resolved, err := ctrl.Service.ResolveMapping(c.UserContext(), c.Params("template_id"), mctx)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"data": resolved})
}
