package handlers

import (
	"errors"

	"github.com/Codify-design/fingerprint-backend/internal/dto"
	"github.com/Codify-design/fingerprint-backend/internal/services"
	"github.com/Codify-design/fingerprint-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type FingerprintHandler struct {
	fingerprintService *services.FingerprintService
}

func NewFingerprintHandler(fingerprintService *services.FingerprintService) *FingerprintHandler {
	return &FingerprintHandler{fingerprintService: fingerprintService}
}

// Record stores one observation for the authenticated user.
func (h *FingerprintHandler) Record(c *fiber.Ctx) error {
	appID := tenant.GetAppID(c)
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.RecordFingerprintRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.fingerprintService.Record(appID, userID, req.Name, req.Value, datatypes.JSON(req.Data)); err != nil {
		if errors.Is(err, services.ErrNameRequired) || errors.Is(err, services.ErrValueRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to record fingerprint",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Fingerprint recorded"})
}
