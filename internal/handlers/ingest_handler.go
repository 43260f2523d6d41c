package handlers

import (
	"crypto/subtle"
	"log/slog"

	"github.com/Codify-design/fingerprint-backend/internal/dto"
	"github.com/Codify-design/fingerprint-backend/internal/services"
	"github.com/Codify-design/fingerprint-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type IngestHandler struct {
	fingerprintService *services.FingerprintService
	settingsService    *services.SettingsService
	registry           *tenant.Registry
}

func NewIngestHandler(fingerprintService *services.FingerprintService, settingsService *services.SettingsService, registry *tenant.Registry) *IngestHandler {
	return &IngestHandler{
		fingerprintService: fingerprintService,
		settingsService:    settingsService,
		registry:           registry,
	}
}

// HandleBatch accepts server-submitted observation batches, routed by :app_id
// path param with per-app token auth.
func (h *IngestHandler) HandleBatch(c *fiber.Ctx) error {
	appID := c.Params("app_id")
	if appID == "" || !h.registry.Exists(appID) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Unknown app",
		})
	}

	expectedToken := h.registry.GetIngestToken(appID)
	if expectedToken == "" {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Ingest not configured for this app",
		})
	}

	authHeader := c.Get("Authorization")
	if subtle.ConstantTimeCompare([]byte(authHeader), []byte(expectedToken)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if !h.settingsService.GetBool(appID, services.SettingIngestEnabled, true) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Ingest is disabled for this app",
		})
	}

	var req dto.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid ingest payload",
		})
	}

	accepted, err := h.fingerprintService.IngestBatch(appID, req.Events)
	if err != nil {
		slog.Error("ingest batch failed", "app_id", appID, "accepted", accepted, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process ingest batch",
		})
	}

	slog.Info("ingest batch processed", "app_id", appID, "received", len(req.Events), "accepted", accepted)
	return c.JSON(fiber.Map{"received": len(req.Events), "accepted": accepted})
}
