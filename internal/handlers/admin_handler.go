package handlers

import (
	"errors"

	"github.com/Codify-design/fingerprint-backend/internal/dto"
	"github.com/Codify-design/fingerprint-backend/internal/models"
	"github.com/Codify-design/fingerprint-backend/internal/services"
	"github.com/Codify-design/fingerprint-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the moderator review surface: the match dashboard,
// per-user reports, and the flag/ignore mutations.
type AdminHandler struct {
	reportService *services.ReportService
	flagService   *services.FlagService
	ignoreService *services.IgnoreService
	userService   *services.UserService
}

func NewAdminHandler(
	reportService *services.ReportService,
	flagService *services.FlagService,
	ignoreService *services.IgnoreService,
	userService *services.UserService,
) *AdminHandler {
	return &AdminHandler{
		reportService: reportService,
		flagService:   flagService,
		ignoreService: ignoreService,
		userService:   userService,
	}
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	appID := tenant.GetAppID(c)

	dashboard, err := h.reportService.BuildDashboard(appID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to build dashboard",
		})
	}

	// One batched lookup for every user referenced anywhere in the view.
	users, err := h.userService.ByIDs(appID, dashboard.InvolvedUserIDs)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load users",
		})
	}

	return c.JSON(fiber.Map{
		"matches": dashboard.Matches,
		"flagged": dashboard.Flagged,
		"users":   userResponses(users),
	})
}

func (h *AdminHandler) UserReport(c *fiber.Ctx) error {
	appID := tenant.GetAppID(c)
	username := c.Params("username")

	user, err := h.userService.ByUsername(appID, username)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load user",
		})
	}

	report, err := h.reportService.BuildUserReport(appID, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to build user report",
		})
	}

	users, err := h.userService.ByIDs(appID, report.InvolvedUserIDs)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load users",
		})
	}

	return c.JSON(fiber.Map{
		"user":         userResponse(user),
		"fingerprints": report.Fingerprints,
		"shared_users": report.SharedUsersByValue,
		"ignored_ids":  report.IgnoredUserIDs,
		"users":        userResponses(users),
	})
}

// SetFlag toggles a hide/silence flag on a fingerprint value.
func (h *AdminHandler) SetFlag(c *fiber.Ctx) error {
	appID := tenant.GetAppID(c)

	var req dto.FlagFingerprintRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if req.Value == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Fingerprint value is required",
		})
	}

	if err := h.flagService.SetFlag(appID, req.Value, req.Type, !req.Remove); err != nil {
		if errors.Is(err, services.ErrInvalidFlagKind) || errors.Is(err, services.ErrValueRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update flag",
		})
	}

	return c.JSON(fiber.Map{"message": "Flag updated successfully"})
}

// SetIgnore marks or unmarks a user pair as known-benign. The request must
// resolve to exactly two distinct users.
func (h *AdminHandler) SetIgnore(c *fiber.Ctx) error {
	appID := tenant.GetAppID(c)

	var req dto.IgnoreUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if req.Username == "" || req.OtherUsername == "" || req.Username == req.OtherUsername {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Exactly two distinct usernames are required",
		})
	}

	userA, err := h.userService.ByUsername(appID, req.Username)
	if err != nil {
		return h.ignoreResolveError(c, err)
	}
	userB, err := h.userService.ByUsername(appID, req.OtherUsername)
	if err != nil {
		return h.ignoreResolveError(c, err)
	}

	if err := h.ignoreService.SetIgnore(appID, userA.ID, userB.ID, !req.Remove); err != nil {
		if errors.Is(err, services.ErrSelfIgnore) || errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update ignore pair",
		})
	}

	return c.JSON(fiber.Map{"message": "Ignore pair updated successfully"})
}

// ignoreResolveError maps a failed username resolution to invalid-params:
// the pair did not resolve to exactly two users.
func (h *AdminHandler) ignoreResolveError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrUserNotFound) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Exactly two distinct usernames are required",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Failed to resolve users",
	})
}

func userResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

func userResponses(users []models.User) []dto.UserResponse {
	result := make([]dto.UserResponse, len(users))
	for i := range users {
		result[i] = userResponse(&users[i])
	}
	return result
}
