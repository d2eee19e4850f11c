package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/devrep/reputation-registry/internal/api/dto"
	"github.com/devrep/reputation-registry/internal/auth"
	"github.com/devrep/reputation-registry/internal/domain"
	"github.com/devrep/reputation-registry/internal/registry"
	"github.com/devrep/reputation-registry/internal/service"
	apperrors "github.com/devrep/reputation-registry/pkg/util/errorutil"
)

// RegistryService is the host surface the HTTP layer drives.
type RegistryService interface {
	CreateProfile(ctx context.Context, caller domain.Identity, username string) (service.Receipt, error)
	UpdateReputation(ctx context.Context, caller, target domain.Identity, points uint64) (service.Receipt, error)
	VerifyUser(ctx context.Context, caller, target domain.Identity) (service.Receipt, error)
	AddAchievement(ctx context.Context, caller, target domain.Identity, in registry.AchievementInput) (service.Receipt, error)
	SetPlatformFee(ctx context.Context, caller domain.Identity, fee uint64) (service.Receipt, error)
	IsOwner(ctx context.Context, caller domain.Identity) (bool, error)
	UserExists(ctx context.Context, id domain.Identity) (bool, error)
	GetUserProfile(ctx context.Context, id domain.Identity) (*domain.UserProfile, error)
	GetUserReputation(ctx context.Context, id domain.Identity) (uint64, bool, error)
	GetUserAchievement(ctx context.Context, id domain.Identity, achievementID uint64) (*domain.Achievement, error)
	GetPlatformFee(ctx context.Context) (uint64, error)
	GetContractOwner(ctx context.Context) (domain.Identity, error)
	GetPlatformParameters(ctx context.Context) (domain.PlatformParameters, error)
	GetTotalUsers(ctx context.Context) (uint64, error)
	Height() uint64
}

// ProfilesHandler exposes profile and achievement endpoints.
type ProfilesHandler struct {
	registry RegistryService
}

// NewProfilesHandler constructs handler.
func NewProfilesHandler(svc RegistryService) *ProfilesHandler {
	return &ProfilesHandler{registry: svc}
}

func callerFrom(c *fiber.Ctx) (domain.Identity, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return "", apperrors.NewUnauthorized("authentication required")
	}
	return principal.Identity, nil
}

// identityParam copies :identity out of the request buffer fiber reuses once
// the handler returns; the value outlives the request in events and logs.
func identityParam(c *fiber.Ctx) domain.Identity {
	return domain.Identity(utils.CopyString(c.Params("identity")))
}

// rejectMalformed answers an owner-only request whose body is unusable.
// Non-owners get NotAuthorized ahead of the shape error.
func rejectMalformed(c *fiber.Ctx, svc RegistryService, caller domain.Identity, cause error) error {
	owner, err := svc.IsOwner(c.UserContext(), caller)
	if err != nil {
		return err
	}
	if !owner {
		return registry.ErrNotAuthorized
	}
	return cause
}

func receiptResponse(c *fiber.Ctx, status int, r service.Receipt) error {
	return c.Status(status).JSON(fiber.Map{"data": r})
}

// Create handles POST /v1/profiles.
func (h *ProfilesHandler) Create(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	receipt, err := h.registry.CreateProfile(c.UserContext(), caller, req.Username)
	if err != nil {
		return err
	}
	return receiptResponse(c, http.StatusCreated, receipt)
}

// Get handles GET /v1/profiles/:identity.
func (h *ProfilesHandler) Get(c *fiber.Ctx) error {
	id := identityParam(c)
	profile, err := h.registry.GetUserProfile(c.UserContext(), id)
	if err != nil {
		return err
	}
	if profile == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": dto.ProfileResponse{Identity: id, UserProfile: *profile}})
}

// Exists handles GET /v1/profiles/:identity/exists.
func (h *ProfilesHandler) Exists(c *fiber.Ctx) error {
	exists, err := h.registry.UserExists(c.UserContext(), identityParam(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"exists": exists}})
}

// Reputation handles GET /v1/profiles/:identity/reputation.
func (h *ProfilesHandler) Reputation(c *fiber.Ctx) error {
	rep, ok, err := h.registry.GetUserReputation(c.UserContext(), identityParam(c))
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reputation": rep}})
}

// UpdateReputation handles PUT /v1/profiles/:identity/reputation.
func (h *ProfilesHandler) UpdateReputation(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateReputationRequest
	if err := c.BodyParser(&req); err != nil {
		return rejectMalformed(c, h.registry, caller, fiber.NewError(http.StatusBadRequest, "invalid payload"))
	}
	if req.Points == nil {
		return rejectMalformed(c, h.registry, caller, apperrors.NewValidationError("points required", nil))
	}

	receipt, err := h.registry.UpdateReputation(c.UserContext(), caller, identityParam(c), *req.Points)
	if err != nil {
		return err
	}
	return receiptResponse(c, http.StatusOK, receipt)
}

// Verify handles POST /v1/profiles/:identity/verify.
func (h *ProfilesHandler) Verify(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	receipt, err := h.registry.VerifyUser(c.UserContext(), caller, identityParam(c))
	if err != nil {
		return err
	}
	return receiptResponse(c, http.StatusOK, receipt)
}

// AddAchievement handles POST /v1/profiles/:identity/achievements.
func (h *ProfilesHandler) AddAchievement(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.AddAchievementRequest
	if err := c.BodyParser(&req); err != nil {
		return rejectMalformed(c, h.registry, caller, fiber.NewError(http.StatusBadRequest, "invalid payload"))
	}
	if req.ID == nil {
		return rejectMalformed(c, h.registry, caller, apperrors.NewValidationError("id required", nil))
	}

	receipt, err := h.registry.AddAchievement(c.UserContext(), caller, identityParam(c), registry.AchievementInput{
		ID:          *req.ID,
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
	})
	if err != nil {
		return err
	}
	return receiptResponse(c, http.StatusCreated, receipt)
}

// Achievement handles GET /v1/profiles/:identity/achievements/:id.
func (h *ProfilesHandler) Achievement(c *fiber.Ctx) error {
	id := identityParam(c)
	achievementID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("achievement id must be an unsigned integer", map[string]any{"id": c.Params("id")})
	}

	a, err := h.registry.GetUserAchievement(c.UserContext(), id, achievementID)
	if err != nil {
		return err
	}
	if a == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": dto.AchievementResponse{Identity: id, AchievementID: achievementID, Achievement: *a}})
}
