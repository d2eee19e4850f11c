package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/devrep/reputation-registry/internal/api/dto"
	apperrors "github.com/devrep/reputation-registry/pkg/util/errorutil"
)

// PlatformHandler exposes platform parameters and registry statistics.
type PlatformHandler struct {
	registry RegistryService
}

// NewPlatformHandler constructs handler.
func NewPlatformHandler(svc RegistryService) *PlatformHandler {
	return &PlatformHandler{registry: svc}
}

// Parameters handles GET /v1/platform.
func (h *PlatformHandler) Parameters(c *fiber.Ctx) error {
	params, err := h.registry.GetPlatformParameters(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": params})
}

// Fee handles GET /v1/platform/fee.
func (h *PlatformHandler) Fee(c *fiber.Ctx) error {
	fee, err := h.registry.GetPlatformFee(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"fee": fee}})
}

// SetFee handles PUT /v1/platform/fee.
func (h *PlatformHandler) SetFee(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.SetPlatformFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return rejectMalformed(c, h.registry, caller, fiber.NewError(http.StatusBadRequest, "invalid payload"))
	}
	if req.Fee == nil {
		return rejectMalformed(c, h.registry, caller, apperrors.NewValidationError("fee required", nil))
	}

	receipt, err := h.registry.SetPlatformFee(c.UserContext(), caller, *req.Fee)
	if err != nil {
		return err
	}
	return receiptResponse(c, http.StatusOK, receipt)
}

// Owner handles GET /v1/platform/owner.
func (h *PlatformHandler) Owner(c *fiber.Ctx) error {
	owner, err := h.registry.GetContractOwner(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"owner": owner}})
}

// TotalUsers handles GET /v1/stats/users.
func (h *PlatformHandler) TotalUsers(c *fiber.Ctx) error {
	total, err := h.registry.GetTotalUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"total_users": total}})
}

// Height handles GET /v1/chain/height.
func (h *PlatformHandler) Height(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{"height": h.registry.Height()}})
}
