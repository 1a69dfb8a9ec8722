package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"dossierapi/internal/service"
)

type versionRequest struct {
	Name string `json:"name"`
}

func parseVersionID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("versionID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// CreateVersion allocates a new named version; it does not become current.
func CreateVersion(svc service.VersionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req versionRequest
		if err := c.BodyParser(&req); err != nil || req.Name == "" {
			return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "version name is required")
		}
		v, err := svc.Create(c.UserContext(), c.Params("dossierID"), c.Params("typeCode"), req.Name)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(versionRef{ID: v.ID, Name: v.Name})
	}
}

// RenameVersion updates a version's name in place.
func RenameVersion(svc service.VersionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseVersionID(c)
		if !ok {
			return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "invalid version id")
		}
		var req versionRequest
		if err := c.BodyParser(&req); err != nil || req.Name == "" {
			return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "version name is required")
		}
		if err := svc.Rename(c.UserContext(), c.Params("dossierID"), c.Params("typeCode"), id, req.Name); err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "renamed"})
	}
}

// SetCurrentVersion switches the document's current version.
func SetCurrentVersion(svc service.VersionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseVersionID(c)
		if !ok {
			return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "invalid version id")
		}
		if err := svc.SetCurrent(c.UserContext(), c.Params("dossierID"), c.Params("typeCode"), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "current"})
	}
}

// DeleteVersion removes a version; its files are removed with it and the
// current pointer is reassigned when needed.
func DeleteVersion(svc service.VersionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseVersionID(c)
		if !ok {
			return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "invalid version id")
		}
		if err := svc.Delete(c.UserContext(), c.Params("dossierID"), c.Params("typeCode"), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "deleted"})
	}
}
