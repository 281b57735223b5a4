// Package cachectl exposes management endpoints for the enrichment result
// cache.
package cachectl

import (
	"github.com/gofiber/fiber/v2"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/cache"
)

// Stats reports entry count, session duration and the cached keys.
func Stats(c *cache.ResultCache) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(c.Stats())
	}
}

// Clear drops every cached entry and resets the session.
func Clear(c *cache.ResultCache) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		c.Clear()
		return ctx.JSON(fiber.Map{"status": "cleared"})
	}
}
