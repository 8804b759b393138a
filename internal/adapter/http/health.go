package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/port"
)

const readinessTimeout = 3 * time.Second

func Health(ctx fiber.Ctx) error {
	ctx.Status(fiber.StatusOK)
	_ = ctx.JSON("UP!")
	return nil
}

// Readiness answers 200 once the light client can serve its head block and
// 503 otherwise.
func Readiness(probe port.ReadinessProbe) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		c, cancel := context.WithTimeout(ctx.Context(), readinessTimeout)
		defer cancel()

		if err := probe.Ready(c); err != nil {
			ctx.Status(fiber.StatusServiceUnavailable)
			return ctx.JSON(fiber.Map{"status": "NOT_READY", "error": err.Error()})
		}
		ctx.Status(fiber.StatusOK)
		return ctx.JSON(fiber.Map{"status": "READY"})
	}
}
