package infra

import (
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/adapter/http"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/port"
)

// InitRoutes mounts the JSON-RPC endpoint on POST / next to the liveness and
// readiness probes.
func InitRoutes(server *fiber.App, rpcServer *rpc.Server, probe port.ReadinessProbe) {
	server.Post("/", adaptor.HTTPHandler(rpcServer))
	server.Get("/health", http.Health)
	server.Get("/ready", http.Readiness(probe))
}
