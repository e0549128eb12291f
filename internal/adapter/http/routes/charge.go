package routes

import (
	"taprelay/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathCharge = "/charge"
	PathHealth = "/health"
	PathLog    = "/log"
)

func addChargeRoutes(rg *gin.RouterGroup, chargeHandler *handlers.ChargeHandler, healthHandler *handlers.HealthHandler, clientLogHandler *handlers.ClientLogHandler) {
	rg.POST(PathCharge, chargeHandler.CreateCharge)
	rg.GET(PathCharge+"/:id", chargeHandler.GetCharge)
	rg.GET(PathHealth, healthHandler.Check)
	rg.POST(PathLog, clientLogHandler.Ingest)
}
