package routes

import (
	"os"

	_ "taprelay/docs" // This will be auto-generated
	"taprelay/internal/adapter/http/handlers"
	"taprelay/internal/infrastructure/payments"
	"taprelay/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

const defaultPort = "3001"

// Run will start the server
func Run() {
	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	log.Infof("[relay] Tap payment relay listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes() {
	gateway := payments.NewTapGateway(payments.ConfigFromEnv())

	chargeUseCase := usecase.NewChargeUseCase(gateway, usecase.MerchantProfileFromEnv())

	chargeHandler := handlers.NewChargeHandler(chargeUseCase)
	healthHandler := handlers.NewHealthHandler()
	clientLogHandler := handlers.NewClientLogHandler()

	api := router.Group("/api")
	addChargeRoutes(api, chargeHandler, healthHandler, clientLogHandler)
}

func setMiddlewares() {
	// The checkout page lives on a different origin than the relay.
	router.Use(cors.Default())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Errorf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}
