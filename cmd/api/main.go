package main

import (
	"os"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"backend/pkg/logger"
	"backend/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Field Materials Inventory API
// @version         1.0
// @description     Multi-tenant inventory reconciliation and optical cable lifecycle API for telecom field operations.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init("inventory-api", gin.Mode() != gin.ReleaseMode)

	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Warn().Msg("no configs/.env file found")
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logger.SetLevel(level)
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	logger.Info().Str("host", dbHost).Str("database", dbName).Msg("connected to PostgreSQL")

	// The tenant middleware resolves memberships against the database directly.
	middleware.InitAuthMiddleware(db)

	// Negative stock is allowed by default; field data arrives out of order.
	enforceStock := os.Getenv("ENFORCE_STOCK_LIMITS") == "true"

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	divisionRepo := repository.NewDivisionRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	incomingRepo := repository.NewIncomingRepository(db)
	outgoingRepo := repository.NewOutgoingRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	cableRepo := repository.NewCableRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo, tokenRepo, tenantRepo)
	tenantService := service.NewTenantService(tenantRepo, userRepo, auditRepo, txManager)
	orgService := service.NewOrgService(divisionRepo, teamRepo)
	inventoryService := service.NewInventoryService(inventoryRepo, incomingRepo, outgoingRepo, usageRepo, auditRepo, txManager)
	ledgerService := service.NewLedgerService(inventoryRepo, incomingRepo, outgoingRepo, usageRepo, auditRepo, txManager, wsHub, enforceStock)
	cableService := service.NewCableService(cableRepo, auditRepo, txManager, wsHub)
	statisticsService := service.NewStatisticsService(inventoryRepo, incomingRepo, outgoingRepo, usageRepo)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	orgHandler := handler.NewOrgHandler(orgService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	cableHandler := handler.NewCableHandler(cableService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Tenant-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Prometheus metrics
	router.GET("/metrics", metrics.Handler())

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret(), middleware.CanAccessTenant)
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	tenantHandler.RegisterRoutes(router.Group(""))
	orgHandler.RegisterRoutes(router.Group(""))
	inventoryHandler.RegisterRoutes(router.Group(""))
	ledgerHandler.RegisterRoutes(router.Group(""))
	cableHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("server listening")
	if err := router.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
