package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"patient-studies-server/internal/accounts"
	"patient-studies-server/internal/config"
	"patient-studies-server/internal/handlers"
	"patient-studies-server/internal/middleware"
)

// NewRouter builds the engine with the global middleware chain and every route.
func NewRouter(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Metrics())

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	SetupRoutes(router, db, cfg, accounts.NewService(db, log))
	return router
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, svc *accounts.Service) {
	patientHandler := handlers.NewPatientHandler(db)
	studyHandler := handlers.NewStudyHandler(db)
	catalogHandler := handlers.NewCatalogHandler(db)
	accountHandler := handlers.NewAccountHandler(svc)
	authHandler := handlers.NewAuthHandler(svc)

	// Public routes (no authentication required)
	public := router.Group(cfg.APIPrefix)
	{
		public.POST("/token-auth/", authHandler.Login)
	}

	// Authenticated routes
	api := router.Group(cfg.APIPrefix)
	api.Use(middleware.AuthMiddleware(svc))
	{
		patientRoutes := api.Group("/patients")
		{
			patientRoutes.GET("/", patientHandler.ListPatients)
			patientRoutes.POST("/", patientHandler.CreatePatient)
			patientRoutes.OPTIONS("/", patientHandler.DescribePatients)
			patientRoutes.GET("/:id/", patientHandler.GetPatient)
			patientRoutes.PUT("/:id/", patientHandler.ReplacePatient)
			patientRoutes.PATCH("/:id/", patientHandler.PatchPatient)
			patientRoutes.DELETE("/:id/", patientHandler.DeletePatient)
			patientRoutes.OPTIONS("/:id/", patientHandler.DescribePatient)

			// Studies are only reachable through their patient
			studyRoutes := patientRoutes.Group("/:id/studies")
			{
				studyRoutes.GET("", studyHandler.ListStudies)
				studyRoutes.POST("", studyHandler.CreateStudy)
				studyRoutes.OPTIONS("", studyHandler.DescribeStudies)
				studyRoutes.GET("/:studyId/", studyHandler.GetStudy)
				studyRoutes.PUT("/:studyId/", studyHandler.ReplaceStudy)
				studyRoutes.PATCH("/:studyId/", studyHandler.PatchStudy)
				studyRoutes.DELETE("/:studyId/", studyHandler.DeleteStudy)
				studyRoutes.OPTIONS("/:studyId/", studyHandler.DescribeStudy)
			}
		}

		bodyPartRoutes := api.Group("/body-parts")
		{
			bodyPartRoutes.GET("/", catalogHandler.ListBodyParts)
			bodyPartRoutes.POST("/", catalogHandler.CreateBodyPart)
			bodyPartRoutes.DELETE("/:id/", catalogHandler.DeleteBodyPart)
		}

		typeRoutes := api.Group("/types")
		{
			typeRoutes.GET("/", catalogHandler.ListTypes)
			typeRoutes.POST("/", catalogHandler.CreateType)
			typeRoutes.DELETE("/:id/", catalogHandler.DeleteType)
		}

		api.POST("/accounts/", middleware.StaffOnly(), accountHandler.CreateAccount)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
