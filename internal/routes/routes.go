package routes

import (
	"context"

	"deckshare-backend/internal/config"
	"deckshare-backend/internal/handlers"
	"deckshare-backend/internal/metrics"
	"deckshare-backend/internal/middleware"
	"deckshare-backend/internal/services"
	"deckshare-backend/internal/storage"
	"deckshare-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup builds the engine. Background middleware work stops when ctx is done.
func Setup(ctx context.Context, db *gorm.DB, store storage.Store, staging *storage.Staging, m *metrics.Metrics, cfg *config.Config) *gin.Engine {
	router := gin.New()

	router.Use(middleware.LoggerMiddleware())
	router.Use(gin.Recovery())
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.CORSMiddleware(cfg.CORS))
	router.Use(middleware.RateLimitMiddleware(ctx, cfg.RateLimit))

	authService := services.NewAuthService(db)
	directoryService := services.NewDirectoryService(db)
	fileService := services.NewFileService(db, store, cfg)
	uploadService := services.NewUploadService(staging, fileService)
	deckService := services.NewDeckService(db)
	shareService := services.NewShareService(db, cfg.Share.SlugLength)
	accessService := services.NewAccessService(db)
	trackingService := services.NewTrackingService(db, cfg.Tracking.FingerprintSalt)
	settingsService := services.NewSettingsService(db, store, cfg)

	authHandler := handlers.NewAuthHandler(authService, cfg)
	directoryHandler := handlers.NewDirectoryHandler(directoryService)
	fileHandler := handlers.NewFileHandler(fileService, uploadService, m, cfg)
	deckHandler := handlers.NewDeckHandler(deckService, shareService)
	shareHandler := handlers.NewShareHandler(shareService)
	publicShareHandler := handlers.NewPublicShareHandler(accessService, fileService, settingsService,
		utils.NewProofSigner(cfg.JWT.Secret), m, cfg)
	trackHandler := handlers.NewTrackHandler(trackingService, m)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	api := router.Group("/api")

	public := api.Group("")
	{
		public.POST("/auth/login", authHandler.Login)

		share := public.Group("/share/:slug")
		{
			share.GET("/access", publicShareHandler.GetAccess)
			share.POST("/access", publicShareHandler.VerifyPassword)
			share.GET("/directory/:directoryId", publicShareHandler.GetDirectory)
			share.GET("/file/:fileId", publicShareHandler.GetFile)
		}

		public.POST("/track", trackHandler.Track)
		public.GET("/settings/site", settingsHandler.GetSite)
		public.GET("/settings/logo", settingsHandler.GetLogo)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(authService, cfg))
	{
		user := protected.Group("/auth")
		{
			user.GET("/me", authHandler.GetMe)
			user.POST("/logout", authHandler.Logout)
		}

		directories := protected.Group("/directories")
		{
			directories.GET("", directoryHandler.GetDirectories)
			directories.POST("", directoryHandler.CreateDirectory)
			directories.PATCH("/:id", directoryHandler.RenameDirectory)
			directories.DELETE("/:id", directoryHandler.DeleteDirectory)
		}

		files := protected.Group("/files")
		{
			files.GET("", fileHandler.GetFiles)
			files.POST("", fileHandler.UploadFiles)
			files.GET("/:id", fileHandler.GetFile)
			files.PATCH("/:id", fileHandler.RenameFile)
			files.GET("/:id/view", fileHandler.ViewFile)
			files.DELETE("/:id", fileHandler.DeleteFile)
		}

		upload := protected.Group("/upload")
		{
			upload.POST("/init", fileHandler.InitUpload)
			upload.POST("/chunk", fileHandler.UploadChunk)
			upload.POST("/complete", fileHandler.CompleteUpload)
		}

		decks := protected.Group("/decks")
		{
			decks.GET("", deckHandler.GetDecks)
			decks.POST("", deckHandler.CreateDeck)
			decks.GET("/:id", deckHandler.GetDeck)
			decks.PATCH("/:id", deckHandler.UpdateDeck)
			decks.DELETE("/:id", deckHandler.DeleteDeck)

			decks.GET("/:id/items", deckHandler.GetItems)
			decks.POST("/:id/items", deckHandler.AddItem)
			decks.DELETE("/:id/items", deckHandler.RemoveItem)
			decks.GET("/:id/history", deckHandler.GetHistory)
			decks.POST("/:id/share", deckHandler.CreateShare)
		}

		shares := protected.Group("/shares")
		{
			shares.GET("", shareHandler.GetShares)
			shares.GET("/:id", shareHandler.GetShare)
			shares.DELETE("/:id", shareHandler.DeleteShare)
			shares.GET("/:id/visitors/:visitorId", shareHandler.GetVisitorTimeline)
		}

		settings := protected.Group("/settings")
		{
			settings.PATCH("/site", settingsHandler.UpdateSite)
			settings.GET("/cta", settingsHandler.GetCTA)
			settings.PATCH("/cta", settingsHandler.UpdateCTA)
			settings.POST("/logo", settingsHandler.UploadLogo)
			settings.DELETE("/logo", settingsHandler.DeleteLogo)
			settings.POST("/password", authHandler.ChangePassword)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "service is running",
		})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	return router
}
