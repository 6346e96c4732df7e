package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/api/handlers"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/api/middleware"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/paypalclient"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/services"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/storage"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/stripeclient"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(
	cfg *config.Config,
	db *mongo.Database,
	rdb *redis.Client,
	stripeClient stripeclient.IStripeClient,
	paypalClient paypalclient.IPayPalClient,
	settingsSvc services.ISettingsService,
	promoSvc services.IPromoService,
	enqueuer handlers.TaskEnqueuer,
) *gin.Engine {
	// Initialize services needed by API handlers
	listingService := services.NewListingService(db, cfg)
	adService := services.NewAdService(db, cfg)
	serverService := services.NewServerService(db, cfg)
	catalogService := services.NewCatalogService(db, cfg)
	checkoutService := services.NewCheckoutService(db, cfg, stripeClient, catalogService, listingService)
	captureService := services.NewCaptureService(db, cfg, paypalClient)
	connectService := services.NewConnectService(db, cfg, stripeClient)
	clickService := services.NewClickService(db, rdb, cfg)
	sweepService := services.NewSweepService(db, cfg)
	messageService := services.NewMessageService(db, cfg)

	s3StorageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
	}

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	feedHandler := handlers.NewFeedHandler(listingService, adService, serverService, promoSvc)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, captureService)
	connectHandler := handlers.NewConnectHandler(connectService)
	clickHandler := handlers.NewClickHandler(clickService)
	messageHandler := handlers.NewMessageHandler(messageService)
	adminHandler := handlers.NewAdminHandler(settingsSvc, sweepService, clickService, catalogService, s3StorageService, enqueuer)

	v1 := r.Group("/v1")
	{
		// Public feeds
		v1.GET("/listings", feedHandler.GetListings)
		v1.GET("/ads", feedHandler.GetAds)
		v1.GET("/servers", feedHandler.GetServers)
		v1.GET("/text-servers", feedHandler.GetTextServers)
		v1.GET("/banners", feedHandler.GetBanners)
		v1.GET("/banners/current", feedHandler.GetCurrentBanner)
		v1.GET("/promos", feedHandler.GetPromos)
		v1.GET("/promos/current", feedHandler.GetCurrentPromo)
		v1.GET("/packages", adminHandler.GetPackages)
		v1.GET("/config", adminHandler.GetPublicConfig)

		// Click tracking is public; navigation must never depend on auth
		v1.POST("/click", clickHandler.TrackClick)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Authenticated routes
		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.POST("/checkout/session", checkoutHandler.CreatePackageSession)
			authRequired.POST("/checkout/listing", checkoutHandler.CreateListingSession)
			authRequired.POST("/paypal/capture", checkoutHandler.CapturePayPalOrder)

			authRequired.POST("/connect/account", connectHandler.StartOnboarding)
			authRequired.POST("/connect/login-link", connectHandler.LoginLink)
			authRequired.GET("/connect/status", connectHandler.Status)

			authRequired.GET("/messages", messageHandler.ListConversations)
			authRequired.GET("/messages/:userID", messageHandler.GetConversation)
			authRequired.POST("/messages", messageHandler.SendMessage)
		}

		// Admin routes
		adminRequired := v1.Group("/admin")
		adminRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.AdminMiddleware())
		{
			adminRequired.POST("/config", adminHandler.SetConfig)
			adminRequired.POST("/sweep", adminHandler.TriggerSweep)
			adminRequired.POST("/flush-clicks", adminHandler.FlushClicks)
			adminRequired.POST("/banners/upload-url", adminHandler.BannerUploadURL)
			adminRequired.POST("/email", adminHandler.SendEmail)
		}
	}

	return r
}

// SetupServiceRouter configures and returns the service Gin engine used by
// deployment tooling: remote shutdown and mock email retrieval for e2e runs.
func SetupServiceRouter(cfg *config.Config, rdb *redis.Client, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			fmt.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
				fmt.Println("Shutdown signal sent successfully.")
			default:
				fmt.Println("Shutdown channel already signaled or blocked.")
			}
		case "getTestEmail":
			var args []string // Expect ["email_type", "email"]
			if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 2 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [emailType, email]"})
				return
			}
			emailType := args[0]
			emailAddr := args[1]
			redisKey := fmt.Sprintf("mockemail:%s:%s", emailAddr, emailType)

			// Poll Redis briefly for the key
			var emailJSONData string
			var getErr error
			found := false
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			for i := 0; i < 10; i++ {
				emailJSONData, getErr = rdb.Get(ctx, redisKey).Result()
				if getErr == nil {
					found = true
					rdb.Del(ctx, redisKey)
					break
				}
				if getErr != redis.Nil {
					log.Printf("Service API: Error getting key %s from Redis: %v", redisKey, getErr)
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
					return
				}
				time.Sleep(200 * time.Millisecond)
			}

			if !found {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", redisKey)})
				return
			}

			var emailData map[string]interface{}
			if err := json.Unmarshal([]byte(emailJSONData), &emailData); err != nil {
				log.Printf("Service API: Error unmarshalling email data from key %s: %v", redisKey, err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})

		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})

	return r
}
