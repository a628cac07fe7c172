package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"tableease/internal/handler"
	"tableease/pkg/rbac"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	notificationHandler *handler.NotificationHandler,
	restaurantHandler *handler.RestaurantHandler,
	offerHandler *handler.OfferHandler,
	bookingHandler *handler.BookingHandler,
	adminHandler *handler.AdminHandler,
	jwtSecret string,
	db *pgxpool.Pool,
) *Router {
	r := gin.Default()
	r.Use(RequestIDMiddleware())
	r.Use(MetricsMiddleware())

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	// Public
	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)
	r.GET("/api/restaurants", restaurantHandler.List)
	r.GET("/api/restaurants/:id", restaurantHandler.Get)
	r.GET("/api/restaurants/:id/offers", offerHandler.ListByRestaurant)
	r.GET("/api/offers", offerHandler.List)

	// Protected
	auth := r.Group("/api")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/auth/me", authHandler.Me)
		auth.PUT("/auth/profile", authHandler.UpdateProfile)

		auth.GET("/notifications", notificationHandler.List)
		auth.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		auth.PUT("/notifications/read-all", notificationHandler.MarkAllRead)

		auth.POST("/bookings",
			RequireCapability(rbac.CapabilityCreateBooking), bookingHandler.Create)
		auth.GET("/bookings",
			RequireCapability(rbac.CapabilityViewOwnBookings), bookingHandler.ListMine)
		auth.PUT("/bookings/:id/cancel",
			RequireCapability(rbac.CapabilityViewOwnBookings), bookingHandler.Cancel)
		auth.GET("/restaurants/:id/bookings",
			RequireCapability(rbac.CapabilityViewAllBookings), bookingHandler.ListByRestaurant)

		auth.POST("/restaurants",
			RequireCapability(rbac.CapabilityManageRestaurants), restaurantHandler.Create)
		auth.PUT("/restaurants/:id",
			RequireCapability(rbac.CapabilityManageRestaurants), restaurantHandler.Update)
		auth.DELETE("/restaurants/:id",
			RequireCapability(rbac.CapabilityManageRestaurants), restaurantHandler.Delete)

		auth.POST("/offers",
			RequireCapability(rbac.CapabilityManageOffers), offerHandler.Create)
		auth.PUT("/offers/:id",
			RequireCapability(rbac.CapabilityManageOffers), offerHandler.Update)
		auth.DELETE("/offers/:id",
			RequireCapability(rbac.CapabilityManageOffers), offerHandler.Delete)

		auth.GET("/admin/stats",
			RequireCapability(rbac.CapabilityViewAdminStats), adminHandler.Stats)
		auth.GET("/admin/users",
			RequireCapability(rbac.CapabilityManageUsers), adminHandler.ListUsers)
		auth.POST("/admin/outbox/:id/replay",
			RequireCapability(rbac.CapabilityReplayEvents), adminHandler.ReplayEvent)
		auth.POST("/admin/outbox/replay-failed",
			RequireCapability(rbac.CapabilityReplayEvents), adminHandler.ReplayFailed)
	}

	return &Router{Engine: r}
}
