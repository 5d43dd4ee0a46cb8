package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type Handlers struct {
	Auth            AuthHTTP
	Reservation     ReservationHTTP
	Me              MeHTTP
	HostListing     HostListingHTTP
	HostReservation HostReservationHTTP
	Admin           AdminHTTP
	AuthMiddleware  gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Reservation != nil {
		api.POST("/reservations", h.Reservation.Create)
		api.POST("/reservations/:id/cancel", h.Reservation.Cancel)
	}
	if h.Me != nil {
		api.GET("/me/reservations", h.Me.ListReservations)
	}
	if h.HostListing != nil {
		hostListings := api.Group("/host/listings")
		hostListings.GET("", h.HostListing.List)
		hostListings.POST("", h.HostListing.Create)
		hostListings.PUT("/:id", h.HostListing.Update)
		hostListings.POST("/:id/availability", h.HostListing.SetAvailability)
		hostListings.POST("/:id/deactivate", h.HostListing.Deactivate)
		hostListings.POST("/:id/reactivate", h.HostListing.Reactivate)
		hostListings.DELETE("/:id", h.HostListing.Delete)
	}
	if h.HostReservation != nil {
		hostReservations := api.Group("/host/reservations")
		hostReservations.GET("", h.HostReservation.List)
		hostReservations.POST("/:id/confirm", h.HostReservation.Confirm)
	}
	if h.Admin != nil {
		admin := api.Group("/admin/listings")
		admin.GET("/pending", h.Admin.PendingListings)
		admin.POST("/:id/approve", h.Admin.ApproveListing)
		admin.POST("/:id/reject", h.Admin.RejectListing)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
