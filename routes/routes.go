package routes

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Hasan-Al-Banna-Nahid/retreat/auth"
	"github.com/Hasan-Al-Banna-Nahid/retreat/controllers"
	"github.com/Hasan-Al-Banna-Nahid/retreat/middleware"
	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

type Deps struct {
	Venues      *controllers.VenueController
	Bookings    *controllers.BookingController
	Auth        *controllers.AuthController
	Admins      *controllers.AdminController
	Issuer      *auth.Issuer
	Logger      *slog.Logger
	CORSOrigins string
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(d.Logger), gin.Recovery())

	origins := parseCorsOrigins(d.CORSOrigins)
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/auth/login", d.Auth.Login)

	authed := api.Group("", middleware.JWTAuth(d.Issuer))
	approver := middleware.RequireRole(models.RoleApprover)
	{
		venues := authed.Group("/venues")
		{
			venues.GET("", d.Venues.GetVenues)
			venues.GET("/:id", d.Venues.GetVenue)
			venues.POST("", approver, d.Venues.CreateVenue)
			venues.PUT("/:id", approver, d.Venues.UpdateVenue)
			venues.DELETE("/:id", approver, d.Venues.DeleteVenue)
		}

		bookings := authed.Group("/bookings")
		{
			bookings.GET("", d.Bookings.GetBookings)
			bookings.POST("", d.Bookings.CreateBooking)

			// static segments before /:id
			bookings.GET("/stats", d.Bookings.GetStats)
			bookings.GET("/venue/:venueId", d.Bookings.GetVenueBookings)

			bookings.GET("/:id", d.Bookings.GetBooking)
			bookings.PUT("/:id/status", approver, d.Bookings.UpdateBookingStatus)
			bookings.DELETE("/:id", approver, d.Bookings.DeleteBooking)
		}

		admins := authed.Group("/admins", approver)
		{
			admins.GET("", d.Admins.GetAdmins)
			admins.POST("", d.Admins.CreateAdmin)
		}
	}

	return r
}
