package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"tripmate/internal/config"
	"tripmate/internal/database"
	"tripmate/internal/email"
	"tripmate/internal/metrics"
	"tripmate/internal/middleware"
	"tripmate/internal/models"
	"tripmate/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(r *gin.Engine, db *sql.DB, cfg *config.Config, tokens *token.Manager, emailService *email.Service) {
	r.Use(middleware.LogRequests())
	r.Use(middleware.SecurityHeaders(cfg))
	r.Use(metrics.GinMiddleware())
	r.Use(addContext(db, cfg, tokens, emailService))
	r.Use(middleware.TrimSpaces())

	r.GET("/healthz", handleHealthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", middleware.AuthOptional(db, cfg, tokens), handleWelcome)

	auth := r.Group("/auth")
	{
		auth.GET("/signup", handleSignupPage)
		auth.POST("/signup", middleware.AuthRateLimit(cfg), handleSignup)
		auth.GET("/admit", handleAdmitPage)
		auth.POST("/admit", middleware.AuthRateLimit(cfg), handleAdmit)
		auth.GET("/logout", handleLogout)
	}

	protected := r.Group("/")
	protected.Use(middleware.AuthRequired(db, cfg, tokens))
	{
		protected.GET("/mainpage", handleMainPage)
		protected.GET("/profile", handleProfilePage)
		protected.POST("/profile", handleUpdateProfile)

		protected.POST("/itinerary/new", handleCreateTrip)
		protected.POST("/itinerary/join/", handleJoinTrip)
		protected.GET("/itinerary/join", handleJoinByToken)
		protected.POST("/itinerary/:trip_id/items", handleAddItineraryItem)
		protected.POST("/itinerary/:trip_id/items/:item_id/delete", handleDeleteItineraryItem)
		protected.POST("/itinerary/:trip_id/invite", handleInviteByEmail)

		protected.GET("/trip/:trip_id", handleTripDetail)
		protected.GET("/trip/:trip_id/itinerary", handleItineraryPage)
		protected.GET("/trip/:trip_id/budget", handleBudgetPage)
		protected.GET("/trip/:trip_id/chat", handleChatPage)

		protected.GET("/budget/:trip_id/expenses", handleGetExpenses)
		protected.POST("/budget/:trip_id/expenses", handleUpsertExpense)
		protected.POST("/budget/:trip_id/updated", handleReplaceExpenses)

		protected.GET("/chat/:trip_id/messages", handleListMessages)
		protected.POST("/chat/:trip_id/messages", handlePostMessage)
	}
}

func addContext(db *sql.DB, cfg *config.Config, tokens *token.Manager, emailService *email.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db)
		c.Set("config", cfg)
		c.Set("tokens", tokens)
		c.Set("email_service", emailService)
		c.Next()
	}
}

func handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleWelcome sends logged-in visitors straight to their home page, the
// same shortcut the landing page has always had.
func handleWelcome(c *gin.Context) {
	if _, exists := c.Get("user"); exists {
		c.Redirect(http.StatusFound, "/mainpage")
		return
	}

	cfg := c.MustGet("config").(*config.Config)
	c.HTML(http.StatusOK, "welcome.html", gin.H{
		"Title":            "Tripmate - Plan trips together",
		"GoogleMapsAPIKey": cfg.GoogleMapsAPIKey,
	})
}

func handleMainPage(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	trips, err := database.GetTripsForUser(db, user.ID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "mainpage.html", gin.H{
			"Title": "Home - Tripmate",
			"User":  user,
			"Error": "Failed to load your trips",
		})
		return
	}

	cfg := c.MustGet("config").(*config.Config)
	c.HTML(http.StatusOK, "mainpage.html", gin.H{
		"Title":            "Home - Tripmate",
		"User":             user,
		"DisplayName":      user.DisplayName(),
		"Trips":            trips,
		"GoogleMapsAPIKey": cfg.GoogleMapsAPIKey,
	})
}

// tripFromParam parses the :trip_id parameter and loads the trip, writing
// the JSON error response itself when either step fails.
func tripFromParam(c *gin.Context) (*models.Trip, bool) {
	db := c.MustGet("db").(*sql.DB)

	tripID, err := paramInt(c, "trip_id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return nil, false
	}

	trip, err := database.GetTrip(db, tripID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trip"})
		}
		return nil, false
	}

	return trip, true
}
