package handlers

import (
	"database/sql"
	"net/http"

	"tripmate/internal/config"
	"tripmate/internal/database"
	"tripmate/internal/logger"
	"tripmate/internal/models"

	"github.com/gin-gonic/gin"
)

func handleTripDetail(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	trip, ok := tripFromParam(c)
	if !ok {
		return
	}

	members, err := database.GetTripMembers(db, trip.ID)
	if err != nil {
		logger.Error("Failed to load trip members", "trip_id", trip.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trip"})
		return
	}
	trip.Members = members

	cfg := c.MustGet("config").(*config.Config)
	c.HTML(http.StatusOK, "trip.html", gin.H{
		"Title":            trip.Name + " - Tripmate",
		"User":             user,
		"Trip":             trip,
		"GoogleMapsAPIKey": cfg.GoogleMapsAPIKey,
	})
}

func handleItineraryPage(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	trip, ok := tripFromParam(c)
	if !ok {
		return
	}

	items, err := database.GetItineraryItems(db, trip.ID)
	if err != nil {
		logger.Error("Failed to load itinerary", "trip_id", trip.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load itinerary"})
		return
	}

	cfg := c.MustGet("config").(*config.Config)
	c.HTML(http.StatusOK, "itinerary.html", gin.H{
		"Title":            trip.Name + " itinerary - Tripmate",
		"User":             user,
		"Trip":             trip,
		"Items":            items,
		"GoogleMapsAPIKey": cfg.GoogleMapsAPIKey,
	})
}

func handleBudgetPage(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	trip, ok := tripFromParam(c)
	if !ok {
		return
	}

	budgets, usernames, err := database.GetTripBudgets(db, trip.ID)
	if err != nil {
		logger.Error("Failed to load trip budgets", "trip_id", trip.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load budgets"})
		return
	}

	type userBudget struct {
		Username string
		Budget   models.Budget
	}
	userBudgets := make([]userBudget, 0, len(budgets))
	for _, b := range budgets {
		userBudgets = append(userBudgets, userBudget{Username: usernames[b.UserID], Budget: b})
	}

	c.HTML(http.StatusOK, "budget.html", gin.H{
		"Title":       trip.Name + " budget - Tripmate",
		"User":        user,
		"Trip":        trip,
		"UserBudgets": userBudgets,
	})
}

func handleChatPage(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	trip, ok := tripFromParam(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "trip_chat.html", gin.H{
		"Title": trip.Name + " chat - Tripmate",
		"User":  user,
		"Trip":  trip,
	})
}

func handleProfilePage(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	c.HTML(http.StatusOK, "profile.html", gin.H{
		"Title":       "Profile - Tripmate",
		"User":        user,
		"DisplayName": user.DisplayName(),
	})
}

func handleUpdateProfile(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	name := c.PostForm("name")
	if name == "" {
		c.HTML(http.StatusBadRequest, "profile.html", gin.H{
			"Title":       "Profile - Tripmate",
			"User":        user,
			"DisplayName": user.DisplayName(),
			"Error":       "Display name is required",
		})
		return
	}

	if err := database.UpdateProfile(db, user.ID, name); err != nil {
		logger.Error("Failed to update profile", "user_id", user.ID, "error", err)
		c.HTML(http.StatusInternalServerError, "profile.html", gin.H{
			"Title":       "Profile - Tripmate",
			"User":        user,
			"DisplayName": user.DisplayName(),
			"Error":       "Failed to update profile",
		})
		return
	}

	c.Redirect(http.StatusFound, "/profile")
}
