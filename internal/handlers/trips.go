package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tripmate/internal/database"
	emailService "tripmate/internal/email"
	"tripmate/internal/logger"
	"tripmate/internal/metrics"
	"tripmate/internal/models"

	"github.com/gin-gonic/gin"
)

func paramInt(c *gin.Context, name string) (int, error) {
	return strconv.Atoi(c.Param(name))
}

func handleCreateTrip(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	name := c.PostForm("trip_name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// A trip with this name already exists: send the user there instead
	// of creating a duplicate.
	if existing, err := database.GetTripByName(db, name); err == nil {
		c.Redirect(http.StatusFound, fmt.Sprintf("/trip/%d", existing.ID))
		return
	}

	trip, err := database.CreateTrip(db, user.ID, name)
	if err != nil {
		logger.Error("Failed to create trip", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trip"})
		return
	}

	metrics.TripsCreatedTotal.Inc()
	logger.Info("Trip created", "trip_id", trip.ID, "user_id", user.ID)
	c.Redirect(http.StatusFound, fmt.Sprintf("/trip/%d", trip.ID))
}

func handleJoinTrip(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	inviteCode := c.PostForm("invite_code")
	if inviteCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invite code is required"})
		return
	}

	trip, err := database.GetTripByInviteCode(db, inviteCode)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid invite code"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up invite code"})
		}
		return
	}

	member, err := database.IsTripMember(db, trip.ID, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
		return
	}
	if member {
		c.JSON(http.StatusOK, gin.H{"message": "You are already part of this trip"})
		return
	}

	if err := database.AddTripMember(db, trip.ID, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join trip"})
		return
	}

	logger.Info("User joined trip", "trip_id", trip.ID, "user_id", user.ID)
	c.Redirect(http.StatusFound, fmt.Sprintf("/trip/%d", trip.ID))
}

func handleAddItineraryItem(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	activity := c.PostForm("activity")
	location := c.PostForm("location")
	timeStr := c.PostForm("time")
	notes := c.PostForm("notes")

	if activity == "" || location == "" || timeStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	at, err := parseItineraryTime(timeStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time format"})
		return
	}

	trip, ok := tripFromParam(c)
	if !ok {
		return
	}

	if _, err := database.CreateItineraryItem(db, trip.ID, activity, location, at, notes); err != nil {
		logger.Error("Failed to add itinerary item", "trip_id", trip.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add itinerary item"})
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/trip/%d/itinerary", trip.ID))
}

// parseItineraryTime accepts RFC 3339 timestamps as well as the shorter
// form emitted by datetime-local inputs.
func parseItineraryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

func handleDeleteItineraryItem(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	trip, ok := tripFromParam(c)
	if !ok {
		return
	}

	itemID, err := paramInt(c, "item_id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Itinerary item not found"})
		return
	}

	if err := database.DeleteItineraryItem(db, trip.ID, itemID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Itinerary item not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete itinerary item"})
		}
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/trip/%d/itinerary", trip.ID))
}

// handleInviteByEmail mails a join link for the trip. Without a configured
// mail service the caller gets the invite code to pass along by hand.
func handleInviteByEmail(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	trip, ok := tripFromParam(c)
	if !ok {
		return
	}

	toEmail := c.PostForm("email")
	if !emailRegex.MatchString(toEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid email address"})
		return
	}

	invite, err := database.CreateTripInvite(db, trip.ID, toEmail)
	if err != nil {
		logger.Error("Failed to create trip invite", "trip_id", trip.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invite"})
		return
	}

	svc := c.MustGet("email_service").(*emailService.Service)
	if !svc.IsEnabled() {
		c.JSON(http.StatusOK, gin.H{
			"message":     "Email is not configured; share the invite code instead",
			"invite_code": trip.InviteCode,
		})
		return
	}

	if err := svc.SendTripInvite(toEmail, user.DisplayName(), trip, invite.Token); err != nil {
		logger.Warn("Failed to send trip invite", "trip_id", trip.ID, "email", toEmail, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send invite email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invite sent"})
}

// handleJoinByToken lands emailed invite links: validate the token, enroll
// the logged-in user, and burn the token.
func handleJoinByToken(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	tok := c.Query("token")
	if tok == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invite token is required"})
		return
	}

	invite, err := database.ValidateTripInvite(db, tok)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invite is invalid or has expired"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate invite"})
		}
		return
	}

	if err := database.AddTripMember(db, invite.TripID, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join trip"})
		return
	}

	if err := database.ConsumeTripInvite(db, tok); err != nil {
		logger.Warn("Failed to consume trip invite", "trip_id", invite.TripID, "error", err)
	}

	logger.Info("User joined trip via invite", "trip_id", invite.TripID, "user_id", user.ID)
	c.Redirect(http.StatusFound, fmt.Sprintf("/trip/%d", invite.TripID))
}
