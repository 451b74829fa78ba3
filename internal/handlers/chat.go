package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"tripmate/internal/database"
	"tripmate/internal/logger"
	"tripmate/internal/metrics"
	"tripmate/internal/models"

	"github.com/gin-gonic/gin"
)

func serializeChatLog(log models.ChatLog) gin.H {
	return gin.H{
		"id":        log.ID,
		"user_id":   log.UserID,
		"username":  log.Username,
		"message":   log.Message,
		"timestamp": log.Timestamp.UTC().Format(time.RFC3339),
	}
}

func handlePostMessage(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	message := c.PostForm("message")
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	trip, ok := tripFromParam(c)
	if !ok {
		return
	}

	chatroomID, err := database.EnsureChatroom(db, trip.ID)
	if err != nil {
		logger.Error("Failed to ensure chatroom", "trip_id", trip.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open chatroom"})
		return
	}

	if _, err := database.CreateChatLog(db, chatroomID, user.ID, user.Username, message); err != nil {
		logger.Error("Failed to store chat message", "trip_id", trip.ID, "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post message"})
		return
	}

	metrics.ChatMessagesTotal.Inc()
	c.JSON(http.StatusCreated, gin.H{"message": "Message added", "username": user.Username})
}

func handleListMessages(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	trip, ok := tripFromParam(c)
	if !ok {
		return
	}

	if trip.ChatroomID == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chatroom not found"})
		return
	}

	logs, err := database.GetChatLogs(db, trip.ChatroomID)
	if err != nil {
		logger.Error("Failed to load chat messages", "trip_id", trip.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}

	serialized := make([]gin.H, 0, len(logs))
	for _, log := range logs {
		serialized = append(serialized, serializeChatLog(log))
	}

	c.JSON(http.StatusOK, serialized)
}
