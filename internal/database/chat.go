package database

import (
	"database/sql"
	"fmt"
	"time"

	"tripmate/internal/models"
)

// EnsureChatroom returns the trip's chatroom ID, creating the chatroom and
// linking it to the trip when the trip predates chatroom creation.
func EnsureChatroom(db *sql.DB, tripID int) (int, error) {
	var chatroomID sql.NullInt64
	err := db.QueryRow(`SELECT chatroom_id FROM trips WHERE id = ?`, tripID).Scan(&chatroomID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("trip: %w", ErrNotFound)
		}
		return 0, fmt.Errorf("failed to query trip chatroom: %w", err)
	}

	if chatroomID.Valid {
		return int(chatroomID.Int64), nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO chatrooms DEFAULT VALUES`)
	if err != nil {
		return 0, fmt.Errorf("failed to create chatroom: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get chatroom ID: %w", err)
	}

	if _, err := tx.Exec(`UPDATE trips SET chatroom_id = ? WHERE id = ?`, id, tripID); err != nil {
		return 0, fmt.Errorf("failed to attach chatroom: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit chatroom: %w", err)
	}

	return int(id), nil
}

// CreateChatLog appends a message with a server-assigned UTC timestamp.
func CreateChatLog(db *sql.DB, chatroomID, userID int, username, message string) (*models.ChatLog, error) {
	now := time.Now().UTC()

	result, err := db.Exec(`INSERT INTO chat_logs (chatroom_id, user_id, username, message, timestamp) VALUES (?, ?, ?, ?, ?)`,
		chatroomID, userID, username, message, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get chat log ID: %w", err)
	}

	log := &models.ChatLog{
		ID:         int(id),
		ChatroomID: chatroomID,
		UserID:     userID,
		Username:   username,
		Message:    message,
		Timestamp:  now,
	}

	return log, nil
}

// GetChatLogs returns a chatroom's messages in insertion order. The id
// tiebreak keeps messages written within the same timestamp stable.
func GetChatLogs(db *sql.DB, chatroomID int) ([]models.ChatLog, error) {
	query := `
		SELECT id, chatroom_id, user_id, username, message, timestamp
		FROM chat_logs
		WHERE chatroom_id = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := db.Query(query, chatroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat logs: %w", err)
	}
	defer rows.Close()

	var logs []models.ChatLog
	for rows.Next() {
		var log models.ChatLog
		if err := rows.Scan(&log.ID, &log.ChatroomID, &log.UserID, &log.Username, &log.Message, &log.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat log: %w", err)
		}
		logs = append(logs, log)
	}

	return logs, rows.Err()
}
