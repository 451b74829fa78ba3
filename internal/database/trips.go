package database

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"tripmate/internal/models"
)

const (
	inviteCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength  = 6
)

// CreateTrip creates the trip's chatroom, generates a unique invite code and
// enrolls the creator, all in one transaction.
func CreateTrip(db *sql.DB, creatorID int, name string) (*models.Trip, error) {
	inviteCode, err := generateUniqueInviteCode(db)
	if err != nil {
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO chatrooms DEFAULT VALUES`)
	if err != nil {
		return nil, fmt.Errorf("failed to create chatroom: %w", err)
	}

	chatroomID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get chatroom ID: %w", err)
	}

	result, err = tx.Exec(`INSERT INTO trips (name, invite_code, chatroom_id) VALUES (?, ?, ?)`,
		name, inviteCode, chatroomID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("trip %q: %w", name, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	tripID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get trip ID: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO trip_members (user_id, trip_id) VALUES (?, ?)`, creatorID, tripID); err != nil {
		return nil, fmt.Errorf("failed to enroll creator: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit trip: %w", err)
	}

	trip := &models.Trip{
		ID:         int(tripID),
		Name:       name,
		InviteCode: inviteCode,
		ChatroomID: int(chatroomID),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	return trip, nil
}

// generateUniqueInviteCode draws 6-character codes from [A-Z0-9] until one
// does not collide with an existing trip.
func generateUniqueInviteCode(db *sql.DB) (string, error) {
	const maxRetries = 10

	for attempt := 0; attempt < maxRetries; attempt++ {
		b := make([]byte, inviteCodeLength)
		for i := range b {
			num, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeCharset))))
			if err != nil {
				return "", fmt.Errorf("failed to generate random number: %w", err)
			}
			b[i] = inviteCodeCharset[num.Int64()]
		}

		code := string(b)

		var exists bool
		err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM trips WHERE invite_code = ?)", code).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("failed to check invite code existence: %w", err)
		}

		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique invite code after %d attempts", maxRetries)
}

func GetTrip(db *sql.DB, tripID int) (*models.Trip, error) {
	return getTrip(db, "id = ?", tripID)
}

func GetTripByName(db *sql.DB, name string) (*models.Trip, error) {
	return getTrip(db, "name = ?", name)
}

func GetTripByInviteCode(db *sql.DB, inviteCode string) (*models.Trip, error) {
	return getTrip(db, "invite_code = ?", inviteCode)
}

func getTrip(db *sql.DB, where string, arg interface{}) (*models.Trip, error) {
	trip := &models.Trip{}
	var chatroomID sql.NullInt64
	query := `
		SELECT id, name, invite_code, chatroom_id, created_at, updated_at
		FROM trips
		WHERE ` + where

	err := db.QueryRow(query, arg).Scan(
		&trip.ID,
		&trip.Name,
		&trip.InviteCode,
		&chatroomID,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("trip: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query trip: %w", err)
	}

	trip.ChatroomID = int(chatroomID.Int64)
	return trip, nil
}

func IsTripMember(db *sql.DB, tripID, userID int) (bool, error) {
	var exists bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM trip_members WHERE trip_id = ? AND user_id = ?)",
		tripID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check trip membership: %w", err)
	}
	return exists, nil
}

// AddTripMember enrolls a user. Enrolling twice is a no-op.
func AddTripMember(db *sql.DB, tripID, userID int) error {
	_, err := db.Exec(`INSERT OR IGNORE INTO trip_members (user_id, trip_id) VALUES (?, ?)`, userID, tripID)
	if err != nil {
		return fmt.Errorf("failed to add trip member: %w", err)
	}
	return nil
}

func GetTripsForUser(db *sql.DB, userID int) ([]models.Trip, error) {
	query := `
		SELECT t.id, t.name, t.invite_code, t.chatroom_id, t.created_at, t.updated_at
		FROM trips t
		INNER JOIN trip_members tm ON t.id = tm.trip_id
		WHERE tm.user_id = ?
		ORDER BY t.created_at DESC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var trip models.Trip
		var chatroomID sql.NullInt64
		if err := rows.Scan(&trip.ID, &trip.Name, &trip.InviteCode, &chatroomID, &trip.CreatedAt, &trip.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trip.ChatroomID = int(chatroomID.Int64)
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

func GetTripMembers(db *sql.DB, tripID int) ([]models.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.created_at, u.updated_at
		FROM users u
		INNER JOIN trip_members tm ON u.id = tm.user_id
		WHERE tm.trip_id = ?
		ORDER BY u.username
	`

	rows, err := db.Query(query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trip members: %w", err)
	}
	defer rows.Close()

	var members []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip member: %w", err)
		}
		members = append(members, user)
	}

	return members, rows.Err()
}
