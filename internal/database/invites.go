package database

import (
	"database/sql"
	"fmt"
	"time"

	"tripmate/internal/models"

	"github.com/google/uuid"
)

const inviteTTL = 7 * 24 * time.Hour

// CreateTripInvite issues a single-use emailed invite token for a trip.
func CreateTripInvite(db *sql.DB, tripID int, email string) (*models.TripInvite, error) {
	token := uuid.New().String()
	expiresAt := time.Now().Add(inviteTTL)

	_, err := db.Exec(`INSERT INTO trip_invites (token, trip_id, email, expires_at) VALUES (?, ?, ?, ?)`,
		token, tripID, email, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create trip invite: %w", err)
	}

	invite := &models.TripInvite{
		Token:     token,
		TripID:    tripID,
		Email:     email,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	return invite, nil
}

func ValidateTripInvite(db *sql.DB, token string) (*models.TripInvite, error) {
	invite := &models.TripInvite{}
	query := `
		SELECT token, trip_id, email, expires_at, created_at
		FROM trip_invites
		WHERE token = ? AND expires_at > CURRENT_TIMESTAMP
	`

	err := db.QueryRow(query, token).Scan(
		&invite.Token,
		&invite.TripID,
		&invite.Email,
		&invite.ExpiresAt,
		&invite.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("trip invite: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to validate trip invite: %w", err)
	}

	return invite, nil
}

// ConsumeTripInvite deletes a used invite token.
func ConsumeTripInvite(db *sql.DB, token string) error {
	_, err := db.Exec(`DELETE FROM trip_invites WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to consume trip invite: %w", err)
	}
	return nil
}

func CleanupExpiredInvites(db *sql.DB) error {
	_, err := db.Exec(`DELETE FROM trip_invites WHERE expires_at < CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to cleanup expired invites: %w", err)
	}
	return nil
}
