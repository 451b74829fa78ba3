package database

import (
	"database/sql"
	"fmt"
	"time"

	"tripmate/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// CreateUser stores a new user with a bcrypt password hash and creates the
// user's profile row in the same transaction. The display name starts out
// as the username until the user edits it.
func CreateUser(db *sql.DB, username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		username, email, string(hashedPassword))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %q: %w", username, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO profiles (user_id, name) VALUES (?, ?)`, id, username); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user: %w", err)
	}

	user := &models.User{
		ID:           int(id),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
		Profile:      &models.Profile{UserID: int(id), Name: username},
	}

	return user, nil
}

func GetUserByID(db *sql.DB, userID int) (*models.User, error) {
	return getUser(db, "id = ?", userID)
}

func GetUserByUsername(db *sql.DB, username string) (*models.User, error) {
	return getUser(db, "username = ?", username)
}

func getUser(db *sql.DB, where string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE ` + where

	err := db.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	profile, err := GetProfile(db, user.ID)
	if err == nil {
		user.Profile = profile
	}

	return user, nil
}

// AuthenticateUser verifies a username/password pair. Unknown users and
// hash mismatches both come back as ErrInvalidCredentials so callers can't
// tell the two apart.
func AuthenticateUser(db *sql.DB, username, password string) (*models.User, error) {
	user, err := GetUserByUsername(db, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func GetProfile(db *sql.DB, userID int) (*models.Profile, error) {
	profile := &models.Profile{}
	err := db.QueryRow(`SELECT id, user_id, name FROM profiles WHERE user_id = ?`, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Name,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("profile: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	return profile, nil
}

// UpdateProfile upserts the display name. Accounts created before profile
// rows existed get one on their first update.
func UpdateProfile(db *sql.DB, userID int, name string) error {
	result, err := db.Exec(`UPDATE profiles SET name = ? WHERE user_id = ?`, name, userID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check profile update: %w", err)
	}

	if affected == 0 {
		if _, err := db.Exec(`INSERT INTO profiles (user_id, name) VALUES (?, ?)`, userID, name); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
	}

	return nil
}
