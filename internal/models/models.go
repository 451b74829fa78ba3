package models

import (
	"time"
)

type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	Profile      *Profile  `json:"profile,omitempty"`
}

// DisplayName falls back to the username when no profile row exists, so
// pages never dereference a missing profile.
func (u *User) DisplayName() string {
	if u.Profile != nil && u.Profile.Name != "" {
		return u.Profile.Name
	}
	return u.Username
}

type Profile struct {
	ID     int    `json:"id" db:"id"`
	UserID int    `json:"user_id" db:"user_id"`
	Name   string `json:"name" db:"name"`
}

type Trip struct {
	ID         int       `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	InviteCode string    `json:"invite_code" db:"invite_code"`
	ChatroomID int       `json:"chatroom_id" db:"chatroom_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	Members    []User    `json:"members,omitempty"`
}

type ItineraryItem struct {
	ID       int       `json:"id" db:"id"`
	TripID   int       `json:"trip_id" db:"trip_id"`
	Activity string    `json:"activity" db:"activity"`
	Location string    `json:"location" db:"location"`
	Time     time.Time `json:"time" db:"time"`
	Notes    string    `json:"notes" db:"notes"`
}

type Budget struct {
	ID         int     `json:"id" db:"id"`
	TripID     int     `json:"trip_id" db:"trip_id"`
	UserID     int     `json:"user_id" db:"user_id"`
	Flight     float64 `json:"flight" db:"flight"`
	Hotel      float64 `json:"hotel" db:"hotel"`
	Food       float64 `json:"food" db:"food"`
	Transport  float64 `json:"transport" db:"transport"`
	Activities float64 `json:"activities" db:"activities"`
	Spending   float64 `json:"spending" db:"spending"`
}

// BudgetCategories lists the six expense columns in form-field order.
var BudgetCategories = []string{"flight", "hotel", "food", "transport", "activities", "spending"}

type Chatroom struct {
	ID        int       `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ChatLog struct {
	ID         int       `json:"id" db:"id"`
	ChatroomID int       `json:"chatroom_id" db:"chatroom_id"`
	UserID     int       `json:"user_id" db:"user_id"`
	Username   string    `json:"username" db:"username"`
	Message    string    `json:"message" db:"message"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

type TripInvite struct {
	Token     string    `json:"token" db:"token"`
	TripID    int       `json:"trip_id" db:"trip_id"`
	Email     string    `json:"email" db:"email"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
