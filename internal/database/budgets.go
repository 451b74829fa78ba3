package database

import (
	"database/sql"
	"fmt"

	"tripmate/internal/models"
)

var budgetColumns = map[string]bool{
	"flight":     true,
	"hotel":      true,
	"food":       true,
	"transport":  true,
	"activities": true,
	"spending":   true,
}

// GetBudget returns the (trip, user) budget row, or ErrNotFound if the user
// has never written one.
func GetBudget(db *sql.DB, tripID, userID int) (*models.Budget, error) {
	budget := &models.Budget{}
	query := `
		SELECT id, trip_id, user_id, flight, hotel, food, transport, activities, spending
		FROM budgets
		WHERE trip_id = ? AND user_id = ?
	`

	err := db.QueryRow(query, tripID, userID).Scan(
		&budget.ID,
		&budget.TripID,
		&budget.UserID,
		&budget.Flight,
		&budget.Hotel,
		&budget.Food,
		&budget.Transport,
		&budget.Activities,
		&budget.Spending,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("budget: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}

	return budget, nil
}

func ensureBudgetRow(db *sql.DB, tripID, userID int) error {
	_, err := db.Exec(`INSERT OR IGNORE INTO budgets (trip_id, user_id) VALUES (?, ?)`, tripID, userID)
	if err != nil {
		return fmt.Errorf("failed to create budget row: %w", err)
	}
	return nil
}

// UpsertBudgetCategory sets one expense column on the (trip, user) budget,
// creating the row with zeroed categories on first write. The category name
// is checked against the known columns before it goes anywhere near SQL.
func UpsertBudgetCategory(db *sql.DB, tripID, userID int, category string, amount float64) error {
	if !budgetColumns[category] {
		return fmt.Errorf("unknown budget category %q", category)
	}

	if err := ensureBudgetRow(db, tripID, userID); err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE budgets SET %s = ? WHERE trip_id = ? AND user_id = ?`, category)
	if _, err := db.Exec(query, amount, tripID, userID); err != nil {
		return fmt.Errorf("failed to update budget category: %w", err)
	}

	return nil
}

// ReplaceBudget overwrites all six categories at once.
func ReplaceBudget(db *sql.DB, tripID, userID int, b models.Budget) error {
	if err := ensureBudgetRow(db, tripID, userID); err != nil {
		return err
	}

	query := `
		UPDATE budgets
		SET flight = ?, hotel = ?, food = ?, transport = ?, activities = ?, spending = ?
		WHERE trip_id = ? AND user_id = ?
	`
	_, err := db.Exec(query, b.Flight, b.Hotel, b.Food, b.Transport, b.Activities, b.Spending, tripID, userID)
	if err != nil {
		return fmt.Errorf("failed to replace budget: %w", err)
	}

	return nil
}

// GetTripBudgets returns every member's budget for a trip, with usernames,
// for the shared budget page.
func GetTripBudgets(db *sql.DB, tripID int) ([]models.Budget, map[int]string, error) {
	query := `
		SELECT b.id, b.trip_id, b.user_id, b.flight, b.hotel, b.food, b.transport, b.activities, b.spending, u.username
		FROM budgets b
		INNER JOIN users u ON u.id = b.user_id
		WHERE b.trip_id = ?
		ORDER BY u.username
	`

	rows, err := db.Query(query, tripID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query trip budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	usernames := make(map[int]string)
	for rows.Next() {
		var b models.Budget
		var username string
		if err := rows.Scan(&b.ID, &b.TripID, &b.UserID, &b.Flight, &b.Hotel, &b.Food, &b.Transport, &b.Activities, &b.Spending, &username); err != nil {
			return nil, nil, fmt.Errorf("failed to scan trip budget: %w", err)
		}
		budgets = append(budgets, b)
		usernames[b.UserID] = username
	}

	return budgets, usernames, rows.Err()
}
