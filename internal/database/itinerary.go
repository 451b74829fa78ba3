package database

import (
	"database/sql"
	"fmt"
	"time"

	"tripmate/internal/models"
)

func CreateItineraryItem(db *sql.DB, tripID int, activity, location string, at time.Time, notes string) (*models.ItineraryItem, error) {
	result, err := db.Exec(`INSERT INTO itinerary_items (trip_id, activity, location, time, notes) VALUES (?, ?, ?, ?, ?)`,
		tripID, activity, location, at, notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create itinerary item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get itinerary item ID: %w", err)
	}

	item := &models.ItineraryItem{
		ID:       int(id),
		TripID:   tripID,
		Activity: activity,
		Location: location,
		Time:     at,
		Notes:    notes,
	}

	return item, nil
}

func GetItineraryItems(db *sql.DB, tripID int) ([]models.ItineraryItem, error) {
	query := `
		SELECT id, trip_id, activity, location, time, notes
		FROM itinerary_items
		WHERE trip_id = ?
		ORDER BY time ASC
	`

	rows, err := db.Query(query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary items: %w", err)
	}
	defer rows.Close()

	var items []models.ItineraryItem
	for rows.Next() {
		var item models.ItineraryItem
		if err := rows.Scan(&item.ID, &item.TripID, &item.Activity, &item.Location, &item.Time, &item.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// DeleteItineraryItem removes an item, scoped to its owning trip.
func DeleteItineraryItem(db *sql.DB, tripID, itemID int) error {
	result, err := db.Exec(`DELETE FROM itinerary_items WHERE id = ? AND trip_id = ?`, itemID, tripID)
	if err != nil {
		return fmt.Errorf("failed to delete itinerary item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check itinerary delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("itinerary item: %w", ErrNotFound)
	}

	return nil
}
