package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"tripmate/internal/database"
	"tripmate/internal/logger"
	"tripmate/internal/models"

	"github.com/gin-gonic/gin"
)

func handleGetExpenses(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	trip, ok := tripFromParam(c)
	if !ok {
		return
	}

	budget, err := database.GetBudget(db, trip.ID, user.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No budget found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load budget"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"flight":     budget.Flight,
		"hotel":      budget.Hotel,
		"food":       budget.Food,
		"transport":  budget.Transport,
		"activities": budget.Activities,
		"spending":   budget.Spending,
	})
}

type expenseRequest struct {
	Category string  `json:"category" binding:"required"`
	Amount   float64 `json:"amount"`
}

// handleUpsertExpense sets a single category on the caller's budget for
// this trip, creating the budget row on first write.
func handleUpsertExpense(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	trip, ok := tripFromParam(c)
	if !ok {
		return
	}

	if err := database.UpsertBudgetCategory(db, trip.ID, user.ID, req.Category, req.Amount); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No budget found"})
			return
		}
		// Unknown category names land here too; the client sent a field
		// the schema has no column for.
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Expense added"})
}

// handleReplaceExpenses overwrites all six categories from form fields.
// Unparseable values become 0, matching how the budget form has always
// treated blank inputs.
func handleReplaceExpenses(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	trip, ok := tripFromParam(c)
	if !ok {
		return
	}

	amounts := make([]float64, len(models.BudgetCategories))
	for i, field := range models.BudgetCategories {
		value, err := strconv.ParseFloat(c.PostForm(field), 64)
		if err != nil {
			value = 0
		}
		amounts[i] = value
	}

	budget := models.Budget{
		Flight:     amounts[0],
		Hotel:      amounts[1],
		Food:       amounts[2],
		Transport:  amounts[3],
		Activities: amounts[4],
		Spending:   amounts[5],
	}

	if err := database.ReplaceBudget(db, trip.ID, user.ID, budget); err != nil {
		logger.Error("Failed to replace budget", "trip_id", trip.ID, "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update budget"})
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/trip/%d/budget", trip.ID))
}
