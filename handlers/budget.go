package handlers

import (
	"net/http"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/middleware"
	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/services"

	"github.com/gin-gonic/gin"
)

type BudgetHandler struct {
	Budgets  *services.BudgetService
	Location *time.Location
}

// GetBudgets returns every budget with the spend of the requested month
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	p, err := periodFromQuery(c, h.Location, time.Now())
	if err != nil {
		respondError(c, err, "")
		return
	}

	budgets, err := h.Budgets.ListWithSpend(c.Request.Context(), middleware.GetUserID(c), p)
	if err != nil {
		respondError(c, err, "Failed to fetch budgets")
		return
	}
	c.JSON(http.StatusOK, budgets)
}

func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	var req models.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	budget, err := h.Budgets.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err, "Failed to create budget")
		return
	}
	c.JSON(http.StatusCreated, budget)
}

func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	var req models.UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	budget, err := h.Budgets.UpdateLimit(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), *req.Limit)
	if err != nil {
		respondError(c, err, "Failed to update budget")
		return
	}
	c.JSON(http.StatusOK, budget)
}

func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	if err := h.Budgets.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete budget")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}
