package handlers

import (
	"net/http"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/middleware"
	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/services"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	Categories *services.CategoryService
	Location   *time.Location
}

// GetCategories returns the registry joined with the month's spend
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	p, err := periodFromQuery(c, h.Location, time.Now())
	if err != nil {
		respondError(c, err, "")
		return
	}

	totals, err := h.Categories.ListWithTotals(c.Request.Context(), middleware.GetUserID(c), p)
	if err != nil {
		respondError(c, err, "Failed to fetch categories")
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := h.Categories.Create(c.Request.Context(), middleware.GetUserID(c), req.Name)
	if err != nil {
		respondError(c, err, "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// RenameCategory renames a category and every transaction filed under it
func (h *CategoryHandler) RenameCategory(c *gin.Context) {
	var req models.RenameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := h.Categories.Rename(c.Request.Context(), middleware.GetUserID(c), req.OldName, req.NewName)
	if err != nil {
		respondError(c, err, "Failed to rename category")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.Categories.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
