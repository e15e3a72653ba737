package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/middleware"
	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/services"
	"github.com/LovationAdmin/finance-tracker-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxAttachmentSize = 5 << 20

type TransactionHandler struct {
	Transactions *services.TransactionService
	UploadDir    string
	Location     *time.Location
}

// GetTransactions lists all transactions, or one month when year/month are given
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	_, hasYear := c.GetQuery("year")
	_, hasMonth := c.GetQuery("month")

	var (
		txns []models.Transaction
		err  error
	)
	if hasYear || hasMonth {
		p, perr := periodFromQuery(c, h.Location, time.Now())
		if perr != nil {
			respondError(c, perr, "")
			return
		}
		txns, err = h.Transactions.ListPeriod(c.Request.Context(), userID, p)
	} else {
		txns, err = h.Transactions.List(c.Request.Context(), userID)
	}
	if err != nil {
		respondError(c, err, "Failed to fetch transactions")
		return
	}
	c.JSON(http.StatusOK, txns)
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	in, err := h.bindInput(c)
	if err != nil {
		respondError(c, err, "Invalid transaction")
		return
	}

	t, err := h.Transactions.Create(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, err, "Failed to create transaction")
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	in, err := h.bindInput(c)
	if err != nil {
		respondError(c, err, "Invalid transaction")
		return
	}

	t, err := h.Transactions.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err, "Failed to update transaction")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	if err := h.Transactions.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

// bindInput reads a JSON body or a multipart form with an optional
// "attachment" file.
func (h *TransactionHandler) bindInput(c *gin.Context) (models.TransactionInput, error) {
	var req models.TransactionRequest

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return models.TransactionInput{}, models.NewValidationError("body", err.Error())
		}
		return req.Input(h.Location)
	}

	req.Type = c.PostForm("type")
	req.Date = c.PostForm("date")
	req.Category = c.PostForm("category")
	req.Merchant = c.PostForm("merchant")
	req.PaymentMethod = c.PostForm("payment_method")
	req.Notes = c.PostForm("notes")
	req.Tags = models.SplitTags(c.PostForm("tags"))

	amount, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("amount")))
	if err != nil {
		return models.TransactionInput{}, models.NewValidationError("amount", "must be a number")
	}
	req.Amount = amount

	in, err := req.Input(h.Location)
	if err != nil {
		return in, err
	}

	path, err := h.saveAttachment(c)
	if err != nil {
		return in, err
	}
	in.Attachment = path
	return in, nil
}

func (h *TransactionHandler) saveAttachment(c *gin.Context) (string, error) {
	file, err := c.FormFile("attachment")
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", models.NewValidationError("attachment", err.Error())
	}
	if file.Size > maxAttachmentSize {
		return "", models.NewValidationError("attachment", "must be 5MB or smaller")
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
	dst := filepath.Join(h.UploadDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("save attachment: %w", err)
	}
	utils.SafeDebug("Stored attachment %s (%d bytes)", name, file.Size)
	return filepath.ToSlash(dst), nil
}
