package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps the error taxonomy onto HTTP statuses. Unexpected errors
// are logged and hidden behind fallback.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, models.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, models.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, models.ErrTOTPRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "2FA code required", "requires_2fa": true})
	case errors.Is(err, models.ErrInvalidTOTP):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid 2FA code"})
	case errors.Is(err, models.ErrTOTPNotSetUp):
		c.JSON(http.StatusBadRequest, gin.H{"error": "TOTP not set up"})
	case errors.Is(err, models.ErrUpstreamUnavailable):
		utils.SafeWarn("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable, please try again later"})
	default:
		utils.SafeError("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// periodFromQuery reads ?year=&month=. Missing values default to the current
// month in loc; values that are present but invalid are rejected.
func periodFromQuery(c *gin.Context, loc *time.Location, now time.Time) (models.Period, error) {
	current := models.PeriodOf(now, loc)

	year, err := queryInt(c, "year", current.Year)
	if err != nil {
		return models.Period{}, err
	}
	month, err := queryInt(c, "month", int(current.Month))
	if err != nil {
		return models.Period{}, err
	}
	return models.NewPeriod(year, month, loc)
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw, present := c.GetQuery(name)
	if !present {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", models.ErrInvalidPeriod, name)
	}
	return n, nil
}
