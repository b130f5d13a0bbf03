package handlers

import (
	"errors"
	"net/http"

	"tapcoin/internal/service"

	"github.com/gin-gonic/gin"
)

var errUnauthorized = errors.New("unauthorized")

// statusByCode maps service error codes to HTTP statuses.
var statusByCode = map[string]int{
	"insufficient_funds":    http.StatusConflict,
	"no_energy":             http.StatusConflict,
	"nothing_to_claim":      http.StatusConflict,
	"already_claimed_today": http.StatusConflict,
	"cycle_complete":        http.StatusConflict,
	"booster_cooldown":      http.StatusConflict,
	"task_not_completed":    http.StatusConflict,
	"already_claimed":       http.StatusConflict,
	"requirement_not_met":   http.StatusConflict,
	"account_not_found":     http.StatusNotFound,
	"item_not_found":        http.StatusNotFound,
	"task_not_found":        http.StatusNotFound,
	"trophy_not_found":      http.StatusNotFound,
	"task_not_manual":       http.StatusForbidden,
	"invalid_coin_image":    http.StatusBadRequest,
	"invalid_profile":       http.StatusBadRequest,
	"invalid_init_data":     http.StatusUnauthorized,
	"stale_init_data":       http.StatusUnauthorized,
	"invalid_token":         http.StatusUnauthorized,
	"storage_error":         http.StatusInternalServerError,
}

// fail writes the JSON error body for err.
func fail(c *gin.Context, err error) {
	if errors.Is(err, errUnauthorized) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "unauthorized"})
		return
	}

	code := service.ErrorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		// the request logger reports c.Errors; details stay out of the body
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status), "code": code})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": code})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "code": "bad_request"})
}
