package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tapcoin/internal/economy"
	"tapcoin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFailStatusTable(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{economy.ErrInsufficientFunds, http.StatusConflict, "insufficient_funds"},
		{economy.ErrNoEnergy, http.StatusConflict, "no_energy"},
		{fmt.Errorf("op: %w", economy.ErrCycleComplete), http.StatusConflict, "cycle_complete"},
		{service.ErrItemNotFound, http.StatusNotFound, "item_not_found"},
		{service.ErrTaskNotManual, http.StatusForbidden, "task_not_manual"},
		{service.ErrStaleInitData, http.StatusUnauthorized, "stale_init_data"},
		{&service.StorageError{Op: "x", Err: errors.New("conn reset")}, http.StatusInternalServerError, "storage_error"},
		{errors.New("surprise"), http.StatusInternalServerError, "internal_error"},
		{errUnauthorized, http.StatusUnauthorized, "unauthorized"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			fail(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"`+tc.code+`"`)
			if tc.status >= http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "conn reset")
			}
		})
	}
}

func TestQueryInt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=20", nil)
	assert.Equal(t, 20, queryInt(c, "limit", 50, 100))

	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=1000", nil)
	assert.Equal(t, 100, queryInt(c, "limit", 50, 100))

	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=-3", nil)
	assert.Equal(t, 50, queryInt(c, "limit", 50, 100))
}
