package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Tasks(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}

	tasks, err := h.Economy.Tasks(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

type progressRequest struct {
	Delta int `json:"delta"`
}

// TaskProgress reports client-side progress on a manual task, such as
// joining a channel. Server-tracked tasks reject it.
func (h *Handler) TaskProgress(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req progressRequest
	_ = c.ShouldBindJSON(&req)
	if req.Delta <= 0 {
		req.Delta = 1
	}

	task, err := h.Economy.AdvanceTask(c.Request.Context(), id, taskID, req.Delta)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) ClaimTask(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	out, err := h.Economy.ClaimTask(c.Request.Context(), id, taskID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Trophies(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}

	trophies, err := h.Economy.Trophies(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trophies": trophies})
}

func (h *Handler) ClaimTrophy(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}
	trophyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	out, err := h.Economy.ClaimTrophy(c.Request.Context(), id, trophyID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
