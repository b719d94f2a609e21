package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ndr-radio/internal/broadcast"
	"ndr-radio/internal/catalog"
	"ndr-radio/internal/station"
)

// StationHandler exposes the on-air controls and the shared state.
type StationHandler struct {
	controller *station.Controller
	scheduler  *broadcast.Scheduler
}

func NewStationHandler(ctrl *station.Controller, sched *broadcast.Scheduler) *StationHandler {
	return &StationHandler{controller: ctrl, scheduler: sched}
}

// GetState returns the current broadcast state row. Public; this is
// what a joining frontend reconciles against.
func (h *StationHandler) GetState(c *gin.Context) {
	state, err := h.controller.State()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read station state"})
		return
	}
	c.JSON(http.StatusOK, state)
}

// Toggle flips station playback.
func (h *StationHandler) Toggle(c *gin.Context) {
	playing, err := h.controller.Toggle(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_playing": playing})
}

// Push puts a specific track on air.
func (h *StationHandler) Push(c *gin.Context) {
	item, err := h.controller.PushTrack(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// Skip advances to the current global slot track.
func (h *StationHandler) Skip(c *gin.Context) {
	if err := h.controller.SkipNext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "skipped"})
}

// Seek jumps the on-air position. Body: {"position": seconds}.
func (h *StationHandler) Seek(c *gin.Context) {
	var req struct {
		Position float64 `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A numeric position is required"})
		return
	}
	if err := h.controller.Seek(c.Request.Context(), req.Position); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"position": req.Position})
}

// Bulletin triggers a news bulletin outside the grid. ?brief=true
// reads headlines only.
func (h *StationHandler) Bulletin(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Broadcast stack is disabled on this instance"})
		return
	}
	brief := c.Query("brief") == "true"
	if err := h.scheduler.Trigger(c.Request.Context(), brief); err != nil {
		if errors.Is(err, broadcast.ErrBulletinInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": "A bulletin is already on air"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "broadcast", "brief": brief})
}

// Jingle plays one of the station stings: 1 intro, 2 outro.
func (h *StationHandler) Jingle(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Broadcast stack is disabled on this instance"})
		return
	}
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || (n != 1 && n != 2) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Jingle number must be 1 or 2"})
		return
	}
	if err := h.scheduler.PlayJingle(c.Request.Context(), n); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A bulletin is already on air"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "played", "jingle": n})
}

// Announce reads an admin message on air, framed by the jingles.
func (h *StationHandler) Announce(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Broadcast stack is disabled on this instance"})
		return
	}
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A message is required"})
		return
	}
	if err := h.scheduler.Announce(c.Request.Context(), req.Message); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A bulletin is already on air"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "broadcast"})
}
