package restapi

import (
	"errors"
	"net/http"

	"houses_market/internal/app/port"
	"houses_market/internal/app/service"
	"houses_market/internal/domain/entity"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(c *gin.Context, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

type connectAccountRequest struct {
	Address string `json:"address" binding:"required"`
}

type setListingsRequest struct {
	Listings []entity.Listing `json:"listings"`
}

// StateHandler exposes the session state to the views.
type StateHandler struct {
	houses port.HousesService
	logger port.Logger
}

// NewStateHandler creates a new instance of StateHandler.
func NewStateHandler(houses port.HousesService, logger port.Logger) *StateHandler {
	return &StateHandler{houses: houses, logger: logger}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoAccount),
		errors.Is(err, service.ErrNoContract),
		errors.Is(err, service.ErrContractNotConfigured),
		errors.Is(err, service.ErrUnsupportedContractRef),
		errors.Is(err, service.ErrAccountChanged):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (h *StateHandler) fail(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("State operation failed", "path", c.Request.URL.Path, "error", err)
	}
	_ = c.Error(err)
	writeJSON(c, status, gin.H{"error": err.Error()})
}

// GetState returns a snapshot of the session state.
func (h *StateHandler) GetState(c *gin.Context) {
	writeJSON(c, http.StatusOK, StateFromContext(c).Snapshot())
}

// ConnectAccount sets the session account.
func (h *StateHandler) ConnectAccount(c *gin.Context) {
	var req connectAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	st := StateFromContext(c)
	if err := h.houses.ConnectAccount(st, req.Address); err != nil {
		h.fail(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st.Snapshot())
}

// DisconnectAccount clears the session account.
func (h *StateHandler) DisconnectAccount(c *gin.Context) {
	h.houses.DisconnectAccount(StateFromContext(c))
	c.Status(http.StatusNoContent)
}

// BindContract binds the configured houses contract.
func (h *StateHandler) BindContract(c *gin.Context) {
	addr, err := h.houses.BindContract(c.Request.Context(), StateFromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"contract": addr.Hex()})
}

// ReloadHouses refreshes the owned tokens of the session account.
func (h *StateHandler) ReloadHouses(c *gin.Context) {
	n, err := h.houses.LoadOwnedHouses(c.Request.Context(), StateFromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"count": n})
}

// SetListings replaces the market listings.
func (h *StateHandler) SetListings(c *gin.Context) {
	var req setListingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	st := StateFromContext(c)
	h.houses.SetListings(st, req.Listings)
	writeJSON(c, http.StatusOK, st.Snapshot())
}

// RecordPurchase bumps buyReload.
func (h *StateHandler) RecordPurchase(c *gin.Context) {
	v := h.houses.RecordPurchase(StateFromContext(c))
	writeJSON(c, http.StatusOK, gin.H{"buyReload": v})
}
