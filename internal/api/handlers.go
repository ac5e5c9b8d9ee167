package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/customs-binder/backend/internal/feeinfo"
	"github.com/customs-binder/backend/internal/folder"
	"github.com/customs-binder/backend/internal/merge"
	"github.com/customs-binder/backend/internal/settings"
	"github.com/customs-binder/backend/internal/storage"
)

// Handler handles API requests.
type Handler struct {
	store    storage.Store
	folders  *folder.Store
	settings *settings.FileStore
	fees     *feeinfo.Service
	merger   *merge.Merger
	hub      *Hub
}

// NewHandler creates a new API handler.
func NewHandler(store storage.Store, folders *folder.Store, set *settings.FileStore, fees *feeinfo.Service, merger *merge.Merger, hub *Hub) *Handler {
	return &Handler{
		store:    store,
		folders:  folders,
		settings: set,
		fees:     fees,
		merger:   merger,
		hub:      hub,
	}
}

// HandleHealth returns server health status.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// persistSettings writes the live binder state into the settings blob. A
// failed write is logged at the call site; the in-memory state stands.
func (h *Handler) persistSettings() error {
	return h.settings.Save(h.folders.Settings())
}
