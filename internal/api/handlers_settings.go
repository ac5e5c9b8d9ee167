// handlers_settings.go - Settings blob handlers
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/customs-binder/backend/internal/models"
	"github.com/customs-binder/backend/internal/settings"
)

// HandleGetSettings returns the live settings, which reflect the binder's
// current state rather than the last persisted blob.
func (h *Handler) HandleGetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.folders.Settings())
}

// HandleSetSettings replaces the settings, applies them to the binder, and
// persists the result.
func (h *Handler) HandleSetSettings(c echo.Context) error {
	var req models.Settings
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	req.PrefixOrder = settings.NormalizePrefixOrder(req.PrefixOrder)
	h.folders.ApplySettings(&req)

	if err := h.persistSettings(); err != nil {
		fmt.Printf("[settings] persist failed: %v\n", err)
		return NewInternalError("failed to persist settings", err)
	}
	return c.JSON(http.StatusOK, h.folders.Settings())
}
