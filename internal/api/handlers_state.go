// handlers_state.go - Binder state and folder mutation handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// HandleState returns the full binder snapshot as JSON.
func (h *Handler) HandleState(c echo.Context) error {
	return c.JSON(http.StatusOK, h.folders.Snapshot())
}

// HandleStateMsgpack returns the binder snapshot msgpack-encoded for the
// polling UI, which refreshes often enough for the smaller payload to
// matter.
func (h *Handler) HandleStateMsgpack(c echo.Context) error {
	data, err := msgpack.Marshal(h.folders.Snapshot())
	if err != nil {
		return NewInternalError("failed to encode state", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleSetFileGroup pins a file into a folder.
func (h *Handler) HandleSetFileGroup(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}
	var req struct {
		GroupKey string `json:"groupKey"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.GroupKey == "" {
		return NewValidationError("groupKey")
	}
	if err := h.folders.SetGroupManual(id, req.GroupKey); err != nil {
		return NewNotFoundError("file", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleDeleteFile removes one file from the binder and from disk.
func (h *Handler) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}
	removed, ok := h.folders.RemoveFile(id)
	if !ok {
		return NewNotFoundError("file", id)
	}
	if removed.UploadName != "" {
		if err := h.store.DeleteUploads([]string{removed.UploadName}); err != nil {
			return NewInternalError("failed to delete stored file", err)
		}
		h.fees.Invalidate(removed.UploadName)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleReorder moves one list entry to another's position inside a folder.
func (h *Handler) HandleReorder(c echo.Context) error {
	key := c.Param("key")
	var req struct {
		Source string `json:"source"`
		Target string `json:"target"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Source == "" || req.Target == "" {
		return NewValidationError("source")
	}
	if err := h.folders.Reorder(key, req.Source, req.Target); err != nil {
		return NewBadRequestError("reorder failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleMove shifts one list entry a step up or down inside a folder.
func (h *Handler) HandleMove(c echo.Context) error {
	key := c.Param("key")
	var req struct {
		Token     string `json:"token"`
		Direction int    `json:"direction"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Token == "" || (req.Direction != 1 && req.Direction != -1) {
		return NewValidationError("direction")
	}
	if err := h.folders.MoveToken(key, req.Token, req.Direction); err != nil {
		return NewBadRequestError("move failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSetCompleted toggles a folder's collection-complete flag.
func (h *Handler) HandleSetCompleted(c echo.Context) error {
	key := c.Param("key")
	var req struct {
		Completed bool `json:"completed"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	h.folders.SetCompleted(key, req.Completed)
	return c.NoContent(http.StatusNoContent)
}

// HandleAddManualFee appends a user-created fee item to a folder.
func (h *Handler) HandleAddManualFee(c echo.Context) error {
	key := c.Param("key")
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Name == "" {
		return NewValidationError("name")
	}
	item := h.folders.AddManualFee(key, req.Name)
	return c.JSON(http.StatusCreated, item)
}

// HandleHideFee soft-deletes a fee item.
func (h *Handler) HandleHideFee(c echo.Context) error {
	key := c.Param("key")
	feeKey := c.Param("feeKey")
	if feeKey == "" {
		return NewValidationError("feeKey")
	}
	h.folders.HideFee(key, feeKey)
	return c.NoContent(http.StatusNoContent)
}

// HandleRenameFee overrides a fee item's display name.
func (h *Handler) HandleRenameFee(c echo.Context) error {
	key := c.Param("key")
	feeKey := c.Param("feeKey")
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if feeKey == "" || req.Name == "" {
		return NewValidationError("name")
	}
	h.folders.OverrideFeeName(key, feeKey, req.Name)
	return c.NoContent(http.StatusNoContent)
}

// HandleAssignFee links a fee item to exactly one file in the folder.
func (h *Handler) HandleAssignFee(c echo.Context) error {
	key := c.Param("key")
	feeKey := c.Param("feeKey")
	var req struct {
		FileID string `json:"fileId"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if feeKey == "" || req.FileID == "" {
		return NewValidationError("fileId")
	}
	if err := h.folders.AssignFeeKey(key, feeKey, req.FileID); err != nil {
		return NewNotFoundError("file", req.FileID)
	}
	return c.NoContent(http.StatusNoContent)
}
