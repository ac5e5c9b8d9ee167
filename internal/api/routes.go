// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h *Handler) {
	// Upload surface, matching the paths the dropzone UI calls
	e.POST("/upload", h.HandleUpload)
	e.GET("/uploads", h.HandleListUploads)
	e.POST("/uploads/delete", h.HandleDeleteUploads)
	e.POST("/uploads/clear", h.HandleClearUploads)
	e.GET("/pc-info/:filename", h.HandleFeeInfo)

	// Merge surface
	e.POST("/merge", h.HandleMerge)
	e.POST("/merge-batch", h.HandleMergeBatch)
	e.GET("/merged", h.HandleListMerged)
	e.GET("/merged/:name", h.HandleGetMerged)
	e.POST("/merged/download", h.HandleDownloadMerged)

	// Settings
	e.GET("/settings", h.HandleGetSettings)
	e.POST("/settings", h.HandleSetSettings)

	// Binder state and folder mutations
	apiGroup := e.Group("/api")
	apiGroup.GET("/health", h.HandleHealth)
	apiGroup.GET("/state", h.HandleState)
	apiGroup.GET("/state/msgpack", h.HandleStateMsgpack)
	apiGroup.POST("/files/:id/group", h.HandleSetFileGroup)
	apiGroup.DELETE("/files/:id", h.HandleDeleteFile)

	folderGroup := apiGroup.Group("/folders/:key")
	folderGroup.POST("/reorder", h.HandleReorder)
	folderGroup.POST("/move", h.HandleMove)
	folderGroup.POST("/completed", h.HandleSetCompleted)
	folderGroup.POST("/fees", h.HandleAddManualFee)
	folderGroup.POST("/fees/:feeKey/hide", h.HandleHideFee)
	folderGroup.POST("/fees/:feeKey/name", h.HandleRenameFee)
	folderGroup.POST("/fees/:feeKey/assign", h.HandleAssignFee)

	if h.hub != nil {
		apiGroup.GET("/ws", h.hub.HandleWebSocket)
	}
}
