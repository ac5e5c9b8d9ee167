// handlers_upload.go - File upload operation handlers
package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/customs-binder/backend/internal/feeinfo"
	"github.com/customs-binder/backend/internal/folder"
)

// HandleUpload accepts PDFs as multipart/form-data under the "files" field.
// An optional targetGroupKey pins every file to that folder. Non-PDF parts
// are skipped, matching the drop-zone behavior in the browser.
func (h *Handler) HandleUpload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("invalid multipart form", err)
	}

	files := form.File["files"]
	if len(files) == 0 {
		return NewValidationError("files")
	}
	targetGroup := c.FormValue("targetGroupKey")

	var incoming []folder.IncomingFile
	var saved []string
	for _, fh := range files {
		if !isPDF(fh) {
			fmt.Printf("[upload] skipping non-PDF part: %s\n", fh.Filename)
			continue
		}
		src, err := fh.Open()
		if err != nil {
			return NewInternalError("failed to open uploaded file", err)
		}
		info, err := h.store.SaveUpload(fh.Filename, src)
		src.Close()
		if err != nil {
			return NewInternalError("failed to save file", err)
		}
		saved = append(saved, info.Name)
		incoming = append(incoming, folder.IncomingFile{
			Name:       info.OriginalName,
			UploadName: info.Name,
			Size:       info.Size,
		})
	}

	if len(incoming) == 0 {
		return NewBadRequestError("no PDF files in upload", nil)
	}

	records := h.folders.AddFiles(incoming, targetGroup)

	// Payment invoices get their fee metadata extracted off the request
	// path; the result lands in the store and is broadcast when ready.
	for _, rec := range records {
		if !feeinfo.IsInvoiceName(rec.Name) {
			continue
		}
		name := rec.UploadName
		go func() {
			path, err := h.store.UploadPath(name)
			if err != nil {
				return
			}
			if info := h.fees.Lookup(name, path); info != nil {
				h.folders.SetFeeInfo(name, info)
			}
		}()
	}

	fmt.Printf("[upload] stored %d files (target=%q)\n", len(saved), targetGroup)
	return c.JSON(http.StatusCreated, map[string]interface{}{"saved": saved})
}

func isPDF(fh *multipart.FileHeader) bool {
	if strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return true
	}
	return fh.Header.Get("Content-Type") == "application/pdf"
}

// HandleListUploads returns the stored upload names.
func (h *Handler) HandleListUploads(c echo.Context) error {
	files, err := h.store.ListUploads()
	if err != nil {
		return NewInternalError("failed to list uploads", err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"uploads": names})
}

// HandleDeleteUploads removes the named uploads from disk and from the
// binder state.
func (h *Handler) HandleDeleteUploads(c echo.Context) error {
	var req struct {
		Names []string `json:"names"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if len(req.Names) == 0 {
		return NewValidationError("names")
	}

	if err := h.store.DeleteUploads(req.Names); err != nil {
		return NewInternalError("failed to delete uploads", err)
	}
	h.fees.Invalidate(req.Names...)

	byUpload := make(map[string]bool, len(req.Names))
	for _, n := range req.Names {
		byUpload[n] = true
	}
	snapshot := h.folders.Snapshot()
	for _, fv := range snapshot.Folders {
		for _, f := range fv.Files {
			if byUpload[f.UploadName] {
				h.folders.RemoveFile(f.ID)
			}
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// HandleClearUploads wipes every upload and resets the binder.
func (h *Handler) HandleClearUploads(c echo.Context) error {
	if err := h.store.ClearUploads(); err != nil {
		return NewInternalError("failed to clear uploads", err)
	}
	h.folders.Clear()
	fmt.Println("[upload] cleared all uploads")
	return c.NoContent(http.StatusNoContent)
}

// HandleFeeInfo returns the extracted fee metadata of one stored invoice.
func (h *Handler) HandleFeeInfo(c echo.Context) error {
	name := c.Param("filename")
	if name == "" {
		return NewValidationError("filename")
	}
	path, err := h.store.UploadPath(name)
	if err != nil {
		return NewNotFoundError("upload", name)
	}
	info := h.fees.Lookup(name, path)
	if info == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"found": false})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"found": true, "info": info})
}
