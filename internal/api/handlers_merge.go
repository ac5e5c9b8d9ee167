// handlers_merge.go - Folder merge and merged-archive handlers
package api

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/customs-binder/backend/internal/merge"
)

// HandleMerge merges one folder's files, in display order, into a single
// PDF. The result streams back as a download, a copy lands in the merged
// archive, and the folder's files are removed from the binder and disk.
func (h *Handler) HandleMerge(c echo.Context) error {
	var req struct {
		GroupKey string `json:"groupKey"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.GroupKey == "" {
		return NewValidationError("groupKey")
	}

	files := h.folders.GroupFiles(req.GroupKey)
	if len(files) < 2 {
		return NewBadRequestError(fmt.Sprintf("folder %s has %d files, need at least 2", req.GroupKey, len(files)), nil)
	}

	paths := make([]string, 0, len(files))
	uploadNames := make([]string, 0, len(files))
	for _, f := range files {
		path, err := h.store.UploadPath(f.UploadName)
		if err != nil {
			return NewNotFoundError("upload", f.UploadName)
		}
		paths = append(paths, path)
		uploadNames = append(uploadNames, f.UploadName)
	}

	outName := merge.MergedName(req.GroupKey, time.Now())
	outPath, err := h.merger.MergeFiles(paths, outName)
	if err != nil {
		return NewInternalError("merge failed", err)
	}
	defer os.Remove(outPath)

	// Archive a copy before streaming the download.
	archive, err := os.Open(outPath)
	if err != nil {
		return NewInternalError("failed to open merged file", err)
	}
	_, saveErr := h.store.SaveMerged(outName, archive)
	archive.Close()
	if saveErr != nil {
		return NewInternalError("failed to archive merged file", saveErr)
	}

	// The folder is done: drop it from the binder and from disk.
	h.folders.RemoveGroup(req.GroupKey)
	if err := h.store.DeleteUploads(uploadNames); err != nil {
		fmt.Printf("[merge] cleanup failed for %s: %v\n", req.GroupKey, err)
	}
	h.fees.Invalidate(uploadNames...)

	fmt.Printf("[merge] %s -> %s (%d files)\n", req.GroupKey, outName, len(paths))

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(outName)))
	return c.File(outPath)
}

// HandleMergeBatch merges several groups per a client manifest and streams
// the results back as one zip. Nothing is removed from the binder; batch
// mode serves ad-hoc exports.
func (h *Handler) HandleMergeBatch(c echo.Context) error {
	var manifest merge.Manifest
	if err := c.Bind(&manifest); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := manifest.Validate(); err != nil {
		return NewBadRequestError("invalid manifest", err)
	}

	resolve := func(id string) (string, error) {
		f, ok := h.folders.FileByID(id)
		if !ok {
			return "", fmt.Errorf("unknown file %s", id)
		}
		return h.store.UploadPath(f.UploadName)
	}

	results, err := h.merger.MergeBatch(manifest.Groups, resolve, time.Now())
	if err != nil {
		return NewInternalError("batch merge failed", err)
	}
	defer merge.Cleanup(results)

	for _, r := range results {
		f, err := os.Open(r.Path)
		if err != nil {
			continue
		}
		if _, err := h.store.SaveMerged(r.Name, f); err != nil {
			fmt.Printf("[merge] failed to archive %s: %v\n", r.Name, err)
		}
		f.Close()
	}

	fmt.Printf("[merge] batch produced %d files\n", len(results))

	c.Response().Header().Set(echo.HeaderContentType, "application/zip")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="merged_search.zip"`)
	c.Response().WriteHeader(http.StatusOK)
	return merge.WriteZip(c.Response(), results)
}

// HandleListMerged returns the merged-archive contents.
func (h *Handler) HandleListMerged(c echo.Context) error {
	files, err := h.store.ListMerged()
	if err != nil {
		return NewInternalError("failed to list merged files", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"merged": files})
}

// HandleGetMerged streams one archived merge output.
func (h *Handler) HandleGetMerged(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return NewValidationError("name")
	}
	path, err := h.store.MergedPath(name)
	if err != nil {
		return NewNotFoundError("merged file", name)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(name)))
	return c.File(path)
}

// HandleDownloadMerged zips the named archived outputs into one download.
func (h *Handler) HandleDownloadMerged(c echo.Context) error {
	var req struct {
		Names []string `json:"names"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if len(req.Names) == 0 {
		return NewValidationError("names")
	}

	results := make([]merge.BatchResult, 0, len(req.Names))
	for _, name := range req.Names {
		path, err := h.store.MergedPath(name)
		if err != nil {
			return NewNotFoundError("merged file", name)
		}
		results = append(results, merge.BatchResult{Name: name, Path: path})
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/zip")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="merged_search.zip"`)
	c.Response().WriteHeader(http.StatusOK)
	return merge.WriteZip(c.Response(), results)
}
