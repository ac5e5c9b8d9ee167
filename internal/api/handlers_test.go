// handlers_test.go - Tests for upload, state, settings and merge handlers
package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customs-binder/backend/internal/classify"
	"github.com/customs-binder/backend/internal/feeinfo"
	"github.com/customs-binder/backend/internal/folder"
	"github.com/customs-binder/backend/internal/merge"
	"github.com/customs-binder/backend/internal/models"
	"github.com/customs-binder/backend/internal/settings"
	"github.com/customs-binder/backend/internal/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *echo.Echo) {
	t.Helper()

	store := testutil.NewMockStorage()
	folders := folder.NewStore(classify.Ruleset{
		Order:            settings.DefaultPrefixOrder(),
		CustomsOnlyFirst: true,
	})
	settingsStore, err := settings.NewFileStore(t.TempDir())
	require.NoError(t, err)
	fees := feeinfo.NewService(t.TempDir())
	merger, err := merge.NewMerger(t.TempDir())
	require.NoError(t, err)

	h := NewHandler(store, folders, settingsStore, fees, merger, nil)

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	RegisterRoutes(e, h)
	return h, e
}

func multipartUpload(t *testing.T, names []string, targetGroup string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 " + name))
		require.NoError(t, err)
	}
	if targetGroup != "" {
		require.NoError(t, w.WriteField("targetGroupKey", targetGroup))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doUpload(t *testing.T, e *echo.Echo, names []string, targetGroup string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, names, targetGroup)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func getState(t *testing.T, e *echo.Echo) models.StateView {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var state models.StateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	return state
}

func TestHandleUpload_ClassifiesIntoFolders(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doUpload(t, e, []string{
		"JS_88888-11-222222M.pdf",
		"VT_88888-11-222222M.pdf",
		"88888-11-222222M.pdf",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Saved []string `json:"saved"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Saved, 3)

	state := getState(t, e)
	require.Len(t, state.Folders, 1)
	assert.Equal(t, "88888-11-222222M", state.Folders[0].Key)
	assert.Equal(t, 3, state.FileCount)
	// Customs-only file leads the folder.
	assert.Equal(t, "88888-11-222222M.pdf", state.Folders[0].Files[0].Name)
}

func TestHandleUpload_SkipsNonPDF(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doUpload(t, e, []string{"notes.txt"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doUpload(t, e, []string{"notes.txt", "JS_88888-11-222222M.pdf"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	state := getState(t, e)
	assert.Equal(t, 1, state.FileCount)
}

func TestHandleUpload_NoFiles(t *testing.T) {
	_, e := newTestHandler(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
}

func TestHandleUpload_TargetGroup(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doUpload(t, e, []string{"scan.pdf"}, "99999-22-333333M")
	require.Equal(t, http.StatusCreated, rec.Code)

	state := getState(t, e)
	require.Len(t, state.Folders, 1)
	assert.Equal(t, "99999-22-333333M", state.Folders[0].Key)
	assert.Equal(t, "add_99999-22-333333M.pdf", state.Folders[0].Files[0].Name)
}

func TestHandleDeleteFile(t *testing.T) {
	h, e := newTestHandler(t)
	require.Equal(t, http.StatusCreated,
		doUpload(t, e, []string{"JS_88888-11-222222M.pdf"}, "").Code)

	state := getState(t, e)
	id := state.Folders[0].Files[0].ID

	req := httptest.NewRequest(http.MethodDelete, "/api/files/"+id, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	state = getState(t, e)
	assert.Equal(t, 0, state.FileCount)
	// The binary is gone from storage too.
	mock := h.store.(*testutil.MockStorage)
	assert.Equal(t, 0, mock.UploadCount())
}

func TestHandleSetFileGroup(t *testing.T) {
	_, e := newTestHandler(t)
	doUpload(t, e, []string{"unmatched.pdf"}, "")

	state := getState(t, e)
	require.Equal(t, models.GroupUnclassified, state.Folders[0].Key)
	id := state.Folders[0].Files[0].ID

	body := strings.NewReader(`{"groupKey":"77777-77-777777M"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/files/"+id+"/group", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	state = getState(t, e)
	require.Len(t, state.Folders, 1)
	assert.Equal(t, "77777-77-777777M", state.Folders[0].Key)
}

func TestHandleSettingsRoundTrip(t *testing.T) {
	_, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var set models.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	require.Len(t, set.PrefixOrder, 4)

	// Flip the precedence and push it back.
	set.PrefixOrder[0], set.PrefixOrder[3] = set.PrefixOrder[3], set.PrefixOrder[0]
	set.CustomsOnlyFirst = false
	body, _ := json.Marshal(set)
	req = httptest.NewRequest(http.MethodPost, "/settings", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	state := getState(t, e)
	assert.Equal(t, "IMP", state.PrefixOrder[0].Prefix)
	assert.False(t, state.CustomsOnlyFirst)
}

func TestHandleSetCompletedAndFees(t *testing.T) {
	_, e := newTestHandler(t)
	doUpload(t, e, []string{"JS_88888-11-222222M.pdf"}, "")
	key := "88888-11-222222M"

	body := strings.NewReader(`{"completed":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/folders/"+key+"/completed", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	body = strings.NewReader(`{"name":"기타비용"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/folders/"+key+"/fees", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var item models.FeeLineItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.True(t, item.Manual)

	state := getState(t, e)
	assert.True(t, state.Folders[0].Completed)
	require.Len(t, state.Folders[0].Fees, 1)
	assert.Equal(t, "기타비용", state.Folders[0].Fees[0].Name)
}

func TestHandleReorder_BadToken(t *testing.T) {
	_, e := newTestHandler(t)
	doUpload(t, e, []string{"JS_88888-11-222222M.pdf"}, "")

	body := strings.NewReader(`{"source":"file:nope","target":"file:also-nope"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/folders/88888-11-222222M/reorder", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMerge_RejectsSmallFolder(t *testing.T) {
	_, e := newTestHandler(t)
	doUpload(t, e, []string{"JS_88888-11-222222M.pdf"}, "")

	body := strings.NewReader(`{"groupKey":"88888-11-222222M"}`)
	req := httptest.NewRequest(http.MethodPost, "/merge", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Contains(t, apiErr.Message, "at least 2")
}

func TestHandleMergeBatch_RejectsBadManifest(t *testing.T) {
	_, e := newTestHandler(t)

	body := strings.NewReader(`{"fileIds":["a","b"],"groups":[{"name":"g1","fileIds":["a"]}]}`)
	req := httptest.NewRequest(http.MethodPost, "/merge-batch", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	_, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestHandleListUploads(t *testing.T) {
	_, e := newTestHandler(t)
	doUpload(t, e, []string{"JS_88888-11-222222M.pdf"}, "")

	req := httptest.NewRequest(http.MethodGet, "/uploads", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Uploads []string `json:"uploads"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"JS_88888-11-222222M.pdf"}, resp.Uploads)
}

func TestHandleClearUploads(t *testing.T) {
	_, e := newTestHandler(t)
	doUpload(t, e, []string{"JS_88888-11-222222M.pdf", "VT_88888-11-222222M.pdf"}, "")

	req := httptest.NewRequest(http.MethodPost, "/uploads/clear", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	state := getState(t, e)
	assert.Equal(t, 0, state.FileCount)
}
