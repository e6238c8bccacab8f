package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	orderapp "github.com/ikkasa/orderhub/internal/application/order"
	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingArchive struct {
	names  []string
	bodies []string
	err    error
}

func (a *recordingArchive) Archive(_ context.Context, name string, body io.ReadSeeker, _ string) (string, error) {
	data, _ := io.ReadAll(body)
	a.names = append(a.names, name)
	a.bodies = append(a.bodies, string(data))
	if a.err != nil {
		return "", a.err
	}
	return "uploads/" + name, nil
}

func multipartRequest(t *testing.T, target, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

const sampleCSV = "Order no,Customer Name\nS-1,Asha\n"

func TestUploadHandler_Upload(t *testing.T) {
	svc := new(MockImportService)
	archive := &recordingArchive{}
	h := NewUploadHandler(svc, archive, t.TempDir(), orderapp.ModeMerge)
	r := newTestEngine(h)

	var storedPath string
	svc.On("ImportFile", mock.Anything, mock.AnythingOfType("string"), "orders.csv", orderapp.ModeMerge).
		Run(func(args mock.Arguments) {
			storedPath = args.String(1)
			data, err := os.ReadFile(storedPath)
			require.NoError(t, err)
			assert.Equal(t, sampleCSV, string(data))
		}).
		Return(&orderapp.ImportResult{Mode: orderapp.ModeMerge, Updated: 1}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/v1/csv/upload", "orders.csv", sampleCSV, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp.Data["updated"])

	assert.Equal(t, []string{"orders.csv"}, archive.names)
	assert.Equal(t, []string{sampleCSV}, archive.bodies)

	_, err := os.Stat(storedPath)
	assert.True(t, os.IsNotExist(err), "temp upload should be removed")
	svc.AssertExpectations(t)
}

func TestUploadHandler_ModeFromQueryAndForm(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		fields   map[string]string
		expected orderapp.ImportMode
	}{
		{name: "query", target: "/api/v1/csv/upload?mode=strict", expected: orderapp.ModeStrict},
		{name: "form field", target: "/api/v1/csv/upload", fields: map[string]string{"mode": "skip-duplicates"}, expected: orderapp.ModeSkipDuplicates},
		{name: "configured default", target: "/api/v1/csv/upload", expected: orderapp.ModeStrict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockImportService)
			h := NewUploadHandler(svc, nil, t.TempDir(), orderapp.ModeStrict)
			r := newTestEngine(h)
			svc.On("ImportFile", mock.Anything, mock.Anything, "orders.xlsx", tt.expected).
				Return(&orderapp.ImportResult{Mode: tt.expected}, nil)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartRequest(t, tt.target, "orders.xlsx", "x", tt.fields))

			assert.Equal(t, http.StatusOK, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestUploadHandler_Rejections(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		filename     string
		expectedCode string
		expectedMsg  string
	}{
		{name: "missing file", target: "/api/v1/csv/upload", expectedCode: dto.ErrCodeBadRequest, expectedMsg: "File is required"},
		{name: "unsupported type", target: "/api/v1/csv/upload", filename: "orders.pdf", expectedCode: dto.ErrCodeValidation, expectedMsg: "Unsupported file type"},
		{name: "unknown mode", target: "/api/v1/csv/upload?mode=replace", filename: "orders.csv", expectedCode: dto.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockImportService)
			r := newTestEngine(NewUploadHandler(svc, nil, t.TempDir(), ""))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartRequest(t, tt.target, tt.filename, sampleCSV, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.expectedCode, body.Error.Code)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, body.Error.Message)
			}
			svc.AssertNotCalled(t, "ImportFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUploadHandler_ArchiveFailureDoesNotFailImport(t *testing.T) {
	svc := new(MockImportService)
	archive := &recordingArchive{err: errors.New("bucket unavailable")}
	r := newTestEngine(NewUploadHandler(svc, archive, t.TempDir(), orderapp.ModeMerge))
	svc.On("ImportFile", mock.Anything, mock.Anything, "orders.csv", orderapp.ModeMerge).
		Return(&orderapp.ImportResult{Mode: orderapp.ModeMerge}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/v1/csv/upload", "orders.csv", sampleCSV, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, archive.names, 1)
}

func TestUploadHandler_StrictConflict(t *testing.T) {
	svc := new(MockImportService)
	r := newTestEngine(NewUploadHandler(svc, nil, t.TempDir(), orderapp.ModeStrict))
	svc.On("ImportFile", mock.Anything, mock.Anything, "orders.csv", orderapp.ModeStrict).
		Return(nil, &order.ConflictError{OrderIDs: []string{"S-2", "S-3"}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/v1/csv/upload", "orders.csv", sampleCSV, nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeConflict, body.Error.Code)
	assert.JSONEq(t, `{"orderIds":["S-2","S-3"]}`, string(body.Error.Details))
}
