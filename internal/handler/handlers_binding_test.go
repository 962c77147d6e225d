package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterd/rosterd-api/internal/models"
	"github.com/rosterd/rosterd-api/internal/service"
	appErrors "github.com/rosterd/rosterd-api/pkg/errors"
	"github.com/rosterd/rosterd-api/pkg/response"
)

func newTestContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *appErrors.Error {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error
}

func TestWorkerHandlerCreateRejectsMalformedJSON(t *testing.T) {
	handler := NewWorkerHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/workplaces/front-desk/workers", []byte(`{"firstName":`))
	c.Params = gin.Params{{Key: "name", Value: "front-desk"}}

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
}

func TestWorkerHandlerImportRejectsEmptyRows(t *testing.T) {
	handler := NewWorkerHandler(service.NewWorkerService(nil, nil, nil, nil))
	c, w := newTestContext(t, http.MethodPost, "/workplaces/front-desk/workers/import", []byte(`{"rows":[]}`))
	c.Params = gin.Params{{Key: "name", Value: "front-desk"}}

	handler.Import(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
}

func TestWorkplaceHandlerUpsertRejectsMissingName(t *testing.T) {
	handler := NewWorkplaceHandler(service.NewWorkplaceService(nil, nil, nil))
	c, w := newTestContext(t, http.MethodPost, "/workplaces", []byte(`{"shiftTimes":{}}`))

	handler.Upsert(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
}

func TestSettingsHandlerSetRejectsInvalidContactEmail(t *testing.T) {
	handler := NewSettingsHandler(service.NewSettingsService(nil, nil, nil))
	c, w := newTestContext(t, http.MethodPut, "/settings/contact_email", []byte(`{"value":"not-an-email"}`))
	c.Params = gin.Params{{Key: "key", Value: "contact_email"}}

	handler.Set(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
}

func TestExportHandlerCreateRejectsUnknownFormat(t *testing.T) {
	exports := service.NewExportService(nil, nil, nil, nil, service.ExportServiceConfig{})
	handler := NewExportHandler(exports)
	c, w := newTestContext(t, http.MethodPost, "/schedules/s1/exports", []byte(`{"format":"docx"}`))
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
}

func TestReplacementHandlerFindRejectsMissingQuery(t *testing.T) {
	replacements := service.NewReplacementService(nil, nil, nil, nil, nil, service.ReplacementServiceConfig{})
	handler := NewReplacementHandler(replacements)
	c, w := newTestContext(t, http.MethodGet, "/workplaces/front-desk/replacements?day=Monday", nil)
	c.Params = gin.Params{{Key: "name", Value: "front-desk"}}

	handler.Find(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
}

func TestMetricsHandlerStatus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordCacheOperation(true)
	metrics.RecordCacheOperation(false)
	handler := NewMetricsHandler(metrics)

	c, w := newTestContext(t, http.MethodGet, "/status", nil)
	handler.Status(c)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.SystemMetrics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, uint64(1), envelope.Data.CacheHits)
	assert.Equal(t, uint64(1), envelope.Data.CacheMisses)
	assert.InDelta(t, 0.5, envelope.Data.CacheHitRatio, 0.001)
}
