package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scalevision/scaleread/internal/pipeline"
	"github.com/scalevision/scaleread/internal/testutil"
	"github.com/scalevision/scaleread/internal/utils"
)

type stubPipeline struct {
	result *pipeline.InferenceResult
	err    error
	calls  int
}

func (s *stubPipeline) Process(_ *utils.Image) (*pipeline.InferenceResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubPipeline) Close() error { return nil }

func sampleResult() *pipeline.InferenceResult {
	value := "12.34"
	unit := "kg"
	return &pipeline.InferenceResult{
		Fragments: []pipeline.TextFragment{
			{Text: "12.34kg", DetConfidence: 0.9, RecConfidence: 0.95},
		},
		Combined:      "12.34kg",
		Value:         &value,
		Unit:          &unit,
		RecConfidence: 0.95,
		Duration:      42 * time.Millisecond,
	}
}

func newTestServer(pl pipelineInterface) *Server {
	return NewServerWithPipeline(pl, Config{CORSOrigin: "*", MaxUploadMB: 5})
}

// encodePNG renders a small raster as an uploadable PNG body.
func encodePNG(t *testing.T, img *utils.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img.ToGoImage()))
	return buf.Bytes()
}

func multipartBody(t *testing.T, fieldName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(fieldName, "scale.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(&stubPipeline{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	srv.healthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Time)
}

func TestHealthHandlerMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubPipeline{})
	rec := httptest.NewRecorder()
	srv.healthHandler(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestReadImageHandler(t *testing.T) {
	stub := &stubPipeline{result: sampleResult()}
	srv := newTestServer(stub)

	img := testutil.SolidImage(t, 32, 24, 200, 200, 200)
	body, contentType := multipartBody(t, "image", encodePNG(t, img))
	req := httptest.NewRequest(http.MethodPost, "/v1/read", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.readImageHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ReadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "12.34kg", resp.Result.Combined)
	require.NotNil(t, resp.Result.Value)
	assert.Equal(t, "12.34", *resp.Result.Value)
	assert.Equal(t, 32, resp.Result.Width)
	assert.Equal(t, 24, resp.Result.Height)
	assert.Equal(t, int64(42), resp.Result.DurationMs)
	assert.Equal(t, 1, stub.calls)
}

func TestReadImageHandlerNoFile(t *testing.T) {
	srv := newTestServer(&stubPipeline{result: sampleResult()})
	body, contentType := multipartBody(t, "wrong_field", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/v1/read", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.readImageHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ReadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestReadImageHandlerInvalidImage(t *testing.T) {
	srv := newTestServer(&stubPipeline{result: sampleResult()})
	body, contentType := multipartBody(t, "image", []byte("not an image"))
	req := httptest.NewRequest(http.MethodPost, "/v1/read", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.readImageHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadImageHandlerPipelineError(t *testing.T) {
	srv := newTestServer(&stubPipeline{err: errors.New("operator exploded")})
	img := testutil.SolidImage(t, 8, 8, 0, 0, 0)
	body, contentType := multipartBody(t, "image", encodePNG(t, img))
	req := httptest.NewRequest(http.MethodPost, "/v1/read", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.readImageHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReadImageHandlerMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubPipeline{})
	rec := httptest.NewRecorder()
	srv.readImageHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/read", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSMiddleware(t *testing.T) {
	srv := NewServerWithPipeline(&stubPipeline{}, Config{CORSOrigin: "https://example.com"})
	handler := srv.corsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodOptions, "/v1/read", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/v1/read", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetupRoutes(t *testing.T) {
	srv := newTestServer(&stubPipeline{})
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
