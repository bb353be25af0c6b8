package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/menuconv/internal/cache"
	"github.com/JonMunkholm/menuconv/internal/config"
	"github.com/JonMunkholm/menuconv/internal/core"
	"github.com/JonMunkholm/menuconv/internal/export"
	"github.com/JonMunkholm/menuconv/internal/store"
)

const testProducts = `{"reference": {
  "product": [
    {"id": 5, "name": {"data": [{"lang": "fr_FR", "text": "Burger"}]}, "price": 1250,
     "pictures": [{"type": "MINIATURE", "reference_id": 9}]},
    {"id": 6, "name": {"data": [{"lang": "fr_FR", "text": "Frites"}]}, "price": 300}
  ],
  "category": [
    {"id": 1, "name": {"data": [{"lang": "fr_FR", "text": "Burgers"}]}, "products": [{"reference_id": 5}, {"reference_id": 6}]}
  ]
}}`

const testImages = `{"pictures": [{"id": 9, "url": "https://cdn/upload/a/b/tabesto/x.png"}]}`

func testConfig() *config.Config {
	return &config.Config{
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			Timeout:       10 * time.Second,
		},
		Security: config.SecurityConfig{EnableCSP: true},
		Menu:     config.MenuConfig{Layout: "current"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	svc, err := core.NewService(core.ServiceConfig{
		Options:       core.DefaultOptions(),
		Layout:        cfg.Menu.Layout,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		Timeout:       cfg.Upload.Timeout,
	}, store.NewMemory(10), cache.NewMemory(time.Hour, 10))
	require.NoError(t, err)

	s := NewServer(svc, cfg)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

// multipartBody builds a conversion request. Empty contents omit the field.
func multipartBody(t *testing.T, products, images, layout string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if products != "" {
		fw, err := mw.CreateFormFile(fieldProducts, "menu.json")
		require.NoError(t, err)
		_, err = fw.Write([]byte(products))
		require.NoError(t, err)
	}
	if images != "" {
		fw, err := mw.CreateFormFile(fieldImages, "pictures.json")
		require.NoError(t, err)
		_, err = fw.Write([]byte(images))
		require.NoError(t, err)
	}
	if layout != "" {
		require.NoError(t, mw.WriteField(fieldLayout, layout))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func postConvert(t *testing.T, s *Server, path, products, images, layout string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, products, images, layout)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return do(s, req)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func convertAPI(t *testing.T, s *Server) conversionResponse {
	t.Helper()
	rec := postConvert(t, s, "/api/convert", testProducts, testImages, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp conversionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestConvertAPI(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := postConvert(t, s, "/api/convert", testProducts, testImages, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp conversionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "/api/conversions/"+resp.ID, rec.Header().Get("Location"))
	assert.Equal(t, "menu.json", resp.ProductFile)
	assert.Equal(t, "pictures.json", resp.ImageFile)
	assert.Equal(t, "current", resp.Layout)
	assert.Equal(t, 2, resp.Stats.Products)
	assert.Equal(t, 2, resp.Stats.Categorized)
	assert.Empty(t, resp.Fallbacks)
	require.NotEmpty(t, resp.Preview)
	assert.True(t, strings.HasPrefix(resp.Preview[0], "LocationID"), resp.Preview[0])
	assert.Contains(t, resp.Downloads["xlsx"], "format=xlsx")

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/conversions/"+resp.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), resp.ID)
}

func TestConvertAPI_LegacyLayout(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := postConvert(t, s, "/api/convert", testProducts, testImages, "legacy")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"layout":"legacy"`)
}

func TestConvertAPI_Errors(t *testing.T) {
	tests := []struct {
		name     string
		products string
		images   string
		layout   string
		status   int
		code     string
	}{
		{"missing images", testProducts, "", "", http.StatusBadRequest, "FILE002"},
		{"missing products", "", testImages, "", http.StatusBadRequest, "FILE002"},
		{"invalid product json", `{"reference":`, testImages, "", http.StatusUnprocessableEntity, "JSON001"},
		{"invalid image json", testProducts, `[1,`, "", http.StatusUnprocessableEntity, "JSON002"},
		{"unknown layout", testProducts, testImages, "v3", http.StatusBadRequest, "CNV001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testConfig())

			rec := postConvert(t, s, "/api/convert", tt.products, tt.images, tt.layout)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)

			usage := do(s, httptest.NewRequest(http.MethodGet, "/api/usage", nil))
			assert.Contains(t, usage.Body.String(), `"total":0`)
		})
	}
}

func TestConvertAPI_FileTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 64
	s := newTestServer(t, cfg)

	rec := postConvert(t, s, "/api/convert", testProducts, testImages, "")

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE001", decodeError(t, rec).Code)
}

func TestConvertAPI_NotMultipart(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(testProducts))
	req.Header.Set("Content-Type", "application/json")
	rec := do(s, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE002", decodeError(t, rec).Code)
}

func TestDownload(t *testing.T) {
	s := newTestServer(t, testConfig())
	conv := convertAPI(t, s)
	base := "/api/conversions/" + conv.ID + "/download"

	t.Run("tsv by default", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodGet, base, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/tab-separated-values", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), export.FormatTSV.FileName())
		assert.True(t, strings.HasPrefix(rec.Body.String(), export.BOM+"LocationID\t"))
		assert.Contains(t, rec.Body.String(), "Burger")
	})

	t.Run("xlsx", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodGet, base+"?format=xlsx", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, export.FormatXLSX.ContentType(), rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), export.FormatXLSX.FileName())
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
	})

	t.Run("unsupported format", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodGet, base+"?format=pdf", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "FILE003", decodeError(t, rec).Code)
	})

	t.Run("unknown conversion", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodGet, "/api/conversions/not-an-id/download", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "CNV003", decodeError(t, rec).Code)
	})
}

func TestConvertForm_Redirects(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := postConvert(t, s, "/convert", testProducts, testImages, "")
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/conversion/"), loc)

	page := do(s, httptest.NewRequest(http.MethodGet, loc, nil))
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Conversion complete")
	assert.Contains(t, page.Body.String(), "<td>Burger</td>")
}

func TestConvertForm_HTMX(t *testing.T) {
	s := newTestServer(t, testConfig())

	body, contentType := multipartBody(t, testProducts, testImages, "")
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("HX-Request", "true")
	rec := do(s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), "download?format=tsv")
}

func TestConvertForm_ErrorPage(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := postConvert(t, s, "/convert", testProducts, "", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Code: FILE002")
}

func TestConversionPage_NotFound(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/conversion/1b4e28ba-2fa1-11d2-883f-0016d3cca427", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Code: CNV003")
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t, testConfig())
	convertAPI(t, s)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="current" selected>`)
	assert.Contains(t, body, `<option value="legacy">`)
	assert.Contains(t, body, "Menus converted so far: <strong>1</strong>")
	assert.Contains(t, body, "menu.json")
}

func TestHistoryAndUsage(t *testing.T) {
	s := newTestServer(t, testConfig())
	first := convertAPI(t, s)
	second := convertAPI(t, s)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/history?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var hist struct {
		Conversions []core.ConversionRecord `json:"conversions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	require.Len(t, hist.Conversions, 1)
	assert.Equal(t, second.ID, hist.Conversions[0].ID)
	assert.NotEqual(t, first.ID, hist.Conversions[0].ID)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/history?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/usage", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":2`)
	assert.Contains(t, rec.Body.String(), `"max_concurrent":2`)
}

func TestLayouts(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/layouts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Layouts []layoutResponse `json:"layouts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Layouts, 2)
	assert.Equal(t, "current", resp.Layouts[0].Name)
	assert.True(t, resp.Layouts[0].Default)
	assert.True(t, resp.Layouts[0].Namespaced)
	assert.Len(t, resp.Layouts[0].Columns, 26)
	assert.Equal(t, "legacy", resp.Layouts[1].Name)
	assert.False(t, resp.Layouts[1].Default)
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s := newTestServer(t, cfg)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/usage", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
	req.Header.Set("X-API-Key", "wrong")
	assert.Equal(t, http.StatusForbidden, do(s, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/usage", nil)
	req.Header.Set("X-API-Key", "secret")
	assert.Equal(t, http.StatusOK, do(s, req).Code)

	// Pages stay public.
	assert.Equal(t, http.StatusOK, do(s, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	s := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		rec := do(s, httptest.NewRequest(http.MethodGet, "/api/usage", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/usage", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decodeError(t, rec).Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(core.ErrConversionNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(core.ErrTooManyConversions))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
