package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/catalog-admin/internal/domain"
	"github.com/msomdec/catalog-admin/internal/handler"
	"github.com/msomdec/catalog-admin/internal/repository/sqlite"
	"github.com/msomdec/catalog-admin/internal/service"
	"github.com/msomdec/catalog-admin/internal/storage"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

type stubRewriter struct{}

func (stubRewriter) Rewrite(ctx context.Context, text string) string {
	return strings.ToUpper(text)
}

type testEnv struct {
	srv       *httptest.Server
	client    *http.Client
	db        *sqlite.DB
	auth      *service.AuthService
	uploadDir string
}

type envOption func(*handler.Options)

// withDatabaseAssets keeps uploads in SQLite instead of the upload directory.
func withDatabaseAssets(o *handler.Options) {
	o.UploadDir = ""
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })

	uploadDir := filepath.Join(t.TempDir(), "uploads")

	auth := service.NewAuthService(db.Users(), testJWTSecret, 4)
	metrics, err := handler.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	options := handler.Options{
		MaxUploadBytes:  1 << 20,
		UploadDir:       uploadDir,
		UploadURLPrefix: "/static/uploads",
		Metrics:         metrics,
		DB:              db.SqlDB,
	}
	for _, o := range opts {
		o(&options)
	}

	var assets domain.AssetStore = storage.NewLocalStore(uploadDir, options.UploadURLPrefix)
	if options.UploadDir == "" {
		dbAssets := db.Assets(options.UploadURLPrefix)
		options.Assets = dbAssets
		assets = dbAssets
	}

	srv := httptest.NewServer(handler.New(handler.Services{
		Auth:       auth,
		Categories: service.NewCategoryService(db.Categories(), db.Materials()),
		Catalog:    service.NewCatalogService(db.Materials(), db.Categories(), assets),
		Secrets:    service.NewSecretService(db.Secrets()),
		Rewriter:   stubRewriter{},
	}, options))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		srv:       srv,
		client:    &http.Client{Jar: jar},
		db:        db,
		auth:      auth,
		uploadDir: uploadDir,
	}
}

func (e *testEnv) addSecret(t *testing.T, secret string) {
	t.Helper()
	require.NoError(t, e.db.Secrets().Create(context.Background(), &domain.RegisterSecret{Secret: secret}))
}

// login registers an operator and stores its auth cookie in the client jar.
func (e *testEnv) login(t *testing.T) {
	t.Helper()
	e.addSecret(t, "2026-USER-LOGIN1")

	resp := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "operator", "email": "op@example.com",
		"password": "password123", "confirmPassword": "password123",
		"secret": "2026-USER-LOGIN1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"login": "operator", "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// do sends body as JSON (when non-nil) and returns the response with its
// body already read into a buffer.
func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type formFile struct {
	field, name, content string
}

func multipartRequest(t *testing.T, url string, fields map[string]string, files []formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
