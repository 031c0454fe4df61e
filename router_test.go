package main

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/SergeyParamoshkin/folio/internal/article"
	"github.com/SergeyParamoshkin/folio/internal/likeset"
	"github.com/SergeyParamoshkin/folio/internal/session"
	"github.com/SergeyParamoshkin/folio/internal/storage/memory"
	"github.com/SergeyParamoshkin/folio/internal/telemetry"
	"github.com/SergeyParamoshkin/folio/internal/upload"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "s3cret"
)

type testApp struct {
	srv *httptest.Server
	tel *telemetry.Telemetry
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	sugar := zap.NewNop().Sugar()

	tel, err := telemetry.New()
	require.NoError(t, err)
	meter := tel.Meter(ServiceName)

	svc, err := article.NewService(memory.New(), likeset.NewMemory(), sugar, meter)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	sessions, err := session.NewManager(session.Config{Email: testEmail, PasswordHash: string(hash), Secret: "test"})
	require.NoError(t, err)

	uploads, err := upload.NewStore(t.TempDir(), "/uploads", upload.DefaultMaxBytes)
	require.NoError(t, err)

	counter, err := telemetry.RequestCounter(meter)
	require.NoError(t, err)

	srv := httptest.NewServer(newRouter(sugar, svc, sessions, uploads, counter))
	t.Cleanup(srv.Close)

	return &testApp{srv: srv, tel: tel}
}

func (a *testApp) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, a.srv.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func (a *testApp) login(t *testing.T) string {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/session", "",
		strings.NewReader(`{"email":"`+testEmail+`","password":"`+testPassword+`"}`), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out session.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)

	return out.Token
}

func TestPing(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodGet, "/ping", "", nil, "")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
}

func TestUnknownRouteIsJSONNotFound(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodGet, "/nope/", "", nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Resource not found.", body["status"])
}

func TestAdminRequiresSession(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodGet, "/admin/", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = app.do(t, http.MethodGet, "/admin/", "not-a-token", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDashboard(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	resp := app.do(t, http.MethodPost, "/trabajos/", token,
		strings.NewReader(`{"title":"Tienda","body":"<p>Una tienda</p>","projectUrl":"https://example.com"}`),
		"application/json")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.do(t, http.MethodGet, "/admin/", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dash DashboardResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dash))
	assert.Equal(t, testEmail, dash.Operator)
	assert.Equal(t, map[string]int{"posts": 0, "trabajos": 1}, dash.Counts)
	assert.Equal(t, map[string]string{"trabajos": "Tienda"}, dash.Latest)
}

func TestUploadAndServe(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "portada.png")
	require.NoError(t, err)
	_, err = fw.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp := app.do(t, http.MethodPost, "/admin/uploads", token, &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var up upload.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&up))
	assert.True(t, strings.HasPrefix(up.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(up.Name, "_portada.png"))

	resp = app.do(t, http.MethodGet, up.URL, "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, png, got)
}

func TestRequestsAreCounted(t *testing.T) {
	app := newTestApp(t)
	app.do(t, http.MethodGet, "/posts/", "", nil, "")

	w := httptest.NewRecorder()
	app.tel.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "completed_count")
}
