package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"viksitkanpur/internal/config"
	"viksitkanpur/internal/gateway"
	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/middleware"
	"viksitkanpur/internal/pipeline"
	"viksitkanpur/internal/refresh"
	"viksitkanpur/internal/routes"
	"viksitkanpur/internal/session"
	"viksitkanpur/pkg/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

var upstreamFiles = map[string]string{
	gateway.PathDashboard:     "dashboard",
	gateway.PathDepartments:   "departments",
	gateway.PathWorkers:       "workers",
	gateway.PathWards:         "wards",
	gateway.PathActivity:      "activity",
	gateway.PathRecent:        "recent_activity",
	gateway.PathNotifications: "notifications",
}

// fakeUpstream serves the sample payloads in the backend envelope and
// accepts only the "good-token" bearer.
func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"invalid token"}`))
			return
		}
		name, ok := upstreamFiles[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, err := os.ReadFile(filepath.Join("..", "gateway", "placeholder", name+".json"))
		if err != nil {
			t.Errorf("reading %s: %v", name, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"success":true,"data":%s}`, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newApp(t *testing.T, upstream string) *config.App {
	t.Helper()
	settings := &config.Settings{
		Environment:     "test",
		Port:            "8080",
		DefaultLanguage: locale.English,
		RefreshInterval: time.Minute,
		SessionTTL:      time.Hour,
		JWTSecret:       "test-secret-0123456789",
	}
	app := &config.App{
		Settings:  settings,
		Logger:    logger.Discard{},
		StartedAt: time.Now(),
	}

	pcfg := pipeline.Config{Cache: pipeline.NewMemoryCache(), CacheTTL: time.Minute}
	sopts := session.Options{Store: session.NewMemoryStore(), Secret: settings.JWTSecret, TTL: settings.SessionTTL}
	if upstream != "" {
		gw, err := gateway.New(gateway.Config{BaseURL: upstream, Timeout: 5 * time.Second})
		require.NoError(t, err)
		app.Gateway = gw
		pcfg.Fetcher = gw
		sopts.Verifier = gw
	}
	app.Pipeline = pipeline.New(pcfg)

	sessions, err := session.NewManager(sopts)
	require.NoError(t, err)
	app.Sessions = sessions

	app.Refresh = refresh.NewRegistry(refresh.Options{
		Interval: time.Minute,
		Sampler: &refresh.PipelineSampler{
			Loader:    app.Pipeline,
			Synthetic: refresh.NewSyntheticSampler(7),
		},
	})
	app.Sessions.OnLogout(app.Refresh.OnLogout)
	t.Cleanup(app.Refresh.StopAll)
	return app
}

func newEngine(app *config.App) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.RequestIDMiddleware(""))
	routes.InitiateRoutes(engine, app)
	return engine
}

func call(t *testing.T, engine *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func login(t *testing.T, engine *gin.Engine, role string) string {
	t.Helper()
	w, env := call(t, engine, http.MethodPost, "/auth/session", "", map[string]string{
		"token":  "good-token",
		"userId": "u-1",
		"name":   "Asha Verma",
		"role":   role,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestHealth(t *testing.T) {
	engine := newEngine(newApp(t, ""))

	w, _ := call(t, engine, http.MethodGet, "/healthcheck/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
	assert.Equal(t, "disabled", body.Checks["redis"])
	assert.Equal(t, "placeholder", body.Checks["upstream"])
}

func TestOverview_AnonymousGetsPlaceholder(t *testing.T) {
	engine := newEngine(newApp(t, ""))

	w, env := call(t, engine, http.MethodGet, "/analytics/overview", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var res struct {
		Source   string   `json:"source"`
		Role     string   `json:"role"`
		Sections []string `json:"sections"`
		Totals   struct {
			TotalComplaints int `json:"totalComplaints"`
		} `json:"totals"`
		Failures []interface{} `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "placeholder", res.Source)
	assert.Equal(t, "general", res.Role)
	assert.Equal(t, 1247, res.Totals.TotalComplaints)
	assert.Empty(t, res.Failures)
	assert.NotContains(t, res.Sections, "departments")
}

func TestOverview_LanguageQuery(t *testing.T) {
	engine := newEngine(newApp(t, ""))

	w, env := call(t, engine, http.MethodGet, "/analytics/overview?lang=hi", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Language string `json:"language"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "hi", res.Language)

	w, _ = call(t, engine, http.MethodGet, "/analytics/overview?lang=fr", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSection_RoleScoping(t *testing.T) {
	engine := newEngine(newApp(t, ""))

	w, env := call(t, engine, http.MethodGet, "/analytics/wards", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Section string            `json:"section"`
		Data    []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "wards", res.Section)
	assert.NotEmpty(t, res.Data)

	w, _ = call(t, engine, http.MethodGet, "/analytics/departments", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogin_RejectedToken(t *testing.T) {
	up := fakeUpstream(t)
	engine := newEngine(newApp(t, up.URL))

	w, _ := call(t, engine, http.MethodPost, "/auth/session", "", map[string]string{"token": "bad", "userId": "u-1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = call(t, engine, http.MethodPost, "/auth/session", "", map[string]string{"userId": "u-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, engine, http.MethodPost, "/auth/session", "", map[string]string{"token": "good-token", "userId": "u-1", "role": "mayor"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionFlow(t *testing.T) {
	up := fakeUpstream(t)
	app := newApp(t, up.URL)
	engine := newEngine(app)

	token := login(t, engine, "district_magistrate")

	w, env := call(t, engine, http.MethodGet, "/analytics/overview", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Source   string        `json:"source"`
		Sections []string      `json:"sections"`
		Failures []interface{} `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "live", res.Source)
	assert.Contains(t, res.Sections, "departments")
	assert.Empty(t, res.Failures)

	w, _ = call(t, engine, http.MethodGet, "/analytics/departments", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = call(t, engine, http.MethodPut, "/auth/session/language", token, map[string]string{"language": "hi"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "भाषा बदल दी गई", env.Message)

	w, env = call(t, engine, http.MethodGet, "/activity/recent?limit=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed struct {
		Items  []json.RawMessage `json:"items"`
		Source string            `json:"source"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &feed))
	assert.Equal(t, "live", feed.Source)
	assert.Len(t, feed.Items, 2)

	w, _ = call(t, engine, http.MethodGet, "/activity/notifications?limit=500", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = call(t, engine, http.MethodPut, "/refresh/auto", token, map[string]bool{"enabled": true})
	require.Equal(t, http.StatusOK, w.Code)
	var status refresh.Status
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Running)
	assert.Equal(t, 1, app.Refresh.Running())

	w, env = call(t, engine, http.MethodGet, "/refresh/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Running)

	w, _ = call(t, engine, http.MethodGet, "/analytics/history", token, nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w, _ = call(t, engine, http.MethodGet, "/auth/session/events", token, nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w, _ = call(t, engine, http.MethodDelete, "/auth/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, app.Refresh.Running())

	w, _ = call(t, engine, http.MethodGet, "/analytics/overview", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	engine := newEngine(newApp(t, ""))

	for _, path := range []string{"/activity/recent", "/activity/notifications", "/analytics/export", "/analytics/history", "/refresh/status"} {
		w, _ := call(t, engine, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestExport(t *testing.T) {
	up := fakeUpstream(t)
	engine := newEngine(newApp(t, up.URL))
	token := login(t, engine, "department_head")

	req := httptest.NewRequest(http.MethodGet, "/analytics/export?lang=hi", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "सारांश")
	assert.Contains(t, sheets, "विभाग")

	v, err := f.GetCellValue("सारांश", "B2")
	require.NoError(t, err)
	assert.Equal(t, "1247", v)
}

func TestRealtime_AnonymousSamplesOnDemand(t *testing.T) {
	engine := newEngine(newApp(t, ""))

	var res struct {
		Running bool `json:"running"`
		Samples []struct {
			Complaints int    `json:"complaints"`
			Source     string `json:"source"`
		} `json:"samples"`
	}
	for i := 1; i <= 3; i++ {
		w, env := call(t, engine, http.MethodGet, "/activity/realtime", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.Len(t, res.Samples, i)
	}
	assert.False(t, res.Running)
	for _, s := range res.Samples {
		assert.GreaterOrEqual(t, s.Complaints, 10)
		assert.Equal(t, "placeholder", s.Source)
	}
}
