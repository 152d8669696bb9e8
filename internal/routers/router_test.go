package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/haierkeys/campus-share-service/internal/app"
	"github.com/haierkeys/campus-share-service/internal/dao"
	"github.com/haierkeys/campus-share-service/pkg/validator"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	bindingOnce sync.Once
	testUni     *ut.UniversalTranslator
)

type envelope struct {
	Code   int             `json:"code"`
	Status bool            `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	app    *app.App
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bindingOnce.Do(func() {
		var err error
		testUni, err = validator.InitBinding()
		require.NoError(t, err)
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("database:\n  type: sqlite\n  path: %s\nsecurity:\n  auth-token-key: router-test-key\n", filepath.Join(dir, "campus.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, _, err := app.LoadConfig(path)
	require.NoError(t, err)

	db, err := dao.NewDBEngineWithConfig(cfg.GetDatabaseConfig(), zap.NewNop())
	require.NoError(t, err)

	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.Shutdown(context.Background())
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &testServer{t: t, app: a, engine: NewRouter(a, testUni)}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var res envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return w.Code, res
}

func (s *testServer) register(name, email string) string {
	s.t.Helper()
	status, res := s.do(http.MethodPost, "/api/user/register", "", map[string]any{
		"name":      name,
		"email":     email,
		"password":  "secret123",
		"phone":     "555-0100",
		"studentId": "S-" + name,
	})
	require.Equal(s.t, http.StatusCreated, status)

	var tok struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(s.t, json.Unmarshal(res.Data, &tok))
	require.NotEmpty(s.t, tok.AccessToken)
	return tok.AccessToken
}

func TestRouter_RideLifecycle(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("ana", "ana@uni.example")
	rider := s.register("ben", "ben@uni.example")

	status, res := s.do(http.MethodPost, "/api/rides", owner, map[string]any{
		"from":       "North Gate",
		"to":         "Central Station",
		"maxSeats":   2,
		"totalPrice": "30.00",
		"expiryTime": time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, status)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &created))
	require.Positive(t, created.ID)
	ridePath := fmt.Sprintf("/api/rides/%d", created.ID)

	status, res = s.do(http.MethodPost, ridePath+"/join", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 704, res.Code)

	status, _ = s.do(http.MethodPost, ridePath+"/join", rider, nil)
	assert.Equal(t, http.StatusOK, status)

	status, res = s.do(http.MethodPost, ridePath+"/join", rider, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 705, res.Code)

	status, res = s.do(http.MethodGet, ridePath, rider, nil)
	require.Equal(t, http.StatusOK, status)
	var detail struct {
		State          string `json:"state"`
		PaymentSummary struct {
			SplitAmount       string  `json:"splitAmount"`
			TotalParticipants int64   `json:"totalParticipants"`
			YourAmount        *string `json:"yourAmount"`
		} `json:"paymentSummary"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &detail))
	assert.Equal(t, "full", detail.State)
	assert.Equal(t, "15", detail.PaymentSummary.SplitAmount)
	assert.Equal(t, int64(2), detail.PaymentSummary.TotalParticipants)
	require.NotNil(t, detail.PaymentSummary.YourAmount)

	status, res = s.do(http.MethodDelete, ridePath, owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 710, res.Code)

	status, res = s.do(http.MethodPost, ridePath+"/leave", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 707, res.Code)

	status, _ = s.do(http.MethodPost, ridePath+"/leave", rider, nil)
	assert.Equal(t, http.StatusOK, status)

	status, res = s.do(http.MethodDelete, ridePath, rider, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, 709, res.Code)

	status, _ = s.do(http.MethodDelete, ridePath, owner, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_SearchRequiresDestination(t *testing.T) {
	s := newTestServer(t)
	token := s.register("cai", "cai@uni.example")

	status, res := s.do(http.MethodGet, "/api/rides/search", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 400, res.Code)

	status, _ = s.do(http.MethodGet, "/api/rides/search?to=station", token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_RejectsMissingToken(t *testing.T) {
	s := newTestServer(t)

	status, res := s.do(http.MethodGet, "/api/rides/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, res.Status)

	status, _ = s.do(http.MethodGet, "/api/food/mine", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_UnknownRoute(t *testing.T) {
	s := newTestServer(t)

	status, res := s.do(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 404, res.Code)
}

func TestPrivateRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)
	r := NewPrivateRouter(gin.ReleaseMode, "ops-secret", s.app)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer ops-secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/vars?token=ops-secret", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "campus_worker_pool")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, DefaultPrefix+"/?token=ops-secret", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_HealthAndVersion(t *testing.T) {
	s := newTestServer(t)

	status, res := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	var health struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "connected", health.Database)

	status, res = s.do(http.MethodGet, "/api/version", "", nil)
	require.Equal(t, http.StatusOK, status)
	var version struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &version))
	assert.Equal(t, app.Name, version.Name)
}
