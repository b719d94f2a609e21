package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ndr-radio/internal/broadcast"
	"ndr-radio/internal/catalog"
	"ndr-radio/internal/clock"
	"ndr-radio/internal/config"
	database "ndr-radio/internal/db"
	"ndr-radio/internal/models"
	"ndr-radio/internal/news"
	"ndr-radio/internal/player"
	"ndr-radio/internal/realtime"
	"ndr-radio/internal/station"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Users{}, &models.MediaItem{}, &models.NewsItem{}, &models.BroadcastLog{}, &models.StationState{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	db.Create(&models.Users{Username: "admin", PasswordHash: string(hash), Role: "admin"})
	db.Create(&models.MediaItem{ID: "t1", Name: "Amara.mp3", Key: "k1", URL: "http://cdn/a.mp3", Type: models.MediaAudio})

	mc := clock.NewMock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cat := catalog.New(db)
	ch := realtime.NewLocalChannel()
	t.Cleanup(func() { ch.Close() })
	eng := player.NewEngine(mc, 24000)
	ctrl := station.NewController(station.RoleAdmin, cat, ch, eng, mc)

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Station.APIAddr = ":0"

	return New(cfg, Deps{
		DB:         &database.Client{DB: db},
		Catalog:    cat,
		Controller: ctrl,
		NewsStore:  news.NewStore(db, mc),
		LogStore:   broadcast.NewLogStore(db, mc),
	})
}

func login(t *testing.T, s *Server) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "correct-horse"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login returned no token: %s", w.Body.String())
	}
	return resp.Token
}

func TestLoginAndBadPassword(t *testing.T) {
	s := newTestServer(t)
	login(t, s)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password returned %d, want 401", w.Code)
	}
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/api/v1/state", "/api/v1/tracks", "/api/v1/news", "/api/v1/logs"} {
		w := httptest.NewRecorder()
		s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s returned %d, want 200", path, w.Code)
		}
	}
}

func TestAdminRoutesRejectAnonymous(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/toggle", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous toggle returned %d, want 401", w.Code)
	}
}

func TestToggleAndStateRoundTrip(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/toggle", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle returned %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))
	var state models.StationState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("state decode: %v", err)
	}
	if !state.IsPlaying || state.TrackID != "t1" {
		t.Errorf("state = %+v, want the seeded track on air", state)
	}
}

func TestPushUnknownTrackIs404(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/push/nope", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("push of unknown id returned %d, want 404", w.Code)
	}
}

func TestBulletinWithoutSchedulerIs503(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/bulletin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("bulletin without scheduler returned %d, want 503", w.Code)
	}
}
