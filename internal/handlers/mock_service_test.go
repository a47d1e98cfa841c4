package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"regenx/internal/models"
	"regenx/internal/realtime"
	"regenx/internal/service"
	"regenx/internal/session"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	user *models.User
	err  error

	lastSignUp   service.SignUpInput
	lastEmail    string
	lastPassword string
}

func (m *mockAuth) SignUp(_ context.Context, in service.SignUpInput) (*models.User, error) {
	m.lastSignUp = in
	return m.user, m.err
}

func (m *mockAuth) Login(_ context.Context, email, password string) (*models.User, error) {
	m.lastEmail = email
	m.lastPassword = password
	return m.user, m.err
}

type mockActivity struct {
	mu sync.Mutex

	user    *models.User
	getErr  error
	saved   *models.User
	saveErr error
	history []models.DayRecord
	histErr error

	lastUserID int64
	lastInc    service.Increment
	lastFilter service.HistoryFilter
	saveCalls  int
}

func (m *mockActivity) GetUser(_ context.Context, userID int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUserID = userID
	return m.user, m.getErr
}

func (m *mockActivity) SaveSession(_ context.Context, userID int64, inc service.Increment) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUserID = userID
	m.lastInc = inc
	m.saveCalls++
	return m.saved, m.saveErr
}

func (m *mockActivity) History(_ context.Context, userID int64, f service.HistoryFilter) ([]models.DayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUserID = userID
	m.lastFilter = f
	return m.history, m.histErr
}

// ---- Shared Test Helpers ----

const testSecret = "test-secret"

var testIdentity = models.Identity{UserID: 7, Username: "ana", Email: "ana@example.com"}

type testEnv struct {
	router   *gin.Engine
	handler  *Handler
	sessions *session.Manager
	hub      *realtime.Hub
}

func newTestEnv(t *testing.T, s *service.Service, opts Options) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := realtime.NewHub(0)
	if s.Live == nil {
		s.Live = service.NewLiveService(hub)
	}
	if opts.StaticDir == "" {
		opts.StaticDir = writePages(t)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	ttl := time.Hour
	mgr := session.NewManager(session.NewMemoryStore(ttl), session.NewCookieCodec(testSecret, ttl))
	h := NewHandler(s, mgr, nil, opts)
	return &testEnv{router: h.InitRoutes(), handler: h, sessions: mgr, hub: hub}
}

func newTestRouter(t *testing.T, s *service.Service) *gin.Engine {
	return newTestEnv(t, s, Options{}).router
}

// login issues a session for id and returns the cookie the browser would send.
func (e *testEnv) login(t *testing.T, id models.Identity) *http.Cookie {
	t.Helper()
	value, err := e.sessions.Issue(context.Background(), id)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return &http.Cookie{Name: e.handler.opts.CookieName, Value: value}
}

func writePages(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{pageIndex, pageHome, pageAuth, pageDashboard} {
		body := "<html><body>" + name + "</body></html>"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
