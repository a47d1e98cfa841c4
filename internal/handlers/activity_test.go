package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"regenx/internal/models"
	"regenx/internal/service"
)

func getWithCookie(r http.Handler, path string, c *http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if c != nil {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestGetUser(t *testing.T) {
	day := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	user := &models.User{
		ID: 7, Username: "ana", Email: "ana@example.com",
		PasswordHash:  "secret-hash",
		LifetimeSteps: 120, LifetimeEnergy: 1.5,
		History: []models.DayRecord{{Date: day, Steps: 120, Energy: 1.5}},
	}

	t.Run("anonymous gets null", func(t *testing.T) {
		env := newTestEnv(t, &service.Service{Activity: &mockActivity{user: user}}, Options{})
		w := getWithCookie(env.router, "/api/user", nil)
		if w.Code != http.StatusOK || w.Body.String() != "null" {
			t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
		}
	})

	t.Run("session returns document without hash", func(t *testing.T) {
		act := &mockActivity{user: user}
		env := newTestEnv(t, &service.Service{Activity: act}, Options{})
		w := getWithCookie(env.router, "/api/user", env.login(t, testIdentity))
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		var m map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if _, ok := m["PasswordHash"]; ok {
			t.Fatalf("password hash leaked: %s", w.Body.String())
		}
		if m["lifetimeSteps"].(float64) != 120 {
			t.Fatalf("lifetimeSteps=%v", m["lifetimeSteps"])
		}
		if hist := m["history"].([]any); len(hist) != 1 {
			t.Fatalf("history len=%d", len(hist))
		}
		if act.lastUserID != testIdentity.UserID {
			t.Fatalf("looked up user %d", act.lastUserID)
		}
	})

	t.Run("deleted user gets null", func(t *testing.T) {
		env := newTestEnv(t, &service.Service{Activity: &mockActivity{getErr: service.ErrUserNotFound}}, Options{})
		w := getWithCookie(env.router, "/api/user", env.login(t, testIdentity))
		if w.Code != http.StatusOK || w.Body.String() != "null" {
			t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
		}
	})

	t.Run("store failure", func(t *testing.T) {
		env := newTestEnv(t, &service.Service{Activity: &mockActivity{getErr: errors.New("boom")}}, Options{})
		w := getWithCookie(env.router, "/api/user", env.login(t, testIdentity))
		if w.Code != http.StatusInternalServerError || errorMessage(t, w) != "Failed to fetch user data" {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
	})
}

func TestSaveSession(t *testing.T) {
	saved := &models.User{ID: 7, LifetimeSteps: 150, LifetimeEnergy: 2.5}

	cases := []struct {
		name     string
		body     string
		login    bool
		saveErr  error
		wantCode int
		wantInc  *service.Increment
	}{
		{"no session", `{"steps":10,"energy":1}`, false, nil, http.StatusUnauthorized, nil},
		{"success", `{"steps":30,"energy":1.0}`, true, nil, http.StatusOK, &service.Increment{Steps: 30, Energy: 1.0}},
		{"zero values accepted", `{"steps":0,"energy":0}`, true, nil, http.StatusOK, &service.Increment{}},
		{"negative accepted", `{"steps":-5,"energy":0}`, true, nil, http.StatusOK, &service.Increment{Steps: -5}},
		{"missing energy", `{"steps":10}`, true, nil, http.StatusBadRequest, nil},
		{"wrong type", `{"steps":"ten","energy":1}`, true, nil, http.StatusBadRequest, nil},
		{"user vanished", `{"steps":10,"energy":1}`, true, service.ErrUserNotFound, http.StatusUnauthorized, nil},
		{"counter overflow", `{"steps":9223372036854775807,"energy":1}`, true, service.ErrCounterOverflow, http.StatusBadRequest, nil},
		{"store failure", `{"steps":10,"energy":1}`, true, errors.New("boom"), http.StatusInternalServerError, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			act := &mockActivity{saved: saved, saveErr: tc.saveErr}
			env := newTestEnv(t, &service.Service{Activity: act}, Options{})

			var cookies []*http.Cookie
			if tc.login {
				cookies = append(cookies, env.login(t, testIdentity))
			}
			w := postJSON(env.router, "/api/save-session", tc.body, cookies...)
			if w.Code != tc.wantCode {
				t.Fatalf("status=%d want %d, body=%s", w.Code, tc.wantCode, w.Body.String())
			}
			if tc.wantInc == nil {
				return
			}
			if act.lastInc != *tc.wantInc {
				t.Fatalf("increment=%+v want %+v", act.lastInc, *tc.wantInc)
			}
			if act.lastUserID != testIdentity.UserID {
				t.Fatalf("saved for user %d", act.lastUserID)
			}
			var m map[string]any
			_ = json.Unmarshal(w.Body.Bytes(), &m)
			if m["message"] != "Session Saved and Merged" {
				t.Fatalf("message=%v", m["message"])
			}
			if m["lifetimeSteps"].(float64) != 150 {
				t.Fatalf("lifetimeSteps=%v", m["lifetimeSteps"])
			}
		})
	}
}

func TestGetHistory(t *testing.T) {
	records := []models.DayRecord{
		{Date: time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC), Steps: 10},
		{Date: time.Date(2025, 8, 2, 8, 0, 0, 0, time.UTC), Steps: 20},
	}

	t.Run("requires session", func(t *testing.T) {
		env := newTestEnv(t, &service.Service{Activity: &mockActivity{}}, Options{})
		if w := getWithCookie(env.router, "/api/history", nil); w.Code != http.StatusUnauthorized {
			t.Fatalf("status=%d", w.Code)
		}
	})

	t.Run("date-only to is end of day", func(t *testing.T) {
		act := &mockActivity{history: records}
		env := newTestEnv(t, &service.Service{Activity: act}, Options{})
		w := getWithCookie(env.router, "/api/history?from=2025-08-01&to=2025-08-02", env.login(t, testIdentity))
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		wantFrom := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
		wantTo := time.Date(2025, 8, 2, 23, 59, 59, 999999999, time.UTC)
		if !act.lastFilter.From.Equal(wantFrom) || !act.lastFilter.To.Equal(wantTo) {
			t.Fatalf("filter=%+v", act.lastFilter)
		}
		var body struct {
			Count   int                `json:"count"`
			History []models.DayRecord `json:"history"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Count != 2 || len(body.History) != 2 {
			t.Fatalf("body=%+v", body)
		}
	})

	t.Run("datetime to kept as is", func(t *testing.T) {
		act := &mockActivity{}
		env := newTestEnv(t, &service.Service{Activity: act}, Options{})
		w := getWithCookie(env.router, "/api/history?to=2025-08-02%2012:00:00", env.login(t, testIdentity))
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		if want := time.Date(2025, 8, 2, 12, 0, 0, 0, time.UTC); !act.lastFilter.To.Equal(want) {
			t.Fatalf("to=%v want %v", act.lastFilter.To, want)
		}
	})

	t.Run("dates are read in the tracker zone", func(t *testing.T) {
		ist := time.FixedZone("IST", 5*3600+1800)
		act := &mockActivity{}
		env := newTestEnv(t, &service.Service{Activity: act}, Options{Location: ist})
		w := getWithCookie(env.router, "/api/history?from=2024-01-02&to=2024-01-02", env.login(t, testIdentity))
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		wantFrom := time.Date(2024, 1, 2, 0, 0, 0, 0, ist)
		wantTo := time.Date(2024, 1, 2, 23, 59, 59, 999999999, ist)
		if !act.lastFilter.From.Equal(wantFrom) || !act.lastFilter.To.Equal(wantTo) {
			t.Fatalf("filter=%+v want %v..%v", act.lastFilter, wantFrom, wantTo)
		}
	})

	cases := []struct {
		name     string
		query    string
		histErr  error
		wantCode int
	}{
		{"bad from", "?from=yesterday", nil, http.StatusBadRequest},
		{"bad to", "?to=31/08/2025", nil, http.StatusBadRequest},
		{"inverted range", "?from=2025-08-03&to=2025-08-01", service.ErrInvalidTimeRange, http.StatusBadRequest},
		{"store failure", "", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, &service.Service{Activity: &mockActivity{histErr: tc.histErr}}, Options{})
			w := getWithCookie(env.router, "/api/history"+tc.query, env.login(t, testIdentity))
			if w.Code != tc.wantCode {
				t.Fatalf("status=%d want %d, body=%s", w.Code, tc.wantCode, w.Body.String())
			}
		})
	}
}

func TestParseQueryTime(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2025-08-27T15:04:05Z", time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC), false},
		{"2025-08-27T17:04:05+02:00", time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC), false},
		{"2025-08-27 15:04:05", time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC), false},
		{"2025-08-27", time.Date(2025, 8, 27, 0, 0, 0, 0, time.UTC), false},
		{"27.08.2025", time.Time{}, true},
	}
	for _, tc := range cases {
		got, err := parseQueryTime(tc.in, time.UTC)
		if (err != nil) != tc.wantErr {
			t.Fatalf("parseQueryTime(%q) err=%v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("parseQueryTime(%q)=%v want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseQueryTime_WallTimeInLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)

	got, err := parseQueryTime("2024-01-02", ist)
	if err != nil || !got.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, ist)) {
		t.Fatalf("date-only: %v, %v", got, err)
	}
	// an explicit offset wins over loc
	got, err = parseQueryTime("2024-01-02T00:00:00Z", ist)
	if err != nil || !got.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339: %v, %v", got, err)
	}
}
