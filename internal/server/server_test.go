package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront-admin/internal/bootstrap"
	"storefront-admin/internal/config"
	"storefront-admin/internal/pkg/logger"
	"storefront-admin/internal/repository/memory"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI stands in for the remote storefront API.
type fakeAPI struct {
	mu    sync.Mutex
	users []map[string]string

	userReads    atomic.Int32
	productReads atomic.Int32
	productGate  chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users: []map[string]string{
			{"_id": "41", "username": "alice", "type": "user"},
			{"_id": "42", "username": "bobby", "type": "user"},
		},
	}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer tok-u1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
			return false
		}
		return true
	}

	mux.HandleFunc("POST /auth/login/admin", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "admin1" || body["password"] != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"userId":"u1","username":"admin1","type":"admin","token":"tok-u1"}`))
	})
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		f.userReads.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(f.users)
	})
	mux.HandleFunc("DELETE /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		id := r.PathValue("id")
		kept := f.users[:0]
		for _, u := range f.users {
			if u["_id"] != id {
				kept = append(kept, u)
			}
		}
		f.users = kept
		_, _ = w.Write([]byte(`{"message":"User deleted"}`))
	})
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		f.productReads.Add(1)
		if f.productGate != nil {
			<-f.productGate
		}
		_, _ = w.Write([]byte(`[
			{"_id":"p1","name":"Shoes","price":40,"category":{"_id":"c1","name":"Wear"},"user":{"_id":"u1"}},
			{"_id":"p2","name":"Hat","price":10,"category":{"_id":"c1","name":"Wear"},"user":{"_id":"someone-else"}}
		]`))
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		_, _ = w.Write([]byte(`[{"_id":"c1","name":"Wear"}]`))
	})
	return mux
}

func setupServer(t *testing.T, api *fakeAPI) *fiber.App {
	t.Helper()
	remote := httptest.NewServer(api.handler())
	t.Cleanup(remote.Close)

	cfg := &config.Config{
		App:     config.AppConfig{Port: "0", CorsAllowedOrigins: "http://localhost:5173"},
		API:     config.APIConfig{BaseURL: remote.URL, Timeout: 5 * time.Second},
		Session: config.SessionConfig{Backend: config.SessionBackendMemory, Key: "info"},
		Query:   config.QueryConfig{GCTime: time.Minute, RetryDelay: 10 * time.Millisecond},
		UI:      config.UIConfig{NavigateDelay: 1500 * time.Millisecond, LoginNavigateDelay: time.Second},
	}
	container := bootstrap.NewContainer(cfg,
		bootstrap.WithLogger(logger.NewNopLogger()),
		bootstrap.WithSessionBackend(memory.NewKeyValueStore()),
	)
	t.Cleanup(container.Close)

	return New(cfg, container).GetApp()
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type usersScreen struct {
	Status   string              `json:"status"`
	Stale    bool                `json:"stale"`
	Fetching bool                `json:"fetching"`
	Data     []map[string]string `json:"data"`
}

func call(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	return resp, env
}

func login(t *testing.T, app *fiber.App) {
	t.Helper()
	resp, env := call(t, app, "POST", "/login", map[string]string{"username": "admin1", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
}

func usersOf(t *testing.T, env envelope) usersScreen {
	t.Helper()
	var screen usersScreen
	require.NoError(t, json.Unmarshal(env.Data, &screen))
	return screen
}

func TestValidLoginOpensUsersScreen(t *testing.T) {
	app := setupServer(t, newFakeAPI())

	resp, env := call(t, app, "POST", "/login", map[string]string{"username": "admin1", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		UserID   string `json:"userId"`
		Redirect struct {
			To      string `json:"to"`
			AfterMs int64  `json:"afterMs"`
		} `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "u1", result.UserID)
	assert.Equal(t, "/", result.Redirect.To)
	assert.Equal(t, int64(1000), result.Redirect.AfterMs)

	resp, env = call(t, app, "GET", "/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	screen := usersOf(t, env)
	assert.Equal(t, "success", screen.Status)
	assert.Len(t, screen.Data, 2)
}

func TestInvalidLoginKeepsSessionAbsent(t *testing.T) {
	app := setupServer(t, newFakeAPI())

	resp, env := call(t, app, "POST", "/login", map[string]string{"username": "admin1", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", env.Message)

	resp, _ = call(t, app, "GET", "/users", nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLoginValidationNeverReachesNetwork(t *testing.T) {
	app := setupServer(t, newFakeAPI())

	resp, env := call(t, app, "POST", "/login", map[string]string{"username": "admin1"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Validation failed", env.Message)
}

func TestDeleteUserRefetchesOnce(t *testing.T) {
	api := newFakeAPI()
	app := setupServer(t, api)
	login(t, app)

	_, env := call(t, app, "GET", "/users", nil)
	require.Len(t, usersOf(t, env).Data, 2)
	require.Equal(t, int32(1), api.userReads.Load())

	resp, _ := call(t, app, "DELETE", "/users/42", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), api.userReads.Load(), "delete must not refetch by itself")

	// The next render shows the old rows flagged stale while one refetch runs
	_, env = call(t, app, "GET", "/users", nil)
	first := usersOf(t, env)
	if first.Stale {
		assert.True(t, first.Fetching)
	}

	var screen usersScreen
	require.Eventually(t, func() bool {
		_, env := call(t, app, "GET", "/users", nil)
		screen = usersOf(t, env)
		return !screen.Stale && !screen.Fetching
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(2), api.userReads.Load())
	require.Len(t, screen.Data, 1)
	assert.Equal(t, "41", screen.Data[0]["_id"])
}

func TestFailedDeleteDoesNotInvalidate(t *testing.T) {
	api := newFakeAPI()
	app := setupServer(t, api)
	login(t, app)
	call(t, app, "GET", "/users", nil)

	// Unknown route on the fake API answers 404
	resp, env := call(t, app, "DELETE", "/products/p9", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)

	_, env = call(t, app, "GET", "/users", nil)
	assert.False(t, usersOf(t, env).Stale)
	assert.Equal(t, int32(1), api.userReads.Load())
}

func TestConcurrentProductReadsShareOneCall(t *testing.T) {
	api := newFakeAPI()
	api.productGate = make(chan struct{})
	app := setupServer(t, api)
	login(t, app)

	type result struct {
		status int
		data   json.RawMessage
	}
	results := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			req := httptest.NewRequest("GET", "/products?category=all", nil)
			resp, err := app.Test(req, -1)
			if err != nil {
				results <- result{}
				return
			}
			var env envelope
			raw, _ := io.ReadAll(resp.Body)
			_ = json.Unmarshal(raw, &env)
			results <- result{status: resp.StatusCode, data: env.Data}
		}()
	}

	require.Eventually(t, func() bool { return api.productReads.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(api.productGate)

	a, b := <-results, <-results
	assert.Equal(t, http.StatusOK, a.status)
	assert.Equal(t, http.StatusOK, b.status)
	assert.Equal(t, int32(1), api.productReads.Load())

	var screen struct {
		Data struct {
			Products []map[string]any `json:"products"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(a.data, &screen))
	require.Len(t, screen.Data.Products, 1, "only the operator's own products are listed")
	assert.Equal(t, "p1", screen.Data.Products[0]["_id"])

	var other struct {
		Data struct {
			Products []map[string]any `json:"products"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(b.data, &other))
	assert.Equal(t, screen, other)
}

func TestLogoutRedirectsEveryProtectedPath(t *testing.T) {
	app := setupServer(t, newFakeAPI())
	login(t, app)

	resp, _ := call(t, app, "GET", "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, app, "POST", "/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, p := range []string{"/", "/users", "/users/42/edit", "/products", "/categories/create"} {
		resp, _ := call(t, app, "GET", p, nil)
		assert.Equal(t, http.StatusFound, resp.StatusCode, p)
		assert.Equal(t, "/login", resp.Header.Get("Location"), p)
	}
}

func TestUserEditRejectsShortPassword(t *testing.T) {
	app := setupServer(t, newFakeAPI())
	login(t, app)

	resp, env := call(t, app, "POST", "/users/42/edit", map[string]string{
		"username": "bobby2",
		"password": "123",
		"type":     "user",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(env.Data), "password")
}
