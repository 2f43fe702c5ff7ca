package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-admin/internal/bootstrap"
	"storefront-admin/internal/config"
	"storefront-admin/internal/pkg/logger"
	"storefront-admin/internal/repository/contract"
	"storefront-admin/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "adminctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"login"}, {"logout"}, {"whoami"},
		{"users", "list"}, {"users", "delete"},
		{"products", "list"}, {"categories", "list"},
		{"audit", "tail"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, "login failed: boom", WrapExitError(ExitFailure, "login failed", assertErr("boom")).Error())
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

// harness runs commands against a fake remote API with one shared session
// backend, so a login in one run is seen by the next.
type harness struct {
	t       *testing.T
	backend contract.KeyValueStore
	remote  *httptest.Server
	deletes []string
}

func newHarness(t *testing.T) *harness {
	h := &harness{t: t, backend: memory.NewKeyValueStore()}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login/admin", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"userId":"u1","username":"admin1","type":"admin","token":"tok-u1"}`))
	})
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"41","username":"alice","type":"user"}]`))
	})
	mux.HandleFunc("DELETE /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.deletes = append(h.deletes, r.PathValue("id")+" "+r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"message":"User deleted"}`))
	})
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"_id":"p1","name":"Shoes","price":40,"category":{"_id":"c1","name":"Wear"},"user":{"_id":"u1"}},
			{"_id":"p2","name":"Hat","price":10,"category":{"_id":"c1","name":"Wear"},"user":{"_id":"u2"}}
		]`))
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"c1","name":"Wear"}]`))
	})
	h.remote = httptest.NewServer(mux)
	t.Cleanup(h.remote.Close)
	return h
}

func (h *harness) open(opts *RootOptions) (*bootstrap.Container, error) {
	cfg := &config.Config{
		API:     config.APIConfig{BaseURL: h.remote.URL, Timeout: 5 * time.Second},
		Session: config.SessionConfig{Backend: config.SessionBackendMemory, Key: "info"},
		Query:   config.QueryConfig{GCTime: time.Minute},
	}
	return bootstrap.NewContainer(cfg,
		bootstrap.WithLogger(logger.NewNopLogger()),
		bootstrap.WithSessionBackend(h.backend),
	), nil
}

func (h *harness) run(args ...string) (string, error) {
	cmd := newRootCommand(h.open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGuardedCommandsNeedLogin(t *testing.T) {
	h := newHarness(t)

	for _, args := range [][]string{{"whoami"}, {"users", "list"}, {"products", "list"}, {"categories", "list"}, {"audit", "tail"}} {
		_, err := h.run(args...)
		require.Error(t, err, args)
		assert.Equal(t, ExitUnauthenticated, GetExitCode(err), args)
	}
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("login", "-u", "admin1", "-p", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "Invalid credentials")

	_, err = h.run("users", "list")
	assert.Equal(t, ExitUnauthenticated, GetExitCode(err))
}

func TestLoginWithoutPasswordIsCommandError(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("login", "-u", "admin1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLoginThenListAndDelete(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("login", "-u", "admin1", "-p", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin1")

	out, err = h.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "admin1 (u1)")

	out, err = h.run("users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")

	out, err = h.run("products", "list", "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Category string `json:"category"`
			Products []struct {
				ID string `json:"_id"`
			} `json:"products"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "all", resp.Data.Category)
	require.Len(t, resp.Data.Products, 1)
	assert.Equal(t, "p1", resp.Data.Products[0].ID)

	out, err = h.run("categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Wear")

	_, err = h.run("users", "delete", "42")
	require.NoError(t, err)
	assert.Equal(t, []string{"42 Bearer tok-u1"}, h.deletes)

	_, err = h.run("logout")
	require.NoError(t, err)
	_, err = h.run("whoami")
	assert.Equal(t, ExitUnauthenticated, GetExitCode(err))
}

func TestInvalidFormat(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("whoami", "--format", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
