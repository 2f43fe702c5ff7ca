package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoDecodesSuccess(t *testing.T) {
	var gotMethod, gotPath, gotContentType, gotRequestID string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.RequestURI()
		gotContentType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get("X-Request-ID")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_id":"7","name":"shoes"}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	var out struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}
	err := c.Post(context.Background(), "/categories", map[string]string{"name": "shoes"}, &out)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/categories", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, map[string]string{"name": "shoes"}, gotBody)
	assert.Equal(t, "7", out.ID)
	assert.Equal(t, "shoes", out.Name)
}

func TestDoKeepsQueryString(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("category")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	var out []any
	require.NoError(t, New(srv.URL).Get(context.Background(), "products?category=all", &out))
	assert.Equal(t, "all", gotQuery)
}

func TestInterceptorsRunBeforeEveryRequest(t *testing.T) {
	var headers []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	token := "t1"
	c := New(srv.URL, WithInterceptor(func(ctx context.Context, req *http.Request) error {
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}))

	require.NoError(t, c.Delete(context.Background(), "users/42", nil))
	token = ""
	require.NoError(t, c.Delete(context.Background(), "users/43", nil))

	assert.Equal(t, []string{"Bearer t1", ""}, headers)
}

func TestDoReturnsAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{name: "message from body", status: http.StatusUnauthorized, body: `{"message":"Invalid credentials"}`, wantMessage: "Invalid credentials"},
		{name: "empty body falls back", status: http.StatusInternalServerError, body: ``, wantMessage: FallbackMessage},
		{name: "non json body falls back", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantMessage: FallbackMessage},
		{name: "blank message falls back", status: http.StatusNotFound, body: `{"message":"  "}`, wantMessage: FallbackMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.URL).Get(context.Background(), "users", nil)

			apiErr, ok := AsAPIError(err)
			require.True(t, ok, "expected APIError, got %v", err)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantMessage, Message(err))
		})
	}
}

func TestDoReturnsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(url).Get(context.Background(), "users", nil)

	assert.True(t, IsTransport(err))
	assert.True(t, IsRetryable(err))
	_, isAPI := AsAPIError(err)
	assert.False(t, isAPI)
}

func TestDoTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	err := New(srv.URL, WithTimeout(20*time.Millisecond)).Get(context.Background(), "users", nil)

	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.True(t, tErr.Timeout())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&APIError{StatusCode: 503}))
	assert.False(t, IsRetryable(&APIError{StatusCode: 404}))
	assert.False(t, IsRetryable(&TransportError{Err: context.Canceled}))
	assert.True(t, IsUnauthorized(&APIError{StatusCode: 401}))
	assert.False(t, IsUnauthorized(&APIError{StatusCode: 500}))
}
