package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0097eo/chama-web/internal/api"
)

func newTestClient(srv *httptest.Server) *api.Client {
	return api.NewClient(srv.URL, "token-a", 5*time.Second)
}

func TestGetUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-a", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"name": "Umoja Savings"}, "message": "ok"}`))
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
	}
	err := newTestClient(srv).Get(context.Background(), "/chamas/c-1", &out)
	require.NoError(t, err)
	assert.Equal(t, "Umoja Savings", out.Name)
}

func TestGetFallsBackToRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": "n-1"}, {"id": "n-2"}]`))
	}))
	defer srv.Close()

	var out []struct {
		ID string `json:"id"`
	}
	err := newTestClient(srv).Get(context.Background(), "/notifications/chama/c-1", &out)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "n-1", out[0].ID)
}

func TestUnauthorizedBecomesAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "token expired"}`))
	}))
	defer srv.Close()

	err := newTestClient(srv).Get(context.Background(), "/auth/me", nil)
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))
	assert.Contains(t, err.Error(), "token expired")
}

func TestRateLimitedRetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"data": {"ok": true}}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := newTestClient(srv).Get(context.Background(), "/chamas", &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRateLimitedGivesUpAfterMaxRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := newTestClient(srv).Get(context.Background(), "/chamas", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries")
	assert.Equal(t, int32(4), hits.Load())
}

func TestServerErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "amount exceeds loan limit"}`))
	}))
	defer srv.Close()

	err := newTestClient(srv).Post(context.Background(), "/loans", map[string]int{"amount": 1}, nil)
	require.Error(t, err)
	assert.False(t, api.IsAuthError(err))
	assert.Contains(t, err.Error(), "amount exceeds loan limit")
}

func TestPostSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "/notifications/broadcast", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	err := c.Broadcast(context.Background(), api.BroadcastRequest{
		ChamaID: "c-1",
		Title:   "AGM moved",
		Message: "The annual meeting now starts at 2pm.",
	})
	require.NoError(t, err)
}

func TestDeleteHitsPathWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/notifications/n-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(srv).DeleteNotification(context.Background(), "n-1"))
}

func TestListNotifications(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notifications/chama/c-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": [
			{"id": "n-1", "title": "Loan approved", "read": false, "createdAt": "2026-03-14T09:30:00Z"},
			{"id": "n-2", "title": "Meeting scheduled", "read": true, "createdAt": "2026-03-13T09:30:00Z"}
		]}`))
	}))
	defer srv.Close()

	list, err := newTestClient(srv).ListNotifications(context.Background(), "c-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "n-1", list[0].ID)
	assert.True(t, list[1].Read)
}

func TestSetTokenReplacesCredential(t *testing.T) {
	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	c.SetToken("token-b")
	require.NoError(t, c.Get(context.Background(), "/auth/me", nil))
	assert.Equal(t, "Bearer token-b", seen.Load())
}

func TestConcurrentSetTokenAndRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.SetToken("token-" + strconv.Itoa(i))
		}(i)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Get(context.Background(), "/auth/me", nil))
		}()
	}
	wg.Wait()

	assert.True(t, strings.HasPrefix(c.Token(), "token-"))
}
