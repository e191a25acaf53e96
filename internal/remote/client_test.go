package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawkit/pawkit/internal/model"
	"github.com/pawkit/pawkit/internal/remote"
)

func TestCreateWrapsEntityWithType(t *testing.T) {
	var gotBody map[string]json.RawMessage
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/entities", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(remote.Record{
			ID:        "srv-1",
			UpdatedAt: time.Now().UTC(),
		})
	}))
	defer srv.Close()

	client := remote.NewClient(srv.URL, "secret", time.Second)
	rec, err := client.Create(context.Background(), model.TypeCard, json.RawMessage(`{"title":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "srv-1", rec.ID)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.JSONEq(t, `"card"`, string(gotBody["type"]))
	assert.JSONEq(t, `{"title":"x"}`, string(gotBody["entity"]))
}

func TestUpdateSendsPreconditionHeader(t *testing.T) {
	base := time.Date(2026, 8, 28, 10, 30, 0, 123456789, time.UTC)
	var gotHeader string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/entities/srv-1", r.URL.Path)
		gotHeader = r.Header.Get(remote.PreconditionHeader)

		json.NewEncoder(w).Encode(remote.Record{ID: "srv-1", UpdatedAt: time.Now().UTC()})
	}))
	defer srv.Close()

	client := remote.NewClient(srv.URL, "", time.Second)
	_, err := client.Update(context.Background(), "srv-1", json.RawMessage(`{}`), base)
	require.NoError(t, err)
	assert.Equal(t, base.Format(time.RFC3339Nano), gotHeader)
}

func TestUpdateConflictStatus(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusPreconditionFailed} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client := remote.NewClient(srv.URL, "", time.Second)
		_, err := client.Update(context.Background(), "srv-1", json.RawMessage(`{}`), time.Now())
		assert.True(t, remote.IsConflict(err), "status %d should map to conflict", status)
		assert.ErrorIs(t, err, model.ErrConflict)
		srv.Close()
	}
}

func TestGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := remote.NewClient(srv.URL, "", time.Second)
	_, err := client.Get(context.Background(), "gone")
	assert.True(t, remote.IsNotFound(err))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteNotFoundIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := remote.NewClient(srv.URL, "", time.Second)
	assert.NoError(t, client.Delete(context.Background(), "gone"))
}

func TestServerErrorIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := remote.NewClient(srv.URL, "", time.Second)
	_, err := client.Get(context.Background(), "srv-1")
	assert.True(t, remote.IsNetwork(err))
}

func TestUnreachableHostIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := remote.NewClient(srv.URL, "", time.Second)
	_, err := client.Get(context.Background(), "srv-1")
	assert.True(t, remote.IsNetwork(err))
}

func TestBadRequestIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := remote.NewClient(srv.URL, "", time.Second)
	_, err := client.Create(context.Background(), model.TypeCard, json.RawMessage(`{}`))
	require.Error(t, err)
	assert.False(t, remote.IsNetwork(err))
	assert.False(t, remote.IsConflict(err))
	assert.False(t, remote.IsNotFound(err))
}
