// internal/search/persistence/remote_test.go
package persistence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trial-search/internal/common/config"
	"trial-search/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newRemoteClient(baseURL string) *RemoteQueryClient {
	return NewRemoteQueryClient(config.PortalConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 2000,
	})
}

// ==========================
// Remote Client Tests
// ==========================

func TestRemoteQueryClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/saved-queries", r.URL.Path)
		assert.Equal(t, "trial", r.URL.Query().Get("type"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []models.SavedQuery{{ID: "q-1", Title: "Remote Query"}},
		})
	}))
	defer server.Close()

	queries, err := newRemoteClient(server.URL).List(context.Background(), "trial", "")
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, "q-1", queries[0].ID)
}

func TestRemoteQueryClient_List_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newRemoteClient(server.URL).List(context.Background(), "trial", "")
	assert.Error(t, err)
}

func TestRemoteQueryClient_Create(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/saved-queries", r.URL.Path)

		var received models.SavedQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		assert.Equal(t, "New Query", received.Title)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": received})
	}))
	defer server.Close()

	created, err := newRemoteClient(server.URL).Create(context.Background(), models.SavedQuery{ID: "q-2", Title: "New Query"})
	require.NoError(t, err)
	assert.Equal(t, "q-2", created.ID)
}

func TestRemoteQueryClient_Update(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/saved-queries/q-3", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": models.SavedQuery{ID: "q-3"}})
	}))
	defer server.Close()

	_, err := newRemoteClient(server.URL).Update(context.Background(), models.SavedQuery{ID: "q-3"})
	assert.NoError(t, err)
}

func TestRemoteQueryClient_Delete_NotFoundIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	// A query that only ever lived locally is absent remotely; that must
	// not fail the delete.
	assert.NoError(t, newRemoteClient(server.URL).Delete(context.Background(), "local-only"))
}

func TestRemoteQueryClient_Delete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	assert.Error(t, newRemoteClient(server.URL).Delete(context.Background(), "q-4"))
}
