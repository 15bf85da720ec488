// Package persistence implements the dual-path saved-query strategy: every
// write lands in the local store first, then a best-effort remote write
// follows; reads prefer the remote store and fall back to the local copy
// on failure or an empty remote result.
package persistence

import (
	"context"

	"trial-search/internal/models"
)

// RemoteStore is the portal-side saved-query store. Implementations treat
// any transport error or non-2xx response as a plain error; the caller
// decides the fallback policy.
type RemoteStore interface {
	List(ctx context.Context, queryType, searchText string) ([]models.SavedQuery, error)
	Create(ctx context.Context, query models.SavedQuery) (models.SavedQuery, error)
	Update(ctx context.Context, query models.SavedQuery) (models.SavedQuery, error)
	Delete(ctx context.Context, id string) error
}

// LocalStore is a persistent, process-local key-value store keyed by a
// namespace string. Collections are read and written whole; there is no
// partial-record API.
type LocalStore interface {
	// ReadCollection returns the raw collection blob, or nil when the
	// namespace holds nothing.
	ReadCollection(ctx context.Context, namespace string) ([]byte, error)
	WriteCollection(ctx context.Context, namespace string, data []byte) error
	DeleteCollection(ctx context.Context, namespace string) error
}
