// internal/search/persistence/service.go
package persistence

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	stderrors "trial-search/internal/common/errors"
	"trial-search/internal/common/logger"
	"trial-search/internal/common/metrics"
	"trial-search/internal/models"
	"trial-search/internal/search/criteria"
)

// Service coordinates the dual-path write and read strategy for saved
// queries. The local write strictly precedes the remote attempt so a crash
// between the two still leaves the local copy intact.
type Service struct {
	remote RemoteStore
	local  LocalStore
	logger logger.Logger
	now    func() time.Time
}

func NewService(remote RemoteStore, local LocalStore, log logger.Logger) *Service {
	return &Service{
		remote: remote,
		local:  local,
		logger: log.WithFields(map[string]interface{}{"component": "query-persistence"}),
		now:    time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func namespaceFor(queryType string) string {
	return "queries:" + queryType
}

// Save validates and persists a query. The local write happens first and is
// the durability guarantee; the remote write is best effort and its failure
// is logged, never surfaced.
func (s *Service) Save(ctx context.Context, criteriaModel models.CriteriaModel, title, description, queryType, editingID string) (models.SavedQuery, error) {
	if strings.TrimSpace(title) == "" {
		return models.SavedQuery{}, stderrors.NewValidationFailedError("title must not be empty")
	}

	normalized := criteria.Normalize(criteriaModel)
	if len(normalized) == 0 {
		return models.SavedQuery{}, stderrors.NewValidationFailedError("no complete criteria rows to save")
	}

	collection := s.localCollection(ctx, queryType)
	timestamp := s.now().UTC()

	query := models.SavedQuery{
		ID:          editingID,
		Title:       strings.TrimSpace(title),
		Description: description,
		QueryType:   queryType,
		Criteria:    normalized,
		CreatedAt:   timestamp,
		UpdatedAt:   timestamp,
	}
	if query.ID == "" {
		query.ID = uuid.New().String()
	}

	replaced := false
	for i, existing := range collection {
		if existing.ID == query.ID {
			// Edits never touch id or createdAt.
			query.CreatedAt = existing.CreatedAt
			collection[i] = query
			replaced = true
			break
		}
	}
	if !replaced {
		collection = append(collection, query)
	}

	if err := s.writeLocal(ctx, queryType, collection); err != nil {
		metrics.SavedQueryWrites.WithLabelValues("local", "error").Inc()
		return models.SavedQuery{}, err
	}
	metrics.SavedQueryWrites.WithLabelValues("local", "success").Inc()

	s.writeRemote(ctx, query, editingID != "")

	return query, nil
}

// List prefers the remote store. A remote failure OR a remote success with
// an empty collection both fall back to the local copy, so locally saved
// queries that never synced are not lost from view.
func (s *Service) List(ctx context.Context, queryType string) ([]models.SavedQuery, error) {
	remote, err := s.remote.List(ctx, queryType, "")
	if err != nil {
		s.logger.Warn("remote list failed, falling back to local store", map[string]interface{}{
			"queryType": queryType,
			"error":     err.Error(),
		})
		metrics.RemoteFallbacks.WithLabelValues("list").Inc()
		return s.localCollection(ctx, queryType), nil
	}

	if len(remote) == 0 {
		metrics.RemoteFallbacks.WithLabelValues("list").Inc()
		return s.localCollection(ctx, queryType), nil
	}

	return remote, nil
}

// Delete removes the query from both stores, tolerating not-found on
// either: a query may live in only one of them.
func (s *Service) Delete(ctx context.Context, id, queryType string) error {
	collection := s.localCollection(ctx, queryType)
	kept := collection[:0]
	removed := false
	for _, q := range collection {
		if q.ID == id {
			removed = true
			continue
		}
		kept = append(kept, q)
	}
	if removed {
		if err := s.writeLocal(ctx, queryType, kept); err != nil {
			return err
		}
	}

	if err := s.remote.Delete(ctx, id); err != nil {
		s.logger.Warn("remote delete failed", map[string]interface{}{
			"queryId": id,
			"error":   err.Error(),
		})
		metrics.RemoteFallbacks.WithLabelValues("delete").Inc()
	}

	return nil
}

// localCollection reads the local collection, degrading corrupt JSON to an
// empty collection so a bad blob never blocks the feature.
func (s *Service) localCollection(ctx context.Context, queryType string) []models.SavedQuery {
	namespace := namespaceFor(queryType)

	data, err := s.local.ReadCollection(ctx, namespace)
	if err != nil {
		s.logger.Warn("local store read failed", map[string]interface{}{
			"namespace": namespace,
			"error":     err.Error(),
		})
		return []models.SavedQuery{}
	}
	if len(data) == 0 {
		return []models.SavedQuery{}
	}

	var collection []models.SavedQuery
	if err := json.Unmarshal(data, &collection); err != nil {
		corrupt := stderrors.NewLocalStoreCorruptError(namespace, err)
		s.logger.Warn("local collection corrupt, starting empty", map[string]interface{}{
			"namespace": namespace,
			"error":     corrupt.Error(),
		})
		return []models.SavedQuery{}
	}

	return collection
}

func (s *Service) writeLocal(ctx context.Context, queryType string, collection []models.SavedQuery) error {
	namespace := namespaceFor(queryType)

	data, err := json.Marshal(collection)
	if err != nil {
		return stderrors.NewLocalStoreFailedError(namespace, err)
	}
	if err := s.local.WriteCollection(ctx, namespace, data); err != nil {
		return stderrors.NewLocalStoreFailedError(namespace, err)
	}
	return nil
}

func (s *Service) writeRemote(ctx context.Context, query models.SavedQuery, isUpdate bool) {
	var err error
	if isUpdate {
		_, err = s.remote.Update(ctx, query)
	} else {
		_, err = s.remote.Create(ctx, query)
	}

	if err != nil {
		remoteErr := stderrors.NewRemoteUnavailableError("save", err)
		s.logger.Warn("remote save failed, local copy retained", map[string]interface{}{
			"queryId": query.ID,
			"error":   remoteErr.Error(),
		})
		metrics.SavedQueryWrites.WithLabelValues("remote", "error").Inc()
		return
	}
	metrics.SavedQueryWrites.WithLabelValues("remote", "success").Inc()
}
