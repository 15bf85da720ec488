// internal/search/persistence/service_test.go
package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	stderrors "trial-search/internal/common/errors"
	"trial-search/internal/common/logger"
	"trial-search/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type mockRemoteStore struct {
	mock.Mock
}

func (m *mockRemoteStore) List(ctx context.Context, queryType, searchText string) ([]models.SavedQuery, error) {
	args := m.Called(ctx, queryType, searchText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SavedQuery), args.Error(1)
}

func (m *mockRemoteStore) Create(ctx context.Context, query models.SavedQuery) (models.SavedQuery, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(models.SavedQuery), args.Error(1)
}

func (m *mockRemoteStore) Update(ctx context.Context, query models.SavedQuery) (models.SavedQuery, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(models.SavedQuery), args.Error(1)
}

func (m *mockRemoteStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService(t *testing.T, remote RemoteStore) (*Service, *miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	local := NewRedisStore(client, "search")
	svc := NewService(remote, local, logger.NewNoOpLogger())
	return svc, mr, local
}

func testCriteria() models.CriteriaModel {
	return models.CriteriaModel{
		{ID: "r1", Field: "protocol_title", Operator: "contains", Value: models.ScalarValue("HER2"), Connective: models.ConnectiveAnd},
		{ID: "r2", Field: "trial_phase", Operator: "is", Value: models.ScalarValue("phase_iii"), Connective: models.ConnectiveAnd},
	}
}

// ==========================
// Save Tests
// ==========================

func TestService_Save_LocalFirstRemoteBestEffort(t *testing.T) {
	remote := &mockRemoteStore{}
	remote.On("Create", mock.Anything, mock.Anything).Return(models.SavedQuery{}, assert.AnError)
	svc, _, _ := newTestService(t, remote)

	saved, err := svc.Save(context.Background(), testCriteria(), "HER2 Phase III", "", "trial", "")

	// The remote failure must not surface.
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "HER2 Phase III", saved.Title)
	assert.Len(t, saved.Criteria, 2)
	remote.AssertCalled(t, "Create", mock.Anything, mock.Anything)

	// The local copy survives the remote outage: list with a failing remote
	// still round-trips the query.
	remote.On("List", mock.Anything, "trial", "").Return(nil, assert.AnError)
	listed, err := svc.List(context.Background(), "trial")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, saved.ID, listed[0].ID)
	assert.Equal(t, saved.Criteria, listed[0].Criteria)
}

func TestService_Save_ValidatesTitleAndCriteria(t *testing.T) {
	svc, _, _ := newTestService(t, &mockRemoteStore{})

	_, err := svc.Save(context.Background(), testCriteria(), "   ", "", "trial", "")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeValidationFailed, stderrors.CodeOf(err))

	// All rows incomplete: nothing to save.
	_, err = svc.Save(context.Background(), models.CriteriaModel{{ID: "r1"}}, "Title", "", "trial", "")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeValidationFailed, stderrors.CodeOf(err))
}

func TestService_Save_EditPreservesIdentityAndCreatedAt(t *testing.T) {
	remote := &mockRemoteStore{}
	remote.On("Create", mock.Anything, mock.Anything).Return(models.SavedQuery{}, nil)
	remote.On("Update", mock.Anything, mock.Anything).Return(models.SavedQuery{}, nil)
	svc, _, _ := newTestService(t, remote)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return base })

	created, err := svc.Save(context.Background(), testCriteria(), "Original", "", "trial", "")
	require.NoError(t, err)

	svc.WithClock(func() time.Time { return base.Add(48 * time.Hour) })
	updated, err := svc.Save(context.Background(), testCriteria(), "Renamed", "now with notes", "trial", created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	remote.On("List", mock.Anything, "trial", "").Return(nil, assert.AnError)
	listed, err := svc.List(context.Background(), "trial")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Renamed", listed[0].Title)
	remote.AssertCalled(t, "Update", mock.Anything, mock.Anything)
}

// ==========================
// List Tests
// ==========================

func TestService_List_PrefersRemote(t *testing.T) {
	remoteQueries := []models.SavedQuery{{ID: "rq-1", Title: "From Remote"}}
	remote := &mockRemoteStore{}
	remote.On("List", mock.Anything, "trial", "").Return(remoteQueries, nil)
	svc, _, _ := newTestService(t, remote)

	listed, err := svc.List(context.Background(), "trial")
	require.NoError(t, err)
	assert.Equal(t, remoteQueries, listed)
}

func TestService_List_EmptyRemoteFallsBackToLocal(t *testing.T) {
	remote := &mockRemoteStore{}
	remote.On("Create", mock.Anything, mock.Anything).Return(models.SavedQuery{}, assert.AnError)
	// Remote succeeds but reports nothing; local queries must still show up.
	remote.On("List", mock.Anything, "trial", "").Return([]models.SavedQuery{}, nil)
	svc, _, _ := newTestService(t, remote)

	saved, err := svc.Save(context.Background(), testCriteria(), "Local Only", "", "trial", "")
	require.NoError(t, err)

	listed, err := svc.List(context.Background(), "trial")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, saved.ID, listed[0].ID)
}

func TestService_List_CorruptLocalDegradesToEmpty(t *testing.T) {
	remote := &mockRemoteStore{}
	remote.On("List", mock.Anything, "trial", "").Return(nil, assert.AnError)
	svc, mr, _ := newTestService(t, remote)

	mr.Set("search:queries:trial", "{not valid json")

	listed, err := svc.List(context.Background(), "trial")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

// ==========================
// Delete Tests
// ==========================

func TestService_Delete_RemovesFromBothStores(t *testing.T) {
	remote := &mockRemoteStore{}
	remote.On("Create", mock.Anything, mock.Anything).Return(models.SavedQuery{}, nil)
	remote.On("Delete", mock.Anything, mock.Anything).Return(nil)
	svc, _, _ := newTestService(t, remote)

	saved, err := svc.Save(context.Background(), testCriteria(), "Doomed", "", "trial", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), saved.ID, "trial"))

	remote.On("List", mock.Anything, "trial", "").Return(nil, assert.AnError)
	listed, err := svc.List(context.Background(), "trial")
	require.NoError(t, err)
	assert.Empty(t, listed)
	remote.AssertCalled(t, "Delete", mock.Anything, saved.ID)
}

func TestService_Delete_ToleratesMissingEverywhere(t *testing.T) {
	remote := &mockRemoteStore{}
	remote.On("Delete", mock.Anything, "ghost").Return(assert.AnError)
	svc, _, _ := newTestService(t, remote)

	// Neither store has the query; delete still reports success.
	assert.NoError(t, svc.Delete(context.Background(), "ghost", "trial"))
}
