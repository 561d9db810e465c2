package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/palma21/yt-analysis-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStorage is a mock implementation of the storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Store(ctx context.Context, filename string, data []byte) error {
	args := m.Called(filename, data)
	return args.Error(0)
}

func (m *MockStorage) Retrieve(ctx context.Context, filename string) ([]byte, error) {
	args := m.Called(filename)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockStorage) List(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(prefix)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, filename string) error {
	args := m.Called(filename)
	return args.Error(0)
}

func TestSeenStore_LoadMissingState(t *testing.T) {
	backend := &MockStorage{}
	backend.On("Retrieve", "cache.json").Return(nil, fmt.Errorf("wrapped: %w", ErrNotFound))

	seen, err := NewSeenStore(backend, "cache.json").Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, seen)
	assert.Equal(t, 0, seen.Len())
	backend.AssertExpectations(t)
}

func TestSeenStore_LoadExistingState(t *testing.T) {
	backend := &MockStorage{}
	backend.On("Retrieve", "cache.json").
		Return([]byte(`{"processed_videos":["v1","v2"],"last_updated":"2024-01-02T10:00:00Z"}`), nil)

	seen, err := NewSeenStore(backend, "cache.json").Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, seen.IDs())
}

func TestSeenStore_LoadFailuresYieldEmptySet(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{name: "Backend error", err: errors.New("connection reset")},
		{name: "Corrupt document", data: []byte(`{"processed_videos": [`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &MockStorage{}
			backend.On("Retrieve", "cache.json").Return(tt.data, tt.err)

			seen, err := NewSeenStore(backend, "cache.json").Load(context.Background())

			assert.Error(t, err)
			require.NotNil(t, seen)
			assert.Equal(t, 0, seen.Len())
		})
	}
}

func TestSeenStore_Save(t *testing.T) {
	backend := &MockStorage{}
	var written []byte
	backend.On("Store", "cache.json", mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(1).([]byte) }).
		Return(nil)

	store := NewSeenStore(backend, "cache.json")
	store.now = func() time.Time { return time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, store.Save(context.Background(), models.NewSeenSet("v2", "v1")))

	var state models.State
	require.NoError(t, json.Unmarshal(written, &state))
	assert.Equal(t, []string{"v1", "v2"}, state.ProcessedVideos)
	assert.Equal(t, "2024-01-02T10:00:00Z", state.LastUpdated)
}

func TestSeenStore_SaveError(t *testing.T) {
	backend := &MockStorage{}
	backend.On("Store", "cache.json", mock.Anything).Return(errors.New("disk full"))

	err := NewSeenStore(backend, "cache.json").Save(context.Background(), models.NewSeenSet("v1"))
	assert.ErrorContains(t, err, "disk full")
}

func TestSeenStore_RoundTripOnLocalStorage(t *testing.T) {
	backend, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	store := NewSeenStore(backend, "cache.json")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, models.NewSeenSet("a", "b")))

	seen, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, seen.Has("a"))
	assert.True(t, seen.Has("b"))
}
